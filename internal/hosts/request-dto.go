package hosts

import "festivaltickets/pkg/pagination"

type HostListQuery struct {
	pagination.Params
	CityName   string `form:"city"`
	HostTypeID uint   `form:"host_type_id"`
}

func (q HostListQuery) Filter() HostFilter {
	var f HostFilter
	if q.CityName != "" {
		city := q.CityName
		f.CityName = &city
	}
	if q.HostTypeID != 0 {
		id := q.HostTypeID
		f.HostTypeID = &id
	}
	return f
}
