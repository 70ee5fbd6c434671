package clients

import "festivaltickets/pkg/pagination"

type ChangeFavouriteRequest struct {
	IsFavourite *bool `json:"is_favourite" binding:"required"`
}

type PageQuery struct {
	pagination.Params
}
