package hosts

import "github.com/google/uuid"

type HostResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type LocationResponse struct {
	ID             uuid.UUID `json:"id"`
	CityName       string    `json:"city_name"`
	StreetName     string    `json:"street_name"`
	BuildingNumber string    `json:"building_number"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
}

type HostWithDetailsResponse struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	HostType    string            `json:"host_type,omitempty"`
	Location    *LocationResponse `json:"location,omitempty"`
}

type HallDetailsResponse struct {
	HostID           uuid.UUID `json:"host_id"`
	RowAmount        int       `json:"row_amount"`
	SeatsInRow       int       `json:"seats_in_row"`
	IsDividedBySeats bool      `json:"is_divided_by_seats"`
}

type HostTypeResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func toHallDetailsResponse(h HallDetail) HallDetailsResponse {
	return HallDetailsResponse{
		HostID:           h.HostID,
		RowAmount:        h.RowAmount,
		SeatsInRow:       h.SeatsInRow,
		IsDividedBySeats: h.IsDividedBySeats,
	}
}

func toHostWithDetailsResponse(h Host) HostWithDetailsResponse {
	resp := HostWithDetailsResponse{
		ID:          h.ID,
		Name:        h.Name,
		Description: h.Description,
	}
	if h.HostType != nil {
		resp.HostType = h.HostType.Name
	}
	if h.Location != nil {
		resp.Location = &LocationResponse{
			ID:             h.Location.ID,
			CityName:       h.Location.CityName,
			StreetName:     h.Location.StreetName,
			BuildingNumber: h.Location.BuildingNumber,
			Latitude:       h.Location.Latitude,
			Longitude:      h.Location.Longitude,
		}
	}
	return resp
}
