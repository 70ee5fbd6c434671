package clients

import (
	"time"

	"festivaltickets/internal/shared/constants"

	"github.com/google/uuid"
)

type ClientResponse struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Surname   string         `json:"surname"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Role      constants.Role `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
}

type FavouriteStatusResponse struct {
	EventID     uuid.UUID `json:"event_id"`
	IsFavourite bool      `json:"is_favourite"`
}

func ToClientResponse(c Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Surname:   c.Surname,
		Email:     c.Email,
		Phone:     c.Phone,
		Role:      c.Role,
		CreatedAt: c.CreatedAt,
	}
}
