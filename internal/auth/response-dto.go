package auth

import "festivaltickets/internal/clients"

// represents the authentication response
type AuthResponse struct {
	Client       clients.ClientResponse `json:"client"`
	AccessToken  string                 `json:"access_token"`
	RefreshToken string                 `json:"refresh_token"`
	ExpiresIn    int64                  `json:"expires_in"`
}
