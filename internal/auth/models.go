package auth

import "github.com/golang-jwt/jwt/v4"

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	tokenIssuer      = "festival-tickets"
)

// JWTClaims represents JWT token claims
type JWTClaims struct {
	ClientID      string `json:"client_id"`
	ClientSubject string `json:"subject"`
	Role          string `json:"role"`
	Type          string `json:"type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
