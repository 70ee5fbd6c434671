package middleware

import (
	"net/http"
	"strings"
	"time"

	"festivaltickets/internal/shared/config"
	"festivaltickets/internal/shared/constants"
	"festivaltickets/internal/shared/utils/response"
	"festivaltickets/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Context keys set by the JWT middlewares
const (
	ContextClientID = "client_id"
	ContextSubject  = "client_subject"
	ContextRole     = "client_role"
)

// JWTAuth creates a JWT authentication middleware
func JWTAuth() gin.HandlerFunc {
	return JWTAuthWithConfig(config.Load())
}

// JWTAuthWithConfig creates a JWT authentication middleware with config
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		claims, err := parseAccessToken(authHeader, cfg.JWT.Secret)
		if err != nil {
			response.RespondJSON(c, "error", http.StatusUnauthorized, err.Error(), nil, nil)
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth validates a JWT token if present but doesn't require it
func OptionalAuth() gin.HandlerFunc {
	return OptionalAuthWithConfig(config.Load())
}

func OptionalAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		if claims, err := parseAccessToken(authHeader, cfg.JWT.Secret); err == nil {
			setClaims(c, claims)
		}

		c.Next()
	}
}

type authError string

func (e authError) Error() string { return string(e) }

const (
	errBadHeader    authError = "authorization header format must be Bearer {token}"
	errInvalidToken authError = "invalid or expired token"
	errTokenType    authError = "invalid token type"
)

func parseAccessToken(authHeader, secret string) (jwt.MapClaims, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errBadHeader
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidToken
	}
	if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
		return nil, errTokenType
	}
	return claims, nil
}

func setClaims(c *gin.Context, claims jwt.MapClaims) {
	c.Set(ContextClientID, claims["client_id"])
	c.Set(ContextSubject, claims["subject"])
	c.Set(ContextRole, claims["role"])
}

// ClientID returns the authenticated client's id
func ClientID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := c.Get(ContextClientID)
	if !ok {
		return uuid.Nil, false
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// RequireRoles checks if the client has any of the required roles
func RequireRoles(requiredRoles ...constants.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, exists := c.Get(ContextRole)
		if !exists {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "client role not found in context", nil, nil)
			c.Abort()
			return
		}

		role, _ := raw.(string)
		for _, required := range requiredRoles {
			if role == string(required) {
				c.Next()
				return
			}
		}

		response.RespondJSON(c, "error", http.StatusForbidden, "Insufficient permissions", nil, nil)
		c.Abort()
	}
}

// RequireOrganizer allows organizers only
func RequireOrganizer() gin.HandlerFunc {
	return RequireRoles(constants.RoleOrganizer)
}

// RequestLogger logs every request through the application logger
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.LogHTTPRequest(c, time.Since(start))
		if len(c.Errors) > 0 {
			log.LogHTTPError(c, c.Errors.Last(), c.Writer.Status())
		}
	}
}
