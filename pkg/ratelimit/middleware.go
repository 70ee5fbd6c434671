package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"festivaltickets/internal/shared/utils/response"
	"festivaltickets/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Middleware applies the limit of the route's category per client IP.
// Redis failures let the request through.
func Middleware(rateLimiter *RateLimiter, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := getClientIP(c)
		limitType := getRateLimitType(c.Request.Method, c.FullPath())

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			log.WarnContext(c.Request.Context(), "rate limit check failed", "error", err.Error())
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime, 10))

		if !result.Allowed {
			log.LogRateLimitExceeded(c.Request.Context(), clientIP, c.FullPath())
			response.RespondJSON(c, "error", http.StatusTooManyRequests,
				"Rate limit exceeded", nil, map[string]interface{}{
					"limit":      result.Limit,
					"reset_time": result.ResetTime,
				})
			c.Abort()
			return
		}

		c.Next()
	}
}

func getRateLimitType(method, path string) RateLimitType {
	switch {
	case strings.HasPrefix(path, "/health"),
		strings.HasPrefix(path, "/ping"),
		strings.HasPrefix(path, "/status"):
		return RateLimitTypeHealth

	case strings.Contains(path, "/auth/"):
		return RateLimitTypeAuth

	// Seat contention endpoints
	case strings.HasSuffix(path, "/hold"),
		strings.HasSuffix(path, "/tickets/purchase"):
		return RateLimitTypeHold

	case strings.Contains(path, "/organizer/"),
		method == http.MethodDelete && strings.Contains(path, "/clients/"):
		return RateLimitTypeOrganizer

	case strings.Contains(path, "/clients/me"),
		strings.Contains(path, "/tickets/confirmation"):
		return RateLimitTypeClient

	case strings.Contains(path, "/events"),
		strings.Contains(path, "/hosts"),
		strings.Contains(path, "/event-types"),
		strings.Contains(path, "/host-types"),
		strings.Contains(path, "/cities"):
		return RateLimitTypePublic

	default:
		return RateLimitTypeDefault
	}
}

// extracts real client IP
func getClientIP(c *gin.Context) string {
	if xForwardedFor := c.GetHeader("X-Forwarded-For"); xForwardedFor != "" {
		ip := strings.TrimSpace(strings.Split(xForwardedFor, ",")[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	if xRealIP := c.GetHeader("X-Real-IP"); xRealIP != "" && net.ParseIP(xRealIP) != nil {
		return xRealIP
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}
