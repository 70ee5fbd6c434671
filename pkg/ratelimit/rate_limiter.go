package ratelimit

import (
	"context"
	"fmt"
	"time"

	"festivaltickets/internal/shared/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RateLimitType string

const (
	RateLimitTypeDefault   RateLimitType = "default"
	RateLimitTypePublic    RateLimitType = "public"
	RateLimitTypeAuth      RateLimitType = "auth"
	RateLimitTypeHold      RateLimitType = "hold"
	RateLimitTypeOrganizer RateLimitType = "organizer"
	RateLimitTypeClient    RateLimitType = "client"
	RateLimitTypeHealth    RateLimitType = "health"
)

const keyPrefix = "festival:ratelimit:"

// Result represents rate limit check result
type Result struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	client    redis.Cmdable
	config    config.RateLimitConfig
	whitelist map[string]struct{}

	now       func() time.Time
	newMember func() string
}

func NewRateLimiter(client redis.Cmdable, cfg config.RateLimitConfig) *RateLimiter {
	whitelist := make(map[string]struct{}, len(cfg.WhitelistedIPs))
	for _, ip := range cfg.WhitelistedIPs {
		whitelist[ip] = struct{}{}
	}
	return &RateLimiter{
		client:    client,
		config:    cfg,
		whitelist: whitelist,
		now:       time.Now,
		newMember: uuid.NewString,
	}
}

// Sliding window over a sorted set scored by request time in ms.
// Returns {allowed, remaining}.
const luaSlidingWindow = `
local key = KEYS[1]
local window_start = tonumber(ARGV[1])
local now = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local window_ms = tonumber(ARGV[4])
local member = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

local current = redis.call('ZCARD', key)
if current >= limit then
	redis.call('PEXPIRE', key, window_ms)
	return {0, 0}
end

redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, window_ms)
return {1, limit - current - 1}
`

// IsAllowed checks if request is allowed
func (r *RateLimiter) IsAllowed(ctx context.Context, clientIP string, limitType RateLimitType) (*Result, error) {
	limit := r.getLimit(limitType)
	now := r.now()
	reset := now.Add(r.config.WindowDuration).Unix()

	if !r.config.Enabled || r.isWhitelisted(clientIP) {
		return &Result{Allowed: true, Limit: limit, Remaining: limit, ResetTime: reset}, nil
	}

	key := keyPrefix + clientIP + ":" + string(limitType)
	values, err := r.client.Eval(ctx, luaSlidingWindow, []string{key},
		now.Add(-r.config.WindowDuration).UnixMilli(),
		now.UnixMilli(),
		limit,
		r.config.WindowDuration.Milliseconds(),
		r.newMember(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis eval failed: %w", err)
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("unexpected redis response: %v", values)
	}

	return &Result{
		Allowed:   values[0] == 1,
		Limit:     limit,
		Remaining: int(values[1]),
		ResetTime: reset,
	}, nil
}

func (r *RateLimiter) getLimit(limitType RateLimitType) int {
	switch limitType {
	case RateLimitTypePublic:
		return r.config.PublicRequests
	case RateLimitTypeAuth:
		return r.config.AuthRequests
	case RateLimitTypeHold:
		return r.config.HoldRequests
	case RateLimitTypeOrganizer:
		return r.config.OrganizerRequests
	case RateLimitTypeClient:
		return r.config.ClientRequests
	case RateLimitTypeHealth:
		return r.config.HealthRequests
	default:
		return r.config.DefaultRequests
	}
}

func (r *RateLimiter) isWhitelisted(ip string) bool {
	_, ok := r.whitelist[ip]
	return ok
}
