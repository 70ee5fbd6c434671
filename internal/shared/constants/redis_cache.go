package constants

import (
	"fmt"
	"time"
)

// Redis Cache Configuration
// Pattern: festival:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

// Static Data (Long TTL: rarely changes)
const (
	TTL_STATIC_LONG   = 24 * time.Hour // 24 hours - lookup tables
	TTL_STATIC_MEDIUM = 12 * time.Hour // 12 hours - host halls
	TTL_STATIC_SHORT  = 6 * time.Hour  // 6 hours - client profiles
)

// Semi-Static Data (Medium TTL: changes occasionally)
const (
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour    // 2 hours - event details
	TTL_SEMI_STATIC_QUICK  = 15 * time.Minute // 15 minutes - event listings
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "festival"
)

// ================== EVENTS MODULE ==================

const (
	CACHE_KEY_EVENT_DETAIL      = CACHE_PREFIX + ":events:detail:uuid:"      // + event-id
	CACHE_KEY_EVENT_FULL_DETAIL = CACHE_PREFIX + ":events:full_detail:uuid:" // + event-id
	CACHE_KEY_EVENT_TYPES       = CACHE_PREFIX + ":events:types:all"
	CACHE_KEY_EVENT_GENRES      = CACHE_PREFIX + ":events:genres:type:" // + event-type-id
)

const (
	TTL_EVENT_DETAIL = TTL_SEMI_STATIC_MEDIUM // 2 hours
	TTL_EVENT_TYPES  = TTL_STATIC_LONG        // 24 hours
)

// ================== HOSTS MODULE ==================

const (
	CACHE_KEY_HOST_TYPES  = CACHE_PREFIX + ":hosts:types:all"
	CACHE_KEY_HOST_CITIES = CACHE_PREFIX + ":hosts:cities:all"
	CACHE_KEY_HOST_HALL   = CACHE_PREFIX + ":hosts:hall:uuid:" // + host-id
)

const (
	TTL_HOST_LOOKUPS = TTL_STATIC_LONG   // 24 hours
	TTL_HOST_HALL    = TTL_STATIC_MEDIUM // 12 hours
)

// ================== AUTH MODULE ==================

const (
	CACHE_KEY_CLIENT_PROFILE = CACHE_PREFIX + ":auth:client:profile:uuid:" // + client-id
)

const (
	TTL_CLIENT_PROFILE = TTL_STATIC_SHORT // 6 hours
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_EVENT_ALL = CACHE_PREFIX + ":events:*"
	PATTERN_INVALIDATE_HOSTS_ALL = CACHE_PREFIX + ":hosts:*"
)

// ================== HELPER FUNCTIONS ==================

func BuildEventDetailKey(eventID string) string {
	return CACHE_KEY_EVENT_DETAIL + eventID
}

func BuildEventFullDetailKey(eventID string) string {
	return CACHE_KEY_EVENT_FULL_DETAIL + eventID
}

func BuildEventGenresKey(eventTypeID int) string {
	return CACHE_KEY_EVENT_GENRES + fmt.Sprintf("%d", eventTypeID)
}

func BuildHostHallKey(hostID string) string {
	return CACHE_KEY_HOST_HALL + hostID
}

func BuildClientProfileKey(clientID string) string {
	return CACHE_KEY_CLIENT_PROFILE + clientID
}
