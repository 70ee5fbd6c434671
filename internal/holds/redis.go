package holds

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const seatHoldKeyPrefix = "festival:hold:seat:"

// Lua script for atomic seat holding. The existing value is compared against
// the caller's clock so both store implementations agree on expiry.
const luaTryHold = `
-- KEYS[1] = seat hold key
-- ARGV[1] = hold value (holder|token|expires_ms)
-- ARGV[2] = expires_ms
-- ARGV[3] = now_ms

local current = redis.call("GET", KEYS[1])
if current then
    local expires = tonumber(string.match(current, "|(%d+)$"))
    if expires and expires > tonumber(ARGV[3]) then
        return {0, current}
    end
end

redis.call("SET", KEYS[1], ARGV[1])
redis.call("PEXPIREAT", KEYS[1], ARGV[2])
return {1, ARGV[1]}
`

// Lua script for releasing a hold only when the token matches
const luaReleaseOwned = `
-- KEYS[1] = seat hold key
-- ARGV[1] = token

local current = redis.call("GET", KEYS[1])
if not current then
    return 0
end
if string.find(current, "|" .. ARGV[1] .. "|", 1, true) then
    redis.call("DEL", KEYS[1])
    return 1
end
return -1
`

var (
	tryHoldScript      = redis.NewScript(luaTryHold)
	releaseOwnedScript = redis.NewScript(luaReleaseOwned)
)

// RedisStore keeps holds in Redis so that every API instance sees the same
// holds. Keys expire on their own, which makes Sweep a no-op.
type RedisStore struct {
	client   redis.Cmdable
	newToken func() string
}

// NewRedisStore creates a Redis-backed hold store
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{
		client:   client,
		newToken: newToken,
	}
}

func seatHoldKey(seatID uuid.UUID) string {
	return seatHoldKeyPrefix + seatID.String()
}

func encodeHold(h Hold) string {
	return h.HolderID.String() + "|" + h.Token + "|" + strconv.FormatInt(h.ExpiresAt.UnixMilli(), 10)
}

func decodeHold(seatID uuid.UUID, value string) (Hold, error) {
	parts := strings.Split(value, "|")
	if len(parts) != 3 {
		return Hold{}, fmt.Errorf("malformed hold value %q", value)
	}
	holderID, err := uuid.Parse(parts[0])
	if err != nil {
		return Hold{}, fmt.Errorf("malformed hold holder: %w", err)
	}
	expiresMs, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Hold{}, fmt.Errorf("malformed hold expiry: %w", err)
	}
	return Hold{
		SeatID:    seatID,
		HolderID:  holderID,
		Token:     parts[1],
		ExpiresAt: time.UnixMilli(expiresMs).UTC(),
	}, nil
}

func (s *RedisStore) TryHold(ctx context.Context, seatID, holderID uuid.UUID, now time.Time, ttl time.Duration) (*Hold, error) {
	hold := Hold{
		SeatID:    seatID,
		HolderID:  holderID,
		Token:     s.newToken(),
		ExpiresAt: now.Add(ttl).UTC().Truncate(time.Millisecond),
	}

	result, err := tryHoldScript.Run(ctx, s.client, []string{seatHoldKey(seatID)},
		encodeHold(hold),
		hold.ExpiresAt.UnixMilli(),
		now.UnixMilli(),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to execute atomic seat hold: %w", err)
	}

	resultArray, ok := result.([]interface{})
	if !ok || len(resultArray) != 2 {
		return nil, fmt.Errorf("unexpected result format from Lua script")
	}

	success, ok := resultArray[0].(int64)
	if !ok {
		return nil, fmt.Errorf("invalid success flag in Lua script result")
	}
	if success == 0 {
		return nil, ErrAlreadyHeld
	}

	return &hold, nil
}

func (s *RedisStore) Get(ctx context.Context, seatID uuid.UUID, now time.Time) (*Hold, error) {
	value, err := s.client.Get(ctx, seatHoldKey(seatID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrHoldNotFound
		}
		return nil, fmt.Errorf("failed to read hold: %w", err)
	}

	hold, err := decodeHold(seatID, value)
	if err != nil {
		return nil, err
	}
	if !hold.Live(now) {
		return nil, ErrHoldNotFound
	}
	return &hold, nil
}

func (s *RedisStore) IsHeld(ctx context.Context, seatID uuid.UUID, now time.Time) (bool, error) {
	_, err := s.Get(ctx, seatID, now)
	if errors.Is(err, ErrHoldNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisStore) HeldAmong(ctx context.Context, seatIDs []uuid.UUID, now time.Time) (map[uuid.UUID]Hold, error) {
	held := make(map[uuid.UUID]Hold)
	if len(seatIDs) == 0 {
		return held, nil
	}

	keys := make([]string, len(seatIDs))
	for i, id := range seatIDs {
		keys[i] = seatHoldKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read holds: %w", err)
	}

	for i, raw := range values {
		value, ok := raw.(string)
		if !ok {
			continue
		}
		hold, err := decodeHold(seatIDs[i], value)
		if err != nil {
			continue
		}
		if hold.Live(now) {
			held[seatIDs[i]] = hold
		}
	}
	return held, nil
}

func (s *RedisStore) Release(ctx context.Context, seatID uuid.UUID) error {
	if err := s.client.Del(ctx, seatHoldKey(seatID)).Err(); err != nil {
		return fmt.Errorf("failed to release hold: %w", err)
	}
	return nil
}

func (s *RedisStore) ReleaseOwned(ctx context.Context, seatID uuid.UUID, token string) error {
	result, err := releaseOwnedScript.Run(ctx, s.client, []string{seatHoldKey(seatID)}, token).Int64()
	if err != nil {
		return fmt.Errorf("failed to execute atomic hold release: %w", err)
	}

	switch result {
	case 1:
		return nil
	case 0:
		return ErrHoldNotFound
	default:
		return ErrTokenMismatch
	}
}

// Sweep is a no-op: Redis expires hold keys at their PEXPIREAT deadline.
func (s *RedisStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

// PreloadScripts loads the Lua scripts so holds go out as EVALSHA from the
// first request. Script.Run falls back to EVAL after a SCRIPT FLUSH.
func (s *RedisStore) PreloadScripts(ctx context.Context) error {
	if err := tryHoldScript.Load(ctx, s.client).Err(); err != nil {
		return fmt.Errorf("failed to load seat hold script: %w", err)
	}
	if err := releaseOwnedScript.Load(ctx, s.client).Err(); err != nil {
		return fmt.Errorf("failed to load hold release script: %w", err)
	}
	return nil
}
