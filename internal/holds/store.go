// Package holds keeps short-lived seat reservations.
//
// A hold is the single source of truth for the HOLD state of a ticket: it is
// never written to the durable store. A hold is live while now < ExpiresAt;
// expired holds are treated as absent everywhere.
package holds

import (
	"context"
	"errors"
	"time"

	"festivaltickets/internal/shared/apperrors"

	"github.com/google/uuid"
)

var (
	ErrAlreadyHeld   = apperrors.ErrSeatAlreadyHeld
	ErrTokenMismatch = apperrors.ErrHoldTokenMismatch
	ErrHoldNotFound  = errors.New("hold not found")
	ErrStoreFull     = apperrors.ErrHoldStoreFull
)

// Hold is a time-limited reservation of one seat by one client.
type Hold struct {
	SeatID    uuid.UUID `json:"seat_id"`
	HolderID  uuid.UUID `json:"holder_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Live reports whether the hold is still valid at now.
func (h Hold) Live(now time.Time) bool {
	return h.ExpiresAt.After(now)
}

// Store is implemented by MemoryStore and RedisStore. TryHold is an atomic
// compare-and-set: of any number of concurrent callers for one seat at most
// one succeeds until the hold expires or is released.
type Store interface {
	TryHold(ctx context.Context, seatID, holderID uuid.UUID, now time.Time, ttl time.Duration) (*Hold, error)
	Get(ctx context.Context, seatID uuid.UUID, now time.Time) (*Hold, error)
	IsHeld(ctx context.Context, seatID uuid.UUID, now time.Time) (bool, error)
	HeldAmong(ctx context.Context, seatIDs []uuid.UUID, now time.Time) (map[uuid.UUID]Hold, error)
	Release(ctx context.Context, seatID uuid.UUID) error
	ReleaseOwned(ctx context.Context, seatID uuid.UUID, token string) error
	Sweep(ctx context.Context, now time.Time) (int, error)
}

func newToken() string {
	return uuid.NewString()
}

// Overlay returns a copy of items where mark has been applied to every item
// whose seat has a live hold. The source slice is not modified.
func Overlay[T any](ctx context.Context, store Store, items []T, now time.Time, seatID func(T) uuid.UUID, mark func(*T, Hold)) ([]T, error) {
	out := make([]T, len(items))
	copy(out, items)
	if len(items) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = seatID(item)
	}

	held, err := store.HeldAmong(ctx, ids, now)
	if err != nil {
		return nil, err
	}

	for i := range out {
		if h, ok := held[ids[i]]; ok {
			mark(&out[i], h)
		}
	}
	return out, nil
}
