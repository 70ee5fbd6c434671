package holds

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 7, 1, 18, 0, 0, 0, time.UTC)

const ttl = 5 * time.Minute

func TestMemoryStore_SecondHoldIsRejected(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	seat := uuid.New()

	first, err := store.TryHold(ctx, seat, uuid.New(), t0, ttl)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(ttl), first.ExpiresAt)
	assert.NotEmpty(t, first.Token)

	_, err = store.TryHold(ctx, seat, uuid.New(), t0.Add(time.Minute), ttl)
	assert.ErrorIs(t, err, ErrAlreadyHeld)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	seat := uuid.New()

	_, err := store.TryHold(ctx, seat, uuid.New(), t0, ttl)
	require.NoError(t, err)

	held, err := store.IsHeld(ctx, seat, t0.Add(4*time.Minute+59*time.Second))
	require.NoError(t, err)
	assert.True(t, held)

	held, err = store.IsHeld(ctx, seat, t0.Add(ttl))
	require.NoError(t, err)
	assert.False(t, held, "a hold is not live at exactly its expiry")

	held, err = store.IsHeld(ctx, seat, t0.Add(5*time.Minute+time.Second))
	require.NoError(t, err)
	assert.False(t, held)
	assert.Equal(t, 0, store.Len(), "stale entry is evicted on lookup")
}

func TestMemoryStore_HoldAfterExpiry(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	seat := uuid.New()
	second := uuid.New()

	_, err := store.TryHold(ctx, seat, uuid.New(), t0, ttl)
	require.NoError(t, err)

	hold, err := store.TryHold(ctx, seat, second, t0.Add(6*time.Minute), ttl)
	require.NoError(t, err)
	assert.Equal(t, second, hold.HolderID)
}

func TestMemoryStore_Release(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	seat := uuid.New()

	_, err := store.TryHold(ctx, seat, uuid.New(), t0, ttl)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, seat))

	held, err := store.IsHeld(ctx, seat, t0)
	require.NoError(t, err)
	assert.False(t, held)

	assert.NoError(t, store.Release(ctx, uuid.New()), "releasing an absent seat is not an error")
}

func TestMemoryStore_ReleaseOwned(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	seat := uuid.New()

	hold, err := store.TryHold(ctx, seat, uuid.New(), t0, ttl)
	require.NoError(t, err)

	assert.ErrorIs(t, store.ReleaseOwned(ctx, seat, "not-the-token"), ErrTokenMismatch)
	assert.NoError(t, store.ReleaseOwned(ctx, seat, hold.Token))
	assert.ErrorIs(t, store.ReleaseOwned(ctx, seat, hold.Token), ErrHoldNotFound)
}

func TestMemoryStore_Get(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	seat := uuid.New()
	holder := uuid.New()

	_, err := store.Get(ctx, seat, t0)
	assert.ErrorIs(t, err, ErrHoldNotFound)

	created, err := store.TryHold(ctx, seat, holder, t0, ttl)
	require.NoError(t, err)

	got, err := store.Get(ctx, seat, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, *created, *got)
}

func TestMemoryStore_HeldAmong(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	live, stale, free := uuid.New(), uuid.New(), uuid.New()

	_, err := store.TryHold(ctx, live, uuid.New(), t0, ttl)
	require.NoError(t, err)
	_, err = store.TryHold(ctx, stale, uuid.New(), t0.Add(-10*time.Minute), ttl)
	require.NoError(t, err)

	held, err := store.HeldAmong(ctx, []uuid.UUID{live, stale, free}, t0)
	require.NoError(t, err)
	assert.Len(t, held, 1)
	assert.Contains(t, held, live)
}

func TestMemoryStore_Sweep(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.TryHold(ctx, uuid.New(), uuid.New(), t0, ttl)
		require.NoError(t, err)
	}
	_, err := store.TryHold(ctx, uuid.New(), uuid.New(), t0.Add(4*time.Minute), ttl)
	require.NoError(t, err)

	removed, err := store.Sweep(ctx, t0.Add(6*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_Capacity(t *testing.T) {
	store := NewMemoryStore(2)
	ctx := context.Background()

	_, err := store.TryHold(ctx, uuid.New(), uuid.New(), t0, ttl)
	require.NoError(t, err)
	_, err = store.TryHold(ctx, uuid.New(), uuid.New(), t0, ttl)
	require.NoError(t, err)

	_, err = store.TryHold(ctx, uuid.New(), uuid.New(), t0.Add(time.Minute), ttl)
	assert.ErrorIs(t, err, ErrStoreFull)

	_, err = store.TryHold(ctx, uuid.New(), uuid.New(), t0.Add(ttl+time.Second), ttl)
	assert.NoError(t, err, "expired entries are evicted to make room")
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_ConcurrentHoldsHaveOneWinner(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	seat := uuid.New()

	var wins, conflicts int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.TryHold(ctx, seat, uuid.New(), t0, ttl)
			if err == nil {
				atomic.AddInt32(&wins, 1)
			} else if err == ErrAlreadyHeld {
				atomic.AddInt32(&conflicts, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, int32(63), conflicts)
}
