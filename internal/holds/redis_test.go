package holds

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedisStore() (*RedisStore, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db)
	store.newToken = func() string { return "token-1" }
	return store, mock
}

func TestRedisStore_TryHold_Success(t *testing.T) {
	store, mock := setupTestRedisStore()
	defer mock.ClearExpect()

	seat, holder := uuid.New(), uuid.New()
	expires := t0.Add(ttl)
	value := holder.String() + "|token-1|" + "1782929100000"
	require.Equal(t, int64(1782929100000), expires.UnixMilli())

	mock.ExpectEvalSha(tryHoldScript.Hash(), []string{seatHoldKey(seat)}, value, expires.UnixMilli(), t0.UnixMilli()).
		SetVal([]interface{}{int64(1), value})

	hold, err := store.TryHold(context.Background(), seat, holder, t0, ttl)

	require.NoError(t, err)
	assert.Equal(t, "token-1", hold.Token)
	assert.True(t, hold.ExpiresAt.Equal(expires))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_TryHold_AlreadyHeld(t *testing.T) {
	store, mock := setupTestRedisStore()
	defer mock.ClearExpect()

	seat, holder := uuid.New(), uuid.New()
	hold := Hold{SeatID: seat, HolderID: holder, Token: "token-1", ExpiresAt: t0.Add(ttl)}

	mock.ExpectEvalSha(tryHoldScript.Hash(), []string{seatHoldKey(seat)}, encodeHold(hold), hold.ExpiresAt.UnixMilli(), t0.UnixMilli()).
		SetVal([]interface{}{int64(0), "other|token-0|1782929000000"})

	_, err := store.TryHold(context.Background(), seat, holder, t0, ttl)

	assert.ErrorIs(t, err, ErrAlreadyHeld)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_TryHold_RedisError(t *testing.T) {
	store, mock := setupTestRedisStore()
	defer mock.ClearExpect()

	seat, holder := uuid.New(), uuid.New()
	hold := Hold{SeatID: seat, HolderID: holder, Token: "token-1", ExpiresAt: t0.Add(ttl)}

	mock.ExpectEvalSha(tryHoldScript.Hash(), []string{seatHoldKey(seat)}, encodeHold(hold), hold.ExpiresAt.UnixMilli(), t0.UnixMilli()).
		SetErr(errors.New("connection refused"))

	_, err := store.TryHold(context.Background(), seat, holder, t0, ttl)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyHeld)
}

func TestRedisStore_Get(t *testing.T) {
	store, mock := setupTestRedisStore()
	defer mock.ClearExpect()

	seat, holder := uuid.New(), uuid.New()
	value := encodeHold(Hold{HolderID: holder, Token: "token-1", ExpiresAt: t0.Add(ttl)})

	t.Run("live hold", func(t *testing.T) {
		mock.ExpectGet(seatHoldKey(seat)).SetVal(value)

		hold, err := store.Get(context.Background(), seat, t0.Add(4*time.Minute+59*time.Second))

		require.NoError(t, err)
		assert.Equal(t, holder, hold.HolderID)
		assert.Equal(t, seat, hold.SeatID)
	})

	t.Run("expired on the caller clock", func(t *testing.T) {
		mock.ExpectGet(seatHoldKey(seat)).SetVal(value)

		_, err := store.Get(context.Background(), seat, t0.Add(5*time.Minute+time.Second))

		assert.ErrorIs(t, err, ErrHoldNotFound)
	})

	t.Run("missing key", func(t *testing.T) {
		mock.ExpectGet(seatHoldKey(seat)).RedisNil()

		held, err := store.IsHeld(context.Background(), seat, t0)

		require.NoError(t, err)
		assert.False(t, held)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_HeldAmong(t *testing.T) {
	store, mock := setupTestRedisStore()
	defer mock.ClearExpect()

	live, stale, free := uuid.New(), uuid.New(), uuid.New()
	liveValue := encodeHold(Hold{HolderID: uuid.New(), Token: "a", ExpiresAt: t0.Add(time.Minute)})
	staleValue := encodeHold(Hold{HolderID: uuid.New(), Token: "b", ExpiresAt: t0.Add(-time.Minute)})

	mock.ExpectMGet(seatHoldKey(live), seatHoldKey(stale), seatHoldKey(free)).
		SetVal([]interface{}{liveValue, staleValue, nil})

	held, err := store.HeldAmong(context.Background(), []uuid.UUID{live, stale, free}, t0)

	require.NoError(t, err)
	assert.Len(t, held, 1)
	assert.Equal(t, "a", held[live].Token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_ReleaseOwned(t *testing.T) {
	store, mock := setupTestRedisStore()
	defer mock.ClearExpect()
	seat := uuid.New()

	tests := []struct {
		name   string
		result int64
		want   error
	}{
		{"released", 1, nil},
		{"absent", 0, ErrHoldNotFound},
		{"someone else's hold", -1, ErrTokenMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock.ExpectEvalSha(releaseOwnedScript.Hash(), []string{seatHoldKey(seat)}, "token-1").SetVal(tt.result)

			err := store.ReleaseOwned(context.Background(), seat, "token-1")

			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Release(t *testing.T) {
	store, mock := setupTestRedisStore()
	defer mock.ClearExpect()
	seat := uuid.New()

	mock.ExpectDel(seatHoldKey(seat)).SetVal(1)

	assert.NoError(t, store.Release(context.Background(), seat))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_PreloadScripts(t *testing.T) {
	store, mock := setupTestRedisStore()
	defer mock.ClearExpect()

	mock.ExpectScriptLoad(luaTryHold).SetVal(tryHoldScript.Hash())
	mock.ExpectScriptLoad(luaReleaseOwned).SetVal(releaseOwnedScript.Hash())

	require.NoError(t, store.PreloadScripts(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_PreloadScripts_Error(t *testing.T) {
	store, mock := setupTestRedisStore()
	defer mock.ClearExpect()

	mock.ExpectScriptLoad(luaTryHold).SetErr(errors.New("NOPERM"))

	assert.Error(t, store.PreloadScripts(context.Background()))
}

func TestDecodeHold_Malformed(t *testing.T) {
	_, err := decodeHold(uuid.New(), "garbage")
	assert.Error(t, err)

	_, err = decodeHold(uuid.New(), "not-a-uuid|tok|123")
	assert.Error(t, err)
}
