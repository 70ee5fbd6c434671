package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"festivaltickets/internal/shared/apperrors"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fireAt = time.Date(2026, 8, 1, 19, 0, 0, 0, time.UTC)
	jobID  = uuid.MustParse("5b0c7f1e-8b61-4a51-9d0e-3b8f2f4c1a10")
)

func setupTestScheduler() (*RedisScheduler, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	s := NewRedisScheduler(db)
	s.newID = func() uuid.UUID { return jobID }
	return s, mock
}

func encoded(t *testing.T, job Job) []byte {
	t.Helper()
	body, err := json.Marshal(job)
	require.NoError(t, err)
	return body
}

func TestRedisScheduler_Schedule(t *testing.T) {
	s, mock := setupTestScheduler()
	defer mock.ClearExpect()

	args := map[string]string{"event_id": "e1"}
	want := Job{ID: jobID, Kind: KindArchiveEvent, Args: args, FireAt: fireAt}

	mock.ExpectTxPipeline()
	mock.ExpectHSet(payloadKey, jobID.String(), encoded(t, want)).SetVal(1)
	mock.ExpectZAdd(dueKey, redis.Z{Score: float64(fireAt.UnixMilli()), Member: jobID.String()}).SetVal(1)
	mock.ExpectTxPipelineExec()

	job, err := s.Schedule(context.Background(), KindArchiveEvent, args, fireAt)

	require.NoError(t, err)
	assert.Equal(t, want, *job)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisScheduler_CancelMatching(t *testing.T) {
	s, mock := setupTestScheduler()
	defer mock.ClearExpect()

	other := uuid.New()
	keep := Job{ID: other, Kind: KindArchiveEvent, Args: map[string]string{"event_id": "e2"}, FireAt: fireAt}
	drop := Job{ID: jobID, Kind: KindArchiveEvent, Args: map[string]string{"event_id": "e1"}, FireAt: fireAt}

	mock.ExpectHGetAll(payloadKey).SetVal(map[string]string{
		other.String(): string(encoded(t, keep)),
		jobID.String(): string(encoded(t, drop)),
		"garbage":      "{not json",
	})
	mock.ExpectTxPipeline()
	mock.ExpectZRem(dueKey, jobID.String()).SetVal(1)
	mock.ExpectHDel(payloadKey, jobID.String()).SetVal(1)
	mock.ExpectTxPipelineExec()

	n, err := s.CancelMatching(context.Background(), KindArchiveEvent, func(j Job) bool {
		return j.Args["event_id"] == "e1"
	})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisScheduler_CancelMatching_NothingMatches(t *testing.T) {
	s, mock := setupTestScheduler()
	defer mock.ClearExpect()

	mock.ExpectHGetAll(payloadKey).SetVal(map[string]string{})

	n, err := s.CancelMatching(context.Background(), KindArchiveEvent, func(Job) bool { return true })

	assert.ErrorIs(t, err, apperrors.ErrCantDeleteTask)
	assert.ErrorIs(t, err, ErrNoMatchingJob)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisScheduler_CancelMatching_OtherKindIgnored(t *testing.T) {
	s, mock := setupTestScheduler()
	defer mock.ClearExpect()

	job := Job{ID: jobID, Kind: "send_reminder", Args: map[string]string{"event_id": "e1"}, FireAt: fireAt}
	mock.ExpectHGetAll(payloadKey).SetVal(map[string]string{jobID.String(): string(encoded(t, job))})

	_, err := s.CancelMatching(context.Background(), KindArchiveEvent, func(Job) bool { return true })

	assert.ErrorIs(t, err, apperrors.ErrCantDeleteTask)
}

func TestRedisScheduler_Due(t *testing.T) {
	s, mock := setupTestScheduler()
	defer mock.ClearExpect()

	now := fireAt.Add(time.Second)
	mock.ExpectZRangeByScore(dueKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   "1785610801000",
		Count: 10,
	}).SetVal([]string{jobID.String()})
	require.Equal(t, int64(1785610801000), now.UnixMilli())

	ids, err := s.Due(context.Background(), now, 10)

	require.NoError(t, err)
	assert.Equal(t, []string{jobID.String()}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisScheduler_Claim(t *testing.T) {
	now := fireAt.Add(time.Second)
	lease := 5 * time.Minute
	keys := []string{dueKey, payloadKey}
	args := []interface{}{jobID.String(), now.UnixMilli(), now.Add(lease).UnixMilli()}

	t.Run("winner leases the job", func(t *testing.T) {
		s, mock := setupTestScheduler()
		job := Job{ID: jobID, Kind: KindArchiveEvent, Args: map[string]string{"event_id": "e1"}, FireAt: fireAt}

		mock.ExpectEvalSha(claimScript.Hash(), keys, args...).SetVal(string(encoded(t, job)))

		got, err := s.Claim(context.Background(), jobID.String(), now, lease)

		require.NoError(t, err)
		assert.Equal(t, job, *got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("leased elsewhere or cancelled", func(t *testing.T) {
		s, mock := setupTestScheduler()
		mock.ExpectEvalSha(claimScript.Hash(), keys, args...).RedisNil()

		_, err := s.Claim(context.Background(), jobID.String(), now, lease)

		assert.ErrorIs(t, err, ErrNotClaimed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed body is moved to dead letters", func(t *testing.T) {
		s, mock := setupTestScheduler()
		mock.ExpectEvalSha(claimScript.Hash(), keys, args...).SetVal("{not json")
		mock.ExpectTxPipeline()
		mock.ExpectHSet(deadKey, jobID.String(), "{not json").SetVal(1)
		mock.ExpectZRem(dueKey, jobID.String()).SetVal(1)
		mock.ExpectHDel(payloadKey, jobID.String()).SetVal(1)
		mock.ExpectTxPipelineExec()

		_, err := s.Claim(context.Background(), jobID.String(), now, lease)

		assert.ErrorIs(t, err, ErrMalformedJob)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis error", func(t *testing.T) {
		s, mock := setupTestScheduler()
		mock.ExpectEvalSha(claimScript.Hash(), keys, args...).SetErr(errors.New("connection refused"))

		_, err := s.Claim(context.Background(), jobID.String(), now, lease)

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotClaimed)
	})
}

func TestRedisScheduler_Complete(t *testing.T) {
	s, mock := setupTestScheduler()
	defer mock.ClearExpect()

	mock.ExpectTxPipeline()
	mock.ExpectZRem(dueKey, jobID.String()).SetVal(1)
	mock.ExpectHDel(payloadKey, jobID.String()).SetVal(1)
	mock.ExpectTxPipelineExec()

	require.NoError(t, s.Complete(context.Background(), jobID.String()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisScheduler_Retry(t *testing.T) {
	s, mock := setupTestScheduler()
	defer mock.ClearExpect()

	next := fireAt.Add(time.Minute)
	job := Job{ID: jobID, Kind: KindArchiveEvent, FireAt: fireAt, Attempts: 2}
	stored := job
	stored.FireAt = next

	mock.ExpectTxPipeline()
	mock.ExpectHSet(payloadKey, jobID.String(), encoded(t, stored)).SetVal(0)
	mock.ExpectZAdd(dueKey, redis.Z{Score: float64(next.UnixMilli()), Member: jobID.String()}).SetVal(1)
	mock.ExpectTxPipelineExec()

	require.NoError(t, s.Retry(context.Background(), job, next))
	assert.NoError(t, mock.ExpectationsWereMet())
}
