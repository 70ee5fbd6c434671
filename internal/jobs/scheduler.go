package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"festivaltickets/internal/shared/apperrors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Kind names a registered job handler.
type Kind string

const (
	KindArchiveEvent Kind = "archive_event"
)

const (
	dueKey     = "festival:jobs:due"
	payloadKey = "festival:jobs:payload"
	deadKey    = "festival:jobs:dead"
)

// claimScript leases a due job by moving its score to the lease deadline.
// A worker that dies before Complete or Retry leaves the job to come due
// again once the lease runs out.
//
// KEYS[1]=due set KEYS[2]=payload hash
// ARGV[1]=job id ARGV[2]=now (ms) ARGV[3]=lease deadline (ms)
var claimScript = redis.NewScript(`
local score = redis.call('ZSCORE', KEYS[1], ARGV[1])
if not score or tonumber(score) > tonumber(ARGV[2]) then
	return false
end
local body = redis.call('HGET', KEYS[2], ARGV[1])
if not body then
	redis.call('ZREM', KEYS[1], ARGV[1])
	return false
end
redis.call('ZADD', KEYS[1], 'XX', ARGV[3], ARGV[1])
return body
`)

// Job is one scheduled unit of background work.
type Job struct {
	ID       uuid.UUID         `json:"id"`
	Kind     Kind              `json:"kind"`
	Args     map[string]string `json:"args"`
	FireAt   time.Time         `json:"fire_at"`
	Attempts int               `json:"attempts"`
}

// Scheduler stores jobs until they are due.
type Scheduler interface {
	Schedule(ctx context.Context, kind Kind, args map[string]string, fireAt time.Time) (*Job, error)
	CancelMatching(ctx context.Context, kind Kind, match func(Job) bool) (int, error)
	Due(ctx context.Context, now time.Time, limit int) ([]string, error)
	Claim(ctx context.Context, jobID string, now time.Time, lease time.Duration) (*Job, error)
	Complete(ctx context.Context, jobID string) error
	Retry(ctx context.Context, job Job, fireAt time.Time) error
}

var (
	// ErrNotClaimed is returned by Claim when another worker holds the
	// lease, the job is not due yet or it was cancelled meanwhile.
	ErrNotClaimed = errors.New("job not claimed")

	// ErrNoMatchingJob is returned by CancelMatching when no stored job
	// matched. It is an apperrors.ErrCantDeleteTask.
	ErrNoMatchingJob = fmt.Errorf("%w: no matching job", apperrors.ErrCantDeleteTask)

	// ErrMalformedJob is returned by Claim for a body that does not decode.
	// The body is moved to the dead letter hash.
	ErrMalformedJob = errors.New("malformed job payload")
)

// RedisScheduler keeps job ids in a sorted set scored by fire time (unix ms)
// and the job bodies in a hash keyed by id.
type RedisScheduler struct {
	client redis.Cmdable
	newID  func() uuid.UUID
}

// NewRedisScheduler creates a scheduler over client.
func NewRedisScheduler(client redis.Cmdable) *RedisScheduler {
	return &RedisScheduler{client: client, newID: uuid.New}
}

func (s *RedisScheduler) Schedule(ctx context.Context, kind Kind, args map[string]string, fireAt time.Time) (*Job, error) {
	job := Job{
		ID:     s.newID(),
		Kind:   kind,
		Args:   args,
		FireAt: fireAt.UTC(),
	}
	if err := s.store(ctx, job); err != nil {
		return nil, fmt.Errorf("schedule %s: %w", kind, err)
	}
	return &job, nil
}

func (s *RedisScheduler) CancelMatching(ctx context.Context, kind Kind, match func(Job) bool) (int, error) {
	all, err := s.client.HGetAll(ctx, payloadKey).Result()
	if err != nil {
		return 0, fmt.Errorf("list jobs: %w", err)
	}

	var ids []interface{}
	var fields []string
	for id, raw := range all {
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			continue
		}
		if job.Kind == kind && match(job) {
			ids = append(ids, id)
			fields = append(fields, id)
		}
	}

	if len(ids) == 0 {
		return 0, ErrNoMatchingJob
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, dueKey, ids...)
		pipe.HDel(ctx, payloadKey, fields...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrCantDeleteTask, err)
	}
	return len(ids), nil
}

func (s *RedisScheduler) Due(ctx context.Context, now time.Time, limit int) ([]string, error) {
	ids, err := s.client.ZRangeByScore(ctx, dueKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("due jobs: %w", err)
	}
	return ids, nil
}

// Claim leases jobID until now+lease. Only one worker can hold a lease; the
// job comes due again if neither Complete nor Retry follows in time.
func (s *RedisScheduler) Claim(ctx context.Context, jobID string, now time.Time, lease time.Duration) (*Job, error) {
	raw, err := claimScript.Run(ctx, s.client,
		[]string{dueKey, payloadKey},
		jobID, now.UnixMilli(), now.Add(lease).UnixMilli(),
	).Text()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotClaimed
	}
	if err != nil {
		return nil, fmt.Errorf("claim job %s: %w", jobID, err)
	}

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		if derr := s.bury(ctx, jobID, raw); derr != nil {
			return nil, fmt.Errorf("bury job %s: %w", jobID, derr)
		}
		return nil, fmt.Errorf("%w %s: %v", ErrMalformedJob, jobID, err)
	}
	return &job, nil
}

// bury moves an undecodable body out of the live keys.
func (s *RedisScheduler) bury(ctx context.Context, jobID, raw string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, deadKey, jobID, raw)
		pipe.ZRem(ctx, dueKey, jobID)
		pipe.HDel(ctx, payloadKey, jobID)
		return nil
	})
	return err
}

func (s *RedisScheduler) Complete(ctx context.Context, jobID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, dueKey, jobID)
		pipe.HDel(ctx, payloadKey, jobID)
		return nil
	})
	return err
}

func (s *RedisScheduler) Retry(ctx context.Context, job Job, fireAt time.Time) error {
	job.FireAt = fireAt.UTC()
	return s.store(ctx, job)
}

func (s *RedisScheduler) store(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, payloadKey, job.ID.String(), body)
		pipe.ZAdd(ctx, dueKey, redis.Z{
			Score:  float64(job.FireAt.UnixMilli()),
			Member: job.ID.String(),
		})
		return nil
	})
	return err
}
