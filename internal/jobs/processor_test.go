package jobs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"festivaltickets/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Schedule(ctx context.Context, kind Kind, args map[string]string, at time.Time) (*Job, error) {
	a := m.Called(ctx, kind, args, at)
	if a.Get(0) == nil {
		return nil, a.Error(1)
	}
	return a.Get(0).(*Job), a.Error(1)
}

func (m *MockScheduler) CancelMatching(ctx context.Context, kind Kind, match func(Job) bool) (int, error) {
	a := m.Called(ctx, kind, match)
	return a.Int(0), a.Error(1)
}

func (m *MockScheduler) Due(ctx context.Context, now time.Time, limit int) ([]string, error) {
	a := m.Called(ctx, now, limit)
	if a.Get(0) == nil {
		return nil, a.Error(1)
	}
	return a.Get(0).([]string), a.Error(1)
}

func (m *MockScheduler) Claim(ctx context.Context, id string, at time.Time, lease time.Duration) (*Job, error) {
	a := m.Called(ctx, id, at, lease)
	if a.Get(0) == nil {
		return nil, a.Error(1)
	}
	return a.Get(0).(*Job), a.Error(1)
}

func (m *MockScheduler) Complete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockScheduler) Retry(ctx context.Context, job Job, at time.Time) error {
	return m.Called(ctx, job, at).Error(0)
}

var now = time.Date(2026, 8, 1, 19, 0, 5, 0, time.UTC)

func newTestProcessor(s Scheduler) *Processor {
	log := logger.NewWithWriter(&bytes.Buffer{}, slog.LevelDebug, true)
	p := NewProcessor(s, ProcessorConfig{
		PollInterval: time.Millisecond,
		RetryDelay:   time.Minute,
		MaxAttempts:  3,
		BatchSize:    10,
		Lease:        2 * time.Minute,
	}, log, nil)
	p.now = func() time.Time { return now }
	return p
}

func TestProcessor_RunDue_Success(t *testing.T) {
	s := new(MockScheduler)
	job := &Job{ID: uuid.New(), Kind: KindArchiveEvent, Args: map[string]string{"event_id": "e1"}}

	s.On("Due", mock.Anything, now, 10).Return([]string{job.ID.String()}, nil)
	s.On("Claim", mock.Anything, job.ID.String(), now, 2*time.Minute).Return(job, nil)
	s.On("Complete", mock.Anything, job.ID.String()).Return(nil)

	var got []string
	p := newTestProcessor(s)
	p.Register(KindArchiveEvent, func(ctx context.Context, j Job) error {
		got = append(got, j.Args["event_id"])
		return nil
	})

	assert.Equal(t, 1, p.RunDue(context.Background()))
	assert.Equal(t, []string{"e1"}, got)
	s.AssertExpectations(t)
}

func TestProcessor_RunDue_SkipsLostClaims(t *testing.T) {
	s := new(MockScheduler)
	s.On("Due", mock.Anything, now, 10).Return([]string{"a", "b"}, nil)
	s.On("Claim", mock.Anything, "a", now, 2*time.Minute).Return(nil, ErrNotClaimed)
	s.On("Claim", mock.Anything, "b", now, 2*time.Minute).Return(nil, errors.New("timeout"))

	p := newTestProcessor(s)
	p.Register(KindArchiveEvent, func(context.Context, Job) error {
		t.Fatal("handler must not run")
		return nil
	})

	assert.Zero(t, p.RunDue(context.Background()))
	s.AssertExpectations(t)
}

func TestProcessor_RunDue_FailureRetries(t *testing.T) {
	s := new(MockScheduler)
	job := &Job{ID: uuid.New(), Kind: KindArchiveEvent, Attempts: 0}

	retried := *job
	retried.Attempts = 1

	s.On("Due", mock.Anything, now, 10).Return([]string{job.ID.String()}, nil)
	s.On("Claim", mock.Anything, job.ID.String(), now, 2*time.Minute).Return(job, nil)
	s.On("Retry", mock.Anything, retried, now.Add(time.Minute)).Return(nil)

	p := newTestProcessor(s)
	p.Register(KindArchiveEvent, func(context.Context, Job) error { return errors.New("db down") })

	assert.Zero(t, p.RunDue(context.Background()))
	s.AssertExpectations(t)
	s.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestProcessor_RunDue_GivesUpAfterMaxAttempts(t *testing.T) {
	s := new(MockScheduler)
	job := &Job{ID: uuid.New(), Kind: KindArchiveEvent, Attempts: 2}

	s.On("Due", mock.Anything, now, 10).Return([]string{job.ID.String()}, nil)
	s.On("Claim", mock.Anything, job.ID.String(), now, 2*time.Minute).Return(job, nil)
	s.On("Complete", mock.Anything, job.ID.String()).Return(nil)

	p := newTestProcessor(s)
	p.Register(KindArchiveEvent, func(context.Context, Job) error { return errors.New("still down") })

	p.RunDue(context.Background())

	s.AssertExpectations(t)
	s.AssertNotCalled(t, "Retry", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessor_RunDue_UnknownKind(t *testing.T) {
	s := new(MockScheduler)
	job := &Job{ID: uuid.New(), Kind: "unknown"}

	s.On("Due", mock.Anything, now, 10).Return([]string{job.ID.String()}, nil)
	s.On("Claim", mock.Anything, job.ID.String(), now, 2*time.Minute).Return(job, nil)
	s.On("Complete", mock.Anything, job.ID.String()).Return(nil)

	p := newTestProcessor(s)

	assert.Zero(t, p.RunDue(context.Background()))
	s.AssertExpectations(t)
}

func TestProcessor_DueError(t *testing.T) {
	s := new(MockScheduler)
	s.On("Due", mock.Anything, now, 10).Return(nil, errors.New("connection refused"))

	p := newTestProcessor(s)

	assert.Zero(t, p.RunDue(context.Background()))
}

func TestProcessor_StartStop(t *testing.T) {
	s := new(MockScheduler)
	s.On("Due", mock.Anything, mock.Anything, 10).Return([]string{}, nil).Maybe()

	p := newTestProcessor(s)
	go p.Start(context.Background())
	time.Sleep(10 * time.Millisecond)
	p.Stop()

	select {
	case <-p.doneCh:
	default:
		require.Fail(t, "processor loop did not exit")
	}
}

// leasingScheduler keeps jobs in memory with the same claim rules as
// RedisScheduler: a claim pushes the job's due time to the lease deadline.
type leasingScheduler struct {
	Scheduler
	due  map[string]time.Time
	jobs map[string]Job
}

func newLeasingScheduler(jobs ...Job) *leasingScheduler {
	s := &leasingScheduler{due: map[string]time.Time{}, jobs: map[string]Job{}}
	for _, j := range jobs {
		s.due[j.ID.String()] = j.FireAt
		s.jobs[j.ID.String()] = j
	}
	return s
}

func (s *leasingScheduler) Due(_ context.Context, at time.Time, _ int) ([]string, error) {
	var ids []string
	for id, when := range s.due {
		if !when.After(at) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *leasingScheduler) Claim(_ context.Context, id string, at time.Time, lease time.Duration) (*Job, error) {
	when, ok := s.due[id]
	if !ok || when.After(at) {
		return nil, ErrNotClaimed
	}
	s.due[id] = at.Add(lease)
	job := s.jobs[id]
	return &job, nil
}

func (s *leasingScheduler) Complete(_ context.Context, id string) error {
	delete(s.due, id)
	delete(s.jobs, id)
	return nil
}

func TestProcessor_AbandonedClaimComesDueAgain(t *testing.T) {
	job := Job{ID: uuid.New(), Kind: KindArchiveEvent, Args: map[string]string{"event_id": "e1"}, FireAt: now}
	s := newLeasingScheduler(job)

	// A worker claims the job and dies before completing it
	_, err := s.Claim(context.Background(), job.ID.String(), now, 2*time.Minute)
	require.NoError(t, err)

	runs := 0
	p := newTestProcessor(s)
	p.Register(KindArchiveEvent, func(context.Context, Job) error {
		runs++
		return nil
	})

	p.now = func() time.Time { return now.Add(time.Minute) }
	assert.Zero(t, p.RunDue(context.Background()), "lease still held")

	p.now = func() time.Time { return now.Add(2 * time.Minute) }
	assert.Equal(t, 1, p.RunDue(context.Background()))
	assert.Equal(t, 1, runs)
	assert.Empty(t, s.jobs)
}
