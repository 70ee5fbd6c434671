package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"festivaltickets/internal/hosts"
	"festivaltickets/internal/jobs"
	"festivaltickets/internal/notifications"
	"festivaltickets/internal/shared/apperrors"
	"festivaltickets/internal/shared/constants"
	"festivaltickets/internal/tickets"
	"festivaltickets/pkg/cache"
	"festivaltickets/pkg/logger"
	"festivaltickets/pkg/metrics"
	"festivaltickets/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ArchiveArgEventID is the job argument naming the event to archive
const ArchiveArgEventID = "event_id"

type Service interface {
	// Service dependency injection
	SetCacheService(cacheService cache.Service)
	SetPublisher(publisher notifications.Publisher)
	SetMetrics(m *metrics.Metrics)
	SetScheduler(scheduler jobs.Scheduler)

	// Queries
	ListEvents(ctx context.Context, filter EventFilter, page pagination.Params) (*pagination.Page[EventResponse], error)
	GetEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	GetEventWithDetails(ctx context.Context, id uuid.UUID) (*EventWithDetailsResponse, error)
	GetEventTypes(ctx context.Context) ([]EventTypeResponse, error)
	GetGenres(ctx context.Context, eventTypeID uint) ([]GenreResponse, error)

	// Lifecycle
	PlanEvent(ctx context.Context, in PlanEventInput) (*PlannedEventResponse, error)
	ArchiveEvent(ctx context.Context, id uuid.UUID) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error

	// HandleArchiveJob is the background handler for jobs.KindArchiveEvent
	HandleArchiveJob(ctx context.Context, job jobs.Job) error
}

// HallProvider resolves the hall geometry of a host
type HallProvider interface {
	GetHall(ctx context.Context, hostID uuid.UUID) (*hosts.HallDetail, error)
}

// HoldReleaser drops live seat holds of an event
type HoldReleaser interface {
	ReleaseEventHolds(ctx context.Context, eventID uuid.UUID) error
}

type service struct {
	repo         Repository
	ticketsRepo  tickets.Repository
	halls        HallProvider
	holds        HoldReleaser
	cacheService cache.Service
	scheduler    jobs.Scheduler
	publisher    notifications.Publisher
	metrics      *metrics.Metrics
	log          *logger.Logger
}

func NewService(repo Repository, ticketsRepo tickets.Repository, halls HallProvider, holds HoldReleaser, log *logger.Logger) Service {
	return &service{
		repo:        repo,
		ticketsRepo: ticketsRepo,
		halls:       halls,
		holds:       holds,
		publisher:   notifications.NoopPublisher{},
		log:         log.WithComponent("events"),
	}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) SetPublisher(publisher notifications.Publisher) {
	if publisher != nil {
		s.publisher = publisher
	}
}

func (s *service) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

func (s *service) SetScheduler(scheduler jobs.Scheduler) {
	s.scheduler = scheduler
}

func (s *service) invalidateEventCache(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_EVENT_ALL); err != nil {
		s.log.Warn("Failed to invalidate event cache", slog.Any("error", err))
	}
}

//  QUERIES

func (s *service) ListEvents(ctx context.Context, filter EventFilter, page pagination.Params) (*pagination.Page[EventResponse], error) {
	events, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	if len(events) == 0 {
		return nil, apperrors.ErrQueryEmptyResult
	}

	items := make([]EventResponse, len(events))
	for i, e := range events {
		items[i] = toEventResponse(e)
	}
	result := pagination.FromQuery(items, total, page)
	return &result, nil
}

func (s *service) GetEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	return cache.Fetch(ctx, s.cacheService, constants.BuildEventDetailKey(id.String()), constants.TTL_EVENT_DETAIL,
		func() (*EventResponse, error) {
			event, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			resp := toEventResponse(*event)
			return &resp, nil
		},
	)
}

func (s *service) GetEventWithDetails(ctx context.Context, id uuid.UUID) (*EventWithDetailsResponse, error) {
	return cache.Fetch(ctx, s.cacheService, constants.BuildEventFullDetailKey(id.String()), constants.TTL_EVENT_DETAIL,
		func() (*EventWithDetailsResponse, error) {
			event, err := s.repo.GetWithDetails(ctx, id)
			if err != nil {
				return nil, err
			}
			resp := toEventWithDetailsResponse(*event)
			return &resp, nil
		},
	)
}

func (s *service) GetEventTypes(ctx context.Context) ([]EventTypeResponse, error) {
	return cache.Fetch(ctx, s.cacheService, constants.CACHE_KEY_EVENT_TYPES, constants.TTL_EVENT_TYPES,
		func() ([]EventTypeResponse, error) {
			types, err := s.repo.GetEventTypes(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to get event types: %w", err)
			}
			if len(types) == 0 {
				return nil, apperrors.ErrQueryEmptyResult
			}
			out := make([]EventTypeResponse, len(types))
			for i, t := range types {
				out[i] = EventTypeResponse{ID: t.ID, Name: t.Name}
			}
			return out, nil
		},
	)
}

func (s *service) GetGenres(ctx context.Context, eventTypeID uint) ([]GenreResponse, error) {
	return cache.Fetch(ctx, s.cacheService, constants.BuildEventGenresKey(int(eventTypeID)), constants.TTL_EVENT_TYPES,
		func() ([]GenreResponse, error) {
			exists, err := s.repo.EventTypeExists(ctx, eventTypeID)
			if err != nil {
				return nil, fmt.Errorf("failed to check event type: %w", err)
			}
			if !exists {
				return nil, apperrors.ErrRelatedEntityNotFound
			}

			genres, err := s.repo.GetGenres(ctx, eventTypeID)
			if err != nil {
				return nil, fmt.Errorf("failed to get genres: %w", err)
			}
			if len(genres) == 0 {
				return nil, apperrors.ErrQueryEmptyResult
			}
			out := make([]GenreResponse, len(genres))
			for i, g := range genres {
				out[i] = GenreResponse{ID: g.ID, Name: g.Name}
			}
			return out, nil
		},
	)
}

//  LIFECYCLE

func validatePlan(in PlanEventInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("title is required: %w", apperrors.ErrInvalidInput)
	}
	if in.Duration < 1 {
		return fmt.Errorf("duration must be positive: %w", apperrors.ErrInvalidInput)
	}
	if in.StartDate.IsZero() {
		return fmt.Errorf("start date is required: %w", apperrors.ErrInvalidInput)
	}
	if len(in.TicketTypes) == 0 {
		return fmt.Errorf("at least one ticket type is required: %w", apperrors.ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(in.TicketTypes))
	for _, tt := range in.TicketTypes {
		if tt.Name == "" {
			return fmt.Errorf("ticket type name is required: %w", apperrors.ErrInvalidInput)
		}
		if _, dup := seen[tt.Name]; dup {
			return fmt.Errorf("duplicate ticket type %q: %w", tt.Name, apperrors.ErrInvalidInput)
		}
		if !tt.Price.IsPositive() {
			return fmt.Errorf("ticket type %q price must be positive: %w", tt.Name, apperrors.ErrInvalidInput)
		}
		seen[tt.Name] = struct{}{}
	}
	return nil
}

// PlanEvent creates the event, its ticket types and every ticket in one
// transaction and schedules its archiving at the start date. Replaying an
// idempotency key returns the event planned by the first request.
func (s *service) PlanEvent(ctx context.Context, in PlanEventInput) (*PlannedEventResponse, error) {
	if err := validatePlan(in); err != nil {
		return nil, err
	}

	if in.IdempotencyKey != "" {
		if replay, err := s.replay(ctx, in.IdempotencyKey); replay != nil || err != nil {
			return replay, err
		}
	}

	hall, err := s.halls.GetHall(ctx, in.HostID)
	if err != nil {
		if errors.Is(err, apperrors.ErrEntityNotFound) {
			return nil, fmt.Errorf("host hall: %w", apperrors.ErrRelatedEntityNotFound)
		}
		return nil, fmt.Errorf("failed to get host hall: %w", err)
	}

	genreExists, err := s.repo.GenreExists(ctx, in.GenreID)
	if err != nil {
		return nil, fmt.Errorf("failed to check genre: %w", err)
	}
	if !genreExists {
		return nil, fmt.Errorf("genre %d: %w", in.GenreID, apperrors.ErrRelatedEntityNotFound)
	}

	eventID := uuid.New()
	types := tickets.NewTicketTypes(eventID, in.TicketTypes)
	allocated, err := tickets.BuildTickets(hall.Geometry(), types, in.RowMapping)
	if err != nil {
		return nil, err
	}

	event := &Event{
		ID:        eventID,
		Title:     in.Title,
		Status:    StatusPlanned,
		StartDate: in.StartDate.UTC(),
		GenreID:   in.GenreID,
		HostID:    in.HostID,
		Details: &EventDetails{
			EventID:     eventID,
			Description: in.Description,
			Duration:    in.Duration,
		},
	}
	if in.IdempotencyKey != "" {
		key := in.IdempotencyKey
		event.IdempotencyKey = &key
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, event); err != nil {
			return err
		}
		return s.ticketsRepo.WithTx(tx).CreateForEvent(ctx, eventID, types, allocated)
	})
	if err != nil {
		// A concurrent request with the same key may have committed first
		if in.IdempotencyKey != "" {
			if replay, rerr := s.replay(ctx, in.IdempotencyKey); replay != nil && rerr == nil {
				return replay, nil
			}
		}
		return nil, fmt.Errorf("failed to plan event: %w", err)
	}

	s.scheduleArchive(ctx, event)
	s.invalidateEventCache(ctx)
	s.metrics.ObserveTicketsGenerated(len(allocated))
	s.log.LogEventPlanned(ctx, eventID.String(), in.HostID.String(), len(allocated))

	notifications.PublishAsync(s.publisher, s.log, notifications.NewDomainEvent(
		notifications.EventTypeEventPlanned, eventID,
		map[string]interface{}{
			"title":      event.Title,
			"host_id":    event.HostID.String(),
			"start_date": event.StartDate,
			"tickets":    len(allocated),
		},
	))

	return &PlannedEventResponse{
		EventResponse:  toEventResponse(*event),
		TicketsCreated: len(allocated),
	}, nil
}

// replay returns the event already planned under key, or nil when the key
// is unused.
func (s *service) replay(ctx context.Context, key string) (*PlannedEventResponse, error) {
	existing, err := s.repo.GetByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrEntityNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	return &PlannedEventResponse{
		EventResponse: toEventResponse(*existing),
		Replayed:      true,
	}, nil
}

func (s *service) scheduleArchive(ctx context.Context, event *Event) {
	if s.scheduler == nil {
		return
	}
	args := map[string]string{ArchiveArgEventID: event.ID.String()}
	if _, err := s.scheduler.Schedule(ctx, jobs.KindArchiveEvent, args, event.StartDate); err != nil {
		s.log.Error("Failed to schedule event archiving",
			slog.String("event_id", event.ID.String()),
			slog.Time("fire_at", event.StartDate),
			slog.Any("error", err),
		)
	}
}

// ArchiveEvent ends the event and marks all its tickets out of date in one
// transaction. Archiving an ended event is a no-op.
func (s *service) ArchiveEvent(ctx context.Context, id uuid.UUID) error {
	var (
		archived    int64
		alreadyDone bool
	)

	err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		event, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if event.Status == StatusEnded {
			alreadyDone = true
			return nil
		}
		if err := repo.SetStatus(ctx, id, StatusEnded); err != nil {
			return err
		}
		archived, err = s.ticketsRepo.WithTx(tx).ArchiveByEvent(ctx, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to archive event: %w", err)
	}
	if alreadyDone {
		return nil
	}

	if err := s.holds.ReleaseEventHolds(ctx, id); err != nil {
		s.log.Warn("Failed to release holds of archived event",
			slog.String("event_id", id.String()),
			slog.Any("error", err),
		)
	}

	s.invalidateEventCache(ctx)
	s.metrics.ObserveArchived()
	s.log.LogEventArchived(ctx, id.String(), archived)

	notifications.PublishAsync(s.publisher, s.log, notifications.NewDomainEvent(
		notifications.EventTypeEventArchived, id,
		map[string]interface{}{"tickets_out_of_date": archived},
	))
	return nil
}

// DeleteEvent removes a planned or ended event. The archive job of a planned
// event is cancelled first; if a stored job cannot be removed nothing is
// deleted. A planned event without a job (never scheduled, or given up after
// its retries) is deleted as is.
func (s *service) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if event.Status == StatusPlanned && s.scheduler != nil {
		_, err := s.scheduler.CancelMatching(ctx, jobs.KindArchiveEvent, func(job jobs.Job) bool {
			return job.Args[ArchiveArgEventID] == id.String()
		})
		switch {
		case errors.Is(err, jobs.ErrNoMatchingJob):
			s.log.Warn("Planned event has no archive task", slog.String("event_id", id.String()))
		case err != nil:
			return fmt.Errorf("failed to cancel archive task: %w", err)
		}
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if event.Status == StatusPlanned {
		if err := s.holds.ReleaseEventHolds(ctx, id); err != nil {
			s.log.Warn("Failed to release holds of deleted event",
				slog.String("event_id", id.String()),
				slog.Any("error", err),
			)
		}
	}

	s.invalidateEventCache(ctx)
	s.log.Info("Event deleted", slog.String("event_id", id.String()))

	notifications.PublishAsync(s.publisher, s.log, notifications.NewDomainEvent(
		notifications.EventTypeEventDeleted, id,
		map[string]interface{}{"title": event.Title},
	))
	return nil
}

func (s *service) HandleArchiveJob(ctx context.Context, job jobs.Job) error {
	id, err := uuid.Parse(job.Args[ArchiveArgEventID])
	if err != nil {
		// Retrying cannot fix a malformed job
		s.log.Error("Archive job without a valid event id",
			slog.String("job_id", job.ID.String()),
			slog.String("event_id", job.Args[ArchiveArgEventID]),
		)
		return nil
	}

	err = s.ArchiveEvent(ctx, id)
	if errors.Is(err, apperrors.ErrEntityNotFound) {
		s.log.Warn("Archive job for missing event", slog.String("event_id", id.String()))
		return nil
	}
	return err
}

var (
	_ HallProvider = hosts.Service(nil)
	_ HoldReleaser = tickets.Service(nil)
)
