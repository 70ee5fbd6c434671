package tickets

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"festivaltickets/internal/holds"
	"festivaltickets/internal/notifications"
	"festivaltickets/internal/shared/apperrors"
	"festivaltickets/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) WithTx(tx *gorm.DB) Repository { return m }

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Ticket), args.Error(1)
}

func (m *MockRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Ticket, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]Ticket), args.Error(1)
}

func (m *MockRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) ([]Ticket, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]Ticket), args.Error(1)
}

func (m *MockRepository) GetIDsByEventID(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockRepository) GetTicketTypesByEventID(ctx context.Context, eventID uuid.UUID) ([]TicketType, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]TicketType), args.Error(1)
}

func (m *MockRepository) GetTicketsWithPrice(ctx context.Context, ids []uuid.UUID) ([]TicketWithPrice, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]TicketWithPrice), args.Error(1)
}

func (m *MockRepository) CreateForEvent(ctx context.Context, eventID uuid.UUID, types []TicketType, tickets []Ticket) error {
	return m.Called(ctx, eventID, types, tickets).Error(0)
}

func (m *MockRepository) Purchase(ctx context.Context, ids []uuid.UUID, clientID uuid.UUID) error {
	return m.Called(ctx, ids, clientID).Error(0)
}

func (m *MockRepository) SetStatus(ctx context.Context, ids []uuid.UUID, status Status, clientID *uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids, status, clientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ArchiveByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(int64), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*notifications.DomainEvent
	done   chan struct{}
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{done: make(chan struct{}, 8)}
}

func (p *recordingPublisher) Publish(ctx context.Context, event *notifications.DomainEvent) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	p.done <- struct{}{}
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

var t0 = time.Date(2026, 7, 1, 18, 0, 0, 0, time.UTC)

type fixture struct {
	repo  *MockRepository
	store *holds.MemoryStore
	svc   *service
	clock time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo:  &MockRepository{},
		store: holds.NewMemoryStore(100),
		clock: t0,
	}
	f.svc = NewService(f.repo, f.store, 5*time.Minute, logger.NewWithWriter(&bytes.Buffer{}, slog.LevelDebug, true)).(*service)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func availableTicket() *Ticket {
	return &Ticket{ID: uuid.New(), TicketTypeID: uuid.New(), Status: StatusAvailable}
}

func TestHoldSeat(t *testing.T) {
	ctx := context.Background()

	t.Run("holds an available seat", func(t *testing.T) {
		f := newFixture()
		ticket := availableTicket()
		client := uuid.New()
		f.repo.On("GetByID", ctx, ticket.ID).Return(ticket, nil)

		hold, err := f.svc.HoldSeat(ctx, ticket.ID, client)
		require.NoError(t, err)
		assert.NotEmpty(t, hold.HoldToken)
		assert.Equal(t, t0.Add(5*time.Minute), hold.ExpiresAt)
		assert.Equal(t, 300, hold.TTL)

		held, _ := f.store.IsHeld(ctx, ticket.ID, t0)
		assert.True(t, held)
		f.repo.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("full hold store is a capacity error", func(t *testing.T) {
		f := newFixture()
		f.store = holds.NewMemoryStore(1)
		f.svc = NewService(f.repo, f.store, 5*time.Minute, logger.NewWithWriter(&bytes.Buffer{}, slog.LevelDebug, true)).(*service)
		f.svc.now = func() time.Time { return f.clock }

		first, second := availableTicket(), availableTicket()
		f.repo.On("GetByID", ctx, first.ID).Return(first, nil)
		f.repo.On("GetByID", ctx, second.ID).Return(second, nil)

		_, err := f.svc.HoldSeat(ctx, first.ID, uuid.New())
		require.NoError(t, err)

		_, err = f.svc.HoldSeat(ctx, second.ID, uuid.New())
		assert.ErrorIs(t, err, holds.ErrStoreFull)
		assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))
	})

	t.Run("second client is rejected until expiry", func(t *testing.T) {
		f := newFixture()
		ticket := availableTicket()
		f.repo.On("GetByID", ctx, ticket.ID).Return(ticket, nil)

		_, err := f.svc.HoldSeat(ctx, ticket.ID, uuid.New())
		require.NoError(t, err)

		f.clock = t0.Add(4*time.Minute + 59*time.Second)
		_, err = f.svc.HoldSeat(ctx, ticket.ID, uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrSeatAlreadyHeld)

		f.clock = t0.Add(5 * time.Minute)
		_, err = f.svc.HoldSeat(ctx, ticket.ID, uuid.New())
		assert.NoError(t, err)
	})

	t.Run("missing ticket", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.repo.On("GetByID", ctx, id).Return(nil, apperrors.ErrEntityNotFound)

		_, err := f.svc.HoldSeat(ctx, id, uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrEntityNotFound)
		assert.Zero(t, f.store.Len())
	})

	t.Run("sold or archived ticket", func(t *testing.T) {
		for _, status := range []Status{StatusSold, StatusOutOfDate} {
			f := newFixture()
			ticket := availableTicket()
			ticket.Status = status
			f.repo.On("GetByID", ctx, ticket.ID).Return(ticket, nil)

			_, err := f.svc.HoldSeat(ctx, ticket.ID, uuid.New())
			assert.ErrorIs(t, err, apperrors.ErrTicketNotAvailable, string(status))
			assert.Zero(t, f.store.Len())
		}
	})
}

func TestGetEventTickets_Overlay(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	eventID := uuid.New()
	ticketType := &TicketType{ID: uuid.New(), Name: "VIP", Price: decimal.NewFromInt(500)}

	free := Ticket{ID: uuid.New(), Status: StatusAvailable, TicketTypeID: ticketType.ID, TicketType: ticketType}
	held := Ticket{ID: uuid.New(), Status: StatusAvailable, TicketTypeID: ticketType.ID, TicketType: ticketType}
	sold := Ticket{ID: uuid.New(), Status: StatusSold, TicketTypeID: ticketType.ID, TicketType: ticketType}
	rows := []Ticket{free, held, sold}
	f.repo.On("GetByEventID", ctx, eventID).Return(rows, nil)

	_, err := f.store.TryHold(ctx, held.ID, uuid.New(), t0, 5*time.Minute)
	require.NoError(t, err)

	got, err := f.svc.GetEventTickets(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, StatusAvailable, got[0].Status)
	assert.Equal(t, StatusHold, got[1].Status)
	assert.Equal(t, StatusSold, got[2].Status)
	assert.Equal(t, "VIP", got[1].TicketTypeName)

	assert.Equal(t, StatusAvailable, rows[1].Status, "durable rows must not change")

	f.clock = t0.Add(6 * time.Minute)
	got, err = f.svc.GetEventTickets(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, got[1].Status)
}

func TestGetEventTickets_Empty(t *testing.T) {
	f := newFixture()
	eventID := uuid.New()
	f.repo.On("GetByEventID", mock.Anything, eventID).Return([]Ticket{}, nil)

	_, err := f.svc.GetEventTickets(context.Background(), eventID)
	assert.ErrorIs(t, err, apperrors.ErrQueryEmptyResult)
}

func TestPurchaseTickets(t *testing.T) {
	ctx := context.Background()

	t.Run("holder with token buys and hold is released", func(t *testing.T) {
		f := newFixture()
		pub := newRecordingPublisher()
		f.svc.SetPublisher(pub)
		ticket := availableTicket()
		client := uuid.New()

		hold, err := f.store.TryHold(ctx, ticket.ID, client, t0, 5*time.Minute)
		require.NoError(t, err)

		ids := []uuid.UUID{ticket.ID}
		f.repo.On("GetByIDs", ctx, ids).Return([]Ticket{*ticket}, nil)
		f.repo.On("Purchase", ctx, ids, client).Return(nil)

		result, err := f.svc.PurchaseTickets(ctx, client, []PurchaseItem{{TicketID: ticket.ID, HoldToken: hold.Token}})
		require.NoError(t, err)
		assert.Equal(t, ids, result.TicketIDs)

		held, _ := f.store.IsHeld(ctx, ticket.ID, t0)
		assert.False(t, held)

		select {
		case <-pub.done:
		case <-time.After(time.Second):
			t.Fatal("purchase event not published")
		}
		pub.mu.Lock()
		assert.Equal(t, notifications.EventTypeTicketsPurchased, pub.events[0].Type)
		pub.mu.Unlock()
		f.repo.AssertExpectations(t)
	})

	t.Run("unheld available ticket can be bought without token", func(t *testing.T) {
		f := newFixture()
		ticket := availableTicket()
		client := uuid.New()
		ids := []uuid.UUID{ticket.ID}
		f.repo.On("GetByIDs", ctx, ids).Return([]Ticket{*ticket}, nil)
		f.repo.On("Purchase", ctx, ids, client).Return(nil)

		_, err := f.svc.PurchaseTickets(ctx, client, []PurchaseItem{{TicketID: ticket.ID}, {TicketID: ticket.ID}})
		assert.NoError(t, err)
	})

	t.Run("hold taken during the purchase is dropped", func(t *testing.T) {
		f := newFixture()
		ticket := availableTicket()
		buyer, other := uuid.New(), uuid.New()
		ids := []uuid.UUID{ticket.ID}
		f.repo.On("GetByIDs", ctx, ids).Return([]Ticket{*ticket}, nil)
		f.repo.On("Purchase", ctx, ids, buyer).
			Run(func(mock.Arguments) {
				_, err := f.store.TryHold(ctx, ticket.ID, other, t0, 5*time.Minute)
				require.NoError(t, err)
			}).
			Return(nil)

		_, err := f.svc.PurchaseTickets(ctx, buyer, []PurchaseItem{{TicketID: ticket.ID}})
		require.NoError(t, err)

		held, _ := f.store.IsHeld(ctx, ticket.ID, t0)
		assert.False(t, held, "sold seat must not stay held")
	})

	t.Run("held by another client", func(t *testing.T) {
		f := newFixture()
		ticket := availableTicket()
		hold, _ := f.store.TryHold(ctx, ticket.ID, uuid.New(), t0, 5*time.Minute)
		f.repo.On("GetByIDs", ctx, []uuid.UUID{ticket.ID}).Return([]Ticket{*ticket}, nil)

		_, err := f.svc.PurchaseTickets(ctx, uuid.New(), []PurchaseItem{{TicketID: ticket.ID, HoldToken: hold.Token}})
		assert.ErrorIs(t, err, apperrors.ErrSeatAlreadyHeld)
		f.repo.AssertNotCalled(t, "Purchase", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("wrong token", func(t *testing.T) {
		f := newFixture()
		ticket := availableTicket()
		client := uuid.New()
		_, _ = f.store.TryHold(ctx, ticket.ID, client, t0, 5*time.Minute)
		f.repo.On("GetByIDs", ctx, []uuid.UUID{ticket.ID}).Return([]Ticket{*ticket}, nil)

		_, err := f.svc.PurchaseTickets(ctx, client, []PurchaseItem{{TicketID: ticket.ID, HoldToken: "forged"}})
		assert.ErrorIs(t, err, apperrors.ErrHoldTokenMismatch)
		f.repo.AssertNotCalled(t, "Purchase", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("expired hold does not block another buyer", func(t *testing.T) {
		f := newFixture()
		ticket := availableTicket()
		buyer := uuid.New()
		_, _ = f.store.TryHold(ctx, ticket.ID, uuid.New(), t0, 5*time.Minute)
		f.clock = t0.Add(5 * time.Minute)
		ids := []uuid.UUID{ticket.ID}
		f.repo.On("GetByIDs", ctx, ids).Return([]Ticket{*ticket}, nil)
		f.repo.On("Purchase", ctx, ids, buyer).Return(nil)

		_, err := f.svc.PurchaseTickets(ctx, buyer, []PurchaseItem{{TicketID: ticket.ID}})
		assert.NoError(t, err)
	})

	t.Run("already sold", func(t *testing.T) {
		f := newFixture()
		ticket := availableTicket()
		ticket.Status = StatusSold
		f.repo.On("GetByIDs", ctx, []uuid.UUID{ticket.ID}).Return([]Ticket{*ticket}, nil)

		_, err := f.svc.PurchaseTickets(ctx, uuid.New(), []PurchaseItem{{TicketID: ticket.ID}})
		assert.ErrorIs(t, err, apperrors.ErrTicketNotAvailable)
	})

	t.Run("lost race in guarded update", func(t *testing.T) {
		f := newFixture()
		ticket := availableTicket()
		client := uuid.New()
		ids := []uuid.UUID{ticket.ID}
		f.repo.On("GetByIDs", ctx, ids).Return([]Ticket{*ticket}, nil)
		f.repo.On("Purchase", ctx, ids, client).Return(apperrors.ErrTicketNotAvailable)

		_, err := f.svc.PurchaseTickets(ctx, client, []PurchaseItem{{TicketID: ticket.ID}})
		assert.ErrorIs(t, err, apperrors.ErrTicketNotAvailable)
	})

	t.Run("unknown ticket", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.repo.On("GetByIDs", ctx, []uuid.UUID{id}).Return([]Ticket{}, nil)

		_, err := f.svc.PurchaseTickets(ctx, uuid.New(), []PurchaseItem{{TicketID: id}})
		assert.ErrorIs(t, err, apperrors.ErrEntityNotFound)
	})

	t.Run("empty request", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.PurchaseTickets(ctx, uuid.New(), nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestReleaseHold(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ticketID := uuid.New()
	client := uuid.New()
	hold, err := f.store.TryHold(ctx, ticketID, client, t0, 5*time.Minute)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.ReleaseHold(ctx, ticketID, uuid.New(), hold.Token), apperrors.ErrUnauthorizedAction)
	assert.ErrorIs(t, f.svc.ReleaseHold(ctx, ticketID, client, "other"), apperrors.ErrHoldTokenMismatch)
	require.NoError(t, f.svc.ReleaseHold(ctx, ticketID, client, hold.Token))
	assert.ErrorIs(t, f.svc.ReleaseHold(ctx, ticketID, client, hold.Token), apperrors.ErrEntityNotFound)
}

func TestReleaseEventHolds(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	eventID := uuid.New()
	a, b := uuid.New(), uuid.New()
	_, _ = f.store.TryHold(ctx, a, uuid.New(), t0, 5*time.Minute)
	_, _ = f.store.TryHold(ctx, b, uuid.New(), t0, 5*time.Minute)
	other, _ := f.store.TryHold(ctx, uuid.New(), uuid.New(), t0, 5*time.Minute)
	f.repo.On("GetIDsByEventID", ctx, eventID).Return([]uuid.UUID{a, b, uuid.New()}, nil)

	require.NoError(t, f.svc.ReleaseEventHolds(ctx, eventID))

	assert.Equal(t, 1, f.store.Len())
	stillHeld, _ := f.store.IsHeld(ctx, other.SeatID, t0)
	assert.True(t, stillHeld)
}

func TestChangeTicketsStatus(t *testing.T) {
	ctx := context.Background()
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	client := uuid.New()

	t.Run("batch update by name", func(t *testing.T) {
		f := newFixture()
		f.repo.On("SetStatus", ctx, ids, StatusSold, &client).Return(int64(2), nil)

		require.NoError(t, f.svc.ChangeTicketsStatus(ctx, "sold", append(ids, ids[0]), &client))
		f.repo.AssertExpectations(t)
	})

	t.Run("unknown status name", func(t *testing.T) {
		f := newFixture()
		err := f.svc.ChangeTicketsStatus(ctx, "RESERVED", ids, nil)
		assert.ErrorIs(t, err, apperrors.ErrRequiredDataNotFound)
	})

	t.Run("hold is not stored", func(t *testing.T) {
		f := newFixture()
		err := f.svc.ChangeTicketsStatus(ctx, "HOLD", ids, nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		f.repo.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetTicketsWithPrice(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a, b := uuid.New(), uuid.New()
	f.repo.On("GetTicketsWithPrice", ctx, []uuid.UUID{a, b}).Return([]TicketWithPrice{
		{ID: a, Price: decimal.RequireFromString("150.50")},
		{ID: b, Price: decimal.RequireFromString("99.50")},
	}, nil)

	got, err := f.svc.GetTicketsWithPrice(ctx, []uuid.UUID{a, b, a})
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(250)))
}
