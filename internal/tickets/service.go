package tickets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"festivaltickets/internal/holds"
	"festivaltickets/internal/notifications"
	"festivaltickets/internal/shared/apperrors"
	"festivaltickets/pkg/logger"
	"festivaltickets/pkg/metrics"

	"github.com/google/uuid"
)

type Service interface {
	// Service dependency injection
	SetPublisher(publisher notifications.Publisher)
	SetMetrics(m *metrics.Metrics)

	// Queries
	GetEventTickets(ctx context.Context, eventID uuid.UUID) ([]TicketResponse, error)
	GetEventTicketTypes(ctx context.Context, eventID uuid.UUID) ([]TicketTypeResponse, error)
	GetTicketsWithPrice(ctx context.Context, ids []uuid.UUID) (*ConfirmationResponse, error)

	// Seat holding
	HoldSeat(ctx context.Context, ticketID, clientID uuid.UUID) (*HoldResponse, error)
	ReleaseHold(ctx context.Context, ticketID, clientID uuid.UUID, token string) error
	ReleaseEventHolds(ctx context.Context, eventID uuid.UUID) error

	// Status transitions
	PurchaseTickets(ctx context.Context, clientID uuid.UUID, items []PurchaseItem) (*PurchaseResponse, error)
	ChangeTicketsStatus(ctx context.Context, statusName string, ids []uuid.UUID, clientID *uuid.UUID) error
}

type service struct {
	repo      Repository
	holds     holds.Store
	holdTTL   time.Duration
	publisher notifications.Publisher
	metrics   *metrics.Metrics
	log       *logger.Logger
	now       func() time.Time
}

func NewService(repo Repository, store holds.Store, holdTTL time.Duration, log *logger.Logger) Service {
	return &service{
		repo:      repo,
		holds:     store,
		holdTTL:   holdTTL,
		publisher: notifications.NoopPublisher{},
		log:       log.WithComponent("tickets"),
		now:       time.Now,
	}
}

func (s *service) SetPublisher(publisher notifications.Publisher) {
	if publisher != nil {
		s.publisher = publisher
	}
}

func (s *service) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

//  QUERIES

func (s *service) GetEventTickets(ctx context.Context, eventID uuid.UUID) ([]TicketResponse, error) {
	tickets, err := s.repo.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event tickets: %w", err)
	}
	if len(tickets) == 0 {
		return nil, apperrors.ErrQueryEmptyResult
	}

	overlaid, err := holds.Overlay(ctx, s.holds, tickets, s.now(),
		func(t Ticket) uuid.UUID { return t.ID },
		func(t *Ticket, _ holds.Hold) {
			if t.Status == StatusAvailable {
				t.Status = StatusHold
			}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to overlay holds: %w", err)
	}

	responses := make([]TicketResponse, len(overlaid))
	for i, t := range overlaid {
		responses[i] = toTicketResponse(t)
	}
	return responses, nil
}

func (s *service) GetEventTicketTypes(ctx context.Context, eventID uuid.UUID) ([]TicketTypeResponse, error) {
	types, err := s.repo.GetTicketTypesByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket types: %w", err)
	}
	if len(types) == 0 {
		return nil, apperrors.ErrQueryEmptyResult
	}

	responses := make([]TicketTypeResponse, len(types))
	for i, tt := range types {
		responses[i] = toTicketTypeResponse(tt)
	}
	return responses, nil
}

func (s *service) GetTicketsWithPrice(ctx context.Context, ids []uuid.UUID) (*ConfirmationResponse, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("no tickets requested: %w", apperrors.ErrInvalidInput)
	}

	rows, err := s.repo.GetTicketsWithPrice(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets with price: %w", err)
	}
	if len(rows) != len(ids) {
		return nil, apperrors.ErrEntityNotFound
	}

	resp := &ConfirmationResponse{Tickets: rows}
	for _, row := range rows {
		resp.Total = resp.Total.Add(row.Price)
	}
	return resp, nil
}

//  SEAT HOLDING

func (s *service) HoldSeat(ctx context.Context, ticketID, clientID uuid.UUID) (*HoldResponse, error) {
	ticket, err := s.repo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsAvailable() {
		s.metrics.ObserveHold("unavailable")
		return nil, apperrors.ErrTicketNotAvailable
	}

	hold, err := s.holds.TryHold(ctx, ticketID, clientID, s.now(), s.holdTTL)
	if err != nil {
		if errors.Is(err, holds.ErrAlreadyHeld) {
			s.metrics.ObserveHold("conflict")
			return nil, err
		}
		s.metrics.ObserveHold("error")
		return nil, fmt.Errorf("failed to hold seat: %w", err)
	}

	s.metrics.ObserveHold("held")
	s.log.LogSeatHeld(ctx, ticketID.String(), clientID.String(), hold.ExpiresAt)

	return &HoldResponse{
		TicketID:  hold.SeatID,
		HoldToken: hold.Token,
		ExpiresAt: hold.ExpiresAt,
		TTL:       int(s.holdTTL.Seconds()),
	}, nil
}

func (s *service) ReleaseHold(ctx context.Context, ticketID, clientID uuid.UUID, token string) error {
	hold, err := s.holds.Get(ctx, ticketID, s.now())
	if err != nil {
		if errors.Is(err, holds.ErrHoldNotFound) {
			return fmt.Errorf("no live hold on ticket: %w", apperrors.ErrEntityNotFound)
		}
		return fmt.Errorf("failed to get hold: %w", err)
	}
	if hold.HolderID != clientID {
		return apperrors.ErrUnauthorizedAction
	}

	if err := s.holds.ReleaseOwned(ctx, ticketID, token); err != nil {
		if errors.Is(err, holds.ErrHoldNotFound) {
			return fmt.Errorf("no live hold on ticket: %w", apperrors.ErrEntityNotFound)
		}
		return err
	}
	return nil
}

// ReleaseEventHolds drops every hold on the tickets of an event
func (s *service) ReleaseEventHolds(ctx context.Context, eventID uuid.UUID) error {
	ids, err := s.repo.GetIDsByEventID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to get event ticket ids: %w", err)
	}

	held, err := s.holds.HeldAmong(ctx, ids, s.now())
	if err != nil {
		return fmt.Errorf("failed to look up holds: %w", err)
	}
	for id := range held {
		if err := s.holds.Release(ctx, id); err != nil {
			return fmt.Errorf("failed to release hold on %s: %w", id, err)
		}
	}
	return nil
}

//  STATUS TRANSITIONS

// PurchaseTickets sells the requested tickets to clientID. A ticket under a
// live hold can only be bought by its holder presenting the hold token.
func (s *service) PurchaseTickets(ctx context.Context, clientID uuid.UUID, items []PurchaseItem) (*PurchaseResponse, error) {
	tokens := make(map[uuid.UUID]string, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, dup := tokens[item.TicketID]; dup {
			continue
		}
		tokens[item.TicketID] = item.HoldToken
		ids = append(ids, item.TicketID)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no tickets requested: %w", apperrors.ErrInvalidInput)
	}

	tickets, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets: %w", err)
	}
	if len(tickets) != len(ids) {
		s.metrics.ObservePurchase("not_found")
		return nil, apperrors.ErrEntityNotFound
	}
	for _, t := range tickets {
		if !t.IsAvailable() {
			s.metrics.ObservePurchase("unavailable")
			return nil, apperrors.ErrTicketNotAvailable
		}
	}

	held, err := s.holds.HeldAmong(ctx, ids, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to look up holds: %w", err)
	}
	for id, hold := range held {
		if hold.HolderID != clientID {
			s.metrics.ObservePurchase("held_by_other")
			return nil, apperrors.ErrSeatAlreadyHeld
		}
		if hold.Token != tokens[id] {
			s.metrics.ObservePurchase("token_mismatch")
			return nil, apperrors.ErrHoldTokenMismatch
		}
	}

	if err := s.repo.Purchase(ctx, ids, clientID); err != nil {
		if errors.Is(err, apperrors.ErrTicketNotAvailable) {
			s.metrics.ObservePurchase("unavailable")
			return nil, err
		}
		s.metrics.ObservePurchase("error")
		return nil, fmt.Errorf("failed to purchase tickets: %w", err)
	}

	s.releaseSold(ctx, clientID, ids)

	s.metrics.ObservePurchase("sold")

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}
	s.log.LogTicketsPurchased(ctx, clientID.String(), idStrings)

	notifications.PublishAsync(s.publisher, s.log, notifications.NewDomainEvent(
		notifications.EventTypeTicketsPurchased, clientID,
		map[string]interface{}{"ticket_ids": idStrings},
	))

	return &PurchaseResponse{ClientID: clientID, TicketIDs: ids}, nil
}

// releaseSold drops every hold on sold tickets. A hold another client took
// between the hold check and the commit is dropped as well; HoldSeat refuses
// SOLD tickets, so none can appear afterwards.
func (s *service) releaseSold(ctx context.Context, clientID uuid.UUID, ids []uuid.UUID) {
	buyerLog := s.log.WithClientID(clientID.String())

	late, err := s.holds.HeldAmong(ctx, ids, s.now())
	if err == nil {
		for id, hold := range late {
			if hold.HolderID != clientID {
				buyerLog.Warn("Dropping hold taken during purchase",
					slog.String("ticket_id", id.String()),
					slog.String("holder_id", hold.HolderID.String()),
				)
			}
		}
	}

	for _, id := range ids {
		if err := s.holds.Release(ctx, id); err != nil {
			buyerLog.WithError(err).Warn("Failed to release hold after purchase",
				slog.String("ticket_id", id.String()),
			)
		}
	}
}

// ChangeTicketsStatus writes status and owner of the given tickets in one
// batch. HOLD cannot be written; it belongs to the hold store.
func (s *service) ChangeTicketsStatus(ctx context.Context, statusName string, ids []uuid.UUID, clientID *uuid.UUID) error {
	status, err := ParseStatus(statusName)
	if err != nil {
		return err
	}
	if !status.Persistable() {
		return fmt.Errorf("status %s is not stored: %w", status, apperrors.ErrInvalidInput)
	}

	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return fmt.Errorf("no tickets requested: %w", apperrors.ErrInvalidInput)
	}

	if _, err := s.repo.SetStatus(ctx, ids, status, clientID); err != nil {
		return fmt.Errorf("failed to change tickets status: %w", err)
	}
	return nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
