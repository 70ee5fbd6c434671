package clients

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"festivaltickets/internal/shared/apperrors"
	"festivaltickets/internal/shared/constants"
	"festivaltickets/pkg/cache"
	"festivaltickets/pkg/logger"
	"festivaltickets/pkg/pagination"

	"github.com/google/uuid"
)

type Service interface {
	// Service dependency injection
	SetCacheService(cacheService cache.Service)

	// Accounts
	CreateClient(ctx context.Context, in NewClient) (*Client, error)
	GetByEmail(ctx context.Context, email string) (*Client, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*ClientResponse, error)
	GetClientIDBySubject(ctx context.Context, subject string) (uuid.UUID, error)
	DeleteClient(ctx context.Context, id uuid.UUID) error

	// Favourites
	IsInFavourite(ctx context.Context, eventID, clientID uuid.UUID) (bool, error)
	ChangeFavouriteStatus(ctx context.Context, eventID, clientID uuid.UUID, favourite bool) error
	GetFavouriteEvents(ctx context.Context, clientID uuid.UUID, page pagination.Params) (*pagination.Page[FavouriteEvent], error)

	GetPurchasedTickets(ctx context.Context, clientID uuid.UUID, page pagination.Params) (*pagination.Page[PurchasedTicket], error)
}

type service struct {
	repo         Repository
	cacheService cache.Service
	log          *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) Service {
	return &service{repo: repo, log: log.WithComponent("clients")}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

// CreateClient checks uniqueness of email, phone and subject in that order
// and reports the first conflict.
func (s *service) CreateClient(ctx context.Context, in NewClient) (*Client, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Subject = strings.TrimSpace(in.Subject)
	if in.Role == "" {
		in.Role = constants.RoleUser
	}
	if !constants.IsValidRole(string(in.Role)) {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrInvalidInput, in.Role)
	}

	checks := []struct {
		exists func(context.Context, string) (bool, error)
		value  string
		err    error
	}{
		{s.repo.EmailExists, in.Email, apperrors.ErrUserEmailNotUnique},
		{s.repo.PhoneExists, in.Phone, apperrors.ErrUserPhoneNotUnique},
		{s.repo.SubjectExists, in.Subject, apperrors.ErrUserSubjectNotUnique},
	}
	for _, check := range checks {
		taken, err := check.exists(ctx, check.value)
		if err != nil {
			return nil, fmt.Errorf("failed to check client uniqueness: %w", err)
		}
		if taken {
			return nil, check.err
		}
	}

	client := &Client{
		Name:         strings.TrimSpace(in.Name),
		Surname:      strings.TrimSpace(in.Surname),
		Email:        in.Email,
		Phone:        in.Phone,
		Subject:      in.Subject,
		PasswordHash: in.PasswordHash,
		Role:         in.Role,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.log.InfoContext(ctx, "client created",
		slog.String("client_id", client.ID.String()),
		slog.String("role", string(client.Role)))
	return client, nil
}

func (s *service) GetByEmail(ctx context.Context, email string) (*Client, error) {
	return s.repo.GetByEmail(ctx, strings.TrimSpace(email))
}

func (s *service) GetProfile(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	return cache.Fetch(ctx, s.cacheService, constants.BuildClientProfileKey(id.String()), constants.TTL_CLIENT_PROFILE,
		func() (*ClientResponse, error) {
			client, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			resp := ToClientResponse(*client)
			return &resp, nil
		},
	)
}

func (s *service) GetClientIDBySubject(ctx context.Context, subject string) (uuid.UUID, error) {
	return s.repo.GetIDBySubject(ctx, subject)
}

func (s *service) DeleteClient(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if deleted == 0 {
		return apperrors.ErrEntityNotFound
	}

	if s.cacheService != nil {
		if err := s.cacheService.Delete(ctx, constants.BuildClientProfileKey(id.String())); err != nil {
			s.log.WarnContext(ctx, "failed to drop client profile cache", slog.String("error", err.Error()))
		}
	}
	s.log.InfoContext(ctx, "client deleted", slog.String("client_id", id.String()))
	return nil
}

func (s *service) IsInFavourite(ctx context.Context, eventID, clientID uuid.UUID) (bool, error) {
	if err := s.requireClient(ctx, clientID); err != nil {
		return false, err
	}
	return s.repo.IsFavourite(ctx, clientID, eventID)
}

func (s *service) ChangeFavouriteStatus(ctx context.Context, eventID, clientID uuid.UUID, favourite bool) error {
	if err := s.requireClient(ctx, clientID); err != nil {
		return err
	}
	eventExists, err := s.repo.EventExists(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to check event: %w", err)
	}
	if !eventExists {
		return apperrors.ErrRelatedEntityNotFound
	}

	current, err := s.repo.IsFavourite(ctx, clientID, eventID)
	if err != nil {
		return fmt.Errorf("failed to check favourite: %w", err)
	}
	if current == favourite {
		return apperrors.ErrSameFavouriteStatus
	}

	if favourite {
		return s.repo.AddFavourite(ctx, clientID, eventID)
	}
	return s.repo.RemoveFavourite(ctx, clientID, eventID)
}

func (s *service) GetFavouriteEvents(ctx context.Context, clientID uuid.UUID, page pagination.Params) (*pagination.Page[FavouriteEvent], error) {
	if err := s.requireClient(ctx, clientID); err != nil {
		return nil, err
	}

	favourites, total, err := s.repo.GetFavourites(ctx, clientID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to get favourite events: %w", err)
	}
	if len(favourites) == 0 {
		return nil, apperrors.ErrQueryEmptyResult
	}

	result := pagination.FromQuery(favourites, total, page)
	return &result, nil
}

func (s *service) GetPurchasedTickets(ctx context.Context, clientID uuid.UUID, page pagination.Params) (*pagination.Page[PurchasedTicket], error) {
	if err := s.requireClient(ctx, clientID); err != nil {
		return nil, err
	}

	purchased, total, err := s.repo.GetPurchasedTickets(ctx, clientID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to get purchased tickets: %w", err)
	}
	if len(purchased) == 0 {
		return nil, apperrors.ErrQueryEmptyResult
	}

	result := pagination.FromQuery(purchased, total, page)
	return &result, nil
}

// requireClient maps a missing client to ErrRelatedEntityNotFound
func (s *service) requireClient(ctx context.Context, clientID uuid.UUID) error {
	exists, err := s.repo.Exists(ctx, clientID)
	if err != nil {
		return fmt.Errorf("failed to check client: %w", err)
	}
	if !exists {
		return apperrors.ErrRelatedEntityNotFound
	}
	return nil
}
