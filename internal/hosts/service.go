package hosts

import (
	"context"
	"fmt"

	"festivaltickets/internal/shared/apperrors"
	"festivaltickets/internal/shared/constants"
	"festivaltickets/pkg/cache"
	"festivaltickets/pkg/pagination"

	"github.com/google/uuid"
)

type Service interface {
	// Service dependency injection
	SetCacheService(cacheService cache.Service)

	GetHosts(ctx context.Context, filter HostFilter, page pagination.Params) (*pagination.Page[HostResponse], error)
	GetHostWithDetails(ctx context.Context, id uuid.UUID) (*HostWithDetailsResponse, error)
	GetHallDetails(ctx context.Context, hostID uuid.UUID) (*HallDetailsResponse, error)
	GetHallDetailsByEventID(ctx context.Context, eventID uuid.UUID) (*HallDetailsResponse, error)
	GetHostedEvents(ctx context.Context, hostID uuid.UUID, page pagination.Params) (*pagination.Page[HostedEvent], error)
	GetHostTypes(ctx context.Context) ([]HostTypeResponse, error)
	GetCities(ctx context.Context) ([]string, error)

	// GetHall is used when planning events on a host
	GetHall(ctx context.Context, hostID uuid.UUID) (*HallDetail, error)
}

type service struct {
	repo         Repository
	cacheService cache.Service
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) GetHosts(ctx context.Context, filter HostFilter, page pagination.Params) (*pagination.Page[HostResponse], error) {
	hosts, total, err := s.repo.GetHosts(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to get hosts: %w", err)
	}
	if len(hosts) == 0 {
		return nil, apperrors.ErrQueryEmptyResult
	}

	items := make([]HostResponse, len(hosts))
	for i, h := range hosts {
		items[i] = HostResponse{ID: h.ID, Name: h.Name}
	}
	result := pagination.FromQuery(items, total, page)
	return &result, nil
}

func (s *service) GetHostWithDetails(ctx context.Context, id uuid.UUID) (*HostWithDetailsResponse, error) {
	host, err := s.repo.GetHostWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toHostWithDetailsResponse(*host)
	return &resp, nil
}

func (s *service) GetHall(ctx context.Context, hostID uuid.UUID) (*HallDetail, error) {
	return cache.Fetch(ctx, s.cacheService, constants.BuildHostHallKey(hostID.String()), constants.TTL_HOST_HALL,
		func() (*HallDetail, error) { return s.repo.GetHallDetails(ctx, hostID) },
	)
}

func (s *service) GetHallDetails(ctx context.Context, hostID uuid.UUID) (*HallDetailsResponse, error) {
	hall, err := s.GetHall(ctx, hostID)
	if err != nil {
		return nil, err
	}
	resp := toHallDetailsResponse(*hall)
	return &resp, nil
}

func (s *service) GetHallDetailsByEventID(ctx context.Context, eventID uuid.UUID) (*HallDetailsResponse, error) {
	hall, err := s.repo.GetHallDetailsByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	resp := toHallDetailsResponse(*hall)
	return &resp, nil
}

func (s *service) GetHostedEvents(ctx context.Context, hostID uuid.UUID, page pagination.Params) (*pagination.Page[HostedEvent], error) {
	exists, err := s.repo.Exists(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to check host: %w", err)
	}
	if !exists {
		return nil, apperrors.ErrEntityNotFound
	}

	events, total, err := s.repo.GetHostedEvents(ctx, hostID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to get hosted events: %w", err)
	}
	if len(events) == 0 {
		return nil, apperrors.ErrQueryEmptyResult
	}

	result := pagination.FromQuery(events, total, page)
	return &result, nil
}

func (s *service) GetHostTypes(ctx context.Context) ([]HostTypeResponse, error) {
	result, err := cache.Fetch(ctx, s.cacheService, constants.CACHE_KEY_HOST_TYPES, constants.TTL_HOST_LOOKUPS,
		func() ([]HostTypeResponse, error) {
			types, err := s.repo.GetHostTypes(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]HostTypeResponse, len(types))
			for i, t := range types {
				out[i] = HostTypeResponse{ID: t.ID, Name: t.Name}
			}
			return out, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get host types: %w", err)
	}
	if len(result) == 0 {
		return nil, apperrors.ErrQueryEmptyResult
	}
	return result, nil
}

func (s *service) GetCities(ctx context.Context) ([]string, error) {
	result, err := cache.Fetch(ctx, s.cacheService, constants.CACHE_KEY_HOST_CITIES, constants.TTL_HOST_LOOKUPS,
		func() ([]string, error) { return s.repo.GetCities(ctx) },
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get cities: %w", err)
	}
	if len(result) == 0 {
		return nil, apperrors.ErrQueryEmptyResult
	}
	return result, nil
}
