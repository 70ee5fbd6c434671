package hosts

import (
	"context"
	"errors"

	"festivaltickets/internal/shared/apperrors"
	"festivaltickets/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface for host operations
type Repository interface {
	GetHosts(ctx context.Context, filter HostFilter, page pagination.Params) ([]Host, int64, error)
	GetHostWithDetails(ctx context.Context, id uuid.UUID) (*Host, error)
	GetHallDetails(ctx context.Context, hostID uuid.UUID) (*HallDetail, error)
	GetHallDetailsByEventID(ctx context.Context, eventID uuid.UUID) (*HallDetail, error)
	GetHostedEvents(ctx context.Context, hostID uuid.UUID, page pagination.Params) ([]HostedEvent, int64, error)
	GetHostTypes(ctx context.Context) ([]HostType, error)
	GetCities(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new host repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetHosts(ctx context.Context, filter HostFilter, page pagination.Params) ([]Host, int64, error) {
	query := r.db.WithContext(ctx).Model(&Host{})

	if filter.CityName != nil {
		query = query.Joins("JOIN locations ON locations.host_id = hosts.id").
			Where("locations.city_name = ?", *filter.CityName)
	}
	if filter.HostTypeID != nil {
		query = query.Where("hosts.host_type_id = ?", *filter.HostTypeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var hosts []Host
	err := query.
		Order("hosts.id ASC").
		Scopes(pagination.Scope(page)).
		Find(&hosts).Error
	return hosts, total, err
}

func (r *repository) GetHostWithDetails(ctx context.Context, id uuid.UUID) (*Host, error) {
	var host Host
	err := r.db.WithContext(ctx).
		Preload("HostType").
		Preload("Location").
		First(&host, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEntityNotFound
		}
		return nil, err
	}
	return &host, nil
}

func (r *repository) GetHallDetails(ctx context.Context, hostID uuid.UUID) (*HallDetail, error) {
	var hall HallDetail
	err := r.db.WithContext(ctx).First(&hall, "host_id = ?", hostID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEntityNotFound
		}
		return nil, err
	}
	return &hall, nil
}

// GetHallDetailsByEventID returns ErrRelatedEntityNotFound when the event
// does not exist and ErrEntityNotFound when its host has no hall.
func (r *repository) GetHallDetailsByEventID(ctx context.Context, eventID uuid.UUID) (*HallDetail, error) {
	var hostID uuid.UUID
	err := r.db.WithContext(ctx).
		Table("events").
		Select("host_id").
		Where("id = ?", eventID).
		Take(&hostID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRelatedEntityNotFound
		}
		return nil, err
	}
	return r.GetHallDetails(ctx, hostID)
}

func (r *repository) GetHostedEvents(ctx context.Context, hostID uuid.UUID, page pagination.Params) ([]HostedEvent, int64, error) {
	query := r.db.WithContext(ctx).
		Table("events").
		Where("host_id = ?", hostID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []HostedEvent
	err := query.
		Select("id, title, start_date").
		Order("start_date ASC").
		Scopes(pagination.Scope(page)).
		Scan(&events).Error
	return events, total, err
}

func (r *repository) GetHostTypes(ctx context.Context) ([]HostType, error) {
	var types []HostType
	err := r.db.WithContext(ctx).Order("id ASC").Find(&types).Error
	return types, err
}

func (r *repository) GetCities(ctx context.Context) ([]string, error) {
	var cities []string
	err := r.db.WithContext(ctx).
		Model(&Location{}).
		Distinct("city_name").
		Order("city_name ASC").
		Pluck("city_name", &cities).Error
	return cities, err
}

func (r *repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Host{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
