package auth

import (
	"context"
	"errors"

	"festivaltickets/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads and updates client credentials
type Repository interface {
	GetPasswordHash(ctx context.Context, clientID uuid.UUID) (string, error)
	UpdatePasswordHash(ctx context.Context, clientID uuid.UUID, hash string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) GetPasswordHash(ctx context.Context, clientID uuid.UUID) (string, error) {
	var hash string
	err := r.db.WithContext(ctx).
		Table("clients").
		Select("password_hash").
		Where("id = ?", clientID).
		Take(&hash).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrEntityNotFound
		}
		return "", err
	}
	return hash, nil
}

func (r *repository) UpdatePasswordHash(ctx context.Context, clientID uuid.UUID, hash string) error {
	result := r.db.WithContext(ctx).
		Table("clients").
		Where("id = ?", clientID).
		Updates(map[string]interface{}{"password_hash": hash, "updated_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrEntityNotFound
	}
	return nil
}
