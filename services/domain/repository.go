package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository describes database operations available for storefront domains.
type Repository interface {
	Create(ctx context.Context, d *StorefrontDomain) error
	GetByID(ctx context.Context, id string) (*StorefrontDomain, error)
	GetByHostname(ctx context.Context, hostname string) (*StorefrontDomain, error)
	ListByBusiness(ctx context.Context, businessID string) ([]StorefrontDomain, error)
	MarkVerified(ctx context.Context, id string, at time.Time) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a gorm backed Repository implementation.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, d *StorefrontDomain) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id string) (*StorefrontDomain, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var d StorefrontDomain
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *gormRepository) GetByHostname(ctx context.Context, hostname string) (*StorefrontDomain, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var d StorefrontDomain
	err := r.db.WithContext(ctx).
		Where("hostname = ?", hostname).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *gormRepository) ListByBusiness(ctx context.Context, businessID string) ([]StorefrontDomain, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var out []StorefrontDomain
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *gormRepository) MarkVerified(ctx context.Context, id string, at time.Time) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}

	res := r.db.WithContext(ctx).
		Model(&StorefrontDomain{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      StatusVerified,
			"verified_at": at,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
