package business

import (
	"context"

	"gorm.io/gorm"
)

// Repository describes database operations available for businesses.
type Repository interface {
	Create(ctx context.Context, b *Business) error
	GetByID(ctx context.Context, id string) (*Business, error)
	ListByUser(ctx context.Context, userID string) ([]Business, error)
	ListByStatus(ctx context.Context, status string) ([]Business, error)
	ListByMinMonthlyRevenue(ctx context.Context, min float64) ([]Business, error)
	// UpdateChecked applies updates only when the stored revision matches
	// expectedRevision, bumping it by one. Returns gorm.ErrRecordNotFound on
	// a stale revision or unknown id.
	UpdateChecked(ctx context.Context, id string, expectedRevision int64, updates map[string]any) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a gorm backed Repository implementation.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, b *Business) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id string) (*Business, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var b Business
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *gormRepository) ListByUser(ctx context.Context, userID string) ([]Business, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var out []Business
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *gormRepository) ListByStatus(ctx context.Context, status string) ([]Business, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var out []Business
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *gormRepository) ListByMinMonthlyRevenue(ctx context.Context, min float64) ([]Business, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var out []Business
	err := r.db.WithContext(ctx).
		Where("monthly_revenue >= ?", min).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *gormRepository) UpdateChecked(ctx context.Context, id string, expectedRevision int64, updates map[string]any) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}

	updates["revision"] = gorm.Expr("revision + 1")

	res := r.db.WithContext(ctx).
		Model(&Business{}).
		Where("id = ? AND revision = ?", id, expectedRevision).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
