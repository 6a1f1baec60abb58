package earning

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository describes database operations available for earnings.
type Repository interface {
	Create(ctx context.Context, event *EarningEvent) error
	GetByID(ctx context.Context, id string) (*EarningEvent, error)
	List(ctx context.Context, filter ListFilter) ([]EarningEvent, error)
	SumByUser(ctx context.Context, userID string) (float64, error)
	SumByUserSince(ctx context.Context, userID string, since time.Time) (float64, error)
	ListSince(ctx context.Context, userID string, since time.Time) ([]EarningEvent, error)
	ListRange(ctx context.Context, from, to time.Time) ([]EarningEvent, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a gorm backed Repository implementation.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, event *EarningEvent) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id string) (*EarningEvent, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var event EarningEvent
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter) ([]EarningEvent, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	query := r.db.WithContext(ctx).Model(&EarningEvent{})

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.BusinessID != "" {
		query = query.Where("business_id = ?", filter.BusinessID)
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at < ?", filter.To)
	}
	if filter.Cursor != "" {
		query = query.Where("id > ?", filter.Cursor)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	// snowflake IDs are time-ordered, so id ASC is chronological and keeps
	// cursor pagination coherent
	query = query.Order("id ASC")

	var events []EarningEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *gormRepository) SumByUser(ctx context.Context, userID string) (float64, error) {
	if r == nil || r.db == nil {
		return 0, gorm.ErrInvalidDB
	}

	var total float64
	err := r.db.WithContext(ctx).Model(&EarningEvent{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *gormRepository) SumByUserSince(ctx context.Context, userID string, since time.Time) (float64, error) {
	if r == nil || r.db == nil {
		return 0, gorm.ErrInvalidDB
	}

	var total float64
	err := r.db.WithContext(ctx).Model(&EarningEvent{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *gormRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]EarningEvent, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var events []EarningEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *gormRepository) ListRange(ctx context.Context, from, to time.Time) ([]EarningEvent, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var events []EarningEvent
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
