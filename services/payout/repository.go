package payout

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository describes database operations available for payout schedules
// and transactions.
type Repository interface {
	CreateSchedule(ctx context.Context, s *PayoutSchedule) error
	GetScheduleByUser(ctx context.Context, userID string) (*PayoutSchedule, error)
	ListDue(ctx context.Context, now time.Time) ([]PayoutSchedule, error)
	// Advance stamps a completed run: last_payout and the next due time.
	Advance(ctx context.Context, id string, lastPayout, nextPayout time.Time) error
	SetEnabled(ctx context.Context, id string, enabled bool) error

	CreateTransaction(ctx context.Context, tx *PayoutTransaction) error
	SumCompletedByUser(ctx context.Context, userID string) (float64, error)
	ListTransactionsByUser(ctx context.Context, userID string) ([]PayoutTransaction, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a gorm backed Repository implementation.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateSchedule(ctx context.Context, s *PayoutSchedule) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *gormRepository) GetScheduleByUser(ctx context.Context, userID string) (*PayoutSchedule, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var s PayoutSchedule
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *gormRepository) ListDue(ctx context.Context, now time.Time) ([]PayoutSchedule, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var out []PayoutSchedule
	err := r.db.WithContext(ctx).
		Where("enabled = ? AND next_payout <= ?", true, now).
		Order("next_payout ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *gormRepository) Advance(ctx context.Context, id string, lastPayout, nextPayout time.Time) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}

	res := r.db.WithContext(ctx).
		Model(&PayoutSchedule{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_payout": lastPayout,
			"next_payout": nextPayout,
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

func (r *gormRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}

	res := r.db.WithContext(ctx).
		Model(&PayoutSchedule{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"enabled":    enabled,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormRepository) CreateTransaction(ctx context.Context, tx *PayoutTransaction) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *gormRepository) SumCompletedByUser(ctx context.Context, userID string) (float64, error) {
	if r == nil || r.db == nil {
		return 0, gorm.ErrInvalidDB
	}

	var total float64
	err := r.db.WithContext(ctx).Model(&PayoutTransaction{}).
		Where("user_id = ? AND status = ?", userID, TxStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *gormRepository) ListTransactionsByUser(ctx context.Context, userID string) ([]PayoutTransaction, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var out []PayoutTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
