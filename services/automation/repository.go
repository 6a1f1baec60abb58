package automation

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository describes database operations available for rules and the rows
// the handlers touch.
type Repository interface {
	Create(ctx context.Context, rule *Rule) error
	GetByID(ctx context.Context, id string) (*Rule, error)
	ListByUser(ctx context.Context, userID string) ([]Rule, error)
	ListActive(ctx context.Context) ([]Rule, error)
	UpdateStatus(ctx context.Context, id, status string) error
	RecordSuccess(ctx context.Context, id string, at time.Time) error
	RecordFailure(ctx context.Context, id string, at time.Time) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a gorm backed Repository implementation.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, rule *Rule) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id string) (*Rule, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var rule Rule
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *gormRepository) ListByUser(ctx context.Context, userID string) ([]Rule, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var rules []Rule
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *gormRepository) ListActive(ctx context.Context) ([]Rule, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var rules []Rule
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusActive).
		Order("created_at ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *gormRepository) UpdateStatus(ctx context.Context, id, status string) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}

	res := r.db.WithContext(ctx).
		Model(&Rule{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
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

func (r *gormRepository) RecordSuccess(ctx context.Context, id string, at time.Time) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}

	return r.db.WithContext(ctx).
		Model(&Rule{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"executions": gorm.Expr("executions + 1"),
			"last_run":   at,
			"updated_at": at,
		}).Error
}

func (r *gormRepository) RecordFailure(ctx context.Context, id string, at time.Time) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}

	return r.db.WithContext(ctx).
		Model(&Rule{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"failures":   gorm.Expr("failures + 1"),
			"last_run":   at,
			"updated_at": at,
		}).Error
}

// LeadRepository backs the new-lead auto-responder.
type LeadRepository interface {
	Create(ctx context.Context, lead *Lead) error
	ListNewUnresponded(ctx context.Context, userID string) ([]Lead, error)
	MarkResponded(ctx context.Context, id string, at time.Time) error
}

type gormLeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &gormLeadRepository{db: db}
}

func (r *gormLeadRepository) Create(ctx context.Context, lead *Lead) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *gormLeadRepository) ListNewUnresponded(ctx context.Context, userID string) ([]Lead, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var leads []Lead
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND responded_at IS NULL", userID, LeadStatusNew).
		Find(&leads).Error
	if err != nil {
		return nil, err
	}
	return leads, nil
}

func (r *gormLeadRepository) MarkResponded(ctx context.Context, id string, at time.Time) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}

	return r.db.WithContext(ctx).
		Model(&Lead{}).
		Where("id = ?", id).
		Update("responded_at", at).Error
}

// PostRepository stores generated blog posts.
type PostRepository interface {
	Create(ctx context.Context, post *BlogPost) error
}

type gormPostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &gormPostRepository{db: db}
}

func (r *gormPostRepository) Create(ctx context.Context, post *BlogPost) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	return r.db.WithContext(ctx).Create(post).Error
}
