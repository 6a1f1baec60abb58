package catalog

import (
	"context"

	"gorm.io/gorm"
)

// Repository describes database operations available for products. The
// pricing and import automation handlers share it with the HTTP surface.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	ListByUser(ctx context.Context, userID string) ([]Product, error)
	ListAll(ctx context.Context) ([]Product, error)
	UpdatePrice(ctx context.Context, id string, price float64) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a gorm backed Repository implementation.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, p *Product) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var p Product
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) ListByUser(ctx context.Context, userID string) ([]Product, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var out []Product
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *gormRepository) ListAll(ctx context.Context) ([]Product, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var out []Product
	if err := r.db.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *gormRepository) UpdatePrice(ctx context.Context, id string, price float64) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}

	res := r.db.WithContext(ctx).
		Model(&Product{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"price":      price,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
