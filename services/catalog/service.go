package catalog

import (
	"context"
	"errors"
	"time"

	"dreamseller-controlplane/pkg/errutil"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Service struct {
	repo Repository
	node *snowflake.Node
}

type ServiceParams struct {
	fx.In
	Repository Repository
	Node       *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{repo: p.Repository, node: p.Node}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Product, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if params.UserID == "" {
		return nil, errutil.ValidationFailed("user_id is required", nil)
	}
	if params.Name == "" {
		return nil, errutil.ValidationFailed("name is required", nil)
	}
	if params.Price < 0 {
		return nil, errutil.ValidationFailed("price cannot be negative", nil)
	}

	now := time.Now().UTC()
	p := &Product{
		ID:         s.node.Generate().String(),
		UserID:     params.UserID,
		BusinessID: params.BusinessID,
		Name:       params.Name,
		Price:      params.Price,
		SupplierID: params.SupplierID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("product not found", nil)
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Product, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if userID == "" {
		return nil, errutil.ValidationFailed("user_id is required", nil)
	}
	return s.repo.ListByUser(ctx, userID)
}
