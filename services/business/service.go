package business

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"dreamseller-controlplane/pkg/errutil"
	"dreamseller-controlplane/services/earning"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	repo     Repository
	node     *snowflake.Node
	earnings *earning.Service
}

type ServiceParams struct {
	fx.In
	Repository Repository
	Node       *snowflake.Node
	Earnings   *earning.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{
		repo:     p.Repository,
		node:     p.Node,
		earnings: p.Earnings,
	}
}

// Launch instantiates a catalog module for a user. Setup is synchronous:
// the business is created in "setup", immediately completed to "active",
// and seeded with one initial earning between 50 and 250 dollars.
func (s *Service) Launch(ctx context.Context, moduleID, userID string) (*Business, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	opts := []zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
		zap.String("module_id", moduleID),
		zap.String("user_id", userID),
	}

	if userID == "" {
		return nil, errutil.ValidationFailed("user_id is required", nil)
	}

	module, ok := ModuleByID(moduleID)
	if !ok {
		return nil, errutil.ValidationFailed("unknown business module", nil,
			errutil.WithDetails(errutil.Detail{Field: "module_id", Message: moduleID}))
	}

	now := time.Now().UTC()
	b := &Business{
		ID:            s.node.Generate().String(),
		UserID:        userID,
		Name:          module.Name,
		Slug:          slug.Make(module.Name),
		Category:      module.Category,
		Status:        StatusSetup,
		SetupProgress: 0,
		Revision:      1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		zap.L().With(opts...).Error("failed to create business", zap.Error(err))
		return nil, err
	}

	if err := s.repo.UpdateChecked(ctx, b.ID, b.Revision, map[string]any{
		"status":         StatusActive,
		"setup_progress": 100,
		"updated_at":     time.Now().UTC(),
	}); err != nil {
		zap.L().With(opts...).Error("failed to activate business", zap.Error(err))
		return nil, err
	}

	initial := math.Round((50+rand.Float64()*200)*100) / 100
	if _, err := s.earnings.Record(ctx, earning.RecordParams{
		UserID:       userID,
		BusinessID:   b.ID,
		BusinessName: b.Name,
		Amount:       initial,
		Source:       "launch",
	}); err != nil {
		// the business exists either way; the missing seed earning is the
		// only casualty
		zap.L().With(opts...).Warn("failed to record initial earning", zap.Error(err))
	}

	return s.repo.GetByID(ctx, b.ID)
}

func (s *Service) Get(ctx context.Context, id string) (*Business, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("business not found", nil)
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Business, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if userID == "" {
		return nil, errutil.ValidationFailed("user_id is required", nil)
	}
	return s.repo.ListByUser(ctx, userID)
}

// Update applies user edits under optimistic concurrency. A stale revision
// comes back as a conflict so the caller can re-read and retry.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Business, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if params.Name != nil {
		if *params.Name == "" {
			return nil, errutil.ValidationFailed("name cannot be empty", nil)
		}
		updates["name"] = *params.Name
		updates["slug"] = slug.Make(*params.Name)
	}
	if params.Status != nil {
		switch *params.Status {
		case StatusActive, StatusInactive, StatusSetup:
		default:
			return nil, errutil.ValidationFailed("invalid status", nil,
				errutil.WithDetails(errutil.Detail{Field: "status", Message: *params.Status}))
		}
		updates["status"] = *params.Status
	}
	if params.MonthlyRevenue != nil {
		if *params.MonthlyRevenue < 0 {
			return nil, errutil.ValidationFailed("monthly_revenue cannot be negative", nil)
		}
		updates["monthly_revenue"] = *params.MonthlyRevenue
	}

	if err := s.repo.UpdateChecked(ctx, id, params.Revision, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if _, getErr := s.repo.GetByID(ctx, id); getErr == nil {
				return nil, errutil.Conflict("business was modified concurrently, re-read and retry", nil)
			}
			return nil, errutil.NotFound("business not found", nil)
		}
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

// NewSimulatorSource adapts the repository for the earnings simulator.
func NewSimulatorSource(repo Repository) earning.BusinessSource {
	return &simulatorSource{repo: repo}
}

type simulatorSource struct {
	repo Repository
}

func (s *simulatorSource) ListActive(ctx context.Context) ([]earning.BusinessRef, error) {
	businesses, err := s.repo.ListByStatus(ctx, StatusActive)
	if err != nil {
		return nil, err
	}

	refs := make([]earning.BusinessRef, 0, len(businesses))
	for _, b := range businesses {
		refs = append(refs, earning.BusinessRef{ID: b.ID, Name: b.Name, UserID: b.UserID})
	}
	return refs, nil
}
