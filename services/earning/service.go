package earning

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"dreamseller-controlplane/pkg/errutil"
	"dreamseller-controlplane/pkg/sequence"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	writeAttempts = 3
	retryBackoff  = 200 * time.Millisecond
)

// Publisher fans a persisted earning out to realtime subscribers. Publishing
// is best effort; a failed publish never invalidates the write.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
}

type Service struct {
	repo      Repository
	node      *snowflake.Node
	publisher Publisher
	codes     sequence.Generator

	// test seam, defaults to time.Sleep
	sleep func(time.Duration)
}

type ServiceParams struct {
	fx.In
	Repository Repository
	Node       *snowflake.Node
	Publisher  Publisher          `optional:"true"`
	Codes      sequence.Generator `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		repo:      p.Repository,
		node:      p.Node,
		publisher: p.Publisher,
		codes:     p.Codes,
		sleep:     time.Sleep,
	}
}

// Record validates and persists one earning event. The write is the source
// of truth: timestamps are server-assigned UTC, IDs are snowflakes, and a
// transient storage failure is retried before being surfaced to the caller.
func (s *Service) Record(ctx context.Context, params RecordParams) (*EarningEvent, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	opts := []zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
		zap.String("user_id", params.UserID),
		zap.String("business_id", params.BusinessID),
	}

	if err := validateRecordParams(params); err != nil {
		zap.L().With(opts...).Warn("rejected earning", zap.Float64("amount", params.Amount), zap.Error(err))
		return nil, err
	}

	var metadata datatypes.JSON
	if len(params.Metadata) > 0 {
		b, err := json.Marshal(params.Metadata)
		if err != nil {
			return nil, errutil.ValidationFailed("metadata is not serializable", err)
		}
		metadata = datatypes.JSON(b)
	}

	var code string
	if s.codes != nil {
		var err error
		code, err = s.codes.NextTransactionCode(ctx, params.UserID)
		if err != nil {
			// the code is a display reference, never a reason to drop income
			zap.L().With(opts...).Warn("failed to issue transaction code", zap.Error(err))
		}
	}

	event := &EarningEvent{
		ID:           s.node.Generate().String(),
		Code:         code,
		UserID:       params.UserID,
		BusinessID:   params.BusinessID,
		BusinessName: params.BusinessName,
		Amount:       params.Amount,
		Source:       params.Source,
		Metadata:     metadata,
		CreatedAt:    time.Now().UTC(),
	}

	var lastErr error
	for attempt := 1; attempt <= writeAttempts; attempt++ {
		lastErr = s.repo.Create(ctx, event)
		if lastErr == nil {
			break
		}

		zap.L().With(opts...).Warn("earning write failed",
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)

		if attempt < writeAttempts {
			s.sleep(retryBackoff * time.Duration(attempt))
		}
	}

	if lastErr != nil {
		return nil, errutil.BadGateway("failed to persist earning after retries", lastErr)
	}

	s.publish(ctx, event, opts)

	return event, nil
}

func validateRecordParams(params RecordParams) error {
	if params.UserID == "" {
		return errutil.ValidationFailed("user_id is required", nil)
	}
	if params.BusinessID == "" {
		return errutil.ValidationFailed("business_id is required", nil)
	}
	if math.IsNaN(params.Amount) || math.IsInf(params.Amount, 0) {
		return errutil.ValidationFailed("amount must be a finite number", nil)
	}
	if params.Amount <= 0 {
		return errutil.ValidationFailed("amount must be greater than zero", nil)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event *EarningEvent, opts []zap.Field) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		zap.L().With(opts...).Warn("failed to encode earning for publish", zap.Error(err))
		return
	}

	if err := s.publisher.Publish(ctx, payload); err != nil {
		zap.L().With(opts...).Warn("failed to publish earning event", zap.Error(err))
	}
}

// List returns earnings matching the filter in chronological order.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]EarningEvent, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}

	return s.repo.List(ctx, filter)
}

// TodayTotal sums a user's earnings since midnight UTC.
func (s *Service) TodayTotal(ctx context.Context, userID string) (float64, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if userID == "" {
		return 0, errutil.ValidationFailed("user_id is required", nil)
	}

	return s.repo.SumByUserSince(ctx, userID, dayStart(time.Now()))
}

// WeeklySeries returns the past seven day-buckets of a user's earnings,
// oldest first. Days without earnings are present with a zero total.
func (s *Service) WeeklySeries(ctx context.Context, userID string) ([]DayTotal, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if userID == "" {
		return nil, errutil.ValidationFailed("user_id is required", nil)
	}

	start := dayStart(time.Now()).AddDate(0, 0, -6)

	events, err := s.repo.ListSince(ctx, userID, start)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64, 7)
	for _, e := range events {
		totals[e.CreatedAt.UTC().Format("2006-01-02")] += e.Amount
	}

	series := make([]DayTotal, 0, 7)
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		series = append(series, DayTotal{Date: day, Total: totals[day]})
	}

	return series, nil
}

// AggregatesFor loads a user's earnings and folds them for the dashboard.
func (s *Service) AggregatesFor(ctx context.Context, userID, businessName string) (Aggregates, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if userID == "" {
		return Aggregates{}, errutil.ValidationFailed("user_id is required", nil)
	}

	events, err := s.repo.List(ctx, ListFilter{UserID: userID, Limit: 0})
	if err != nil {
		return Aggregates{}, err
	}

	return ComputeAggregates(events, AggregateOptions{BusinessName: businessName}), nil
}
