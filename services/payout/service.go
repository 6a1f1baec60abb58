package payout

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"dreamseller-controlplane/pkg/errutil"
	"dreamseller-controlplane/pkg/payment"
	"dreamseller-controlplane/pkg/sequence"
	"dreamseller-controlplane/services/earning"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	repo     Repository
	earnings earning.Repository
	provider payment.Provider
	node     *snowflake.Node
	codes    sequence.Generator
}

type ServiceParams struct {
	fx.In
	Repository Repository
	Earnings   earning.Repository
	Provider   payment.Provider
	Node       *snowflake.Node
	Codes      sequence.Generator `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		repo:     p.Repository,
		earnings: p.Earnings,
		provider: p.Provider,
		node:     p.Node,
		codes:    p.Codes,
	}
}

// Setup creates a user's payout schedule. The first due time is computed
// from now and the frequency; a second schedule for the same user is a
// conflict.
func (s *Service) Setup(ctx context.Context, params SetupParams) (*PayoutSchedule, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if params.UserID == "" {
		return nil, errutil.ValidationFailed("user_id is required", nil)
	}

	switch params.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return nil, errutil.ValidationFailed("frequency must be daily, weekly or monthly", nil,
			errutil.WithDetails(errutil.Detail{Field: "frequency", Message: params.Frequency}))
	}

	switch params.Destination {
	case DestinationStripe, DestinationBank:
	default:
		return nil, errutil.ValidationFailed("destination must be stripe or bank", nil,
			errutil.WithDetails(errutil.Detail{Field: "destination", Message: params.Destination}))
	}

	if params.MinimumAmount < 0 {
		return nil, errutil.ValidationFailed("minimum_amount cannot be negative", nil)
	}

	if existing, err := s.repo.GetScheduleByUser(ctx, params.UserID); err == nil && existing != nil {
		return nil, errutil.Conflict("a payout schedule already exists for this user", nil)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var account datatypes.JSON
	if len(params.Account) > 0 {
		b, err := json.Marshal(params.Account)
		if err != nil {
			return nil, errutil.ValidationFailed("account is not serializable", err)
		}
		account = datatypes.JSON(b)
	}

	now := time.Now().UTC()
	schedule := &PayoutSchedule{
		ID:            s.node.Generate().String(),
		UserID:        params.UserID,
		Frequency:     params.Frequency,
		MinimumAmount: params.MinimumAmount,
		Destination:   params.Destination,
		Account:       account,
		Enabled:       true,
		NextPayout:    NextPayoutTime(now, params.Frequency),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.CreateSchedule(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *Service) GetByUser(ctx context.Context, userID string) (*PayoutSchedule, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if userID == "" {
		return nil, errutil.ValidationFailed("user_id is required", nil)
	}

	schedule, err := s.repo.GetScheduleByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("no payout schedule for this user", nil)
		}
		return nil, err
	}
	return schedule, nil
}

func (s *Service) ListTransactions(ctx context.Context, userID string) ([]PayoutTransaction, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if userID == "" {
		return nil, errutil.ValidationFailed("user_id is required", nil)
	}
	return s.repo.ListTransactionsByUser(ctx, userID)
}

// ProcessDue runs one payout pass: every enabled schedule whose due time has
// arrived is settled against the user's available balance. A skipped
// below-minimum schedule keeps its due time so it is reconsidered on every
// pass; a failed transfer records a failed transaction and likewise does not
// advance.
func (s *Service) ProcessDue(ctx context.Context, now time.Time) error {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	due, err := s.repo.ListDue(ctx, now)
	if err != nil {
		return err
	}

	for _, schedule := range due {
		if err := s.processOne(ctx, schedule, now); err != nil {
			zap.L().Warn("payout failed",
				zap.String("schedule_id", schedule.ID),
				zap.String("user_id", schedule.UserID),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (s *Service) processOne(ctx context.Context, schedule PayoutSchedule, now time.Time) error {
	balance, err := s.Balance(ctx, schedule.UserID)
	if err != nil {
		return err
	}

	if balance < schedule.MinimumAmount {
		zap.L().Debug("payout below minimum, skipping",
			zap.String("schedule_id", schedule.ID),
			zap.Float64("balance", balance),
			zap.Float64("minimum", schedule.MinimumAmount),
		)
		return nil
	}

	amount := math.Round(balance*100) / 100
	cents := int64(math.Round(amount * 100))

	code := s.nextCode(ctx, schedule.UserID)

	transferID, transferErr := s.provider.CreateTransfer(ctx, cents, s.accountID(schedule))

	tx := &PayoutTransaction{
		ID:         s.node.Generate().String(),
		ScheduleID: schedule.ID,
		UserID:     schedule.UserID,
		Code:       code,
		Amount:     amount,
		Provider:   s.provider.Name(),
		CreatedAt:  now,
	}

	if transferErr != nil {
		tx.Status = TxStatusFailed
		tx.Error = transferErr.Error()
		if err := s.repo.CreateTransaction(ctx, tx); err != nil {
			return err
		}
		// next_payout stays put: the transfer is retried on the next pass
		return transferErr
	}

	tx.Status = TxStatusCompleted
	tx.TransferID = transferID
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return err
	}

	return s.repo.Advance(ctx, schedule.ID, now, NextPayoutTime(now, schedule.Frequency))
}

// Balance is the user's withdrawable amount: recorded earnings minus
// completed payouts.
func (s *Service) Balance(ctx context.Context, userID string) (float64, error) {
	earned, err := s.earnings.SumByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	paid, err := s.repo.SumCompletedByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	return earned - paid, nil
}

func (s *Service) nextCode(ctx context.Context, userID string) string {
	if s.codes == nil {
		return ""
	}

	code, err := s.codes.NextPayoutCode(ctx, userID)
	if err != nil {
		zap.L().Warn("failed to generate payout code", zap.Error(err))
		return ""
	}
	return code
}

func (s *Service) accountID(schedule PayoutSchedule) string {
	if len(schedule.Account) == 0 {
		return ""
	}

	var account struct {
		AccountID string `json:"account_id"`
	}
	if err := json.Unmarshal(schedule.Account, &account); err != nil {
		return ""
	}
	return account.AccountID
}

// NextPayoutTime computes the following due time. Daily and weekly are exact
// 24h/168h periods. Monthly keeps the day-of-month, clamped to the last
// valid day of the target month (Jan 31 -> Feb 28/29).
func NextPayoutTime(from time.Time, frequency string) time.Time {
	from = from.UTC()

	switch frequency {
	case FrequencyDaily:
		return from.Add(24 * time.Hour)
	case FrequencyWeekly:
		return from.Add(7 * 24 * time.Hour)
	case FrequencyMonthly:
		year, month, day := from.Date()
		firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
		lastDay := firstOfNext.AddDate(0, 1, -1).Day()
		if day > lastDay {
			day = lastDay
		}
		return time.Date(firstOfNext.Year(), firstOfNext.Month(), day,
			from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), time.UTC)
	default:
		return from.Add(24 * time.Hour)
	}
}
