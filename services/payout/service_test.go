package payout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dreamseller-controlplane/pkg/errutil"
	"dreamseller-controlplane/services/earning"
	"dreamseller-controlplane/services/testutil"
)

var seedNode *snowflake.Node

func init() {
	zap.ReplaceGlobals(zap.NewNop())

	var err error
	seedNode, err = snowflake.NewNode(2)
	if err != nil {
		panic(err)
	}
}

type providerMock struct {
	createTransfer func(ctx context.Context, amountCents int64, destination string) (string, error)
	calls          int
}

func (p *providerMock) Name() string { return "mock" }

func (p *providerMock) CreateTransfer(ctx context.Context, amountCents int64, destination string) (string, error) {
	p.calls++
	if p.createTransfer != nil {
		return p.createTransfer(ctx, amountCents, destination)
	}
	return "tr_test", nil
}

func newTestService(t *testing.T, provider *providerMock) (*Service, Repository, earning.Repository) {
	t.Helper()

	db := testutil.NewTestDB(t, &PayoutSchedule{}, &PayoutTransaction{}, &earning.EarningEvent{})
	repo := NewRepository(db)
	earnings := earning.NewRepository(db)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParams{
		Repository: repo,
		Earnings:   earnings,
		Provider:   provider,
		Node:       node,
	})
	return svc, repo, earnings
}

func seedEarning(t *testing.T, repo earning.Repository, userID string, amount float64) {
	t.Helper()

	// IDs come off a shared node; a fresh node per event could repeat an ID
	// within the same millisecond
	err := repo.Create(context.Background(), &earning.EarningEvent{
		ID:         seedNode.Generate().String(),
		UserID:     userID,
		BusinessID: "biz-1",
		Amount:     amount,
		Source:     "manual",
		CreatedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestService_SetupCreatesSchedule(t *testing.T) {
	svc, _, _ := newTestService(t, &providerMock{})

	schedule, err := svc.Setup(context.Background(), SetupParams{
		UserID:        "user-1",
		Frequency:     FrequencyWeekly,
		MinimumAmount: 25,
		Destination:   DestinationStripe,
		Account:       map[string]any{"account_id": "acct_123"},
	})
	require.NoError(t, err)
	require.True(t, schedule.Enabled)
	require.False(t, schedule.NextPayout.IsZero())
	require.Nil(t, schedule.LastPayout)
}

func TestService_SetupRejectsSecondSchedule(t *testing.T) {
	svc, _, _ := newTestService(t, &providerMock{})
	ctx := context.Background()

	params := SetupParams{
		UserID:      "user-1",
		Frequency:   FrequencyDaily,
		Destination: DestinationBank,
	}
	_, err := svc.Setup(ctx, params)
	require.NoError(t, err)

	_, err = svc.Setup(ctx, params)
	require.Error(t, err)

	var base errutil.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, errutil.StatusConflict, base.Code)
}

func TestService_SetupValidates(t *testing.T) {
	svc, _, _ := newTestService(t, &providerMock{})
	ctx := context.Background()

	_, err := svc.Setup(ctx, SetupParams{
		UserID: "user-1", Frequency: "hourly", Destination: DestinationStripe,
	})
	require.Error(t, err)

	_, err = svc.Setup(ctx, SetupParams{
		UserID: "user-1", Frequency: FrequencyDaily, Destination: "paypal",
	})
	require.Error(t, err)
}

func TestService_ProcessDueCompletesPayout(t *testing.T) {
	provider := &providerMock{
		createTransfer: func(ctx context.Context, amountCents int64, destination string) (string, error) {
			require.EqualValues(t, 12050, amountCents)
			require.Equal(t, "acct_123", destination)
			return "tr_1", nil
		},
	}
	svc, repo, earnings := newTestService(t, provider)
	ctx := context.Background()

	schedule, err := svc.Setup(ctx, SetupParams{
		UserID:        "user-1",
		Frequency:     FrequencyDaily,
		MinimumAmount: 100,
		Destination:   DestinationStripe,
		Account:       map[string]any{"account_id": "acct_123"},
	})
	require.NoError(t, err)

	seedEarning(t, earnings, "user-1", 120.50)

	now := schedule.NextPayout.Add(time.Minute)
	require.NoError(t, svc.ProcessDue(ctx, now))
	require.Equal(t, 1, provider.calls)

	txs, err := repo.ListTransactionsByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, TxStatusCompleted, txs[0].Status)
	require.Equal(t, "tr_1", txs[0].TransferID)
	require.InDelta(t, 120.50, txs[0].Amount, 0.001)

	updated, err := repo.GetScheduleByUser(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, updated.LastPayout)
	require.True(t, updated.NextPayout.After(now))
}

func TestService_ProcessDueSkipsBelowMinimum(t *testing.T) {
	provider := &providerMock{}
	svc, repo, earnings := newTestService(t, provider)
	ctx := context.Background()

	schedule, err := svc.Setup(ctx, SetupParams{
		UserID:        "user-1",
		Frequency:     FrequencyDaily,
		MinimumAmount: 500,
		Destination:   DestinationBank,
	})
	require.NoError(t, err)

	seedEarning(t, earnings, "user-1", 120)

	now := schedule.NextPayout.Add(time.Minute)
	require.NoError(t, svc.ProcessDue(ctx, now))
	require.Zero(t, provider.calls)

	txs, err := repo.ListTransactionsByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, txs)

	// due time is untouched so the schedule is reconsidered next pass
	updated, err := repo.GetScheduleByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, schedule.NextPayout.Unix(), updated.NextPayout.Unix())
	require.Nil(t, updated.LastPayout)
}

func TestService_ProcessDueRecordsFailureWithoutAdvancing(t *testing.T) {
	provider := &providerMock{
		createTransfer: func(ctx context.Context, amountCents int64, destination string) (string, error) {
			return "", errors.New("insufficient funds on platform account")
		},
	}
	svc, repo, earnings := newTestService(t, provider)
	ctx := context.Background()

	schedule, err := svc.Setup(ctx, SetupParams{
		UserID:      "user-1",
		Frequency:   FrequencyWeekly,
		Destination: DestinationStripe,
	})
	require.NoError(t, err)

	seedEarning(t, earnings, "user-1", 75)

	now := schedule.NextPayout.Add(time.Minute)
	require.NoError(t, svc.ProcessDue(ctx, now))

	txs, err := repo.ListTransactionsByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, TxStatusFailed, txs[0].Status)
	require.Contains(t, txs[0].Error, "insufficient funds")

	updated, err := repo.GetScheduleByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, schedule.NextPayout.Unix(), updated.NextPayout.Unix())
	require.Nil(t, updated.LastPayout)
}

func TestService_BalanceSubtractsCompletedPayouts(t *testing.T) {
	provider := &providerMock{}
	svc, repo, earnings := newTestService(t, provider)
	ctx := context.Background()

	seedEarning(t, earnings, "user-1", 200)
	seedEarning(t, earnings, "user-1", 50)

	require.NoError(t, repo.CreateTransaction(ctx, &PayoutTransaction{
		ID: "tx-1", ScheduleID: "sch-1", UserID: "user-1",
		Amount: 100, Status: TxStatusCompleted, Provider: "mock",
		CreatedAt: time.Now().UTC(),
	}))
	// failed attempts never reduce the balance
	require.NoError(t, repo.CreateTransaction(ctx, &PayoutTransaction{
		ID: "tx-2", ScheduleID: "sch-1", UserID: "user-1",
		Amount: 100, Status: TxStatusFailed, Provider: "mock",
		CreatedAt: time.Now().UTC(),
	}))

	balance, err := svc.Balance(ctx, "user-1")
	require.NoError(t, err)
	require.InDelta(t, 150, balance, 0.001)
}

func TestNextPayoutTime(t *testing.T) {
	jan31 := time.Date(2026, time.January, 31, 9, 0, 0, 0, time.UTC)

	require.Equal(t,
		time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC),
		NextPayoutTime(jan31, FrequencyDaily))

	require.Equal(t,
		time.Date(2026, time.February, 7, 9, 0, 0, 0, time.UTC),
		NextPayoutTime(jan31, FrequencyWeekly))

	// monthly clamps to the last valid day of the target month
	require.Equal(t,
		time.Date(2026, time.February, 28, 9, 0, 0, 0, time.UTC),
		NextPayoutTime(jan31, FrequencyMonthly))

	mar15 := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	require.Equal(t,
		time.Date(2026, time.April, 15, 0, 0, 0, 0, time.UTC),
		NextPayoutTime(mar15, FrequencyMonthly))
}
