package earning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dreamseller-controlplane/pkg/errutil"
	"dreamseller-controlplane/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type publisherMock struct {
	published [][]byte
	err       error
}

func (p *publisherMock) Publish(ctx context.Context, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, payload)
	return nil
}

type codeMock struct {
	next  string
	calls int
}

func (c *codeMock) NextTransactionCode(ctx context.Context, userID string) (string, error) {
	c.calls++
	return c.next, nil
}

func (c *codeMock) NextPayoutCode(ctx context.Context, userID string) (string, error) {
	return "", nil
}

func (c *codeMock) NextVerificationCode(ctx context.Context) (string, error) {
	return "", nil
}

func newTestService(t *testing.T) (*Service, Repository, *publisherMock) {
	t.Helper()

	db := testutil.NewTestDB(t, &EarningEvent{})
	repo := NewRepository(db)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	pub := &publisherMock{}
	svc := NewService(ServiceParams{
		Repository: repo,
		Node:       node,
		Publisher:  pub,
	})
	svc.sleep = func(time.Duration) {}

	return svc, repo, pub
}

func TestService_RecordAssignsServerFields(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()

	before := time.Now().UTC()
	event, err := svc.Record(ctx, RecordParams{
		UserID:       "user-1",
		BusinessID:   "biz-1",
		BusinessName: "Dropship Empire",
		Amount:       42.5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, event.ID)
	require.False(t, event.CreatedAt.Before(before))
	require.Equal(t, time.UTC, event.CreatedAt.Location())

	stored, err := repo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	require.Equal(t, 42.5, stored.Amount)

	require.Len(t, pub.published, 1)
}

func TestService_RecordStampsTransactionCode(t *testing.T) {
	db := testutil.NewTestDB(t, &EarningEvent{})
	repo := NewRepository(db)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	codes := &codeMock{next: "TXN-260828-001AB"}
	svc := NewService(ServiceParams{Repository: repo, Node: node, Codes: codes})
	svc.sleep = func(time.Duration) {}

	event, err := svc.Record(context.Background(), RecordParams{
		UserID: "user-1", BusinessID: "biz-1", Amount: 9.99,
	})
	require.NoError(t, err)
	require.Equal(t, "TXN-260828-001AB", event.Code)
	require.Equal(t, 1, codes.calls)

	stored, err := repo.GetByID(context.Background(), event.ID)
	require.NoError(t, err)
	require.Equal(t, "TXN-260828-001AB", stored.Code)
}

func TestService_RecordRejectsInvalidAmounts(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	for _, amount := range []float64{0, -10} {
		_, err := svc.Record(ctx, RecordParams{
			UserID:     "user-1",
			BusinessID: "biz-1",
			Amount:     amount,
		})
		require.Error(t, err)

		var base errutil.BaseError
		require.ErrorAs(t, err, &base)
		require.Equal(t, errutil.StatusValidationFailed, base.Code)
	}

	events, err := repo.List(ctx, ListFilter{UserID: "user-1"})
	require.NoError(t, err)
	require.Empty(t, events)
}

type failingRepo struct {
	Repository
	calls int
	err   error
}

func (r *failingRepo) Create(ctx context.Context, event *EarningEvent) error {
	r.calls++
	return r.err
}

func TestService_RecordSurfacesExhaustedRetries(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	repo := &failingRepo{err: errors.New("connection reset")}
	svc := NewService(ServiceParams{Repository: repo, Node: node})
	svc.sleep = func(time.Duration) {}

	_, err = svc.Record(context.Background(), RecordParams{
		UserID:     "user-1",
		BusinessID: "biz-1",
		Amount:     10,
	})
	require.Error(t, err)
	require.Equal(t, 3, repo.calls)

	var base errutil.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, errutil.StatusBadGateway, base.Code)
}

func TestService_RecordPublishFailureDoesNotFailWrite(t *testing.T) {
	svc, repo, pub := newTestService(t)
	pub.err = errors.New("redis down")

	event, err := svc.Record(context.Background(), RecordParams{
		UserID:     "user-1",
		BusinessID: "biz-1",
		Amount:     12,
	})
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), event.ID)
	require.NoError(t, err)
	require.Equal(t, event.ID, stored.ID)
}

func TestService_TodayTotal(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, RecordParams{UserID: "user-1", BusinessID: "biz-1", Amount: 10})
	require.NoError(t, err)
	_, err = svc.Record(ctx, RecordParams{UserID: "user-1", BusinessID: "biz-1", Amount: 15})
	require.NoError(t, err)

	// yesterday's earning must not count
	require.NoError(t, repo.Create(ctx, &EarningEvent{
		ID:         "old",
		UserID:     "user-1",
		BusinessID: "biz-1",
		Amount:     100,
		CreatedAt:  time.Now().UTC().AddDate(0, 0, -2),
	}))

	total, err := svc.TodayTotal(ctx, "user-1")
	require.NoError(t, err)
	require.InDelta(t, 25, total, 0.001)
}

func TestService_WeeklySeries(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, &EarningEvent{
		ID: "e1", UserID: "user-1", BusinessID: "biz-1", Amount: 20, CreatedAt: now,
	}))
	require.NoError(t, repo.Create(ctx, &EarningEvent{
		ID: "e2", UserID: "user-1", BusinessID: "biz-1", Amount: 5, CreatedAt: now.AddDate(0, 0, -3),
	}))
	require.NoError(t, repo.Create(ctx, &EarningEvent{
		ID: "e3", UserID: "user-1", BusinessID: "biz-1", Amount: 99, CreatedAt: now.AddDate(0, 0, -10),
	}))

	series, err := svc.WeeklySeries(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, series, 7)

	require.InDelta(t, 20, series[6].Total, 0.001)
	require.InDelta(t, 5, series[3].Total, 0.001)

	var sum float64
	for _, d := range series {
		sum += d.Total
	}
	require.InDelta(t, 25, sum, 0.001)
}
