package report

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dreamseller-controlplane/pkg/config"
	"dreamseller-controlplane/services/earning"
	"dreamseller-controlplane/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type uploaderMock struct {
	bucket      string
	object      string
	body        []byte
	contentType string
	err         error
	calls       int
}

func (u *uploaderMock) Upload(ctx context.Context, bucket, object string, body []byte, contentType string) error {
	u.calls++
	u.bucket, u.object, u.body, u.contentType = bucket, object, body, contentType
	return u.err
}

func newTestService(t *testing.T, uploader Uploader) (*Service, earning.Repository) {
	t.Helper()

	db := testutil.NewTestDB(t, &earning.EarningEvent{})
	earnings := earning.NewRepository(db)

	cfg := &config.Config{}
	cfg.Reports.Bucket = "earnings-reports"

	svc := NewService(ServiceParams{Earnings: earnings, Uploader: uploader, Config: cfg})
	return svc, earnings
}

func seed(t *testing.T, repo earning.Repository, id string, amount float64, at time.Time) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &earning.EarningEvent{
		ID:           id,
		UserID:       "user-1",
		BusinessID:   "biz-1",
		BusinessName: "Dropship Empire",
		Amount:       amount,
		CreatedAt:    at,
	}))
}

func TestService_BuildMonthly(t *testing.T) {
	uploader := &uploaderMock{}
	svc, earnings := newTestService(t, uploader)
	ctx := context.Background()

	// two in-month events and one the month after
	seed(t, earnings, "e-1", 100, time.Date(2026, time.July, 3, 10, 0, 0, 0, time.UTC))
	seed(t, earnings, "e-2", 50.25, time.Date(2026, time.July, 30, 23, 59, 0, 0, time.UTC))
	seed(t, earnings, "e-3", 999, time.Date(2026, time.August, 1, 0, 0, 1, 0, time.UTC))

	report, err := svc.BuildMonthly(ctx, time.Date(2026, time.July, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, "2026-07", report.Month)
	require.Equal(t, 2, report.Events)
	require.InDelta(t, 150.25, report.Aggregates.GrandTotal, 0.001)

	require.Equal(t, 1, uploader.calls)
	require.Equal(t, "earnings-reports", uploader.bucket)
	require.Equal(t, "reports/2026-07.json", uploader.object)
	require.Equal(t, "application/json", uploader.contentType)

	var stored MonthlyReport
	require.NoError(t, json.Unmarshal(uploader.body, &stored))
	require.Equal(t, report.Month, stored.Month)
	require.InDelta(t, 150.25, stored.Aggregates.ByBusiness["Dropship Empire"], 0.001)
}

func TestPreviousMonth(t *testing.T) {
	// day 31 must not normalize past the short month before it
	require.Equal(t,
		time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		previousMonth(time.Date(2026, time.March, 31, 14, 0, 0, 0, time.UTC)))

	require.Equal(t,
		time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
		previousMonth(time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)))
}

func TestService_BuildMonthlyEmptyMonth(t *testing.T) {
	uploader := &uploaderMock{}
	svc, _ := newTestService(t, uploader)

	report, err := svc.BuildMonthly(context.Background(), time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Zero(t, report.Events)
	require.Zero(t, report.Aggregates.GrandTotal)
	require.Equal(t, 1, uploader.calls)
}
