package earning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func TestComputeAggregates(t *testing.T) {
	events := []EarningEvent{
		{BusinessName: "Dropship Empire", Amount: 100, CreatedAt: mustTime(t, "2026-03-01T10:00:00Z")},
		{BusinessName: "Dropship Empire", Amount: 50, CreatedAt: mustTime(t, "2026-03-01T23:30:00Z")},
		{BusinessName: "Blog Network", Amount: 25, CreatedAt: mustTime(t, "2026-03-02T08:00:00Z")},
		{BusinessName: "Blog Network", Amount: 75, CreatedAt: mustTime(t, "2026-04-15T12:00:00Z")},
	}

	agg := ComputeAggregates(events, AggregateOptions{})

	require.InDelta(t, 250, agg.GrandTotal, 0.001)
	require.InDelta(t, 150, agg.DailyTotals["2026-03-01"], 0.001)
	require.InDelta(t, 25, agg.DailyTotals["2026-03-02"], 0.001)
	require.InDelta(t, 75, agg.DailyTotals["2026-04-15"], 0.001)
	require.InDelta(t, 175, agg.MonthlyTotals["2026-03"], 0.001)
	require.InDelta(t, 75, agg.MonthlyTotals["2026-04"], 0.001)
	require.InDelta(t, 150, agg.ByBusiness["Dropship Empire"], 0.001)
	require.InDelta(t, 100, agg.ByBusiness["Blog Network"], 0.001)
}

func TestComputeAggregatesBusinessFilter(t *testing.T) {
	events := []EarningEvent{
		{BusinessName: "Dropship Empire", Amount: 100, CreatedAt: mustTime(t, "2026-03-01T10:00:00Z")},
		{BusinessName: "Blog Network", Amount: 25, CreatedAt: mustTime(t, "2026-03-02T08:00:00Z")},
	}

	agg := ComputeAggregates(events, AggregateOptions{BusinessName: "Blog Network"})

	require.InDelta(t, 25, agg.GrandTotal, 0.001)
	require.Empty(t, agg.ByBusiness["Dropship Empire"])
	require.InDelta(t, 25, agg.ByBusiness["Blog Network"], 0.001)
	require.Len(t, agg.DailyTotals, 1)
}

func TestComputeAggregatesUsesUTCBuckets(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	// 01:00 local on March 2 is still March 1 in UTC
	events := []EarningEvent{
		{BusinessName: "Dropship Empire", Amount: 10, CreatedAt: time.Date(2026, 3, 2, 1, 0, 0, 0, loc)},
	}

	agg := ComputeAggregates(events, AggregateOptions{})
	require.InDelta(t, 10, agg.DailyTotals["2026-03-01"], 0.001)
}

func TestComputeAggregatesIsPure(t *testing.T) {
	events := []EarningEvent{
		{BusinessName: "Dropship Empire", Amount: 10, CreatedAt: mustTime(t, "2026-03-01T10:00:00Z")},
	}

	first := ComputeAggregates(events, AggregateOptions{})
	second := ComputeAggregates(events, AggregateOptions{})
	require.Equal(t, first, second)

	empty := ComputeAggregates(nil, AggregateOptions{})
	require.Zero(t, empty.GrandTotal)
	require.NotNil(t, empty.DailyTotals)
}
