package earning

import "time"

// Aggregates is the dashboard rollup of a slice of earning events.
type Aggregates struct {
	DailyTotals   map[string]float64 `json:"daily_totals"`   // YYYY-MM-DD (UTC)
	MonthlyTotals map[string]float64 `json:"monthly_totals"` // YYYY-MM (UTC)
	ByBusiness    map[string]float64 `json:"by_business"`
	GrandTotal    float64            `json:"grand_total"`
}

// AggregateOptions filters the events considered by ComputeAggregates.
type AggregateOptions struct {
	// BusinessName restricts the rollup to a single business. Empty means all.
	BusinessName string
}

// ComputeAggregates folds events into daily, monthly and per-business totals
// in one pass. It is pure: same events and options, same result, no side
// effects.
func ComputeAggregates(events []EarningEvent, opts AggregateOptions) Aggregates {
	agg := Aggregates{
		DailyTotals:   make(map[string]float64),
		MonthlyTotals: make(map[string]float64),
		ByBusiness:    make(map[string]float64),
	}

	for _, e := range events {
		if opts.BusinessName != "" && e.BusinessName != opts.BusinessName {
			continue
		}

		created := e.CreatedAt.UTC()
		day := created.Format("2006-01-02")
		month := created.Format("2006-01")

		agg.DailyTotals[day] += e.Amount
		agg.MonthlyTotals[month] += e.Amount
		agg.ByBusiness[e.BusinessName] += e.Amount
		agg.GrandTotal += e.Amount
	}

	return agg
}

// dayStart returns midnight UTC of the given time.
func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
