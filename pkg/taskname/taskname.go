package taskname

const (
	// Payout tasks
	PayoutRun = "payout:run"

	// Earning tasks
	EarningGenerate = "earning:generate"

	// Report tasks
	ReportMonthly = "report:monthly"
)
