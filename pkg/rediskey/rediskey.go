package rediskey

// Global key conventions shared across the API server and the worker.
const (
	// EarningsChannel carries every persisted earning event as JSON for the
	// realtime trackers.
	EarningsChannel = "earnings:events"
)
