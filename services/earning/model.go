package earning

import (
	"time"

	"gorm.io/datatypes"
)

// EarningEvent is a single recorded income event. Amounts are dollars; the
// writer is the only component allowed to set ID and CreatedAt.
type EarningEvent struct {
	ID           string         `gorm:"column:id;primaryKey" json:"id"`
	Code         string         `gorm:"column:code;index" json:"code,omitempty"`
	UserID       string         `gorm:"column:user_id;index" json:"user_id"`
	BusinessID   string         `gorm:"column:business_id;index" json:"business_id"`
	BusinessName string         `gorm:"column:business_name" json:"business_name"`
	Amount       float64        `gorm:"column:amount" json:"amount"`
	Source       string         `gorm:"column:source" json:"source,omitempty"`
	Metadata     datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt    time.Time      `gorm:"column:created_at;index" json:"created_at"`
}

func (EarningEvent) TableName() string {
	return "earnings"
}

// RecordParams is the caller-supplied portion of an earning. Timestamps and
// IDs are assigned server-side.
type RecordParams struct {
	UserID       string         `json:"user_id"`
	BusinessID   string         `json:"business_id"`
	BusinessName string         `json:"business_name"`
	Amount       float64        `json:"amount"`
	Source       string         `json:"source,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	UserID     string
	BusinessID string
	From       time.Time
	To         time.Time
	Cursor     string
	Limit      int
}

// DayTotal is one bucket of the weekly series.
type DayTotal struct {
	Date  string  `json:"date"` // YYYY-MM-DD, UTC
	Total float64 `json:"total"`
}
