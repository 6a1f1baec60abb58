package payout

import (
	"time"

	"gorm.io/datatypes"
)

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

const (
	DestinationStripe = "stripe"
	DestinationBank   = "bank"
)

const (
	TxStatusCompleted = "completed"
	TxStatusFailed    = "failed"
)

// PayoutSchedule is a user's standing payout instruction. One schedule per
// user.
type PayoutSchedule struct {
	ID            string         `gorm:"column:id;primaryKey" json:"id"`
	UserID        string         `gorm:"column:user_id;uniqueIndex" json:"user_id"`
	Frequency     string         `gorm:"column:frequency" json:"frequency"`
	MinimumAmount float64        `gorm:"column:minimum_amount" json:"minimum_amount"`
	Destination   string         `gorm:"column:destination" json:"destination"`
	Account       datatypes.JSON `gorm:"column:account" json:"account"`
	Enabled       bool           `gorm:"column:enabled" json:"enabled"`
	LastPayout    *time.Time     `gorm:"column:last_payout" json:"last_payout,omitempty"`
	NextPayout    time.Time      `gorm:"column:next_payout;index" json:"next_payout"`
	CreatedAt     time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (PayoutSchedule) TableName() string {
	return "payout_schedules"
}

// PayoutTransaction records one attempted payout, completed or failed.
type PayoutTransaction struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	ScheduleID string    `gorm:"column:schedule_id;index" json:"schedule_id"`
	UserID     string    `gorm:"column:user_id;index" json:"user_id"`
	Code       string    `gorm:"column:code" json:"code"`
	Amount     float64   `gorm:"column:amount" json:"amount"`
	Status     string    `gorm:"column:status;index" json:"status"`
	Provider   string    `gorm:"column:provider" json:"provider"`
	TransferID string    `gorm:"column:transfer_id" json:"transfer_id,omitempty"`
	Error      string    `gorm:"column:error" json:"error,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (PayoutTransaction) TableName() string {
	return "payout_transactions"
}

type SetupParams struct {
	UserID        string         `json:"user_id"`
	Frequency     string         `json:"frequency"`
	MinimumAmount float64        `json:"minimum_amount"`
	Destination   string         `json:"destination"`
	Account       map[string]any `json:"account"`
}
