package automation

import "time"

const (
	StatusActive = "active"
	StatusPaused = "paused"
)

// RuleType selects the handler a rule dispatches to.
type RuleType string

const (
	TypeEmail    RuleType = "email"
	TypeContent  RuleType = "content"
	TypePricing  RuleType = "pricing"
	TypeAds      RuleType = "ads"
	TypeProducts RuleType = "products"
)

// TriggerType is a closed enum. Unknown trigger strings are rejected at rule
// creation instead of silently matching nothing forever.
type TriggerType string

const (
	TriggerNewLead             TriggerType = "new_lead"
	TriggerWeeklyContent       TriggerType = "weekly_content"
	TriggerSalesVelocity       TriggerType = "sales_velocity"
	TriggerRevenueThreshold    TriggerType = "revenue_threshold"
	TriggerNewSupplierProducts TriggerType = "new_supplier_products"
)

// triggerForType pins each rule type to its single valid trigger.
var triggerForType = map[RuleType]TriggerType{
	TypeEmail:    TriggerNewLead,
	TypeContent:  TriggerWeeklyContent,
	TypePricing:  TriggerSalesVelocity,
	TypeAds:      TriggerRevenueThreshold,
	TypeProducts: TriggerNewSupplierProducts,
}

type Rule struct {
	ID         string      `gorm:"column:id;primaryKey" json:"id"`
	UserID     string      `gorm:"column:user_id;index" json:"user_id"`
	Name       string      `gorm:"column:name" json:"name"`
	Type       RuleType    `gorm:"column:type" json:"type"`
	Trigger    TriggerType `gorm:"column:trigger" json:"trigger"`
	Condition  string      `gorm:"column:condition" json:"condition,omitempty"`
	Action     string      `gorm:"column:action" json:"action"`
	Status     string      `gorm:"column:status;index" json:"status"`
	Executions int64       `gorm:"column:executions" json:"executions"`
	Failures   int64       `gorm:"column:failures" json:"failures"`
	LastRun    *time.Time  `gorm:"column:last_run" json:"last_run,omitempty"`
	CreatedAt  time.Time   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"column:updated_at" json:"updated_at"`
}

func (Rule) TableName() string {
	return "automation_rules"
}

type CreateRuleParams struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Trigger   string `json:"trigger"`
	Condition string `json:"condition"`
	Action    string `json:"action"`
}

// Lead is an inbound prospect the email handler auto-responds to.
type Lead struct {
	ID          string     `gorm:"column:id;primaryKey" json:"id"`
	UserID      string     `gorm:"column:user_id;index" json:"user_id"`
	Email       string     `gorm:"column:email" json:"email"`
	Status      string     `gorm:"column:status;index" json:"status"`
	RespondedAt *time.Time `gorm:"column:responded_at" json:"responded_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (Lead) TableName() string {
	return "leads"
}

const LeadStatusNew = "new"

type CreateLeadParams struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// BlogPost is generated content inserted by the content handler.
type BlogPost struct {
	ID            string    `gorm:"column:id;primaryKey" json:"id"`
	UserID        string    `gorm:"column:user_id;index" json:"user_id"`
	Title         string    `gorm:"column:title" json:"title"`
	Body          string    `gorm:"column:body" json:"body"`
	Status        string    `gorm:"column:status" json:"status"`
	AutoGenerated bool      `gorm:"column:auto_generated" json:"auto_generated"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
}

func (BlogPost) TableName() string {
	return "blog_posts"
}

const PostStatusPublished = "published"
