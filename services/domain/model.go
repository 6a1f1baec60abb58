package domain

import "time"

const (
	StatusPending  = "pending"
	StatusVerified = "verified"
)

// StorefrontDomain is a custom hostname claimed for a business storefront.
// Ownership is proven with a TXT record carrying the verification code.
type StorefrontDomain struct {
	ID               string     `gorm:"column:id;primaryKey" json:"id"`
	BusinessID       string     `gorm:"column:business_id;index" json:"business_id"`
	UserID           string     `gorm:"column:user_id;index" json:"user_id"`
	Hostname         string     `gorm:"column:hostname;uniqueIndex" json:"hostname"`
	VerificationCode string     `gorm:"column:verification_code" json:"verification_code"`
	Status           string     `gorm:"column:status" json:"status"`
	VerifiedAt       *time.Time `gorm:"column:verified_at" json:"verified_at,omitempty"`
	CreatedAt        time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (StorefrontDomain) TableName() string {
	return "storefront_domains"
}

type ClaimParams struct {
	UserID     string `json:"user_id"`
	BusinessID string `json:"business_id"`
	Hostname   string `json:"hostname"`
}
