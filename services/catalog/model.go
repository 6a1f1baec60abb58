package catalog

import "time"

type Product struct {
	ID             string    `gorm:"column:id;primaryKey" json:"id"`
	UserID         string    `gorm:"column:user_id;index" json:"user_id"`
	BusinessID     string    `gorm:"column:business_id;index" json:"business_id"`
	Name           string    `gorm:"column:name" json:"name"`
	Price          float64   `gorm:"column:price" json:"price"`
	SupplierID     string    `gorm:"column:supplier_id" json:"supplier_id,omitempty"`
	SalesLast7Days int       `gorm:"column:sales_last_7_days" json:"sales_last_7_days"`
	AutoImported   bool      `gorm:"column:auto_imported" json:"auto_imported"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

type CreateParams struct {
	UserID     string  `json:"user_id"`
	BusinessID string  `json:"business_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	SupplierID string  `json:"supplier_id"`
}
