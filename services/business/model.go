package business

import "time"

const (
	StatusSetup    = "setup"
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Business struct {
	ID             string    `gorm:"column:id;primaryKey" json:"id"`
	UserID         string    `gorm:"column:user_id;index" json:"user_id"`
	Name           string    `gorm:"column:name" json:"name"`
	Slug           string    `gorm:"column:slug;index" json:"slug"`
	Category       string    `gorm:"column:category" json:"category"`
	Status         string    `gorm:"column:status;index" json:"status"`
	MonthlyRevenue float64   `gorm:"column:monthly_revenue" json:"monthly_revenue"`
	SetupProgress  int       `gorm:"column:setup_progress" json:"setup_progress"`
	Revision       int64     `gorm:"column:revision" json:"revision"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Business) TableName() string {
	return "businesses"
}

// BusinessModule is a launchable template. The catalog mirrors the product's
// ten one-click modules.
type BusinessModule struct {
	ID       string
	Name     string
	Category string
}

var moduleCatalog = []BusinessModule{
	{ID: "dropshipping", Name: "Dropship Empire", Category: "ecommerce"},
	{ID: "digital-store", Name: "Digital Product Store", Category: "ecommerce"},
	{ID: "blog", Name: "Monetized Blog Network", Category: "content"},
	{ID: "print-on-demand", Name: "Print-on-Demand Studio", Category: "ecommerce"},
	{ID: "freelance-hub", Name: "Freelance Service Hub", Category: "services"},
	{ID: "saas-tool", Name: "Micro SaaS Tool", Category: "software"},
	{ID: "ad-revenue", Name: "Ad Revenue Site", Category: "content"},
	{ID: "course-platform", Name: "Online Course Platform", Category: "education"},
	{ID: "investment-tracker", Name: "Investment Tracker", Category: "finance"},
	{ID: "app-generator", Name: "App Generator", Category: "software"},
}

// ModuleByID looks a template up; ok is false for unknown module ids.
func ModuleByID(id string) (BusinessModule, bool) {
	for _, m := range moduleCatalog {
		if m.ID == id {
			return m, true
		}
	}
	return BusinessModule{}, false
}

// Modules returns a copy of the launchable catalog.
func Modules() []BusinessModule {
	out := make([]BusinessModule, len(moduleCatalog))
	copy(out, moduleCatalog)
	return out
}

// UpdateParams carries user-editable fields plus the revision the caller
// last read. A stale revision is rejected.
type UpdateParams struct {
	Name           *string  `json:"name"`
	Status         *string  `json:"status"`
	MonthlyRevenue *float64 `json:"monthly_revenue"`
	Revision       int64    `json:"revision"`
}
