package models

import "time"

const (
	PlanIntervalMonth = "month"
	PlanIntervalYear  = "year"
)

// Plan is a purchasable subscription price tier. Price changes are modeled as
// new rows: the currently sold tier for a name carries IsLatest=true, older
// rows stay around so existing subscribers keep resolving to their tier.
type Plan struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(100);not null;index" json:"name"`
	Amount          int64     `gorm:"not null" json:"amount"` // minor currency units
	Currency        string    `gorm:"type:varchar(3);not null;default:'usd'" json:"currency"`
	Interval        string    `gorm:"type:varchar(16);not null;default:'month'" json:"interval"`
	StripeProductID string    `gorm:"type:varchar(191);not null;index" json:"stripe_product_id"`
	StripePriceID   string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"stripe_price_id"`
	IsActive        bool      `gorm:"default:true;index" json:"is_active"`
	IsLatest        bool      `gorm:"default:false;index" json:"is_latest"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
