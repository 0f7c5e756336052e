package models

import "time"

// PaymentTransaction is an append-only audit row recording one webhook event
// applied to an order.
type PaymentTransaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	OrderID         uint      `gorm:"not null;index" json:"order_id"`
	Order           Order     `gorm:"foreignKey:OrderID" json:"-"`
	EventType       string    `gorm:"type:varchar(100);not null" json:"event_type"`
	ProviderEventID string    `gorm:"type:varchar(191);not null;index" json:"provider_event_id"`
	StatusBefore    string    `gorm:"type:varchar(32);not null" json:"status_before"`
	StatusAfter     string    `gorm:"type:varchar(32);not null" json:"status_after"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}
