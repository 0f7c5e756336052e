package models

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusFailed    = "failed"
	OrderStatusCancelled = "cancelled"
	OrderStatusExpired   = "expired"
)

// Order records a single one-time checkout attempt. The checkout session id
// is the reconciliation key for webhook events on this path.
type Order struct {
	ID                      uint      `gorm:"primaryKey" json:"id"`
	UserID                  uint      `gorm:"not null;index" json:"user_id"`
	User                    User      `gorm:"foreignKey:UserID" json:"-"`
	PlanID                  uint      `gorm:"not null;index" json:"plan_id"`
	Plan                    Plan      `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Amount                  int64     `gorm:"not null" json:"amount"`
	Currency                string    `gorm:"type:varchar(3);not null;default:'usd'" json:"currency"`
	Status                  string    `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	StripeCheckoutSessionID string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"stripe_checkout_session_id"`
	CreatedAt               time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the order can no longer change state.
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case OrderStatusCompleted, OrderStatusFailed, OrderStatusCancelled, OrderStatusExpired:
		return true
	default:
		return false
	}
}
