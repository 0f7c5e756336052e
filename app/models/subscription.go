package models

import "time"

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription is the local ledger row mirroring the payment processor's
// subscription state for a user. One row per user: the reconciler updates the
// existing row in place on re-subscription instead of inserting a second one.
// Canceled subscriptions are recorded, never deleted.
type Subscription struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	UserID               uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	User                 User       `gorm:"foreignKey:UserID" json:"-"`
	PlanID               uint       `gorm:"not null;index" json:"plan_id"`
	Plan                 Plan       `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	StripeSubscriptionID string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"stripe_subscription_id"`
	Status               string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	CurrentPeriodEnd     *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CancelAtPeriodEnd    bool       `gorm:"default:false" json:"cancel_at_period_end"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsEntitling reports whether this ledger state grants access.
func (s *Subscription) IsEntitling() bool {
	return s.Status == SubscriptionStatusActive
}
