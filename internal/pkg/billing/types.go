package billing

import "time"

// ProviderStripe is the only payment provider currently wired. The reconciler
// itself is provider-neutral: it only sees the normalized event types below.
const ProviderStripe = "stripe"

// CheckoutEvent is the normalized form of a completed/expired/failed checkout
// session event.
type CheckoutEvent struct {
	ProviderEventID      string
	SessionID            string
	Mode                 string // "subscription" or "payment"
	StripeSubscriptionID string
	UserID               uint
	PlanID               uint
}

// SubscriptionEvent is the normalized form of a subscription
// created/updated/deleted event.
type SubscriptionEvent struct {
	ProviderEventID      string
	StripeSubscriptionID string
	UserID               uint   // from metadata; 0 when absent
	PlanID               uint   // from metadata; 0 when absent
	StripePriceID        string // fallback for plan resolution
	Status               string
	CurrentPeriodEnd     *time.Time
	CancelAtPeriodEnd    bool
}

// InvoiceEvent is the normalized form of an invoice payment event, resolved
// to the subscription it bills.
type InvoiceEvent struct {
	ProviderEventID      string
	StripeSubscriptionID string
	PeriodEnd            *time.Time
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// SubscriptionView is the read model returned to subscribers, including
// whether they pay an outdated price and what the current price would be.
type SubscriptionView struct {
	Status            string     `json:"status"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
	CurrentPeriodEnd  *time.Time `json:"current_period_end,omitempty"`
	PlanName          string     `json:"plan_name"`
	Amount            int64      `json:"amount"`
	Currency          string     `json:"currency"`
	Interval          string     `json:"interval"`
	IsOutdatedPrice   bool       `json:"is_outdated_price"`
	LatestAmount      int64      `json:"latest_amount,omitempty"`
	PriceDelta        int64      `json:"price_delta,omitempty"`
}
