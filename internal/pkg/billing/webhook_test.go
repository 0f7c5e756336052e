package billing

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stripe/stripe-go/v80"
)

func stripeEvent(id, eventType, raw string) *stripe.Event {
	return &stripe.Event{
		ID:   id,
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: json.RawMessage(raw)},
	}
}

func TestTranslateEvent_CheckoutCompleted(t *testing.T) {
	ev, err := translateEvent(stripeEvent("evt_1", EventCheckoutCompleted, `{
		"id": "cs_123",
		"mode": "subscription",
		"subscription": "sub_123",
		"client_reference_id": "42",
		"metadata": {"user_id": "7", "plan_id": "3"}
	}`))
	require.NoError(t, err)
	require.True(t, ev.Recognized())
	require.NotNil(t, ev.Checkout)

	assert.Equal(t, "evt_1", ev.ProviderEventID)
	assert.Equal(t, "cs_123", ev.Checkout.SessionID)
	assert.Equal(t, "subscription", ev.Checkout.Mode)
	assert.Equal(t, "sub_123", ev.Checkout.StripeSubscriptionID)
	assert.Equal(t, uint(7), ev.Checkout.UserID, "metadata wins over client_reference_id")
	assert.Equal(t, uint(3), ev.Checkout.PlanID)
}

func TestTranslateEvent_CheckoutClientReferenceFallback(t *testing.T) {
	ev, err := translateEvent(stripeEvent("evt_1", EventCheckoutCompleted, `{
		"id": "cs_123",
		"mode": "payment",
		"client_reference_id": "42"
	}`))
	require.NoError(t, err)
	require.NotNil(t, ev.Checkout)
	assert.Equal(t, uint(42), ev.Checkout.UserID)
	assert.Zero(t, ev.Checkout.PlanID)
}

func TestTranslateEvent_SubscriptionUpdated(t *testing.T) {
	end := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	ev, err := translateEvent(stripeEvent("evt_2", EventSubscriptionUpdated, `{
		"id": "sub_123",
		"status": "active",
		"cancel_at_period_end": true,
		"current_period_end": `+jsonInt(end.Unix())+`,
		"metadata": {"user_id": "7"},
		"items": {"data": [{"price": {"id": "price_abc"}}]}
	}`))
	require.NoError(t, err)
	require.NotNil(t, ev.Subscription)

	assert.Equal(t, "sub_123", ev.Subscription.StripeSubscriptionID)
	assert.Equal(t, uint(7), ev.Subscription.UserID)
	assert.Equal(t, "active", ev.Subscription.Status)
	assert.True(t, ev.Subscription.CancelAtPeriodEnd)
	assert.Equal(t, "price_abc", ev.Subscription.StripePriceID)
	require.NotNil(t, ev.Subscription.CurrentPeriodEnd)
	assert.True(t, end.Equal(*ev.Subscription.CurrentPeriodEnd))
}

func TestTranslateEvent_InvoiceLineFallback(t *testing.T) {
	end := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	ev, err := translateEvent(stripeEvent("evt_3", EventInvoiceSucceeded, `{
		"id": "in_123",
		"lines": {"data": [{
			"subscription": "sub_123",
			"period": {"start": 1, "end": `+jsonInt(end.Unix())+`}
		}]}
	}`))
	require.NoError(t, err)
	require.NotNil(t, ev.Invoice)

	assert.Equal(t, "sub_123", ev.Invoice.StripeSubscriptionID)
	require.NotNil(t, ev.Invoice.PeriodEnd)
	assert.True(t, end.Equal(*ev.Invoice.PeriodEnd))
}

func TestTranslateEvent_InvoiceWithoutSubscriptionRef(t *testing.T) {
	_, err := translateEvent(stripeEvent("evt_4", EventInvoiceFailed, `{"id": "in_123"}`))
	assert.Error(t, err, "an invoice with no subscription reference cannot be reconciled")
}

func TestTranslateEvent_UnrecognizedType(t *testing.T) {
	ev, err := translateEvent(stripeEvent("evt_5", "customer.created", `{"id": "cus_1"}`))
	require.NoError(t, err)
	assert.False(t, ev.Recognized())
	assert.Equal(t, "customer.created", ev.Type)
}

func TestMapSubscriptionStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   stripe.SubscriptionStatus
		expected string
	}{
		{"active", stripe.SubscriptionStatusActive, "active"},
		{"trialing counts as active", stripe.SubscriptionStatusTrialing, "active"},
		{"past due", stripe.SubscriptionStatusPastDue, "past_due"},
		{"unpaid counts as past due", stripe.SubscriptionStatusUnpaid, "past_due"},
		{"canceled", stripe.SubscriptionStatusCanceled, "canceled"},
		{"incomplete counts as canceled", stripe.SubscriptionStatusIncomplete, "canceled"},
		{"incomplete expired counts as canceled", stripe.SubscriptionStatusIncompleteExpired, "canceled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mapSubscriptionStatus(tt.status))
		})
	}
}

func TestMetaUint(t *testing.T) {
	tests := []struct {
		name     string
		meta     map[string]string
		fallback string
		expected uint
	}{
		{"from metadata", map[string]string{"user_id": "7"}, "42", 7},
		{"fallback when key missing", map[string]string{}, "42", 42},
		{"fallback when nil map", nil, "42", 42},
		{"empty everywhere", nil, "", 0},
		{"invalid value resolves to zero", map[string]string{"user_id": "not-a-number"}, "", 0},
		{"negative value resolves to zero", map[string]string{"user_id": "-3"}, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, metaUint(tt.meta, "user_id", tt.fallback))
		})
	}
}

func TestEpochToTime(t *testing.T) {
	assert.Nil(t, epochToTime(0))
	assert.Nil(t, epochToTime(-5))

	got := epochToTime(1700000000)
	require.NotNil(t, got)
	assert.Equal(t, int64(1700000000), got.Unix())
	assert.Equal(t, time.UTC, got.Location())
}

func jsonInt(v int64) string {
	data, _ := json.Marshal(v)
	return string(data)
}
