package billing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/webhook"
)

// Webhook event types the reconciler consumes. Everything else is accepted
// and ignored.
const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventCheckoutExpired       = "checkout.session.expired"
	EventCheckoutPaymentFailed = "checkout.session.async_payment_failed"
	EventSubscriptionCreated   = "customer.subscription.created"
	EventSubscriptionUpdated   = "customer.subscription.updated"
	EventSubscriptionDeleted   = "customer.subscription.deleted"
	EventInvoiceSucceeded      = "invoice.payment_succeeded"
	EventInvoiceFailed         = "invoice.payment_failed"
)

// WebhookEvent is a verified, parsed processor event in normalized form.
// Exactly one of Checkout, Subscription, Invoice is set for recognized types.
type WebhookEvent struct {
	ProviderEventID string
	Type            string
	Checkout        *CheckoutEvent
	Subscription    *SubscriptionEvent
	Invoice         *InvoiceEvent
}

// Recognized reports whether the event type has a handler.
func (e *WebhookEvent) Recognized() bool {
	return e.Checkout != nil || e.Subscription != nil || e.Invoice != nil
}

// VerifyAndParseWebhook checks the signature against the shared secret and
// translates the Stripe payload into normalized reconciler input. A signature
// mismatch fails here, before anything is parsed.
func VerifyAndParseWebhook(payload []byte, signatureHeader, secret string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, secret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}
	return translateEvent(&event)
}

func translateEvent(event *stripe.Event) (*WebhookEvent, error) {
	out := &WebhookEvent{
		ProviderEventID: event.ID,
		Type:            string(event.Type),
	}

	switch out.Type {
	case EventCheckoutCompleted, EventCheckoutExpired, EventCheckoutPaymentFailed:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("parse checkout session payload: %w", err)
		}
		ev := &CheckoutEvent{
			ProviderEventID: event.ID,
			SessionID:       sess.ID,
			Mode:            string(sess.Mode),
			UserID:          metaUint(sess.Metadata, "user_id", sess.ClientReferenceID),
			PlanID:          metaUint(sess.Metadata, "plan_id", ""),
		}
		if sess.Subscription != nil {
			ev.StripeSubscriptionID = sess.Subscription.ID
		}
		out.Checkout = ev

	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("parse subscription payload: %w", err)
		}
		ev := &SubscriptionEvent{
			ProviderEventID:      event.ID,
			StripeSubscriptionID: sub.ID,
			UserID:               metaUint(sub.Metadata, "user_id", ""),
			PlanID:               metaUint(sub.Metadata, "plan_id", ""),
			Status:               mapSubscriptionStatus(sub.Status),
			CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
			CurrentPeriodEnd:     epochToTime(sub.CurrentPeriodEnd),
		}
		if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
			ev.StripePriceID = sub.Items.Data[0].Price.ID
		}
		out.Subscription = ev

	case EventInvoiceSucceeded, EventInvoiceFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("parse invoice payload: %w", err)
		}
		ev := &InvoiceEvent{ProviderEventID: event.ID}
		if inv.Subscription != nil {
			ev.StripeSubscriptionID = inv.Subscription.ID
		}
		// Fall back to the first line item for the subscription reference and
		// use its period as the authoritative paid-through date.
		if len(ev.StripeSubscriptionID) == 0 || ev.PeriodEnd == nil {
			if inv.Lines != nil && len(inv.Lines.Data) > 0 {
				line := inv.Lines.Data[0]
				if ev.StripeSubscriptionID == "" && line.Subscription != nil {
					ev.StripeSubscriptionID = line.Subscription.ID
				}
				if line.Period != nil {
					ev.PeriodEnd = epochToTime(line.Period.End)
				}
			}
		}
		if ev.PeriodEnd == nil {
			ev.PeriodEnd = epochToTime(inv.PeriodEnd)
		}
		if ev.StripeSubscriptionID == "" {
			return nil, fmt.Errorf("invoice %s has no subscription reference", inv.ID)
		}
		out.Invoice = ev
	}

	return out, nil
}

// metaUint reads a numeric id from event metadata with an optional fallback
// raw value. Invalid values resolve to 0 rather than corrupting state.
func metaUint(meta map[string]string, key, fallback string) uint {
	raw := ""
	if meta != nil {
		raw = meta[key]
	}
	if raw == "" {
		raw = fallback
	}
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}

// epochToTime validates a seconds-since-epoch value before conversion.
// Non-positive values (absent field, zeroed payload) map to nil.
func epochToTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

func mapSubscriptionStatus(status stripe.SubscriptionStatus) string {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return "active"
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return "past_due"
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncomplete, stripe.SubscriptionStatusIncompleteExpired:
		return "canceled"
	default:
		return string(status)
	}
}
