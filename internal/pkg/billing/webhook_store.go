package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/CareNestHQ/CareNest/app/models"
)

// RecordWebhookEvent persists the raw webhook payload idempotently. The
// second return value is false when this delivery is a duplicate.
func (r *Reconciler) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return r.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed records the outcome of applying an event. A nil error
// stamps processed_at; a non-nil error only stores the message, leaving the
// row unprocessed so the provider's redelivery runs the handler again.
func (r *Reconciler) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return r.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

// Apply dispatches a parsed webhook event to its handler.
func (r *Reconciler) Apply(ctx context.Context, ev *WebhookEvent) error {
	switch ev.Type {
	case EventCheckoutCompleted:
		return r.HandleCheckoutCompleted(ctx, *ev.Checkout)
	case EventCheckoutExpired:
		return r.HandleCheckoutExpired(ctx, *ev.Checkout)
	case EventCheckoutPaymentFailed:
		return r.HandleCheckoutPaymentFailed(ctx, *ev.Checkout)
	case EventSubscriptionCreated:
		return r.HandleSubscriptionCreated(ctx, *ev.Subscription)
	case EventSubscriptionUpdated:
		return r.HandleSubscriptionUpdated(ctx, *ev.Subscription)
	case EventSubscriptionDeleted:
		return r.HandleSubscriptionDeleted(ctx, *ev.Subscription)
	case EventInvoiceSucceeded:
		return r.HandleInvoicePaymentSucceeded(ctx, *ev.Invoice)
	case EventInvoiceFailed:
		return r.HandleInvoicePaymentFailed(ctx, *ev.Invoice)
	default:
		return nil
	}
}
