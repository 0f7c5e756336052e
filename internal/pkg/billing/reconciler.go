package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/CareNestHQ/CareNest/app/models"
	"github.com/CareNestHQ/CareNest/internal/pkg/notify"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// Reconciler applies normalized processor events to the subscription ledger
// and the user entitlement flag. Every handler re-derives the effective row
// by stable keys (provider subscription id first, then user id), so duplicate
// or reordered deliveries converge instead of forking the ledger.
//
// Handler errors are propagated to the webhook endpoint, which answers
// non-2xx so the processor redelivers; handlers are idempotent by key, which
// makes those retries safe.
type Reconciler struct {
	repo     Repository
	notifier notify.Notifier
}

// NewReconciler creates a reconciler from an injected repository and
// notifier.
func NewReconciler(repo Repository, notifier notify.Notifier) *Reconciler {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Reconciler{repo: repo, notifier: notifier}
}

// NewReconcilerFromDB creates a reconciler from a GORM DB handle.
func NewReconcilerFromDB(db *gorm.DB, notifier notify.Notifier) *Reconciler {
	return NewReconciler(NewRepository(db), notifier)
}

// HandleCheckoutCompleted resolves a completed checkout session. Subscription
// checkouts delegate to the subscription-created handling with the metadata
// the session carries; one-time payment checkouts complete the order.
func (r *Reconciler) HandleCheckoutCompleted(ctx context.Context, ev CheckoutEvent) error {
	if ev.Mode == "payment" {
		return r.applyOrderEvent(ctx, ev.SessionID, ev.ProviderEventID, "checkout.session.completed", models.OrderStatusCompleted)
	}

	if ev.StripeSubscriptionID == "" {
		log.Warnf("[Billing] checkout %s completed without subscription id, skipping", ev.SessionID)
		return nil
	}
	return r.HandleSubscriptionCreated(ctx, SubscriptionEvent{
		ProviderEventID:      ev.ProviderEventID,
		StripeSubscriptionID: ev.StripeSubscriptionID,
		UserID:               ev.UserID,
		PlanID:               ev.PlanID,
		Status:               models.SubscriptionStatusActive,
	})
}

// HandleCheckoutExpired marks the matching one-time order expired. Expired
// subscription checkouts have no ledger row yet and are ignored.
func (r *Reconciler) HandleCheckoutExpired(ctx context.Context, ev CheckoutEvent) error {
	if ev.Mode != "payment" {
		return nil
	}
	return r.applyOrderEvent(ctx, ev.SessionID, ev.ProviderEventID, "checkout.session.expired", models.OrderStatusExpired)
}

// HandleCheckoutPaymentFailed marks the matching one-time order failed.
func (r *Reconciler) HandleCheckoutPaymentFailed(ctx context.Context, ev CheckoutEvent) error {
	if ev.Mode != "payment" {
		return nil
	}
	return r.applyOrderEvent(ctx, ev.SessionID, ev.ProviderEventID, "checkout.session.async_payment_failed", models.OrderStatusFailed)
}

// HandleSubscriptionCreated upserts the ledger row for the user. An existing
// row (from a previous, canceled subscription) is overwritten in place so the
// one-row-per-user shape holds across re-subscriptions.
func (r *Reconciler) HandleSubscriptionCreated(ctx context.Context, ev SubscriptionEvent) error {
	_ = ctx
	if ev.StripeSubscriptionID == "" {
		return errors.New("subscription event missing subscription id")
	}

	planID := ev.PlanID
	if planID == 0 && ev.StripePriceID != "" {
		plan, err := r.repo.PlanByStripePriceID(ev.StripePriceID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if plan != nil {
			planID = plan.ID
		}
	}

	userID := ev.UserID
	if userID == 0 {
		// Without a user reference nothing can be reconciled. The dedupe row
		// keeps the payload for manual follow-up.
		log.Errorf("[Billing] subscription %s carries no user metadata", ev.StripeSubscriptionID)
		return ErrMissingUserRef
	}

	status := normalizeStatus(ev.Status)
	entitled := status == models.SubscriptionStatusActive

	var outdatedPlan *models.Plan
	err := r.repo.Transaction(func(tx Repository) error {
		sub, err := tx.SubscriptionByStripeID(ev.StripeSubscriptionID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sub, err = tx.SubscriptionByUserID(userID)
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if sub == nil {
			sub = &models.Subscription{UserID: userID}
		}
		sub.StripeSubscriptionID = ev.StripeSubscriptionID
		if planID != 0 {
			sub.PlanID = planID
		}
		sub.Status = status
		sub.CurrentPeriodEnd = ev.CurrentPeriodEnd
		sub.CancelAtPeriodEnd = ev.CancelAtPeriodEnd

		if sub.ID == 0 {
			if err := tx.CreateSubscription(sub); err != nil {
				return err
			}
		} else if err := tx.SaveSubscription(sub); err != nil {
			return err
		}

		if err := tx.SetUserEntitlement(userID, entitled); err != nil {
			return err
		}

		if sub.PlanID != 0 {
			outdatedPlan = r.detectOutdatedPlan(tx, sub.PlanID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscription created for user %d: %w", userID, err)
	}

	// Best-effort side channel: never part of the ledger transaction.
	if outdatedPlan != nil {
		r.notifyOutdatedPrice(userID, outdatedPlan)
	}
	return nil
}

// HandleSubscriptionUpdated mirrors status, period end and the
// cancel-at-period-end flag, then recomputes the entitlement.
func (r *Reconciler) HandleSubscriptionUpdated(ctx context.Context, ev SubscriptionEvent) error {
	_ = ctx
	return r.repo.Transaction(func(tx Repository) error {
		sub, err := r.resolveLedgerRow(tx, ev.StripeSubscriptionID, ev.UserID)
		if err != nil {
			return err
		}

		sub.Status = normalizeStatus(ev.Status)
		if ev.CurrentPeriodEnd != nil {
			sub.CurrentPeriodEnd = ev.CurrentPeriodEnd
		}
		sub.CancelAtPeriodEnd = ev.CancelAtPeriodEnd
		if err := tx.SaveSubscription(sub); err != nil {
			return err
		}
		return tx.SetUserEntitlement(sub.UserID, sub.Status == models.SubscriptionStatusActive)
	})
}

// HandleSubscriptionDeleted records the terminal cancellation and revokes the
// entitlement.
func (r *Reconciler) HandleSubscriptionDeleted(ctx context.Context, ev SubscriptionEvent) error {
	_ = ctx
	return r.repo.Transaction(func(tx Repository) error {
		sub, err := r.resolveLedgerRow(tx, ev.StripeSubscriptionID, ev.UserID)
		if err != nil {
			return err
		}

		sub.Status = models.SubscriptionStatusCanceled
		sub.CancelAtPeriodEnd = false
		if err := tx.SaveSubscription(sub); err != nil {
			return err
		}
		return tx.SetUserEntitlement(sub.UserID, false)
	})
}

// HandleInvoicePaymentSucceeded is the renewal-confirmation path: it advances
// the period end and forces the ledger active. Replays for the same billing
// period write the same values.
func (r *Reconciler) HandleInvoicePaymentSucceeded(ctx context.Context, ev InvoiceEvent) error {
	_ = ctx
	if ev.PeriodEnd == nil {
		log.Errorf("[Billing] invoice for %s missing period end, skipping", ev.StripeSubscriptionID)
		return errors.New("invoice event missing period end")
	}
	return r.repo.Transaction(func(tx Repository) error {
		sub, err := r.resolveLedgerRow(tx, ev.StripeSubscriptionID, 0)
		if err != nil {
			return err
		}

		sub.Status = models.SubscriptionStatusActive
		sub.CurrentPeriodEnd = ev.PeriodEnd
		if err := tx.SaveSubscription(sub); err != nil {
			return err
		}
		return tx.SetUserEntitlement(sub.UserID, true)
	})
}

// HandleInvoicePaymentFailed moves the ledger to past_due and revokes the
// entitlement until a later successful invoice restores it.
func (r *Reconciler) HandleInvoicePaymentFailed(ctx context.Context, ev InvoiceEvent) error {
	_ = ctx
	return r.repo.Transaction(func(tx Repository) error {
		sub, err := r.resolveLedgerRow(tx, ev.StripeSubscriptionID, 0)
		if err != nil {
			return err
		}

		sub.Status = models.SubscriptionStatusPastDue
		if err := tx.SaveSubscription(sub); err != nil {
			return err
		}
		return tx.SetUserEntitlement(sub.UserID, false)
	})
}

// resolveLedgerRow finds the subscription by provider id, falling back to the
// user id when the event carries one. A missing row surfaces as
// ErrLedgerRowMissing so the webhook endpoint answers non-2xx and the
// processor redelivers after the creating event has landed.
func (r *Reconciler) resolveLedgerRow(tx Repository, stripeSubscriptionID string, userID uint) (*models.Subscription, error) {
	if stripeSubscriptionID != "" {
		sub, err := tx.SubscriptionByStripeID(stripeSubscriptionID)
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if userID != 0 {
		sub, err := tx.SubscriptionByUserID(userID)
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	log.Warnf("[Billing] no ledger row for subscription %s (user %d)", stripeSubscriptionID, userID)
	return nil, ErrLedgerRowMissing
}

func (r *Reconciler) applyOrderEvent(ctx context.Context, sessionID, providerEventID, eventType, newStatus string) error {
	_ = ctx
	return r.repo.Transaction(func(tx Repository) error {
		order, err := tx.OrderByCheckoutSessionID(sessionID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("[Billing] %s for unknown checkout session %s", eventType, sessionID)
			return nil
		}
		if err != nil {
			return err
		}
		if order.IsTerminal() {
			// Replayed delivery; the audit trail already has this transition.
			return nil
		}

		before := order.Status
		order.Status = newStatus
		if err := tx.SaveOrder(order); err != nil {
			return err
		}
		return tx.AppendTransaction(&models.PaymentTransaction{
			OrderID:         order.ID,
			EventType:       eventType,
			ProviderEventID: providerEventID,
			StatusBefore:    before,
			StatusAfter:     newStatus,
		})
	})
}

// detectOutdatedPlan returns the subscribed plan when it is no longer the
// latest tier for its name. Lookup failures are swallowed: this only feeds a
// best-effort notification.
func (r *Reconciler) detectOutdatedPlan(tx Repository, planID uint) *models.Plan {
	plan, err := tx.PlanByID(planID)
	if err != nil {
		return nil
	}
	if plan.IsLatest {
		return nil
	}
	return plan
}

func (r *Reconciler) notifyOutdatedPrice(userID uint, plan *models.Plan) {
	err := r.notifier.Notify(userID, notify.Payload{
		Type:    models.NotificationTypeSubscription,
		Content: fmt.Sprintf("You are subscribed to %s at a previous price.", plan.Name),
		RefID:   plan.ID,
	})
	if err != nil {
		log.Warnf("[Billing] outdated-price notification for user %d failed: %v", userID, err)
	}
}

func normalizeStatus(status string) string {
	switch status {
	case models.SubscriptionStatusActive, models.SubscriptionStatusPastDue, models.SubscriptionStatusCanceled:
		return status
	case "":
		return models.SubscriptionStatusActive
	default:
		return status
	}
}
