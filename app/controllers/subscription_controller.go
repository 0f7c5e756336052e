package controllers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/CareNestHQ/CareNest/internal/pkg/billing"
	"github.com/CareNestHQ/CareNest/internal/pkg/env"
	"github.com/CareNestHQ/CareNest/internal/pkg/usercontext"
)

// HandleCreateCheckout starts a Stripe checkout for the caregiver membership
// and returns the redirect URL.
func HandleCreateCheckout(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	url, err := getBillingService().CreateCheckout(c.UserContext(), userID, billing.DefaultPlanName)
	if err != nil {
		return billingError(c, err, "failed to start checkout")
	}
	return jsonSuccess(c, "checkout created", fiber.Map{"checkout_url": url})
}

type orderCheckoutRequest struct {
	PlanID uint `json:"plan_id"`
}

// HandleCreateOrderCheckout starts a one-time purchase checkout for a plan.
// The pending order is reconciled by the checkout webhook events.
func HandleCreateOrderCheckout(c *fiber.Ctx) error {
	var req orderCheckoutRequest
	if err := c.BodyParser(&req); err != nil || req.PlanID == 0 {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	url, err := getBillingService().CreateOrderCheckout(c.UserContext(), usercontext.GetUserID(c), req.PlanID)
	if err != nil {
		return billingError(c, err, "failed to start order checkout")
	}
	return jsonSuccess(c, "checkout created", fiber.Map{"checkout_url": url})
}

// HandleMySubscription returns the caller's subscription, including whether
// they are paying an outdated price.
func HandleMySubscription(c *fiber.Ctx) error {
	view, err := getBillingService().MySubscription(usercontext.GetUserID(c))
	if err != nil {
		return billingError(c, err, "failed to load subscription")
	}
	return jsonSuccess(c, "", view)
}

// HandleSubscriptionStatus returns the entitlement flag and ledger status.
func HandleSubscriptionStatus(c *fiber.Ctx) error {
	active, status, err := getBillingService().Status(usercontext.GetUserID(c))
	if err != nil {
		return billingError(c, err, "failed to load subscription status")
	}
	return jsonSuccess(c, "", fiber.Map{
		"has_active_subscription": active,
		"status":                  status,
	})
}

// HandleCancelSubscription flags the subscription to end at the period end.
func HandleCancelSubscription(c *fiber.Ctx) error {
	if err := getBillingService().Cancel(c.UserContext(), usercontext.GetUserID(c)); err != nil {
		return billingError(c, err, "failed to cancel subscription")
	}
	return jsonSuccess(c, "subscription will end at the current period end", nil)
}

// HandleReactivateSubscription removes a pending cancellation.
func HandleReactivateSubscription(c *fiber.Ctx) error {
	if err := getBillingService().Reactivate(c.UserContext(), usercontext.GetUserID(c)); err != nil {
		return billingError(c, err, "failed to reactivate subscription")
	}
	return jsonSuccess(c, "subscription reactivated", nil)
}

// HandleRenewSubscription starts a fresh checkout for a subscription that is
// pending cancellation.
func HandleRenewSubscription(c *fiber.Ctx) error {
	url, err := getBillingService().Renew(c.UserContext(), usercontext.GetUserID(c), billing.DefaultPlanName)
	if err != nil {
		return billingError(c, err, "failed to renew subscription")
	}
	return jsonSuccess(c, "checkout created", fiber.Map{"checkout_url": url})
}

// HandleAdminListSubscriptions returns the subscription ledger for admins.
func HandleAdminListSubscriptions(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)
	subs, err := getBillingService().AdminList(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load subscriptions")
	}
	return jsonSuccess(c, "", subs)
}

// HandleStripeWebhook ingests Stripe events. The flow is: persist the event
// for idempotency first, then verify the signature, then apply. A duplicate
// event returns 200 without reprocessing; a failed handler returns 500 so
// Stripe redelivers, which is safe because the ledger writes are idempotent.
func HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	rec := getReconciler()

	// Peek id/type without full verification; the dedupe row is written even
	// for events that later fail signature checks, so replays are visible.
	var peek struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	_ = json.Unmarshal(payload, &peek)

	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")
	event, verifyErr := billing.VerifyAndParseWebhook(payload, c.Get("Stripe-Signature"), secret)

	created, stored, err := rec.RecordWebhookEvent(c.UserContext(), billing.WebhookEventInput{
		Provider:        billing.ProviderStripe,
		ProviderEventID: peek.ID,
		EventType:       peek.Type,
		PayloadJSON:     string(payload),
		SignatureValid:  verifyErr == nil,
	})
	if err != nil {
		log.Errorf("[Billing] webhook persistence failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "event persistence failed")
	}
	if !created && stored != nil && stored.ProcessedAt != nil {
		// Replay of an already processed event.
		return jsonSuccess(c, "event already processed", nil)
	}

	if verifyErr != nil {
		log.Warnf("[Billing] webhook signature verification failed: %v", verifyErr)
		return jsonError(c, fiber.StatusBadRequest, "invalid signature")
	}

	if !event.Recognized() {
		// Unhandled event types are acknowledged so Stripe stops retrying.
		if stored != nil {
			_ = rec.MarkWebhookProcessed(c.UserContext(), stored.ID, nil)
		}
		return jsonSuccess(c, "event ignored", nil)
	}

	applyErr := rec.Apply(c.UserContext(), event)
	if stored != nil {
		if err := rec.MarkWebhookProcessed(c.UserContext(), stored.ID, applyErr); err != nil {
			log.Errorf("[Billing] failed to mark webhook %d processed: %v", stored.ID, err)
		}
	}
	if applyErr != nil {
		log.Errorf("[Billing] webhook %s (%s) failed: %v", peek.ID, peek.Type, applyErr)
		return jsonError(c, fiber.StatusInternalServerError, "event processing failed")
	}

	return jsonSuccess(c, "event processed", nil)
}

// billingError maps domain errors to 4xx and everything else to 500.
func billingError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, billing.ErrNoSubscription):
		return jsonError(c, fiber.StatusNotFound, "no subscription found")
	case errors.Is(err, billing.ErrAlreadySubscribed):
		return jsonError(c, fiber.StatusConflict, "subscription is already active")
	case errors.Is(err, billing.ErrSubscriptionNotActive):
		return jsonError(c, fiber.StatusConflict, "subscription is not active")
	case errors.Is(err, billing.ErrNotPendingCancel):
		return jsonError(c, fiber.StatusConflict, "subscription is not pending cancellation")
	case errors.Is(err, billing.ErrPlanNotConfigured):
		return jsonError(c, fiber.StatusServiceUnavailable, "membership plan is not configured")
	default:
		log.Errorf("[Billing] %s: %v", fallback, err)
		return jsonError(c, fiber.StatusInternalServerError, fallback)
	}
}
