package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CareNestHQ/CareNest/app/models"
	"github.com/CareNestHQ/CareNest/internal/pkg/env"
	"github.com/stripe/stripe-go/v80"
	checkoutsession "github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/subscription"
)

// StripeClient is the outbound surface the subscription service needs from
// the payment processor.
type StripeClient interface {
	// CreateSubscriptionCheckout returns the redirect URL for a subscription
	// checkout, plus the processor customer id when one is known.
	CreateSubscriptionCheckout(ctx context.Context, user *models.User, plan *models.Plan) (url string, customerID string, err error)
	// CreateOrderCheckout returns the session id and redirect URL for a
	// one-time payment checkout.
	CreateOrderCheckout(ctx context.Context, user *models.User, plan *models.Plan) (sessionID string, url string, err error)
	// SetCancelAtPeriodEnd toggles cancel_at_period_end on the processor.
	SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) error
}

type liveStripeClient struct {
	successURL string
	cancelURL  string
}

// NewStripeClientFromEnv configures the global Stripe key and returns a live
// client.
func NewStripeClientFromEnv() StripeClient {
	stripe.Key = strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", ""))
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	return &liveStripeClient{
		successURL: env.GetEnv("STRIPE_SUCCESS_URL", base+"/subscription/success"),
		cancelURL:  env.GetEnv("STRIPE_CANCEL_URL", base+"/subscription/cancelled"),
	}
}

func (c *liveStripeClient) CreateSubscriptionCheckout(ctx context.Context, user *models.User, plan *models.Plan) (string, string, error) {
	_ = ctx
	if plan.StripePriceID == "" {
		return "", "", errors.New("plan has no stripe price id")
	}

	meta := map[string]string{
		"user_id": fmt.Sprintf("%d", user.ID),
		"plan_id": fmt.Sprintf("%d", plan.ID),
	}
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(plan.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(c.successURL),
		CancelURL:         stripe.String(c.cancelURL),
		ClientReferenceID: stripe.String(fmt.Sprintf("%d", user.ID)),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: meta,
		},
	}
	params.Metadata = meta
	if user.StripeCustomerID != "" {
		params.Customer = stripe.String(user.StripeCustomerID)
	} else {
		params.CustomerEmail = stripe.String(user.Email)
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", "", err
	}
	customerID := ""
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}
	return sess.URL, customerID, nil
}

func (c *liveStripeClient) CreateOrderCheckout(ctx context.Context, user *models.User, plan *models.Plan) (string, string, error) {
	_ = ctx
	if plan.StripePriceID == "" {
		return "", "", errors.New("plan has no stripe price id")
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(plan.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(c.successURL),
		CancelURL:         stripe.String(c.cancelURL),
		ClientReferenceID: stripe.String(fmt.Sprintf("%d", user.ID)),
		Metadata: map[string]string{
			"user_id": fmt.Sprintf("%d", user.ID),
			"plan_id": fmt.Sprintf("%d", plan.ID),
		},
	}
	if user.StripeCustomerID != "" {
		params.Customer = stripe.String(user.StripeCustomerID)
	} else {
		params.CustomerEmail = stripe.String(user.Email)
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", "", err
	}
	return sess.ID, sess.URL, nil
}

func (c *liveStripeClient) SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) error {
	_ = ctx
	if subscriptionID == "" {
		return errors.New("subscription id is required")
	}
	_, err := subscription.Update(subscriptionID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(cancel),
	})
	return err
}
