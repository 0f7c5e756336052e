package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CareNestHQ/CareNest/app/models"
	"github.com/CareNestHQ/CareNest/internal/pkg/notify"
)

type recordingNotifier struct {
	calls []struct {
		UserID  uint
		Payload notify.Payload
	}
}

func (n *recordingNotifier) Notify(userID uint, payload notify.Payload) error {
	n.calls = append(n.calls, struct {
		UserID  uint
		Payload notify.Payload
	}{userID, payload})
	return nil
}

func newTestReconciler() (*Reconciler, *fakeRepository, *recordingNotifier) {
	repo := newFakeRepository()
	notifier := &recordingNotifier{}
	return NewReconciler(repo, notifier), repo, notifier
}

func periodEnd(daysFromNow int) *time.Time {
	t := time.Now().Add(time.Duration(daysFromNow) * 24 * time.Hour).UTC().Truncate(time.Second)
	return &t
}

func TestHandleSubscriptionCreated_NewLedgerRow(t *testing.T) {
	r, repo, _ := newTestReconciler()
	user := repo.addUser(models.User{Name: "Carla", Email: "carla@example.com", Role: models.ROLE_GIVER})
	plan := repo.addPlan(models.Plan{Name: DefaultPlanName, Amount: 1999, IsActive: true, IsLatest: true, StripePriceID: "price_1"})

	end := periodEnd(30)
	err := r.HandleSubscriptionCreated(context.Background(), SubscriptionEvent{
		ProviderEventID:      "evt_1",
		StripeSubscriptionID: "sub_1",
		UserID:               user.ID,
		PlanID:               plan.ID,
		Status:               models.SubscriptionStatusActive,
		CurrentPeriodEnd:     end,
	})
	require.NoError(t, err)

	sub := repo.subscriptionByUser(user.ID)
	require.NotNil(t, sub)
	assert.Equal(t, "sub_1", sub.StripeSubscriptionID)
	assert.Equal(t, plan.ID, sub.PlanID)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, end, sub.CurrentPeriodEnd)
	assert.True(t, repo.users[user.ID].HasActiveSubscription)
}

func TestHandleSubscriptionCreated_ReplayConverges(t *testing.T) {
	r, repo, _ := newTestReconciler()
	user := repo.addUser(models.User{Name: "Carla"})
	plan := repo.addPlan(models.Plan{Name: DefaultPlanName, IsActive: true, IsLatest: true})

	ev := SubscriptionEvent{
		StripeSubscriptionID: "sub_1",
		UserID:               user.ID,
		PlanID:               plan.ID,
		Status:               models.SubscriptionStatusActive,
	}
	require.NoError(t, r.HandleSubscriptionCreated(context.Background(), ev))
	require.NoError(t, r.HandleSubscriptionCreated(context.Background(), ev))

	count := 0
	for _, s := range repo.subscriptions {
		if s.UserID == user.ID {
			count++
		}
	}
	assert.Equal(t, 1, count, "replayed delivery must not fork the ledger")
	assert.True(t, repo.users[user.ID].HasActiveSubscription)
}

func TestHandleSubscriptionCreated_ResubscribeReusesRow(t *testing.T) {
	r, repo, _ := newTestReconciler()
	user := repo.addUser(models.User{Name: "Carla"})
	plan := repo.addPlan(models.Plan{Name: DefaultPlanName, IsActive: true, IsLatest: true})
	old := repo.addSubscription(models.Subscription{
		UserID:               user.ID,
		PlanID:               plan.ID,
		StripeSubscriptionID: "sub_old",
		Status:               models.SubscriptionStatusCanceled,
	})

	err := r.HandleSubscriptionCreated(context.Background(), SubscriptionEvent{
		StripeSubscriptionID: "sub_new",
		UserID:               user.ID,
		PlanID:               plan.ID,
		Status:               models.SubscriptionStatusActive,
	})
	require.NoError(t, err)

	sub := repo.subscriptionByUser(user.ID)
	require.NotNil(t, sub)
	assert.Equal(t, old.ID, sub.ID, "existing row is overwritten, not duplicated")
	assert.Equal(t, "sub_new", sub.StripeSubscriptionID)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Len(t, repo.subscriptions, 1)
}

func TestHandleSubscriptionCreated_PlanFromPriceID(t *testing.T) {
	r, repo, _ := newTestReconciler()
	user := repo.addUser(models.User{Name: "Carla"})
	plan := repo.addPlan(models.Plan{Name: DefaultPlanName, IsActive: true, IsLatest: true, StripePriceID: "price_abc"})

	err := r.HandleSubscriptionCreated(context.Background(), SubscriptionEvent{
		StripeSubscriptionID: "sub_1",
		UserID:               user.ID,
		StripePriceID:        "price_abc",
		Status:               models.SubscriptionStatusActive,
	})
	require.NoError(t, err)

	sub := repo.subscriptionByUser(user.ID)
	require.NotNil(t, sub)
	assert.Equal(t, plan.ID, sub.PlanID)
}

func TestHandleSubscriptionCreated_MissingUserRef(t *testing.T) {
	r, _, _ := newTestReconciler()

	err := r.HandleSubscriptionCreated(context.Background(), SubscriptionEvent{
		StripeSubscriptionID: "sub_1",
		Status:               models.SubscriptionStatusActive,
	})
	assert.ErrorIs(t, err, ErrMissingUserRef)
}

func TestHandleSubscriptionCreated_OutdatedPlanNotification(t *testing.T) {
	r, repo, notifier := newTestReconciler()
	user := repo.addUser(models.User{Name: "Carla"})
	oldPlan := repo.addPlan(models.Plan{Name: DefaultPlanName, Amount: 999, IsActive: true, IsLatest: false})
	repo.addPlan(models.Plan{Name: DefaultPlanName, Amount: 1499, IsActive: true, IsLatest: true})

	err := r.HandleSubscriptionCreated(context.Background(), SubscriptionEvent{
		StripeSubscriptionID: "sub_1",
		UserID:               user.ID,
		PlanID:               oldPlan.ID,
		Status:               models.SubscriptionStatusActive,
	})
	require.NoError(t, err)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, user.ID, notifier.calls[0].UserID)
	assert.Equal(t, models.NotificationTypeSubscription, notifier.calls[0].Payload.Type)
}

func TestHandleSubscriptionUpdated(t *testing.T) {
	r, repo, _ := newTestReconciler()
	user := repo.addUser(models.User{Name: "Carla", HasActiveSubscription: true})
	end := periodEnd(10)
	repo.addSubscription(models.Subscription{
		UserID:               user.ID,
		StripeSubscriptionID: "sub_1",
		Status:               models.SubscriptionStatusActive,
		CurrentPeriodEnd:     end,
	})

	t.Run("status change revokes entitlement", func(t *testing.T) {
		err := r.HandleSubscriptionUpdated(context.Background(), SubscriptionEvent{
			StripeSubscriptionID: "sub_1",
			Status:               models.SubscriptionStatusPastDue,
		})
		require.NoError(t, err)

		sub := repo.subscriptionByUser(user.ID)
		assert.Equal(t, models.SubscriptionStatusPastDue, sub.Status)
		assert.Equal(t, end, sub.CurrentPeriodEnd, "nil period end keeps the stored value")
		assert.False(t, repo.users[user.ID].HasActiveSubscription)
	})

	t.Run("active status restores entitlement", func(t *testing.T) {
		newEnd := periodEnd(40)
		err := r.HandleSubscriptionUpdated(context.Background(), SubscriptionEvent{
			StripeSubscriptionID: "sub_1",
			Status:               models.SubscriptionStatusActive,
			CurrentPeriodEnd:     newEnd,
			CancelAtPeriodEnd:    true,
		})
		require.NoError(t, err)

		sub := repo.subscriptionByUser(user.ID)
		assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
		assert.Equal(t, newEnd, sub.CurrentPeriodEnd)
		assert.True(t, sub.CancelAtPeriodEnd)
		assert.True(t, repo.users[user.ID].HasActiveSubscription)
	})
}

func TestHandleSubscriptionUpdated_BeforeCreated(t *testing.T) {
	r, _, _ := newTestReconciler()

	err := r.HandleSubscriptionUpdated(context.Background(), SubscriptionEvent{
		StripeSubscriptionID: "sub_unknown",
		Status:               models.SubscriptionStatusActive,
	})
	assert.ErrorIs(t, err, ErrLedgerRowMissing, "missing row must surface so the processor redelivers")
}

func TestHandleSubscriptionUpdated_FallsBackToUserID(t *testing.T) {
	r, repo, _ := newTestReconciler()
	user := repo.addUser(models.User{Name: "Carla"})
	repo.addSubscription(models.Subscription{
		UserID:               user.ID,
		StripeSubscriptionID: "sub_old",
		Status:               models.SubscriptionStatusActive,
	})

	err := r.HandleSubscriptionUpdated(context.Background(), SubscriptionEvent{
		StripeSubscriptionID: "sub_unseen",
		UserID:               user.ID,
		Status:               models.SubscriptionStatusPastDue,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusPastDue, repo.subscriptionByUser(user.ID).Status)
}

func TestHandleSubscriptionDeleted(t *testing.T) {
	r, repo, _ := newTestReconciler()
	user := repo.addUser(models.User{Name: "Carla", HasActiveSubscription: true})
	repo.addSubscription(models.Subscription{
		UserID:               user.ID,
		StripeSubscriptionID: "sub_1",
		Status:               models.SubscriptionStatusActive,
		CancelAtPeriodEnd:    true,
	})

	err := r.HandleSubscriptionDeleted(context.Background(), SubscriptionEvent{
		StripeSubscriptionID: "sub_1",
	})
	require.NoError(t, err)

	sub := repo.subscriptionByUser(user.ID)
	assert.Equal(t, models.SubscriptionStatusCanceled, sub.Status)
	assert.False(t, sub.CancelAtPeriodEnd)
	assert.False(t, repo.users[user.ID].HasActiveSubscription)
}

func TestHandleInvoicePaymentSucceeded(t *testing.T) {
	r, repo, _ := newTestReconciler()
	user := repo.addUser(models.User{Name: "Carla"})
	repo.addSubscription(models.Subscription{
		UserID:               user.ID,
		StripeSubscriptionID: "sub_1",
		Status:               models.SubscriptionStatusPastDue,
	})

	end := periodEnd(30)
	err := r.HandleInvoicePaymentSucceeded(context.Background(), InvoiceEvent{
		StripeSubscriptionID: "sub_1",
		PeriodEnd:            end,
	})
	require.NoError(t, err)

	sub := repo.subscriptionByUser(user.ID)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status, "paid invoice restores the ledger")
	assert.Equal(t, end, sub.CurrentPeriodEnd)
	assert.True(t, repo.users[user.ID].HasActiveSubscription)

	t.Run("replay writes the same values", func(t *testing.T) {
		require.NoError(t, r.HandleInvoicePaymentSucceeded(context.Background(), InvoiceEvent{
			StripeSubscriptionID: "sub_1",
			PeriodEnd:            end,
		}))
		sub := repo.subscriptionByUser(user.ID)
		assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
		assert.Equal(t, end, sub.CurrentPeriodEnd)
	})
}

func TestHandleInvoicePaymentSucceeded_MissingPeriodEnd(t *testing.T) {
	r, _, _ := newTestReconciler()

	err := r.HandleInvoicePaymentSucceeded(context.Background(), InvoiceEvent{
		StripeSubscriptionID: "sub_1",
	})
	assert.Error(t, err)
}

func TestHandleInvoicePaymentFailed(t *testing.T) {
	r, repo, _ := newTestReconciler()
	user := repo.addUser(models.User{Name: "Carla", HasActiveSubscription: true})
	repo.addSubscription(models.Subscription{
		UserID:               user.ID,
		StripeSubscriptionID: "sub_1",
		Status:               models.SubscriptionStatusActive,
	})

	err := r.HandleInvoicePaymentFailed(context.Background(), InvoiceEvent{
		StripeSubscriptionID: "sub_1",
	})
	require.NoError(t, err)

	assert.Equal(t, models.SubscriptionStatusPastDue, repo.subscriptionByUser(user.ID).Status)
	assert.False(t, repo.users[user.ID].HasActiveSubscription)
}

func TestOutOfOrderDeletedThenUpdated(t *testing.T) {
	// A late "updated" delivery after the terminal "deleted" simply mirrors
	// the payload it carries; the processor sends deletions with a canceled
	// status payload, so convergence holds either way. What matters is that
	// neither ordering errors out once the row exists.
	r, repo, _ := newTestReconciler()
	user := repo.addUser(models.User{Name: "Carla"})
	repo.addSubscription(models.Subscription{
		UserID:               user.ID,
		StripeSubscriptionID: "sub_1",
		Status:               models.SubscriptionStatusActive,
	})

	require.NoError(t, r.HandleSubscriptionDeleted(context.Background(), SubscriptionEvent{StripeSubscriptionID: "sub_1"}))
	require.NoError(t, r.HandleSubscriptionUpdated(context.Background(), SubscriptionEvent{
		StripeSubscriptionID: "sub_1",
		Status:               models.SubscriptionStatusCanceled,
	}))

	assert.Equal(t, models.SubscriptionStatusCanceled, repo.subscriptionByUser(user.ID).Status)
	assert.False(t, repo.users[user.ID].HasActiveSubscription)
}

func TestHandleCheckoutCompleted_SubscriptionMode(t *testing.T) {
	r, repo, _ := newTestReconciler()
	user := repo.addUser(models.User{Name: "Carla"})
	plan := repo.addPlan(models.Plan{Name: DefaultPlanName, IsActive: true, IsLatest: true})

	err := r.HandleCheckoutCompleted(context.Background(), CheckoutEvent{
		ProviderEventID:      "evt_1",
		SessionID:            "cs_1",
		Mode:                 "subscription",
		StripeSubscriptionID: "sub_1",
		UserID:               user.ID,
		PlanID:               plan.ID,
	})
	require.NoError(t, err)

	sub := repo.subscriptionByUser(user.ID)
	require.NotNil(t, sub)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.True(t, repo.users[user.ID].HasActiveSubscription)
}

func TestHandleCheckoutCompleted_NoSubscriptionID(t *testing.T) {
	r, repo, _ := newTestReconciler()
	user := repo.addUser(models.User{Name: "Carla"})

	err := r.HandleCheckoutCompleted(context.Background(), CheckoutEvent{
		SessionID: "cs_1",
		Mode:      "subscription",
		UserID:    user.ID,
	})
	require.NoError(t, err, "sessions without a subscription reference are skipped, not failed")
	assert.Nil(t, repo.subscriptionByUser(user.ID))
}

func TestHandleCheckoutCompleted_PaymentMode(t *testing.T) {
	r, repo, _ := newTestReconciler()
	user := repo.addUser(models.User{Name: "Carla"})
	order := repo.addOrder(models.Order{
		UserID:                  user.ID,
		Status:                  models.OrderStatusPending,
		StripeCheckoutSessionID: "cs_pay",
	})

	ev := CheckoutEvent{ProviderEventID: "evt_1", SessionID: "cs_pay", Mode: "payment"}
	require.NoError(t, r.HandleCheckoutCompleted(context.Background(), ev))

	assert.Equal(t, models.OrderStatusCompleted, repo.orders[order.ID].Status)
	require.Len(t, repo.transactions, 1)
	assert.Equal(t, models.OrderStatusPending, repo.transactions[0].StatusBefore)
	assert.Equal(t, models.OrderStatusCompleted, repo.transactions[0].StatusAfter)

	t.Run("replay on terminal order is a no-op", func(t *testing.T) {
		require.NoError(t, r.HandleCheckoutCompleted(context.Background(), ev))
		assert.Len(t, repo.transactions, 1, "terminal orders record no further transitions")
	})
}

func TestHandleCheckoutExpired(t *testing.T) {
	r, repo, _ := newTestReconciler()
	order := repo.addOrder(models.Order{
		UserID:                  1,
		Status:                  models.OrderStatusPending,
		StripeCheckoutSessionID: "cs_pay",
	})

	t.Run("subscription mode ignored", func(t *testing.T) {
		require.NoError(t, r.HandleCheckoutExpired(context.Background(), CheckoutEvent{
			SessionID: "cs_pay", Mode: "subscription",
		}))
		assert.Equal(t, models.OrderStatusPending, repo.orders[order.ID].Status)
	})

	t.Run("payment mode expires the order", func(t *testing.T) {
		require.NoError(t, r.HandleCheckoutExpired(context.Background(), CheckoutEvent{
			SessionID: "cs_pay", Mode: "payment",
		}))
		assert.Equal(t, models.OrderStatusExpired, repo.orders[order.ID].Status)
	})

	t.Run("unknown session is tolerated", func(t *testing.T) {
		require.NoError(t, r.HandleCheckoutExpired(context.Background(), CheckoutEvent{
			SessionID: "cs_missing", Mode: "payment",
		}))
	})
}

func TestRecordWebhookEvent(t *testing.T) {
	r, _, _ := newTestReconciler()
	ctx := context.Background()

	t.Run("first delivery creates the row", func(t *testing.T) {
		created, stored, err := r.RecordWebhookEvent(ctx, WebhookEventInput{
			Provider:        "Stripe",
			ProviderEventID: "evt_1",
			EventType:       EventSubscriptionCreated,
			PayloadJSON:     `{"id":"evt_1"}`,
			SignatureValid:  true,
		})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "stripe", stored.Provider)
		assert.Nil(t, stored.ProcessedAt)
	})

	t.Run("duplicate delivery is detected", func(t *testing.T) {
		created, stored, err := r.RecordWebhookEvent(ctx, WebhookEventInput{
			Provider:        ProviderStripe,
			ProviderEventID: "evt_1",
			EventType:       EventSubscriptionCreated,
			PayloadJSON:     `{"id":"evt_1"}`,
			SignatureValid:  true,
		})
		require.NoError(t, err)
		assert.False(t, created)
		require.NotNil(t, stored)
	})

	t.Run("missing event id falls back to payload hash", func(t *testing.T) {
		created, stored, err := r.RecordWebhookEvent(ctx, WebhookEventInput{
			Provider:    ProviderStripe,
			PayloadJSON: `{"some":"payload"}`,
		})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Contains(t, stored.ProviderEventID, "hash:")

		created, _, err = r.RecordWebhookEvent(ctx, WebhookEventInput{
			Provider:    ProviderStripe,
			PayloadJSON: `{"some":"payload"}`,
		})
		require.NoError(t, err)
		assert.False(t, created, "identical payload hashes to the same dedupe key")
	})

	t.Run("missing provider is rejected", func(t *testing.T) {
		_, _, err := r.RecordWebhookEvent(ctx, WebhookEventInput{PayloadJSON: "{}"})
		assert.Error(t, err)
	})
}

func TestMarkWebhookProcessed(t *testing.T) {
	r, repo, _ := newTestReconciler()
	ctx := context.Background()

	_, stored, err := r.RecordWebhookEvent(ctx, WebhookEventInput{
		Provider:        ProviderStripe,
		ProviderEventID: "evt_1",
		PayloadJSON:     "{}",
	})
	require.NoError(t, err)

	require.NoError(t, r.MarkWebhookProcessed(ctx, stored.ID, assert.AnError))

	saved := repo.webhookEvents[ProviderStripe+"/evt_1"]
	assert.Nil(t, saved.ProcessedAt, "a failed apply must leave the event unprocessed")
	assert.Equal(t, assert.AnError.Error(), saved.ProcessingError)

	require.NoError(t, r.MarkWebhookProcessed(ctx, stored.ID, nil))
	require.NotNil(t, saved.ProcessedAt)
	assert.Empty(t, saved.ProcessingError, "a later success clears the stored error")

	t.Run("zero id is rejected", func(t *testing.T) {
		assert.Error(t, r.MarkWebhookProcessed(ctx, 0, nil))
	})
}

// A handler failure returns 500 to the provider, which redelivers. The
// redelivered duplicate must not look processed, otherwise its effect would
// be lost for good.
func TestWebhookRedeliveryAfterFailedApply(t *testing.T) {
	r, repo, _ := newTestReconciler()
	ctx := context.Background()

	input := WebhookEventInput{
		Provider:        ProviderStripe,
		ProviderEventID: "evt_retry",
		EventType:       "invoice.payment_succeeded",
		PayloadJSON:     "{}",
		SignatureValid:  true,
	}

	created, stored, err := r.RecordWebhookEvent(ctx, input)
	require.NoError(t, err)
	require.True(t, created)

	// No ledger row yet, the handler fails and the delivery is 500'd.
	applyErr := r.HandleInvoicePaymentSucceeded(ctx, InvoiceEvent{
		StripeSubscriptionID: "sub_unknown",
		PeriodEnd:            periodEnd(30),
	})
	require.ErrorIs(t, applyErr, ErrLedgerRowMissing)
	require.NoError(t, r.MarkWebhookProcessed(ctx, stored.ID, applyErr))

	// Redelivery: the dedupe row exists but is not processed, so the caller
	// must run the handler again instead of acking.
	created, stored, err = r.RecordWebhookEvent(ctx, input)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Nil(t, stored.ProcessedAt)

	// The ledger row has appeared in the meantime; this attempt succeeds.
	user := repo.addUser(models.User{Name: "Carla"})
	plan := repo.addPlan(models.Plan{Name: DefaultPlanName, IsActive: true, IsLatest: true})
	repo.addSubscription(models.Subscription{
		UserID:               user.ID,
		PlanID:               plan.ID,
		StripeSubscriptionID: "sub_unknown",
		Status:               models.SubscriptionStatusPastDue,
	})

	require.NoError(t, r.HandleInvoicePaymentSucceeded(ctx, InvoiceEvent{
		StripeSubscriptionID: "sub_unknown",
		PeriodEnd:            periodEnd(30),
	}))
	require.NoError(t, r.MarkWebhookProcessed(ctx, stored.ID, nil))

	saved := repo.webhookEvents[ProviderStripe+"/evt_retry"]
	require.NotNil(t, saved.ProcessedAt)
	assert.Empty(t, saved.ProcessingError)
}

func TestApply_Dispatch(t *testing.T) {
	r, repo, _ := newTestReconciler()
	user := repo.addUser(models.User{Name: "Carla"})
	plan := repo.addPlan(models.Plan{Name: DefaultPlanName, IsActive: true, IsLatest: true})

	err := r.Apply(context.Background(), &WebhookEvent{
		Type: EventSubscriptionCreated,
		Subscription: &SubscriptionEvent{
			StripeSubscriptionID: "sub_1",
			UserID:               user.ID,
			PlanID:               plan.ID,
			Status:               models.SubscriptionStatusActive,
		},
	})
	require.NoError(t, err)
	assert.NotNil(t, repo.subscriptionByUser(user.ID))

	t.Run("unrecognized type is a no-op", func(t *testing.T) {
		assert.NoError(t, r.Apply(context.Background(), &WebhookEvent{Type: "customer.created"}))
	})
}
