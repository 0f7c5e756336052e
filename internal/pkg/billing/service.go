package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/CareNestHQ/CareNest/app/models"
	"gorm.io/gorm"
)

// DefaultPlanName is the plan sold to caregivers when no explicit plan name
// is requested.
const DefaultPlanName = "caregiver_membership"

// Service provides the user-facing subscription operations. It originates
// state transitions on the processor; the reconciler later confirms them from
// webhook events.
type Service struct {
	repo   Repository
	stripe StripeClient
}

// NewService creates a subscription service from an injected repository and
// processor client.
func NewService(repo Repository, stripe StripeClient) *Service {
	return &Service{repo: repo, stripe: stripe}
}

// NewServiceFromDB creates a subscription service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, stripe StripeClient) *Service {
	return NewService(NewRepository(db), stripe)
}

// ActiveLatestPlan is the plan-registry lookup: the currently sold tier for a
// plan name. A missing row is a configuration error, not a crash.
func (s *Service) ActiveLatestPlan(name string) (*models.Plan, error) {
	if name == "" {
		name = DefaultPlanName
	}
	plan, err := s.repo.ActiveLatestPlanByName(name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotConfigured
	}
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// PlanByID resolves a plan by primary key.
func (s *Service) PlanByID(id uint) (*models.Plan, error) {
	return s.repo.PlanByID(id)
}

// CreateCheckout starts a subscription checkout for the current latest plan
// and returns the processor redirect URL. Only an *active* subscription
// blocks: canceled or past_due rows are stale and will be overwritten by the
// reconciler's upsert when the new subscription's events arrive.
func (s *Service) CreateCheckout(ctx context.Context, userID uint, planName string) (string, error) {
	sub, err := s.repo.SubscriptionByUserID(userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	if sub != nil && sub.Status == models.SubscriptionStatusActive {
		return "", ErrAlreadySubscribed
	}

	plan, err := s.ActiveLatestPlan(planName)
	if err != nil {
		return "", err
	}
	user, err := s.repo.UserByID(userID)
	if err != nil {
		return "", err
	}

	url, customerID, err := s.stripe.CreateSubscriptionCheckout(ctx, user, plan)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	if customerID != "" && customerID != user.StripeCustomerID {
		if err := s.repo.SetUserStripeCustomerID(userID, customerID); err != nil {
			return "", err
		}
	}
	return url, nil
}

// MySubscription joins ledger, plan and current-latest plan into the
// subscriber view model. Pure read.
func (s *Service) MySubscription(userID uint) (*SubscriptionView, error) {
	sub, err := s.repo.SubscriptionByUserID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSubscription
	}
	if err != nil {
		return nil, err
	}

	view := &SubscriptionView{
		Status:            sub.Status,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		CurrentPeriodEnd:  sub.CurrentPeriodEnd,
	}

	plan, err := s.repo.PlanByID(sub.PlanID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if plan == nil {
		return view, nil
	}
	view.PlanName = plan.Name
	view.Amount = plan.Amount
	view.Currency = plan.Currency
	view.Interval = plan.Interval

	if !plan.IsLatest {
		latest, err := s.repo.ActiveLatestPlanByName(plan.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if latest != nil {
			view.IsOutdatedPrice = true
			view.LatestAmount = latest.Amount
			view.PriceDelta = latest.Amount - plan.Amount
		}
	}
	return view, nil
}

// Cancel schedules cancellation at period end. Access is deliberately kept
// until the processor's deletion event arrives at the reconciler.
func (s *Service) Cancel(ctx context.Context, userID uint) error {
	sub, err := s.requireSubscription(userID)
	if err != nil {
		return err
	}
	if sub.Status != models.SubscriptionStatusActive {
		return ErrSubscriptionNotActive
	}

	if err := s.stripe.SetCancelAtPeriodEnd(ctx, sub.StripeSubscriptionID, true); err != nil {
		return fmt.Errorf("schedule cancellation: %w", err)
	}
	sub.CancelAtPeriodEnd = true
	return s.repo.SaveSubscription(sub)
}

// Reactivate clears a pending cancellation.
func (s *Service) Reactivate(ctx context.Context, userID uint) error {
	sub, err := s.requireSubscription(userID)
	if err != nil {
		return err
	}
	if sub.Status != models.SubscriptionStatusActive {
		return ErrSubscriptionNotActive
	}
	if !sub.CancelAtPeriodEnd {
		return ErrNotPendingCancel
	}

	if err := s.stripe.SetCancelAtPeriodEnd(ctx, sub.StripeSubscriptionID, false); err != nil {
		return fmt.Errorf("clear cancellation: %w", err)
	}
	sub.CancelAtPeriodEnd = false
	return s.repo.SaveSubscription(sub)
}

// Renew starts a fresh checkout at the current price for a subscriber whose
// subscription is winding down at period end.
func (s *Service) Renew(ctx context.Context, userID uint, planName string) (string, error) {
	sub, err := s.requireSubscription(userID)
	if err != nil {
		return "", err
	}
	if sub.Status != models.SubscriptionStatusActive {
		return "", ErrSubscriptionNotActive
	}
	if !sub.CancelAtPeriodEnd {
		return "", ErrNotPendingCancel
	}

	plan, err := s.ActiveLatestPlan(planName)
	if err != nil {
		return "", err
	}
	user, err := s.repo.UserByID(userID)
	if err != nil {
		return "", err
	}
	url, _, err := s.stripe.CreateSubscriptionCheckout(ctx, user, plan)
	if err != nil {
		return "", fmt.Errorf("create renewal checkout: %w", err)
	}
	return url, nil
}

// Status reports the entitlement as the rest of the application sees it.
func (s *Service) Status(userID uint) (bool, string, error) {
	user, err := s.repo.UserByID(userID)
	if err != nil {
		return false, "", err
	}
	sub, err := s.repo.SubscriptionByUserID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user.HasActiveSubscription, "", nil
	}
	if err != nil {
		return false, "", err
	}
	return user.HasActiveSubscription, sub.Status, nil
}

// AdminList pages through all ledger rows.
func (s *Service) AdminList(offset, limit int) ([]models.Subscription, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListSubscriptions(offset, limit)
}

// CreateOrderCheckout starts a one-time purchase checkout and records the
// pending order keyed by the session id.
func (s *Service) CreateOrderCheckout(ctx context.Context, userID uint, planID uint) (string, error) {
	plan, err := s.repo.PlanByID(planID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrPlanNotConfigured
	}
	if err != nil {
		return "", err
	}
	user, err := s.repo.UserByID(userID)
	if err != nil {
		return "", err
	}

	sessionID, url, err := s.stripe.CreateOrderCheckout(ctx, user, plan)
	if err != nil {
		return "", fmt.Errorf("create order checkout: %w", err)
	}

	order := &models.Order{
		UserID:                  userID,
		PlanID:                  plan.ID,
		Amount:                  plan.Amount,
		Currency:                plan.Currency,
		Status:                  models.OrderStatusPending,
		StripeCheckoutSessionID: sessionID,
	}
	if err := s.repo.CreateOrder(order); err != nil {
		return "", err
	}
	return url, nil
}

func (s *Service) requireSubscription(userID uint) (*models.Subscription, error) {
	sub, err := s.repo.SubscriptionByUserID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSubscription
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}
