package billing

import (
	"time"

	"github.com/CareNestHQ/CareNest/app/models"
	"gorm.io/gorm"
)

// fakeRepository is an in-memory Repository for reconciler and service tests.
// It hands out copies so a mutated result only sticks after an explicit Save,
// matching how the GORM implementation behaves.
type fakeRepository struct {
	plans         map[uint]*models.Plan
	subscriptions map[uint]*models.Subscription
	users         map[uint]*models.User
	orders        map[uint]*models.Order
	transactions  []*models.PaymentTransaction
	webhookEvents map[string]*models.BillingWebhookEvent
	nextID        uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		plans:         make(map[uint]*models.Plan),
		subscriptions: make(map[uint]*models.Subscription),
		users:         make(map[uint]*models.User),
		orders:        make(map[uint]*models.Order),
		webhookEvents: make(map[string]*models.BillingWebhookEvent),
	}
}

func (f *fakeRepository) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeRepository) addUser(u models.User) *models.User {
	if u.ID == 0 {
		u.ID = f.id()
	}
	f.users[u.ID] = &u
	return &u
}

func (f *fakeRepository) addPlan(p models.Plan) *models.Plan {
	if p.ID == 0 {
		p.ID = f.id()
	}
	f.plans[p.ID] = &p
	return &p
}

func (f *fakeRepository) addSubscription(s models.Subscription) *models.Subscription {
	if s.ID == 0 {
		s.ID = f.id()
	}
	f.subscriptions[s.ID] = &s
	return &s
}

func (f *fakeRepository) addOrder(o models.Order) *models.Order {
	if o.ID == 0 {
		o.ID = f.id()
	}
	f.orders[o.ID] = &o
	return &o
}

func (f *fakeRepository) subscriptionByUser(userID uint) *models.Subscription {
	for _, s := range f.subscriptions {
		if s.UserID == userID {
			return s
		}
	}
	return nil
}

func (f *fakeRepository) Transaction(fn func(Repository) error) error {
	return fn(f)
}

func (f *fakeRepository) ActiveLatestPlanByName(name string) (*models.Plan, error) {
	for _, p := range f.plans {
		if p.Name == name && p.IsActive && p.IsLatest {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) PlanByID(id uint) (*models.Plan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepository) PlanByStripePriceID(priceID string) (*models.Plan, error) {
	for _, p := range f.plans {
		if p.StripePriceID == priceID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) SubscriptionByStripeID(stripeSubscriptionID string) (*models.Subscription, error) {
	for _, s := range f.subscriptions {
		if s.StripeSubscriptionID == stripeSubscriptionID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) SubscriptionByUserID(userID uint) (*models.Subscription, error) {
	if s := f.subscriptionByUser(userID); s != nil {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) CreateSubscription(sub *models.Subscription) error {
	sub.ID = f.id()
	cp := *sub
	f.subscriptions[cp.ID] = &cp
	return nil
}

func (f *fakeRepository) SaveSubscription(sub *models.Subscription) error {
	if sub.ID == 0 {
		return f.CreateSubscription(sub)
	}
	cp := *sub
	f.subscriptions[cp.ID] = &cp
	return nil
}

func (f *fakeRepository) ListSubscriptions(offset, limit int) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, s := range f.subscriptions {
		out = append(out, *s)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepository) UserByID(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepository) SetUserEntitlement(userID uint, active bool) error {
	if u, ok := f.users[userID]; ok {
		u.HasActiveSubscription = active
	}
	return nil
}

func (f *fakeRepository) SetUserStripeCustomerID(userID uint, customerID string) error {
	if u, ok := f.users[userID]; ok {
		u.StripeCustomerID = customerID
	}
	return nil
}

func (f *fakeRepository) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	key := event.Provider + "/" + event.ProviderEventID
	if existing, ok := f.webhookEvents[key]; ok {
		cp := *existing
		return false, &cp, nil
	}
	event.ID = f.id()
	cp := *event
	f.webhookEvents[key] = &cp
	stored := cp
	return true, &stored, nil
}

func (f *fakeRepository) MarkWebhookProcessed(id uint, processingError string) error {
	for _, ev := range f.webhookEvents {
		if ev.ID == id {
			ev.ProcessingError = processingError
			if processingError == "" {
				now := time.Now()
				ev.ProcessedAt = &now
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepository) OrderByCheckoutSessionID(sessionID string) (*models.Order, error) {
	for _, o := range f.orders {
		if o.StripeCheckoutSessionID == sessionID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) CreateOrder(order *models.Order) error {
	order.ID = f.id()
	cp := *order
	f.orders[cp.ID] = &cp
	return nil
}

func (f *fakeRepository) SaveOrder(order *models.Order) error {
	cp := *order
	f.orders[cp.ID] = &cp
	return nil
}

func (f *fakeRepository) AppendTransaction(txn *models.PaymentTransaction) error {
	cp := *txn
	f.transactions = append(f.transactions, &cp)
	return nil
}
