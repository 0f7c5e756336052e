package billing

import "errors"

// Domain errors surfaced as 4xx by the controllers. Everything else coming
// out of the billing package is treated as an internal failure.
var (
	ErrPlanNotConfigured     = errors.New("no active plan is configured")
	ErrAlreadySubscribed     = errors.New("user already has an active subscription")
	ErrNoSubscription        = errors.New("user has no subscription")
	ErrSubscriptionNotActive = errors.New("subscription is not active")
	ErrNotPendingCancel      = errors.New("subscription is not pending cancellation")
	ErrLedgerRowMissing      = errors.New("no ledger row for subscription")
	ErrMissingUserRef        = errors.New("event carries no resolvable user reference")
)

// IsDomainError reports whether err should map to a 400 rather than a 500.
func IsDomainError(err error) bool {
	switch {
	case errors.Is(err, ErrPlanNotConfigured),
		errors.Is(err, ErrAlreadySubscribed),
		errors.Is(err, ErrNoSubscription),
		errors.Is(err, ErrSubscriptionNotActive),
		errors.Is(err, ErrNotPendingCancel):
		return true
	default:
		return false
	}
}
