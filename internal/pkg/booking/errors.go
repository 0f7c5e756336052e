package booking

import "errors"

var (
	ErrDateInPast          = errors.New("appointment date must not be in the past")
	ErrNotEnoughCaregivers = errors.New("at least 3 distinct caregivers must be shortlisted")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrBookingTerminal     = errors.New("booking is already completed or cancelled")
	ErrAlreadyCancelled    = errors.New("booking is already cancelled")
	ErrNotActive           = errors.New("booking is not active")
)

// IsDomainError reports whether err should map to a 400 rather than a 500.
func IsDomainError(err error) bool {
	switch {
	case errors.Is(err, ErrDateInPast),
		errors.Is(err, ErrNotEnoughCaregivers),
		errors.Is(err, ErrBookingTerminal),
		errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrNotActive):
		return true
	default:
		return false
	}
}
