package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CareNestHQ/CareNest/app/models"
	"github.com/CareNestHQ/CareNest/internal/pkg/mail"
	"github.com/CareNestHQ/CareNest/internal/pkg/notify"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// MinShortlistedCaregivers is the smallest shortlist a seeker may propose.
const MinShortlistedCaregivers = 3

// Service owns the booking lifecycle: creation, caregiver assignment,
// completion, cancellation and the scheduled sweeps. All multi-row writes
// that carry an invariant run inside one repository transaction; the
// notification and email side effects run after commit and never fail the
// operation.
type Service struct {
	repo     Repository
	notifier notify.Notifier
	sendMail mail.Sender
	now      func() time.Time
}

// NewService creates a booking service from injected collaborators. A nil
// notifier or sender disables that side channel.
func NewService(repo Repository, notifier notify.Notifier, sender mail.Sender) *Service {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if sender == nil {
		sender = func(string, string, string) error { return nil }
	}
	return &Service{repo: repo, notifier: notifier, sendMail: sender, now: time.Now}
}

// NewServiceFromDB creates a booking service from a GORM DB handle with the
// SMTP mailer and the given notifier.
func NewServiceFromDB(db *gorm.DB, notifier notify.Notifier) *Service {
	return NewService(NewRepository(db), notifier, mail.SendMail)
}

// RequestInput is the payload for a new booking request.
type RequestInput struct {
	SeekerID        uint
	CareServiceID   uint
	AppointmentDate time.Time
	DurationDays    int
	Notes           string
	CaregiverIDs    []uint
}

// Request validates and creates a booking together with its shortlisted
// caregiver rows in one transaction, so a failed association insert never
// leaves an orphaned booking.
func (s *Service) Request(ctx context.Context, in RequestInput) (*models.Booking, error) {
	_ = ctx
	if dateOnly(in.AppointmentDate).Before(dateOnly(s.now())) {
		return nil, ErrDateInPast
	}

	distinct := make([]uint, 0, len(in.CaregiverIDs))
	seen := make(map[uint]struct{}, len(in.CaregiverIDs))
	for _, id := range in.CaregiverIDs {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}
	if len(distinct) < MinShortlistedCaregivers {
		return nil, ErrNotEnoughCaregivers
	}

	if in.DurationDays < 1 {
		in.DurationDays = 1
	}
	booking := &models.Booking{
		SeekerID:        in.SeekerID,
		CareServiceID:   in.CareServiceID,
		AppointmentDate: in.AppointmentDate,
		DurationDays:    in.DurationDays,
		Notes:           in.Notes,
		Status:          models.BookingStatusPending,
	}

	err := s.repo.Transaction(func(tx Repository) error {
		if err := tx.CreateBooking(booking); err != nil {
			return err
		}
		for _, caregiverID := range distinct {
			row := &models.BookingCaregiver{
				BookingID:     booking.ID,
				CaregiverID:   caregiverID,
				IsUsersChoice: true,
				Status:        models.CandidateStatusShortlisted,
			}
			if err := tx.CreateCandidate(row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return booking, nil
}

// AssignCaregiver hires one caregiver for the booking and moves it to
// active. The exclusivity invariant (at most one final selection per
// booking) is re-asserted inside the transaction: every row is reset to
// false before the target is set true, so repeated assignments always
// converge to a single final row.
func (s *Service) AssignCaregiver(ctx context.Context, bookingID, caregiverID uint) error {
	_ = ctx
	var seekerID uint
	err := s.repo.Transaction(func(tx Repository) error {
		booking, err := tx.BookingByID(bookingID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		if booking.IsTerminal() {
			return ErrBookingTerminal
		}
		seekerID = booking.SeekerID

		booking.Status = models.BookingStatusActive
		if err := tx.SaveBooking(booking); err != nil {
			return err
		}

		if err := tx.ClearFinalSelections(bookingID); err != nil {
			return err
		}

		candidate, err := tx.CandidateByBookingAndCaregiver(bookingID, caregiverID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Admin assigned someone outside the original shortlist.
			return tx.CreateCandidate(&models.BookingCaregiver{
				BookingID:        bookingID,
				CaregiverID:      caregiverID,
				IsUsersChoice:    false,
				IsFinalSelection: true,
				Status:           models.CandidateStatusAssigned,
			})
		}
		if err != nil {
			return err
		}
		candidate.IsFinalSelection = true
		candidate.Status = models.CandidateStatusAssigned
		return tx.SaveCandidate(candidate)
	})
	if err != nil {
		return err
	}

	s.bestEffortNotify(caregiverID, models.NotificationTypeBooking, "You have been selected for a booking.", bookingID)
	s.bestEffortNotify(seekerID, models.NotificationTypeBooking, "A caregiver has been assigned to your booking.", bookingID)
	return nil
}

// Complete marks an active booking completed and stamps the hired
// caregiver's row. Completion from any other state is rejected.
func (s *Service) Complete(ctx context.Context, bookingID uint) error {
	_ = ctx
	return s.repo.Transaction(func(tx Repository) error {
		booking, err := tx.BookingByID(bookingID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		if booking.Status != models.BookingStatusActive {
			return ErrNotActive
		}

		now := s.now()
		booking.Status = models.BookingStatusCompleted
		booking.CompletedAt = &now
		if err := tx.SaveBooking(booking); err != nil {
			return err
		}

		final, err := tx.FinalSelection(bookingID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		final.Status = models.CandidateStatusCompleted
		return tx.SaveCandidate(final)
	})
}

// Cancel terminally cancels a booking and fans out to its caregiver rows:
// the hired caregiver moves to cancelled, every other candidate to rejected.
// The guard is a conditional update, so a second cancel finds zero rows and
// fails without touching anything.
func (s *Service) Cancel(ctx context.Context, bookingID uint, reason string, actorID uint, actorRole string) error {
	_ = ctx
	var seekerID, hiredID uint
	err := s.repo.Transaction(func(tx Repository) error {
		booking, err := tx.BookingByID(bookingID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		seekerID = booking.SeekerID

		now := s.now()
		cancelled, err := tx.MarkBookingCancelled(bookingID, reason, actorID, actorRole, now)
		if err != nil {
			return err
		}
		if !cancelled {
			return ErrAlreadyCancelled
		}

		final, err := tx.FinalSelection(bookingID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if final != nil {
			hiredID = final.CaregiverID
			final.Status = models.CandidateStatusCancelled
			final.CancelledAt = &now
			if err := tx.SaveCandidate(final); err != nil {
				return err
			}
		}
		return tx.UpdateOtherCandidates(bookingID, hiredID, models.CandidateStatusRejected)
	})
	if err != nil {
		return err
	}

	s.bestEffortNotify(seekerID, models.NotificationTypeBooking, "Your booking has been cancelled.", bookingID)
	if hiredID != 0 {
		s.bestEffortNotify(hiredID, models.NotificationTypeBooking, "A booking you were assigned to has been cancelled.", bookingID)
	}
	return nil
}

// Detail returns the booking with its candidates loaded.
func (s *Service) Detail(bookingID uint) (*models.Booking, error) {
	b, err := s.repo.BookingDetail(bookingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// List pages through bookings, optionally filtered by status.
func (s *Service) List(status string, offset, limit int) ([]models.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListBookings(status, offset, limit)
}

// Recent returns the newest bookings visible to the given user in their
// role: seekers see their own requests, caregivers the bookings they are
// hired for.
func (s *Service) Recent(userID uint, role string, limit int) ([]models.Booking, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	if role == models.ROLE_GIVER {
		return s.repo.RecentBookingsByCaregiver(userID, limit)
	}
	return s.repo.RecentBookingsBySeeker(userID, limit)
}

func (s *Service) bestEffortNotify(userID uint, kind, content string, refID uint) {
	if userID == 0 {
		return
	}
	if err := s.notifier.Notify(userID, notify.Payload{Type: kind, Content: content, RefID: refID}); err != nil {
		log.Warnf("[Booking] notification for user %d failed: %v", userID, err)
	}
}

// dateOnly truncates to the calendar day, the granularity booking dates are
// compared at.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
