package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/CareNestHQ/CareNest/app/models"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// AutoCompleteExpired finds active bookings whose service window has ended
// and completes each one. Bookings are processed independently, one failed
// row never blocks the rest of the sweep. Returns the number of bookings
// completed.
func (s *Service) AutoCompleteExpired(ctx context.Context) (int, error) {
	expired, err := s.repo.ExpiredActiveBookings(s.now())
	if err != nil {
		return 0, fmt.Errorf("load expired bookings: %w", err)
	}

	completed := 0
	for i := range expired {
		b := &expired[i]
		if err := s.Complete(ctx, b.ID); err != nil {
			// Complete re-checks the status, so a booking cancelled
			// between the listing and this call is skipped here.
			if errors.Is(err, ErrNotActive) || errors.Is(err, ErrBookingNotFound) {
				continue
			}
			log.Errorf("[Booking] auto-complete of booking %d failed: %v", b.ID, err)
			continue
		}
		completed++

		s.bestEffortNotify(b.SeekerID, models.NotificationTypeBooking, "Your booking has been marked as completed.", b.ID)
		if final, err := s.repo.FinalSelection(b.ID); err == nil {
			s.bestEffortNotify(final.CaregiverID, models.NotificationTypeBooking, "A booking you worked on has been marked as completed.", b.ID)
		}
	}
	return completed, nil
}

// SendServiceReminder emails the seeker and the hired caregiver that the
// service starts soon. The booking state is re-checked at send time because
// the reminder was scheduled at assignment and the booking may have been
// cancelled since. Both mails go out concurrently and best-effort.
func (s *Service) SendServiceReminder(ctx context.Context, bookingID uint) error {
	_ = ctx
	booking, err := s.repo.BookingDetail(bookingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Infof("[Booking] reminder skipped, booking %d no longer exists", bookingID)
		return nil
	}
	if err != nil {
		return err
	}
	if booking.Status != models.BookingStatusActive {
		log.Infof("[Booking] reminder skipped, booking %d is %s", bookingID, booking.Status)
		return nil
	}

	date := booking.AppointmentDate.Format("02.01.2006")
	subject := "Reminder: your care service starts soon"

	recipients := make([]reminderRecipient, 0, 2)
	if seeker, err := s.repo.UserByID(booking.SeekerID); err == nil && seeker.Email != "" {
		body := fmt.Sprintf("Hello %s,\n\nthis is a reminder that your booked care service starts on %s.\n\nYour CareNest team", seeker.Name, date)
		recipients = append(recipients, reminderRecipient{seeker.Email, body})
	}
	if final, err := s.repo.FinalSelection(bookingID); err == nil {
		if giver, err := s.repo.UserByID(final.CaregiverID); err == nil && giver.Email != "" {
			body := fmt.Sprintf("Hello %s,\n\nthis is a reminder that a care service you are assigned to starts on %s.\n\nYour CareNest team", giver.Name, date)
			recipients = append(recipients, reminderRecipient{giver.Email, body})
		}
	}

	var wg sync.WaitGroup
	for _, r := range recipients {
		wg.Add(1)
		go func(r reminderRecipient) {
			defer wg.Done()
			if err := s.sendMail(r.email, subject, r.body); err != nil {
				log.Warnf("[Booking] reminder mail to %s failed: %v", r.email, err)
			}
		}(r)
	}
	wg.Wait()
	return nil
}

type reminderRecipient struct {
	email string
	body  string
}
