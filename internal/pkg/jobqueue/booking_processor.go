package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
)

// processServiceReminderJob sends the appointment reminder mails for one
// booking. The booking service re-checks the booking state, a cancelled or
// completed booking makes this a logged no-op.
func (q *Queue) processServiceReminderJob(ctx context.Context, job *Job) error {
	payload, err := ServiceReminderJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid reminder payload: %w", err)
	}
	if payload.BookingID == 0 {
		return fmt.Errorf("reminder payload missing booking_id")
	}
	return q.bookings.SendServiceReminder(ctx, payload.BookingID)
}

// processAutoCompleteSweepJob completes every active booking whose service
// window has ended.
func (q *Queue) processAutoCompleteSweepJob(ctx context.Context, job *Job) error {
	payload, err := AutoCompleteSweepJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid sweep payload: %w", err)
	}

	completed, err := q.bookings.AutoCompleteExpired(ctx)
	if err != nil {
		return err
	}
	if completed > 0 {
		log.Infof("[JobQueue] Auto-complete sweep (%s) completed %d bookings", payload.TriggeredBy, completed)
	}
	return nil
}
