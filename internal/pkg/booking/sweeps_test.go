package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CareNestHQ/CareNest/app/models"
)

func TestAutoCompleteExpired(t *testing.T) {
	ctx := context.Background()

	t.Run("completes every expired active booking", func(t *testing.T) {
		svc, repo, notifier, _ := newTestService()
		past := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

		first := repo.addBooking(models.Booking{SeekerID: 1, Status: models.BookingStatusActive, AppointmentDate: past, DurationDays: 2})
		second := repo.addBooking(models.Booking{SeekerID: 2, Status: models.BookingStatusActive, AppointmentDate: past, DurationDays: 1})
		repo.addCandidate(models.BookingCaregiver{BookingID: first.ID, CaregiverID: 10, IsFinalSelection: true, Status: models.CandidateStatusAssigned})

		completed, err := svc.AutoCompleteExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, completed)

		assert.Equal(t, models.BookingStatusCompleted, repo.bookings[first.ID].Status)
		assert.Equal(t, models.BookingStatusCompleted, repo.bookings[second.ID].Status)

		assert.True(t, notifier.notified(1))
		assert.True(t, notifier.notified(2))
		assert.True(t, notifier.notified(10), "hired caregiver learns about the completion")
	})

	t.Run("running bookings are left alone", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		future := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

		running := repo.addBooking(models.Booking{SeekerID: 1, Status: models.BookingStatusActive, AppointmentDate: future, DurationDays: 10})
		pending := repo.addBooking(models.Booking{SeekerID: 2, Status: models.BookingStatusPending, AppointmentDate: future.AddDate(0, -1, 0)})

		completed, err := svc.AutoCompleteExpired(ctx)
		require.NoError(t, err)
		assert.Zero(t, completed)
		assert.Equal(t, models.BookingStatusActive, repo.bookings[running.ID].Status)
		assert.Equal(t, models.BookingStatusPending, repo.bookings[pending.ID].Status)
	})

	t.Run("a booking cancelled mid-sweep is skipped, the rest go through", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		past := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

		cancelled := repo.addBooking(models.Booking{SeekerID: 1, Status: models.BookingStatusActive, AppointmentDate: past})
		healthy := repo.addBooking(models.Booking{SeekerID: 2, Status: models.BookingStatusActive, AppointmentDate: past})

		// The listing returned a stale copy; by the time the sweep reaches
		// this row someone has cancelled the booking.
		stale := staleListRepository{fakeRepository: repo}
		stale.stale = append(stale.stale, *repo.bookings[cancelled.ID], *repo.bookings[healthy.ID])
		repo.bookings[cancelled.ID].Status = models.BookingStatusCancelled
		svc.repo = &stale

		completed, err := svc.AutoCompleteExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, completed)
		assert.Equal(t, models.BookingStatusCancelled, repo.bookings[cancelled.ID].Status, "cancelled booking stays cancelled")
		assert.Equal(t, models.BookingStatusCompleted, repo.bookings[healthy.ID].Status)
	})
}

// staleListRepository serves a frozen expired-bookings listing over the live
// store, mimicking a cancellation racing the sweep.
type staleListRepository struct {
	*fakeRepository
	stale []models.Booking
}

func (r *staleListRepository) ExpiredActiveBookings(time.Time) ([]models.Booking, error) {
	return r.stale, nil
}

func TestSendServiceReminder(t *testing.T) {
	ctx := context.Background()

	t.Run("mails seeker and hired caregiver", func(t *testing.T) {
		svc, repo, _, sender := newTestService()
		seeker := repo.addUser(models.User{Name: "Sonja", Email: "sonja@example.com", Role: models.ROLE_SEEKER})
		giver := repo.addUser(models.User{Name: "Greta", Email: "greta@example.com", Role: models.ROLE_GIVER})
		booking := repo.addBooking(models.Booking{
			SeekerID:        seeker.ID,
			Status:          models.BookingStatusActive,
			AppointmentDate: time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
		})
		repo.addCandidate(models.BookingCaregiver{
			BookingID:        booking.ID,
			CaregiverID:      giver.ID,
			IsFinalSelection: true,
			Status:           models.CandidateStatusAssigned,
		})

		require.NoError(t, svc.SendServiceReminder(ctx, booking.ID))
		assert.ElementsMatch(t, []string{"sonja@example.com", "greta@example.com"}, sender.sent)
	})

	t.Run("non-active booking sends nothing", func(t *testing.T) {
		svc, repo, _, sender := newTestService()
		seeker := repo.addUser(models.User{Name: "Sonja", Email: "sonja@example.com"})
		booking := repo.addBooking(models.Booking{SeekerID: seeker.ID, Status: models.BookingStatusCancelled})

		require.NoError(t, svc.SendServiceReminder(ctx, booking.ID))
		assert.Empty(t, sender.sent)
	})

	t.Run("deleted booking is a no-op", func(t *testing.T) {
		svc, _, _, sender := newTestService()
		require.NoError(t, svc.SendServiceReminder(ctx, 999))
		assert.Empty(t, sender.sent)
	})

	t.Run("mail failure does not fail the job", func(t *testing.T) {
		svc, repo, _, sender := newTestService()
		sender.fail = true
		seeker := repo.addUser(models.User{Name: "Sonja", Email: "sonja@example.com"})
		booking := repo.addBooking(models.Booking{
			SeekerID:        seeker.ID,
			Status:          models.BookingStatusActive,
			AppointmentDate: time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
		})

		assert.NoError(t, svc.SendServiceReminder(ctx, booking.ID))
	})
}
