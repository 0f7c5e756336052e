package jobqueue

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/CareNestHQ/CareNest/app/repository"
	"github.com/CareNestHQ/CareNest/internal/pkg/booking"
	"github.com/CareNestHQ/CareNest/internal/pkg/cache"
	"github.com/CareNestHQ/CareNest/internal/pkg/database"
	"github.com/CareNestHQ/CareNest/internal/pkg/env"
	"github.com/CareNestHQ/CareNest/internal/pkg/notify"
)

// Manager manages the global job queue and background tasks
type Manager struct {
	queue       *Queue
	sweepTicker *time.Ticker
	stopCh      chan struct{}
	wg          sync.WaitGroup
	mu          sync.Mutex
	running     bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		workerCount := envInt("JOBQUEUE_WORKER_COUNT", 3)
		notifier := notify.NewPersistentNotifier(
			repository.GetGlobalFactory().GetNotificationRepository(),
			notify.NewRedisNotifier(cache.GetClient()),
		)
		bookings := booking.NewServiceFromDB(database.GetDB(), notifier)

		globalManager = &Manager{
			queue:  NewQueue(workerCount, bookings),
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	// Start the job queue
	m.queue.Start()

	// Auto-complete sweep - configurable interval
	sweepInterval := time.Duration(envInt("BOOKING_SWEEP_INTERVAL_MINUTES", 60)) * time.Minute
	m.sweepTicker = time.NewTicker(sweepInterval)
	m.wg.Add(1)
	go m.sweepWorker(sweepInterval)

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.sweepTicker != nil {
		m.sweepTicker.Stop()
	}

	// Signal workers to stop
	close(m.stopCh)
	m.running = false

	// Wait for background workers to finish
	m.wg.Wait()

	// Stop the job queue
	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// sweepWorker periodically enqueues an auto-complete sweep so expired
// bookings get closed even if nobody touches them.
func (m *Manager) sweepWorker(interval time.Duration) {
	defer m.wg.Done()
	log.Infof("[JobQueue Manager] Started booking sweep worker (interval: %s)", interval)

	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Booking sweep worker stopping")
			return
		case <-m.sweepTicker.C:
			payload := AutoCompleteSweepJobPayload{TriggeredBy: "scheduler"}
			if _, err := m.queue.EnqueueJob(JobTypeAutoCompleteSweep, payload.ToMap()); err != nil {
				log.Errorf("[JobQueue Manager] Error enqueuing auto-complete sweep: %v", err)
			}
		}
	}
}

// ScheduleServiceReminder schedules the reminder mails for a booking. The
// reminder fires a configurable lead time before the appointment; a booking
// starting sooner than that gets the reminder right away.
func (m *Manager) ScheduleServiceReminder(bookingID uint, appointmentDate time.Time) error {
	lead := time.Duration(envInt("BOOKING_REMINDER_LEAD_HOURS", 24)) * time.Hour
	runAt := appointmentDate.Add(-lead)

	payload := ServiceReminderJobPayload{BookingID: bookingID}
	_, err := m.queue.EnqueueJobAt(JobTypeServiceReminder, payload.ToMap(), runAt)
	return err
}

// RunAutoCompleteSweepOnce exposes a manual trigger for a single sweep (admin use).
func (m *Manager) RunAutoCompleteSweepOnce() error {
	payload := AutoCompleteSweepJobPayload{TriggeredBy: "manual"}
	_, err := m.queue.EnqueueJob(JobTypeAutoCompleteSweep, payload.ToMap())
	return err
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func envInt(key string, fallback int) int {
	raw := env.GetEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
