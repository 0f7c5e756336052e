package booking

import (
	"time"

	"github.com/CareNestHQ/CareNest/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the booking service. Not-found
// is reported as gorm.ErrRecordNotFound.
type Repository interface {
	// Transaction runs fn against a repository bound to one DB transaction.
	Transaction(fn func(Repository) error) error

	BookingByID(id uint) (*models.Booking, error)
	// BookingDetail loads the booking with seeker, care service and candidate
	// caregivers (including each caregiver user).
	BookingDetail(id uint) (*models.Booking, error)
	CreateBooking(b *models.Booking) error
	SaveBooking(b *models.Booking) error
	// MarkBookingCancelled conditionally cancels: it only touches rows whose
	// status is not already cancel, and reports whether a row was updated.
	MarkBookingCancelled(id uint, reason string, actorID uint, actorRole string, at time.Time) (bool, error)
	ListBookings(status string, offset, limit int) ([]models.Booking, error)
	RecentBookingsBySeeker(seekerID uint, limit int) ([]models.Booking, error)
	RecentBookingsByCaregiver(caregiverID uint, limit int) ([]models.Booking, error)
	// ExpiredActiveBookings returns active bookings whose covered period ends
	// on or before the given day.
	ExpiredActiveBookings(endOfDay time.Time) ([]models.Booking, error)

	CandidatesByBookingID(bookingID uint) ([]models.BookingCaregiver, error)
	CandidateByBookingAndCaregiver(bookingID, caregiverID uint) (*models.BookingCaregiver, error)
	FinalSelection(bookingID uint) (*models.BookingCaregiver, error)
	CreateCandidate(bc *models.BookingCaregiver) error
	SaveCandidate(bc *models.BookingCaregiver) error
	// ClearFinalSelections sets is_final_selection false on every candidate
	// row of the booking.
	ClearFinalSelections(bookingID uint) error
	// UpdateOtherCandidates sets the given status on every candidate row of
	// the booking except the one for keepCaregiverID.
	UpdateOtherCandidates(bookingID, keepCaregiverID uint, status string) error

	UserByID(id uint) (*models.User, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a booking repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Transaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) BookingByID(id uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *gormRepository) BookingDetail(id uint) (*models.Booking, error) {
	var b models.Booking
	err := r.db.
		Preload("Seeker").
		Preload("CareService").
		Preload("Caregivers").
		Preload("Caregivers.Caregiver").
		First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *gormRepository) CreateBooking(b *models.Booking) error {
	return r.db.Create(b).Error
}

func (r *gormRepository) SaveBooking(b *models.Booking) error {
	return r.db.Save(b).Error
}

func (r *gormRepository) MarkBookingCancelled(id uint, reason string, actorID uint, actorRole string, at time.Time) (bool, error) {
	res := r.db.Model(&models.Booking{}).
		Where("id = ? AND status <> ?", id, models.BookingStatusCancelled).
		Updates(map[string]interface{}{
			"status":              models.BookingStatusCancelled,
			"cancelled_at":        at,
			"cancellation_reason": reason,
			"cancelled_by":        actorID,
			"cancelled_by_type":   actorRole,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRepository) ListBookings(status string, offset, limit int) ([]models.Booking, error) {
	q := r.db.Preload("Seeker").Preload("CareService").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var bookings []models.Booking
	err := q.Offset(offset).Limit(limit).Find(&bookings).Error
	return bookings, err
}

func (r *gormRepository) RecentBookingsBySeeker(seekerID uint, limit int) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.Where("seeker_id = ?", seekerID).
		Preload("CareService").
		Order("created_at DESC").Limit(limit).Find(&bookings).Error
	return bookings, err
}

func (r *gormRepository) RecentBookingsByCaregiver(caregiverID uint, limit int) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.
		Joins("JOIN booking_caregivers bc ON bc.booking_id = bookings.id").
		Where("bc.caregiver_id = ? AND bc.is_final_selection = ?", caregiverID, true).
		Preload("CareService").
		Order("bookings.created_at DESC").Limit(limit).Find(&bookings).Error
	return bookings, err
}

func (r *gormRepository) ExpiredActiveBookings(endOfDay time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.
		Where("status = ?", models.BookingStatusActive).
		Where("DATE_ADD(appointment_date, INTERVAL duration_days - 1 DAY) <= ?", endOfDay).
		Find(&bookings).Error
	return bookings, err
}

func (r *gormRepository) CandidatesByBookingID(bookingID uint) ([]models.BookingCaregiver, error) {
	var rows []models.BookingCaregiver
	err := r.db.Where("booking_id = ?", bookingID).Find(&rows).Error
	return rows, err
}

func (r *gormRepository) CandidateByBookingAndCaregiver(bookingID, caregiverID uint) (*models.BookingCaregiver, error) {
	var row models.BookingCaregiver
	err := r.db.Where("booking_id = ? AND caregiver_id = ?", bookingID, caregiverID).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *gormRepository) FinalSelection(bookingID uint) (*models.BookingCaregiver, error) {
	var row models.BookingCaregiver
	err := r.db.Where("booking_id = ? AND is_final_selection = ?", bookingID, true).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *gormRepository) CreateCandidate(bc *models.BookingCaregiver) error {
	return r.db.Create(bc).Error
}

func (r *gormRepository) SaveCandidate(bc *models.BookingCaregiver) error {
	return r.db.Save(bc).Error
}

func (r *gormRepository) ClearFinalSelections(bookingID uint) error {
	return r.db.Model(&models.BookingCaregiver{}).
		Where("booking_id = ?", bookingID).
		Update("is_final_selection", false).Error
}

func (r *gormRepository) UpdateOtherCandidates(bookingID, keepCaregiverID uint, status string) error {
	return r.db.Model(&models.BookingCaregiver{}).
		Where("booking_id = ? AND caregiver_id <> ?", bookingID, keepCaregiverID).
		Update("status", status).Error
}

func (r *gormRepository) UserByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
