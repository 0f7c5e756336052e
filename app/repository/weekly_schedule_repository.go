package repository

import (
	"github.com/CareNestHQ/CareNest/app/models"
	"gorm.io/gorm"
)

// weeklyScheduleRepository implements the WeeklyScheduleRepository interface
type weeklyScheduleRepository struct {
	db *gorm.DB
}

// NewWeeklyScheduleRepository creates a new weekly schedule repository instance
func NewWeeklyScheduleRepository(db *gorm.DB) WeeklyScheduleRepository {
	return &weeklyScheduleRepository{db: db}
}

// Create creates a new schedule slot in the database
func (r *weeklyScheduleRepository) Create(ws *models.WeeklySchedule) error {
	return r.db.Create(ws).Error
}

// GetByID retrieves a schedule slot by its ID
func (r *weeklyScheduleRepository) GetByID(id uint) (*models.WeeklySchedule, error) {
	var ws models.WeeklySchedule
	err := r.db.First(&ws, id).Error
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// ListByBooking retrieves a booking's slots ordered by weekday and start time
func (r *weeklyScheduleRepository) ListByBooking(bookingID uint) ([]models.WeeklySchedule, error) {
	var slots []models.WeeklySchedule
	err := r.db.Where("booking_id = ?", bookingID).
		Order("weekday ASC, start_time ASC").Find(&slots).Error
	return slots, err
}

// Update updates an existing schedule slot in the database
func (r *weeklyScheduleRepository) Update(ws *models.WeeklySchedule) error {
	return r.db.Save(ws).Error
}

// Delete deletes a schedule slot by its ID
func (r *weeklyScheduleRepository) Delete(id uint) error {
	return r.db.Delete(&models.WeeklySchedule{}, id).Error
}

// DeleteByBooking deletes every slot belonging to a booking
func (r *weeklyScheduleRepository) DeleteByBooking(bookingID uint) error {
	return r.db.Where("booking_id = ?", bookingID).Delete(&models.WeeklySchedule{}).Error
}
