package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusActive    = "active"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancel"
)

// Booking is one care service request. Status moves pending -> active ->
// completed, with cancel as a terminal side exit before completion.
type Booking struct {
	ID                 uint          `gorm:"primaryKey" json:"id"`
	SeekerID           uint          `gorm:"not null;index" json:"seeker_id"`
	Seeker             User          `gorm:"foreignKey:SeekerID" json:"seeker,omitempty"`
	CareServiceID      uint          `gorm:"not null;index" json:"care_service_id"`
	CareService        CareService   `gorm:"foreignKey:CareServiceID" json:"care_service,omitempty"`
	AppointmentDate    time.Time     `gorm:"not null;index" json:"appointment_date" validate:"required"`
	DurationDays       int           `gorm:"not null;default:1" json:"duration_days" validate:"min=1"`
	Notes              string        `gorm:"type:text" json:"notes" validate:"max=2000"`
	Status             string        `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	CompletedAt        *time.Time    `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
	CancelledAt        *time.Time    `gorm:"type:timestamp;default:null" json:"cancelled_at,omitempty"`
	CancellationReason string        `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CancelledBy        *uint         `gorm:"default:null" json:"cancelled_by,omitempty"`
	CancelledByType    string        `gorm:"type:varchar(32)" json:"cancelled_by_type,omitempty"`
	Caregivers         []BookingCaregiver `gorm:"foreignKey:BookingID" json:"caregivers,omitempty"`
	CreatedAt          time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *Booking) Validate() error {
	v := validator.New()
	return v.Struct(b)
}

// EndDate is the last day covered by the booking.
func (b *Booking) EndDate() time.Time {
	days := b.DurationDays
	if days < 1 {
		days = 1
	}
	return b.AppointmentDate.AddDate(0, 0, days-1)
}

// IsTerminal reports whether the booking can no longer transition.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCompleted || b.Status == BookingStatusCancelled
}
