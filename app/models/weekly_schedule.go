package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// WeeklySchedule is a per-booking recurring time slot.
type WeeklySchedule struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BookingID uint      `gorm:"not null;index" json:"booking_id"`
	Booking   Booking   `gorm:"foreignKey:BookingID" json:"-"`
	Weekday   int       `gorm:"not null" json:"weekday" validate:"min=0,max=6"`
	StartTime string    `gorm:"type:varchar(5);not null" json:"start_time" validate:"required,len=5"`
	EndTime   string    `gorm:"type:varchar(5);not null" json:"end_time" validate:"required,len=5"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (w *WeeklySchedule) Validate() error {
	v := validator.New()
	return v.Struct(w)
}
