package models

import "time"

const (
	CandidateStatusShortlisted = "shortlisted"
	CandidateStatusAssigned    = "assigned"
	CandidateStatusRejected    = "rejected"
	CandidateStatusCancelled   = "cancelled"
	CandidateStatusCompleted   = "completed"
)

// BookingCaregiver links a booking to one candidate caregiver. At most one
// row per booking carries IsFinalSelection=true; the booking service
// re-asserts that inside its assignment transaction.
type BookingCaregiver struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	BookingID   uint    `gorm:"not null;index:ux_booking_caregivers_pair,unique,priority:1" json:"booking_id"`
	Booking     Booking `gorm:"foreignKey:BookingID" json:"-"`
	CaregiverID uint    `gorm:"not null;index:ux_booking_caregivers_pair,unique,priority:2" json:"caregiver_id"`
	Caregiver   User    `gorm:"foreignKey:CaregiverID" json:"caregiver,omitempty"`
	// IsUsersChoice marks caregivers the seeker shortlisted at creation, as
	// opposed to ones an admin added during assignment.
	IsUsersChoice    bool       `gorm:"default:false" json:"is_users_choice"`
	IsFinalSelection bool       `gorm:"default:false;index" json:"is_final_selection"`
	Status           string     `gorm:"type:varchar(32);not null;default:'shortlisted';index" json:"status"`
	CancelledAt      *time.Time `gorm:"type:timestamp;default:null" json:"cancelled_at,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
