package models

import "time"

type Testimonial struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AuthorName string    `gorm:"type:varchar(150);not null" json:"author_name" validate:"required,min=2,max=150"`
	Quote      string    `gorm:"type:text;not null" json:"quote" validate:"required,max=2000"`
	Rating     int       `gorm:"default:5" json:"rating" validate:"min=1,max=5"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
