package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// CareService is a catalog entry for a bookable type of care.
type CareService struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=3,max=150"`
	Slug        string         `gorm:"type:varchar(191);uniqueIndex;not null" json:"slug" validate:"required,min=3,max=191"`
	Description string         `gorm:"type:text" json:"description" validate:"max=5000"`
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *CareService) Validate() error {
	v := validator.New()
	return v.Struct(s)
}
