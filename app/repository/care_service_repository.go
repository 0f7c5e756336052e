package repository

import (
	"github.com/CareNestHQ/CareNest/app/models"
	"gorm.io/gorm"
)

// careServiceRepository implements the CareServiceRepository interface
type careServiceRepository struct {
	db *gorm.DB
}

// NewCareServiceRepository creates a new care service repository instance
func NewCareServiceRepository(db *gorm.DB) CareServiceRepository {
	return &careServiceRepository{db: db}
}

// Create creates a new care service in the database
func (r *careServiceRepository) Create(service *models.CareService) error {
	return r.db.Create(service).Error
}

// GetByID retrieves a care service by its ID
func (r *careServiceRepository) GetByID(id uint) (*models.CareService, error) {
	var service models.CareService
	err := r.db.First(&service, id).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// GetBySlug retrieves an active care service by its slug
func (r *careServiceRepository) GetBySlug(slug string) (*models.CareService, error) {
	var service models.CareService
	err := r.db.Where("slug = ? AND is_active = ?", slug, true).First(&service).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// GetAll retrieves all care services
func (r *careServiceRepository) GetAll() ([]models.CareService, error) {
	var services []models.CareService
	err := r.db.Order("name ASC").Find(&services).Error
	return services, err
}

// GetActive retrieves all active care services
func (r *careServiceRepository) GetActive() ([]models.CareService, error) {
	var services []models.CareService
	err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&services).Error
	return services, err
}

// Update updates an existing care service in the database
func (r *careServiceRepository) Update(service *models.CareService) error {
	return r.db.Save(service).Error
}

// Delete soft deletes a care service by its ID
func (r *careServiceRepository) Delete(id uint) error {
	return r.db.Delete(&models.CareService{}, id).Error
}

// SlugExists checks if a slug already exists
func (r *careServiceRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.CareService{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// SlugExistsExceptID checks if a slug exists excluding a specific ID
func (r *careServiceRepository) SlugExistsExceptID(slug string, id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.CareService{}).Where("slug = ? AND id != ?", slug, id).Count(&count).Error
	return count > 0, err
}
