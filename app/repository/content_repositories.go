package repository

import (
	"github.com/CareNestHQ/CareNest/app/models"
	"gorm.io/gorm"
)

// faqRepository implements the FaqRepository interface
type faqRepository struct {
	db *gorm.DB
}

// NewFaqRepository creates a new FAQ repository instance
func NewFaqRepository(db *gorm.DB) FaqRepository {
	return &faqRepository{db: db}
}

func (r *faqRepository) Create(faq *models.Faq) error {
	return r.db.Create(faq).Error
}

func (r *faqRepository) GetByID(id uint) (*models.Faq, error) {
	var faq models.Faq
	err := r.db.First(&faq, id).Error
	if err != nil {
		return nil, err
	}
	return &faq, nil
}

// GetActive retrieves active FAQ entries in display order
func (r *faqRepository) GetActive() ([]models.Faq, error) {
	var faqs []models.Faq
	err := r.db.Where("is_active = ?", true).Order("sort_order ASC, id ASC").Find(&faqs).Error
	return faqs, err
}

func (r *faqRepository) GetAll() ([]models.Faq, error) {
	var faqs []models.Faq
	err := r.db.Order("sort_order ASC, id ASC").Find(&faqs).Error
	return faqs, err
}

func (r *faqRepository) Update(faq *models.Faq) error {
	return r.db.Save(faq).Error
}

func (r *faqRepository) Delete(id uint) error {
	return r.db.Delete(&models.Faq{}, id).Error
}

// testimonialRepository implements the TestimonialRepository interface
type testimonialRepository struct {
	db *gorm.DB
}

// NewTestimonialRepository creates a new testimonial repository instance
func NewTestimonialRepository(db *gorm.DB) TestimonialRepository {
	return &testimonialRepository{db: db}
}

func (r *testimonialRepository) Create(t *models.Testimonial) error {
	return r.db.Create(t).Error
}

func (r *testimonialRepository) GetByID(id uint) (*models.Testimonial, error) {
	var t models.Testimonial
	err := r.db.First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *testimonialRepository) GetActive() ([]models.Testimonial, error) {
	var ts []models.Testimonial
	err := r.db.Where("is_active = ?", true).Order("created_at DESC").Find(&ts).Error
	return ts, err
}

func (r *testimonialRepository) GetAll() ([]models.Testimonial, error) {
	var ts []models.Testimonial
	err := r.db.Order("created_at DESC").Find(&ts).Error
	return ts, err
}

func (r *testimonialRepository) Update(t *models.Testimonial) error {
	return r.db.Save(t).Error
}

func (r *testimonialRepository) Delete(id uint) error {
	return r.db.Delete(&models.Testimonial{}, id).Error
}
