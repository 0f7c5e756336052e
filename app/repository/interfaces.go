package repository

import (
	"time"

	"github.com/CareNestHQ/CareNest/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	ListByRole(role string, offset, limit int) ([]models.User, error)
	ListActiveCaregivers(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	CountByRole(role string) (int64, error)
	Search(query string) ([]models.User, error)
	GetDailyStats(startDate, endDate time.Time) ([]DailyStats, error)
}

// CareServiceRepository defines the interface for the care service catalog
type CareServiceRepository interface {
	Create(service *models.CareService) error
	GetByID(id uint) (*models.CareService, error)
	GetBySlug(slug string) (*models.CareService, error)
	GetAll() ([]models.CareService, error)
	GetActive() ([]models.CareService, error)
	Update(service *models.CareService) error
	Delete(id uint) error
	SlugExists(slug string) (bool, error)
	SlugExistsExceptID(slug string, id uint) (bool, error)
}

// PageRepository defines the interface for page-related operations
type PageRepository interface {
	Create(page *models.Page) error
	GetByID(id uint) (*models.Page, error)
	GetBySlug(slug string) (*models.Page, error)
	GetAll() ([]models.Page, error)
	GetActive() ([]models.Page, error)
	Update(page *models.Page) error
	Delete(id uint) error
	SlugExists(slug string) (bool, error)
	SlugExistsExceptID(slug string, id uint) (bool, error)
}

// BlogRepository defines the interface for blog-related operations
type BlogRepository interface {
	Create(post *models.BlogPost) error
	GetByID(id uint) (*models.BlogPost, error)
	GetBySlug(slug string) (*models.BlogPost, error)
	GetPublished(offset, limit int) ([]models.BlogPost, error)
	GetAll(offset, limit int) ([]models.BlogPost, error)
	Update(post *models.BlogPost) error
	Delete(id uint) error
	Count() (int64, error)
	SlugExists(slug string) (bool, error)
	SlugExistsExceptID(slug string, id uint) (bool, error)
}

// FaqRepository defines the interface for FAQ entries
type FaqRepository interface {
	Create(faq *models.Faq) error
	GetByID(id uint) (*models.Faq, error)
	GetActive() ([]models.Faq, error)
	GetAll() ([]models.Faq, error)
	Update(faq *models.Faq) error
	Delete(id uint) error
}

// TestimonialRepository defines the interface for testimonials
type TestimonialRepository interface {
	Create(t *models.Testimonial) error
	GetByID(id uint) (*models.Testimonial, error)
	GetActive() ([]models.Testimonial, error)
	GetAll() ([]models.Testimonial, error)
	Update(t *models.Testimonial) error
	Delete(id uint) error
}

// NotificationRepository defines the interface for in-app notifications
type NotificationRepository interface {
	Create(n *models.Notification) error
	GetByID(id uint) (*models.Notification, error)
	ListByUser(userID uint, offset, limit int) ([]models.Notification, error)
	CountUnread(userID uint) (int64, error)
	MarkRead(id, userID uint) error
	MarkAllRead(userID uint) error
	Delete(id, userID uint) error
}

// WeeklyScheduleRepository defines the interface for per-booking schedule slots
type WeeklyScheduleRepository interface {
	Create(ws *models.WeeklySchedule) error
	GetByID(id uint) (*models.WeeklySchedule, error)
	ListByBooking(bookingID uint) ([]models.WeeklySchedule, error)
	Update(ws *models.WeeklySchedule) error
	Delete(id uint) error
	DeleteByBooking(bookingID uint) error
}

// CacheRepository defines the interface for Redis keyspace inspection
type CacheRepository interface {
	FindKeysByPatterns(patterns []string) ([]string, error)
	GetValue(key string) (string, error)
	GetTTL(key string) (time.Duration, error)
	DeleteKeys(keys []string) (int64, error)
}

// DailyStats is one day's count in a time series (registrations, bookings).
type DailyStats struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Repositories struct holds all repository instances
type Repositories struct {
	User           UserRepository
	CareService    CareServiceRepository
	Page           PageRepository
	Blog           BlogRepository
	Faq            FaqRepository
	Testimonial    TestimonialRepository
	Notification   NotificationRepository
	WeeklySchedule WeeklyScheduleRepository
	Cache          CacheRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:           NewUserRepository(db),
		CareService:    NewCareServiceRepository(db),
		Page:           NewPageRepository(db),
		Blog:           NewBlogRepository(db),
		Faq:            NewFaqRepository(db),
		Testimonial:    NewTestimonialRepository(db),
		Notification:   NewNotificationRepository(db),
		WeeklySchedule: NewWeeklyScheduleRepository(db),
		Cache:          NewCacheRepository(),
	}
}
