package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/CareNestHQ/CareNest/app/controllers"
	"github.com/CareNestHQ/CareNest/app/models"
	"github.com/CareNestHQ/CareNest/internal/pkg/middleware"
)

type ApiRouter struct {
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	// Resolve bearer tokens globally; route groups gate on the result.
	app.Use(middleware.UserContextMiddleware)

	// Webhooks sit outside /api: no rate limit, no CORS preflight, the
	// signature check is the only gate.
	app.Post("/webhooks/stripe", controllers.HandleStripeWebhook)

	api := app.Group("/api", cors.New(), limiter.New(limiter.Config{Max: 120}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": true,
			"message": "CareNest API",
		})
	})

	v1 := api.Group("/v1")

	// Auth
	auth := v1.Group("/auth")
	auth.Post("/register", controllers.HandleRegister)
	auth.Post("/login", controllers.HandleLogin)
	auth.Get("/me", middleware.RequireAuth, controllers.HandleMe)
	auth.Put("/profile", middleware.RequireAuth, controllers.HandleUpdateProfile)
	auth.Put("/password", middleware.RequireAuth, controllers.HandleChangePassword)

	// Public content
	v1.Get("/pages", controllers.HandleListPages)
	v1.Get("/pages/:slug", controllers.HandleGetPage)
	v1.Get("/blog", controllers.HandleListBlogPosts)
	v1.Get("/blog/:slug", controllers.HandleGetBlogPost)
	v1.Get("/faqs", controllers.HandleListFaqs)
	v1.Get("/testimonials", controllers.HandleListTestimonials)
	v1.Get("/care-services", controllers.HandleListCareServices)
	v1.Get("/care-services/:slug", controllers.HandleGetCareService)
	v1.Get("/caregivers", controllers.HandleListCaregivers)

	// Subscription (caregiver membership, givers only)
	subs := v1.Group("/subscription", middleware.RequireAuth, middleware.RequireRole(models.ROLE_GIVER))
	subs.Post("/checkout", controllers.HandleCreateCheckout)
	subs.Get("/me", controllers.HandleMySubscription)
	subs.Get("/status", controllers.HandleSubscriptionStatus)
	subs.Post("/cancel", controllers.HandleCancelSubscription)
	subs.Post("/reactivate", controllers.HandleReactivateSubscription)
	subs.Post("/renew", controllers.HandleRenewSubscription)

	// One-time purchases
	orders := v1.Group("/orders", middleware.RequireAuth, middleware.RequireRole(models.ROLE_GIVER))
	orders.Post("/checkout", controllers.HandleCreateOrderCheckout)

	// Bookings
	bookings := v1.Group("/bookings", middleware.RequireAuth)
	bookings.Post("/", middleware.RequireRole(models.ROLE_SEEKER), controllers.HandleCreateBooking)
	bookings.Get("/", controllers.HandleMyBookings)
	bookings.Get("/:id", controllers.HandleBookingDetail)
	bookings.Post("/:id/assign", controllers.HandleAssignCaregiver)
	bookings.Post("/:id/complete", controllers.HandleCompleteBooking)
	bookings.Post("/:id/cancel", controllers.HandleCancelBooking)
	bookings.Get("/:id/schedule", controllers.HandleListScheduleSlots)
	bookings.Post("/:id/schedule", controllers.HandleAddScheduleSlot)
	bookings.Delete("/:id/schedule/:slotId", controllers.HandleDeleteScheduleSlot)

	// Notifications
	notifications := v1.Group("/notifications", middleware.RequireAuth)
	notifications.Get("/", controllers.HandleListNotifications)
	notifications.Post("/read-all", controllers.HandleMarkAllNotificationsRead)
	notifications.Post("/:id/read", controllers.HandleMarkNotificationRead)
	notifications.Delete("/:id", controllers.HandleDeleteNotification)

	// Admin
	admin := v1.Group("/admin", middleware.RequireAdmin)
	admin.Get("/users", controllers.HandleAdminListUsers)
	admin.Put("/users/:id", controllers.HandleAdminUpdateUser)
	admin.Delete("/users/:id", controllers.HandleAdminDeleteUser)
	admin.Get("/stats", controllers.HandleAdminDashboardStats)
	admin.Get("/bookings", controllers.HandleAdminListBookings)
	admin.Get("/subscriptions", controllers.HandleAdminListSubscriptions)
	admin.Get("/queues", controllers.HandleAdminQueueStats)
	admin.Post("/sweep", controllers.HandleAdminTriggerSweep)
	admin.Get("/cache/keys", controllers.HandleAdminListCacheKeys)
	admin.Get("/cache/key", controllers.HandleAdminGetCacheKey)
	admin.Delete("/cache/keys", controllers.HandleAdminDeleteCacheKeys)

	admin.Post("/pages", controllers.HandleAdminCreatePage)
	admin.Put("/pages/:id", controllers.HandleAdminUpdatePage)
	admin.Delete("/pages/:id", controllers.HandleAdminDeletePage)
	admin.Post("/blog", controllers.HandleAdminCreateBlogPost)
	admin.Put("/blog/:id", controllers.HandleAdminUpdateBlogPost)
	admin.Delete("/blog/:id", controllers.HandleAdminDeleteBlogPost)
	admin.Post("/care-services", controllers.HandleAdminCreateCareService)
	admin.Put("/care-services/:id", controllers.HandleAdminUpdateCareService)
	admin.Delete("/care-services/:id", controllers.HandleAdminDeleteCareService)
	admin.Post("/faqs", controllers.HandleAdminCreateFaq)
	admin.Put("/faqs/:id", controllers.HandleAdminUpdateFaq)
	admin.Delete("/faqs/:id", controllers.HandleAdminDeleteFaq)
	admin.Post("/testimonials", controllers.HandleAdminCreateTestimonial)
	admin.Delete("/testimonials/:id", controllers.HandleAdminDeleteTestimonial)
}
