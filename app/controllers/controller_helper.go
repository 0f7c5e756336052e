package controllers

import (
	"strconv"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/CareNestHQ/CareNest/app/repository"
	"github.com/CareNestHQ/CareNest/internal/pkg/billing"
	"github.com/CareNestHQ/CareNest/internal/pkg/booking"
	"github.com/CareNestHQ/CareNest/internal/pkg/cache"
	"github.com/CareNestHQ/CareNest/internal/pkg/database"
	"github.com/CareNestHQ/CareNest/internal/pkg/mail"
	"github.com/CareNestHQ/CareNest/internal/pkg/notify"
)

// All API responses share one envelope: {"success": bool, "message": string,
// "data": ...}. Clients branch on success and read data only when true.

func jsonSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func jsonCreated(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func jsonError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// parseIDParam reads a positive numeric route parameter.
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(id), nil
}

// parsePagination reads offset/limit query params with sane bounds.
func parsePagination(c *fiber.Ctx) (int, int) {
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}

// Lazily constructed service singletons. Controllers are plain functions in
// this codebase, so shared services hang off package-level state initialized
// on first use, after database and cache are up.
var (
	billingSvcOnce sync.Once
	billingSvc     *billing.Service

	reconcilerOnce sync.Once
	reconciler     *billing.Reconciler

	bookingSvcOnce sync.Once
	bookingSvc     *booking.Service
)

func getBillingService() *billing.Service {
	billingSvcOnce.Do(func() {
		billingSvc = billing.NewServiceFromDB(database.GetDB(), billing.NewStripeClientFromEnv())
	})
	return billingSvc
}

func getReconciler() *billing.Reconciler {
	reconcilerOnce.Do(func() {
		reconciler = billing.NewReconcilerFromDB(database.GetDB(), getNotifier())
	})
	return reconciler
}

func getBookingService() *booking.Service {
	bookingSvcOnce.Do(func() {
		bookingSvc = booking.NewService(booking.NewRepository(database.GetDB()), getNotifier(), mail.SendMail)
	})
	return bookingSvc
}

// getNotifier builds the notifier that backs every service: the inbox row is
// written first, then the payload goes out on the real-time channel.
func getNotifier() notify.Notifier {
	return notify.NewPersistentNotifier(
		repository.GetGlobalFactory().GetNotificationRepository(),
		notify.NewRedisNotifier(cache.GetClient()),
	)
}
