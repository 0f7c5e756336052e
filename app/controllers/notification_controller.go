package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/CareNestHQ/CareNest/app/repository"
	"github.com/CareNestHQ/CareNest/internal/pkg/usercontext"
)

// HandleListNotifications returns the caller's notifications, newest first.
func HandleListNotifications(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)
	repo := repository.GetGlobalFactory().GetNotificationRepository()

	userID := usercontext.GetUserID(c)
	notifications, err := repo.ListByUser(userID, offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load notifications")
	}
	unread, err := repo.CountUnread(userID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load notifications")
	}
	return jsonSuccess(c, "", fiber.Map{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// HandleMarkNotificationRead marks one of the caller's notifications read.
func HandleMarkNotificationRead(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid notification id")
	}
	repo := repository.GetGlobalFactory().GetNotificationRepository()
	if err := repo.MarkRead(id, usercontext.GetUserID(c)); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to update notification")
	}
	return jsonSuccess(c, "notification marked as read", nil)
}

// HandleMarkAllNotificationsRead marks all of the caller's notifications read.
func HandleMarkAllNotificationsRead(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetNotificationRepository()
	if err := repo.MarkAllRead(usercontext.GetUserID(c)); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to update notifications")
	}
	return jsonSuccess(c, "all notifications marked as read", nil)
}

// HandleDeleteNotification deletes one of the caller's notifications.
func HandleDeleteNotification(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid notification id")
	}
	repo := repository.GetGlobalFactory().GetNotificationRepository()
	if err := repo.Delete(id, usercontext.GetUserID(c)); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete notification")
	}
	return jsonSuccess(c, "notification deleted", nil)
}
