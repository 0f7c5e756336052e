package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/CareNestHQ/CareNest/app/models"
	"github.com/CareNestHQ/CareNest/app/repository"
	"github.com/CareNestHQ/CareNest/internal/pkg/jobqueue"
)

// HandleAdminListUsers pages through users, with optional search and role
// filter.
func HandleAdminListUsers(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetUserRepository()

	if query := c.Query("search"); query != "" {
		users, err := repo.Search(query)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "failed to search users")
		}
		return jsonSuccess(c, "", users)
	}

	offset, limit := parsePagination(c)
	var (
		users []models.User
		err   error
	)
	if role := c.Query("role"); role != "" {
		users, err = repo.ListByRole(role, offset, limit)
	} else {
		users, err = repo.List(offset, limit)
	}
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load users")
	}
	return jsonSuccess(c, "", users)
}

type adminUpdateUserRequest struct {
	Status string `json:"status"`
	Role   string `json:"role"`
}

// HandleAdminUpdateUser changes a user's status or role.
func HandleAdminUpdateUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid user id")
	}
	var req adminUpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "user not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to load user")
	}

	if req.Status != "" {
		user.Status = req.Status
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if err := user.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid user data")
	}
	if err := repo.Update(user); err != nil {
		log.Errorf("[Admin] user update failed for %d: %v", id, err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to update user")
	}
	return jsonSuccess(c, "user updated", user)
}

// HandleAdminDeleteUser soft deletes a user account.
func HandleAdminDeleteUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid user id")
	}
	if err := repository.GetGlobalFactory().GetUserRepository().Delete(id); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete user")
	}
	return jsonSuccess(c, "user deleted", nil)
}

// HandleAdminDashboardStats returns headline counts plus a 30-day
// registration series.
func HandleAdminDashboardStats(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetUserRepository()

	total, err := repo.Count()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load statistics")
	}
	seekers, err := repo.CountByRole(models.ROLE_SEEKER)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load statistics")
	}
	givers, err := repo.CountByRole(models.ROLE_GIVER)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load statistics")
	}

	end := time.Now()
	start := end.AddDate(0, 0, -30)
	daily, err := repo.GetDailyStats(start, end)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load statistics")
	}

	return jsonSuccess(c, "", fiber.Map{
		"users": fiber.Map{
			"total":   total,
			"seekers": seekers,
			"givers":  givers,
		},
		"daily_registrations": daily,
	})
}

// HandleAdminQueueStats surfaces the job queue state for operations.
func HandleAdminQueueStats(c *fiber.Ctx) error {
	queue := jobqueue.GetManager().GetQueue()
	ctx := c.UserContext()

	stats, err := queue.GetJobStats(ctx)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load queue stats")
	}
	pending, err := queue.GetQueueSize(ctx)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load queue stats")
	}
	processing, err := queue.GetProcessingSize(ctx)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load queue stats")
	}
	delayed, err := queue.GetDelayedSize(ctx)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load queue stats")
	}

	return jsonSuccess(c, "", fiber.Map{
		"pending":    pending,
		"processing": processing,
		"delayed":    delayed,
		"by_status":  stats,
	})
}

// HandleAdminTriggerSweep enqueues a one-off auto-complete sweep.
func HandleAdminTriggerSweep(c *fiber.Ctx) error {
	if err := jobqueue.GetManager().RunAutoCompleteSweepOnce(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to enqueue sweep")
	}
	return jsonSuccess(c, "sweep enqueued", nil)
}

// HandleAdminListCacheKeys scans the Redis keyspace for job and cache keys.
// An optional "pattern" query narrows the scan.
func HandleAdminListCacheKeys(c *fiber.Ctx) error {
	patterns := []string{jobqueue.JobKeyPrefix + "*", jobqueue.JobQueueKey, jobqueue.JobProcessingKey, jobqueue.JobDelayedKey}
	if pattern := c.Query("pattern"); pattern != "" {
		patterns = []string{pattern}
	}

	repo := repository.GetGlobalFactory().GetCacheRepository()
	keys, err := repo.FindKeysByPatterns(patterns)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to scan cache keys")
	}

	entries := make([]fiber.Map, 0, len(keys))
	for _, key := range keys {
		entry := fiber.Map{"key": key}
		if ttl, err := repo.GetTTL(key); err == nil {
			entry["ttl_seconds"] = int64(ttl.Seconds())
		}
		entries = append(entries, entry)
	}
	return jsonSuccess(c, "", entries)
}

// HandleAdminGetCacheKey returns the raw value and TTL behind a single key.
func HandleAdminGetCacheKey(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" {
		return jsonError(c, fiber.StatusBadRequest, "missing key")
	}

	repo := repository.GetGlobalFactory().GetCacheRepository()
	value, err := repo.GetValue(key)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "key not found")
	}
	ttl, err := repo.GetTTL(key)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to read key ttl")
	}

	return jsonSuccess(c, "", fiber.Map{
		"key":         key,
		"value":       value,
		"ttl_seconds": int64(ttl.Seconds()),
	})
}

type adminDeleteCacheKeysRequest struct {
	Keys []string `json:"keys"`
}

// HandleAdminDeleteCacheKeys removes the given keys, typically stale job
// records left by failed workers.
func HandleAdminDeleteCacheKeys(c *fiber.Ctx) error {
	var req adminDeleteCacheKeysRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Keys) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "no keys given")
	}

	deleted, err := repository.GetGlobalFactory().GetCacheRepository().DeleteKeys(req.Keys)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete cache keys")
	}
	return jsonSuccess(c, "cache keys deleted", fiber.Map{"deleted": deleted})
}
