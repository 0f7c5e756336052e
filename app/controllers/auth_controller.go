package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/CareNestHQ/CareNest/app/models"
	"github.com/CareNestHQ/CareNest/app/repository"
	"github.com/CareNestHQ/CareNest/internal/pkg/security"
	"github.com/CareNestHQ/CareNest/internal/pkg/usercontext"
	"github.com/CareNestHQ/CareNest/internal/pkg/utils"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a new seeker or caregiver account and returns an
// access token. Admin accounts are never self-service.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	role := req.Role
	if role == "" {
		role = models.ROLE_SEEKER
	}
	if role != models.ROLE_SEEKER && role != models.ROLE_GIVER {
		return jsonError(c, fiber.StatusBadRequest, "role must be seeker or giver")
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password, role)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid registration data")
	}
	user.AvatarURL = utils.GetGravatarURL(user.Email, 200)

	repo := repository.GetGlobalFactory().GetUserRepository()
	if existing, err := repo.GetByEmail(req.Email); err == nil && existing != nil {
		return jsonError(c, fiber.StatusConflict, "email is already registered")
	}
	if err := repo.Create(user); err != nil {
		log.Errorf("[Auth] user creation failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "registration failed")
	}

	token, err := security.IssueAccessToken(user, security.TokenSecret())
	if err != nil {
		log.Errorf("[Auth] token generation failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "registration failed")
	}

	return jsonCreated(c, "registration successful", fiber.Map{
		"token": token,
		"user":  user,
	})
}

// HandleLogin verifies credentials and returns an access token.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		log.Errorf("[Auth] login lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "login failed")
	}

	if !user.CheckPassword(req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid credentials")
	}
	if !user.IsActive() {
		return jsonError(c, fiber.StatusForbidden, "account is not active")
	}

	token, err := security.IssueAccessToken(user, security.TokenSecret())
	if err != nil {
		log.Errorf("[Auth] token generation failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "login failed")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := repo.Update(user); err != nil {
		log.Warnf("[Auth] failed to update last login for user %d: %v", user.ID, err)
	}

	return jsonSuccess(c, "login successful", fiber.Map{
		"token": token,
		"user":  user,
	})
}

// HandleMe returns the authenticated user's account.
func HandleMe(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "user not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to load user")
	}
	return jsonSuccess(c, "", user)
}

type updateProfileRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

// HandleUpdateProfile updates the authenticated user's profile fields.
func HandleUpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(usercontext.GetUserID(c))
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "user not found")
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	user.Phone = req.Phone
	user.Bio = req.Bio
	user.AvatarURL = req.AvatarURL

	if err := user.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid profile data")
	}
	if err := repo.Update(user); err != nil {
		log.Errorf("[Auth] profile update failed for user %d: %v", user.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "profile update failed")
	}
	return jsonSuccess(c, "profile updated", user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword changes the authenticated user's password.
func HandleChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.NewPassword) < 6 {
		return jsonError(c, fiber.StatusBadRequest, "password must have at least 6 characters")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(usercontext.GetUserID(c))
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "user not found")
	}
	if !user.CheckPassword(req.CurrentPassword) {
		return jsonError(c, fiber.StatusUnauthorized, "current password is wrong")
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "password change failed")
	}
	if err := repo.Update(user); err != nil {
		log.Errorf("[Auth] password change failed for user %d: %v", user.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "password change failed")
	}
	return jsonSuccess(c, "password changed", nil)
}

// HandleListCaregivers returns active caregivers a seeker can shortlist.
func HandleListCaregivers(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)
	caregivers, err := repository.GetGlobalFactory().GetUserRepository().ListActiveCaregivers(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load caregivers")
	}
	return jsonSuccess(c, "", caregivers)
}
