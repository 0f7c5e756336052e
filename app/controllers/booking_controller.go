package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/CareNestHQ/CareNest/app/models"
	"github.com/CareNestHQ/CareNest/app/repository"
	"github.com/CareNestHQ/CareNest/internal/pkg/booking"
	"github.com/CareNestHQ/CareNest/internal/pkg/jobqueue"
	"github.com/CareNestHQ/CareNest/internal/pkg/usercontext"
)

type createBookingRequest struct {
	CareServiceID   uint   `json:"care_service_id"`
	AppointmentDate string `json:"appointment_date"`
	DurationDays    int    `json:"duration_days"`
	Notes           string `json:"notes"`
	CaregiverIDs    []uint `json:"caregiver_ids"`
}

// HandleCreateBooking creates a booking request with a caregiver shortlist.
func HandleCreateBooking(c *fiber.Ctx) error {
	var req createBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	date, err := time.Parse("2006-01-02", req.AppointmentDate)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "appointment_date must be YYYY-MM-DD")
	}

	b, err := getBookingService().Request(c.UserContext(), booking.RequestInput{
		SeekerID:        usercontext.GetUserID(c),
		CareServiceID:   req.CareServiceID,
		AppointmentDate: date,
		DurationDays:    req.DurationDays,
		Notes:           req.Notes,
		CaregiverIDs:    req.CaregiverIDs,
	})
	if err != nil {
		return bookingError(c, err, "failed to create booking")
	}
	return jsonCreated(c, "booking created", b)
}

// HandleBookingDetail returns one booking with its candidates. Visible to
// the owning seeker, shortlisted caregivers and admins.
func HandleBookingDetail(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid booking id")
	}

	b, err := getBookingService().Detail(id)
	if err != nil {
		return bookingError(c, err, "failed to load booking")
	}
	if !canViewBooking(c, b) {
		return jsonError(c, fiber.StatusForbidden, "insufficient permissions")
	}
	return jsonSuccess(c, "", b)
}

// HandleMyBookings returns the caller's recent bookings in their role.
func HandleMyBookings(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	bookings, err := getBookingService().Recent(usercontext.GetUserID(c), usercontext.GetRole(c), limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load bookings")
	}
	return jsonSuccess(c, "", bookings)
}

// HandleAdminListBookings pages through all bookings, optionally filtered
// by status.
func HandleAdminListBookings(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)
	bookings, err := getBookingService().List(c.Query("status"), offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load bookings")
	}
	return jsonSuccess(c, "", bookings)
}

type assignCaregiverRequest struct {
	CaregiverID uint `json:"caregiver_id"`
}

// HandleAssignCaregiver hires one caregiver and activates the booking. Only
// the owning seeker or an admin may assign; a reminder is scheduled for the
// appointment once the assignment sticks.
func HandleAssignCaregiver(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid booking id")
	}
	var req assignCaregiverRequest
	if err := c.BodyParser(&req); err != nil || req.CaregiverID == 0 {
		return jsonError(c, fiber.StatusBadRequest, "caregiver_id is required")
	}

	svc := getBookingService()
	b, err := svc.Detail(id)
	if err != nil {
		return bookingError(c, err, "failed to load booking")
	}
	if !isOwnerOrAdmin(c, b.SeekerID) {
		return jsonError(c, fiber.StatusForbidden, "insufficient permissions")
	}

	if err := svc.AssignCaregiver(c.UserContext(), id, req.CaregiverID); err != nil {
		return bookingError(c, err, "failed to assign caregiver")
	}

	if err := jobqueue.GetManager().ScheduleServiceReminder(id, b.AppointmentDate); err != nil {
		log.Warnf("[Booking] failed to schedule reminder for booking %d: %v", id, err)
	}
	return jsonSuccess(c, "caregiver assigned", nil)
}

// HandleCompleteBooking marks an active booking completed.
func HandleCompleteBooking(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid booking id")
	}

	svc := getBookingService()
	b, err := svc.Detail(id)
	if err != nil {
		return bookingError(c, err, "failed to load booking")
	}
	if !isOwnerOrAdmin(c, b.SeekerID) {
		return jsonError(c, fiber.StatusForbidden, "insufficient permissions")
	}

	if err := svc.Complete(c.UserContext(), id); err != nil {
		return bookingError(c, err, "failed to complete booking")
	}
	return jsonSuccess(c, "booking completed", nil)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

// HandleCancelBooking terminally cancels a booking.
func HandleCancelBooking(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid booking id")
	}
	var req cancelBookingRequest
	_ = c.BodyParser(&req)

	svc := getBookingService()
	b, err := svc.Detail(id)
	if err != nil {
		return bookingError(c, err, "failed to load booking")
	}
	if !isOwnerOrAdmin(c, b.SeekerID) {
		return jsonError(c, fiber.StatusForbidden, "insufficient permissions")
	}

	ctx := usercontext.GetUserContext(c)
	if err := svc.Cancel(c.UserContext(), id, req.Reason, ctx.UserID, ctx.Role); err != nil {
		return bookingError(c, err, "failed to cancel booking")
	}
	return jsonSuccess(c, "booking cancelled", nil)
}

type scheduleSlotRequest struct {
	Weekday   int    `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// HandleAddScheduleSlot adds a weekly slot to a booking.
func HandleAddScheduleSlot(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid booking id")
	}
	var req scheduleSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	b, err := getBookingService().Detail(id)
	if err != nil {
		return bookingError(c, err, "failed to load booking")
	}
	if !isOwnerOrAdmin(c, b.SeekerID) {
		return jsonError(c, fiber.StatusForbidden, "insufficient permissions")
	}

	slot := &models.WeeklySchedule{
		BookingID: id,
		Weekday:   req.Weekday,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if err := slot.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid schedule slot")
	}
	if err := repository.GetGlobalFactory().GetWeeklyScheduleRepository().Create(slot); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to save schedule slot")
	}
	return jsonCreated(c, "schedule slot added", slot)
}

// HandleListScheduleSlots returns a booking's weekly slots.
func HandleListScheduleSlots(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid booking id")
	}
	b, err := getBookingService().Detail(id)
	if err != nil {
		return bookingError(c, err, "failed to load booking")
	}
	if !canViewBooking(c, b) {
		return jsonError(c, fiber.StatusForbidden, "insufficient permissions")
	}
	slots, err := repository.GetGlobalFactory().GetWeeklyScheduleRepository().ListByBooking(id)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load schedule")
	}
	return jsonSuccess(c, "", slots)
}

// HandleDeleteScheduleSlot removes one weekly slot.
func HandleDeleteScheduleSlot(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid booking id")
	}
	slotID, err := parseIDParam(c, "slotId")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid slot id")
	}

	b, err := getBookingService().Detail(id)
	if err != nil {
		return bookingError(c, err, "failed to load booking")
	}
	if !isOwnerOrAdmin(c, b.SeekerID) {
		return jsonError(c, fiber.StatusForbidden, "insufficient permissions")
	}

	repo := repository.GetGlobalFactory().GetWeeklyScheduleRepository()
	slot, err := repo.GetByID(slotID)
	if err != nil || slot.BookingID != id {
		return jsonError(c, fiber.StatusNotFound, "schedule slot not found")
	}
	if err := repo.Delete(slotID); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete schedule slot")
	}
	return jsonSuccess(c, "schedule slot deleted", nil)
}

func isOwnerOrAdmin(c *fiber.Ctx, seekerID uint) bool {
	return usercontext.IsAdmin(c) || usercontext.GetUserID(c) == seekerID
}

func canViewBooking(c *fiber.Ctx, b *models.Booking) bool {
	if isOwnerOrAdmin(c, b.SeekerID) {
		return true
	}
	userID := usercontext.GetUserID(c)
	for _, cand := range b.Caregivers {
		if cand.CaregiverID == userID {
			return true
		}
	}
	return false
}

// bookingError maps domain errors to 4xx and everything else to 500.
func bookingError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, booking.ErrBookingNotFound):
		return jsonError(c, fiber.StatusNotFound, "booking not found")
	case errors.Is(err, booking.ErrDateInPast):
		return jsonError(c, fiber.StatusBadRequest, "appointment date must not be in the past")
	case errors.Is(err, booking.ErrNotEnoughCaregivers):
		return jsonError(c, fiber.StatusBadRequest, "at least 3 distinct caregivers must be shortlisted")
	case errors.Is(err, booking.ErrBookingTerminal):
		return jsonError(c, fiber.StatusConflict, "booking is already closed")
	case errors.Is(err, booking.ErrAlreadyCancelled):
		return jsonError(c, fiber.StatusConflict, "booking is already cancelled")
	case errors.Is(err, booking.ErrNotActive):
		return jsonError(c, fiber.StatusConflict, "booking is not active")
	default:
		log.Errorf("[Booking] %s: %v", fallback, err)
		return jsonError(c, fiber.StatusInternalServerError, fallback)
	}
}
