package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/salonlux/salon-booking/db"
	"github.com/salonlux/salon-booking/middleware"
	"github.com/salonlux/salon-booking/models"
	"github.com/salonlux/salon-booking/redis"
	"github.com/salonlux/salon-booking/utils"
)

// GetAvailableSlots godoc
// @Summary List bookable slots for a staff member on a date
// @Description List the free slot start times for a staff member, service and date
// @Tags appointments
// @Accept json
// @Produce json
// @Param staff_id path string true "Staff profile ID"
// @Param service_id query string true "Service ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} fiber.Map
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /appointments/slots/{staff_id} [get]
func GetAvailableSlots(c *fiber.Ctx) error {
	staffID := c.Params("staff_id")
	serviceID := c.Query("service_id")
	if staffID == "" || serviceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "staff_id and service_id are required",
			Error:   "missing parameters",
		})
	}

	// Parse in the business time zone so the requested calendar day and
	// the cache key agree regardless of the server's zone.
	date, err := time.ParseInLocation("2006-01-02", c.Query("date"), Engine.Location())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid date, expected YYYY-MM-DD",
			Error:   err.Error(),
		})
	}

	if slots, ok := redis.GetSlots(c.Context(), staffID, serviceID, date); ok {
		return c.JSON(fiber.Map{"date": c.Query("date"), "slots": slots, "cached": true})
	}

	slots, err := Engine.AvailableSlots(c.Context(), staffID, serviceID, date)
	if err != nil {
		return bookingError(c, "Failed to compute availability", err)
	}
	redis.SetSlots(c.Context(), staffID, serviceID, date, slots)

	return c.JSON(fiber.Map{"date": c.Query("date"), "slots": slots})
}

// BookAppointment godoc
// @Summary Book an appointment
// @Description Book a slot with a staff member for a service
// @Tags appointments
// @Accept json
// @Produce json
// @Success 201 {object} models.Appointment
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /appointments [post]
func BookAppointment(c *fiber.Ctx) error {
	type BookInput struct {
		StaffProfileID  string    `json:"staff_profile_id"`
		ServiceID       string    `json:"service_id"`
		AppointmentDate time.Time `json:"appointment_date"`
	}

	input := new(BookInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if input.StaffProfileID == "" || input.ServiceID == "" || input.AppointmentDate.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "staff_profile_id, service_id and appointment_date are required",
			Error:   "missing required fields",
		})
	}

	p := middleware.Principal(c)
	appointment, err := Engine.Book(c.Context(), p.UserID, input.StaffProfileID, input.ServiceID, input.AppointmentDate)
	if err != nil {
		return bookingError(c, "Failed to book appointment", err)
	}
	redis.InvalidateSlots(c.Context(), input.StaffProfileID, input.AppointmentDate)

	return c.Status(fiber.StatusCreated).JSON(appointment)
}

// GetMyAppointments godoc
// @Summary List the caller's appointments
// @Description List appointments for the authenticated customer, or for the staff member's own schedule
// @Tags appointments
// @Accept json
// @Produce json
// @Success 200 {array} models.Appointment
// @Failure 500 {object} utils.ErrorResponse
// @Router /appointments/me [get]
func GetMyAppointments(c *fiber.Ctx) error {
	p := middleware.Principal(c)

	q := db.DB.Preload("Service").Preload("StaffProfile.User").Preload("Customer").
		Order("appointment_date DESC")

	if p.Role == models.RoleStaff {
		var profile models.StaffProfile
		if err := db.DB.First(&profile, "user_id = ?", p.UserID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
				Message: "Staff profile not found",
				Error:   err.Error(),
			})
		}
		q = q.Where("staff_profile_id = ?", profile.ID)
	} else {
		q = q.Where("customer_id = ?", p.UserID)
	}

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := q.Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch appointments",
			Error:   err.Error(),
		})
	}
	return c.JSON(appointments)
}

// GetAppointment godoc
// @Summary Get an appointment by ID
// @Description Get one of the caller's appointments by ID
// @Tags appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} models.Appointment
// @Failure 404 {object} utils.ErrorResponse
// @Router /appointments/{id} [get]
func GetAppointment(c *fiber.Ctx) error {
	p := middleware.Principal(c)

	var appointment models.Appointment
	err := db.DB.Preload("Service").Preload("StaffProfile.User").Preload("Customer").
		First(&appointment, "id = ?", c.Params("id")).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Appointment not found",
			Error:   err.Error(),
		})
	}

	if !p.IsAdmin() && appointment.CustomerID != p.UserID && appointment.StaffProfile.UserID != p.UserID {
		return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
			Message: "You cannot view this appointment",
			Error:   "forbidden",
		})
	}
	return c.JSON(appointment)
}

// CancelAppointment godoc
// @Summary Cancel an appointment
// @Description Cancel a pending or booked appointment, releasing its slot
// @Tags appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} models.Appointment
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /appointments/{id}/cancel [post]
func CancelAppointment(c *fiber.Ctx) error {
	appointment, err := Engine.Cancel(c.Context(), middleware.Principal(c), c.Params("id"))
	if err != nil {
		return bookingError(c, "Failed to cancel appointment", err)
	}
	redis.InvalidateSlots(c.Context(), appointment.StaffProfileID, appointment.AppointmentDate)

	return c.JSON(appointment)
}

// RescheduleAppointment godoc
// @Summary Reschedule an appointment
// @Description Move a booked appointment to a new slot
// @Tags appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} models.Appointment
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /appointments/{id}/reschedule [post]
func RescheduleAppointment(c *fiber.Ctx) error {
	type RescheduleInput struct {
		AppointmentDate time.Time `json:"appointment_date"`
	}

	input := new(RescheduleInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if input.AppointmentDate.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "appointment_date is required",
			Error:   "missing required fields",
		})
	}

	appointment, err := Engine.Reschedule(c.Context(), middleware.Principal(c), c.Params("id"), input.AppointmentDate)
	if err != nil {
		return bookingError(c, "Failed to reschedule appointment", err)
	}
	// Both the old and new day change availability.
	redis.InvalidateStaff(c.Context(), appointment.StaffProfileID)

	return c.JSON(appointment)
}

// CompleteAppointment godoc
// @Summary Mark an appointment as completed
// @Description Mark a booked appointment as completed after the visit
// @Tags appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} models.Appointment
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /appointments/{id}/complete [post]
func CompleteAppointment(c *fiber.Ctx) error {
	appointment, err := Engine.Complete(c.Context(), middleware.Principal(c), c.Params("id"))
	if err != nil {
		return bookingError(c, "Failed to complete appointment", err)
	}
	return c.JSON(appointment)
}
