package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/salonlux/salon-booking/db"
	"github.com/salonlux/salon-booking/middleware"
	"github.com/salonlux/salon-booking/models"
	"github.com/salonlux/salon-booking/redis"
	"github.com/salonlux/salon-booking/utils"
)

// GetAllUsers lists customer accounts by default; the role filter widens it
// to staff or admin accounts. Admin only.
func GetAllUsers(c *fiber.Ctx) error {
	role := c.Query("role", string(models.RoleCustomer))
	q := db.DB.Order("created_at DESC")
	if role != "all" {
		q = q.Where("role = ?", role)
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch users",
			Error:   err.Error(),
		})
	}
	for i := range users {
		users[i].Password = ""
	}
	return c.JSON(users)
}

// UpdateUser edits an account's name, phone or role. Admin only. Passwords
// and emails are not editable here.
func UpdateUser(c *fiber.Ctx) error {
	type UpdateInput struct {
		Name  string      `json:"name"`
		Phone string      `json:"phone"`
		Role  models.Role `json:"role"`
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "User not found",
			Error:   err.Error(),
		})
	}

	input := new(UpdateInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	updates := map[string]interface{}{}
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.Phone != "" {
		updates["phone"] = input.Phone
	}
	switch input.Role {
	case "":
	case models.RoleCustomer, models.RoleStaff, models.RoleAdmin:
		updates["role"] = input.Role
	default:
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Unknown role",
			Error:   "role must be customer, staff or admin",
		})
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
				Message: "Failed to update user",
				Error:   err.Error(),
			})
		}
	}

	user.Password = ""
	return c.JSON(user)
}

// DeleteUser removes an account. Admin only.
func DeleteUser(c *fiber.Ctx) error {
	var user models.User
	if err := db.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "User not found",
			Error:   err.Error(),
		})
	}
	if err := db.DB.Delete(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to delete user",
			Error:   err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetAllAppointments lists every appointment with optional status, staff and
// date filters. Admin only.
func GetAllAppointments(c *fiber.Ctx) error {
	q := db.DB.Preload("Service").Preload("StaffProfile.User").Preload("Customer").
		Order("appointment_date DESC")

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if staffID := c.Query("staff_id"); staffID != "" {
		q = q.Where("staff_profile_id = ?", staffID)
	}
	if date := c.Query("date"); date != "" {
		q = q.Where("DATE(appointment_date) = ?", date)
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

// AdminUpdateAppointmentStatus cancels or completes any appointment through
// the same state machine customers go through. Admin only.
func AdminUpdateAppointmentStatus(c *fiber.Ctx) error {
	type StatusInput struct {
		Status models.AppointmentStatus `json:"status"`
	}

	input := new(StatusInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	p := middleware.Principal(c)
	switch input.Status {
	case models.StatusCancelled:
		appointment, err := Engine.Cancel(c.Context(), p, c.Params("id"))
		if err != nil {
			return bookingError(c, "Failed to cancel appointment", err)
		}
		return c.JSON(appointment)
	case models.StatusCompleted:
		appointment, err := Engine.Complete(c.Context(), p, c.Params("id"))
		if err != nil {
			return bookingError(c, "Failed to complete appointment", err)
		}
		return c.JSON(appointment)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Unsupported status",
			Error:   "status must be cancelled or completed",
		})
	}
}

// AdminDeleteAppointment hard-deletes an appointment row, releasing its
// slot. Admin only; customers cancel instead so the history survives.
func AdminDeleteAppointment(c *fiber.Ctx) error {
	var appointment models.Appointment
	if err := db.DB.First(&appointment, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Appointment not found",
			Error:   err.Error(),
		})
	}
	if err := db.DB.Delete(&appointment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to delete appointment",
			Error:   err.Error(),
		})
	}
	redis.InvalidateSlots(c.Context(), appointment.StaffProfileID, appointment.AppointmentDate)
	return c.SendStatus(fiber.StatusNoContent)
}
