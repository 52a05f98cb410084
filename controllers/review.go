package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/salonlux/salon-booking/db"
	"github.com/salonlux/salon-booking/middleware"
	"github.com/salonlux/salon-booking/models"
)

// CreateReview lets a customer review a completed appointment of theirs.
// One review per appointment.
func CreateReview(c *fiber.Ctx) error {
	type ReviewInput struct {
		AppointmentID string `json:"appointment_id"`
		Rating        int    `json:"rating"`
		Comment       string `json:"comment"`
	}

	input := new(ReviewInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.AppointmentID == "" || input.Rating < 1 || input.Rating > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "appointment_id and a rating between 1 and 5 are required",
		})
	}

	p := middleware.Principal(c)

	var appointment models.Appointment
	if err := db.DB.First(&appointment, "id = ?", input.AppointmentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Appointment not found",
		})
	}
	if appointment.CustomerID != p.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can only review your own appointments",
		})
	}
	if appointment.Status != models.StatusCompleted {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Only completed appointments can be reviewed",
		})
	}

	var existing models.Review
	if db.DB.Where("appointment_id = ?", appointment.ID).First(&existing).RowsAffected > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "This appointment has already been reviewed",
		})
	}

	review := models.Review{
		Rating:        input.Rating,
		Comment:       input.Comment,
		CustomerID:    p.UserID,
		ServiceID:     appointment.ServiceID,
		AppointmentID: appointment.ID,
	}
	if err := db.DB.Create(&review).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create review: " + err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(review)
}

// RespondToReview lets the reviewed staff member attach one public response.
func RespondToReview(c *fiber.Ctx) error {
	type ResponseInput struct {
		Response string `json:"response"`
	}

	input := new(ResponseInput)
	if err := c.BodyParser(input); err != nil || input.Response == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "response is required",
		})
	}

	var review models.Review
	err := db.DB.Preload("Appointment.StaffProfile").First(&review, "id = ?", c.Params("id")).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Review not found",
		})
	}

	p := middleware.Principal(c)
	if !p.IsAdmin() && review.Appointment.StaffProfile.UserID != p.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can only respond to reviews of your own appointments",
		})
	}

	if err := db.DB.Model(&review).Update("staff_response", input.Response).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	review.StaffResponse = input.Response
	return c.JSON(review)
}

// GetReviews lists reviews, optionally filtered by service or staff member.
// Public.
func GetReviews(c *fiber.Ctx) error {
	q := db.DB.Preload("Customer").Preload("Service").Order("created_at DESC")

	serviceID := c.Params("service_id")
	if serviceID == "" {
		serviceID = c.Query("service_id")
	}
	if serviceID != "" {
		q = q.Where("service_id = ?", serviceID)
	}
	if staffID := c.Query("staff_id"); staffID != "" {
		q = q.Joins("JOIN appointments ON appointments.id = reviews.appointment_id").
			Where("appointments.staff_profile_id = ?", staffID)
	}

	var reviews []models.Review
	if err := q.Find(&reviews).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	for i := range reviews {
		reviews[i].Customer.Password = ""
	}
	return c.JSON(reviews)
}
