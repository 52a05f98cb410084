package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/salonlux/salon-booking/db"
	"github.com/salonlux/salon-booking/models"
)

// GetAllServices returns the active service catalog. Public.
func GetAllServices(c *fiber.Ctx) error {
	var services []models.Service

	q := db.DB.Where("is_active = ?", true)
	// Admins see the full catalog including deactivated services.
	if role, _ := c.Locals("role").(models.Role); role == models.RoleAdmin {
		q = db.DB
	}

	if err := q.Find(&services).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(services)
}

func GetService(c *fiber.Ctx) error {
	var service models.Service
	if db.DB.Preload("Staff.User").First(&service, "id = ?", c.Params("id")).RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Service not found",
		})
	}
	return c.JSON(service)
}

// CreateService creates a new service. Admin only.
func CreateService(c *fiber.Ctx) error {
	service := new(models.Service)
	if err := c.BodyParser(service); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if service.Name == "" || service.DurationMinutes <= 0 || service.Price < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name, a positive duration_minutes and a non-negative price are required",
		})
	}

	newService := models.Service{
		Name:            service.Name,
		Description:     service.Description,
		DurationMinutes: service.DurationMinutes,
		Price:           service.Price,
		IsActive:        true,
	}
	if err := db.DB.Create(&newService).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(newService)
}

// UpdateService updates a service. Admin only.
func UpdateService(c *fiber.Ctx) error {
	id := c.Params("id")
	service := new(models.Service)
	if err := c.BodyParser(service); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	var existingService models.Service
	if db.DB.First(&existingService, "id = ?", id).RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Service not found",
		})
	}
	service.ID = existingService.ID
	if err := db.DB.Save(service).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(service)
}

// DeleteService deactivates a service so its appointment history survives.
// Admin only.
func DeleteService(c *fiber.Ctx) error {
	var service models.Service
	if db.DB.First(&service, "id = ?", c.Params("id")).RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Service not found",
		})
	}
	if err := db.DB.Model(&service).Update("is_active", false).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
