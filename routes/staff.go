package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/salonlux/salon-booking/controllers"
	"github.com/salonlux/salon-booking/middleware"
	"github.com/salonlux/salon-booking/models"
)

func SetupStaffRoutes(app *fiber.App) {
	staff := app.Group("/staff")

	// Public directory for customers picking a staff member.
	staff.Get("/", controllers.GetAllStaff)
	staff.Get("/:id", controllers.GetStaff)

	staff.Post("/", middleware.Protected(), middleware.RequireRole(models.RoleAdmin), controllers.CreateStaff)
	staff.Patch("/:id/working-hours", middleware.Protected(), middleware.RequireRole(models.RoleStaff, models.RoleAdmin), controllers.UpdateWorkingHours)
	staff.Post("/:id/services", middleware.Protected(), middleware.RequireRole(models.RoleAdmin), controllers.AssignServices)
	staff.Post("/:id/photo", middleware.Protected(), middleware.RequireRole(models.RoleStaff, models.RoleAdmin), controllers.UploadStaffPhoto)
}
