package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/salonlux/salon-booking/controllers"
	"github.com/salonlux/salon-booking/middleware"
	"github.com/salonlux/salon-booking/models"
)

func SetupAdminRoutes(app *fiber.App) {
	admin := app.Group("/admin", middleware.Protected(), middleware.RequireRole(models.RoleAdmin))

	admin.Get("/customers", controllers.GetAllUsers)
	admin.Patch("/customers/:id", controllers.UpdateUser)
	admin.Delete("/customers/:id", controllers.DeleteUser)

	admin.Get("/appointments", controllers.GetAllAppointments)
	admin.Patch("/appointments/:id/status", controllers.AdminUpdateAppointmentStatus)
	admin.Delete("/appointments/:id", controllers.AdminDeleteAppointment)
}
