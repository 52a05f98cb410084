package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/salonlux/salon-booking/controllers"
	"github.com/salonlux/salon-booking/middleware"
)

// SetupAppointmentRoutes configures all appointment related routes
func SetupAppointmentRoutes(app *fiber.App) {
	appointment := app.Group("/appointments")

	// Availability is public so customers can browse before signing in.
	appointment.Get("/slots/:staff_id", controllers.GetAvailableSlots)

	appointment.Get("/me", middleware.Protected(), controllers.GetMyAppointments)
	appointment.Get("/:id", middleware.Protected(), controllers.GetAppointment)
	appointment.Post("/", middleware.Protected(), controllers.BookAppointment)
	appointment.Post("/:id/cancel", middleware.Protected(), controllers.CancelAppointment)
	appointment.Post("/:id/reschedule", middleware.Protected(), controllers.RescheduleAppointment)
	appointment.Post("/:id/complete", middleware.Protected(), controllers.CompleteAppointment)
}
