package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/salonlux/salon-booking/controllers"
	"github.com/salonlux/salon-booking/middleware"
	"github.com/salonlux/salon-booking/models"
)

func SetupReviewRoutes(app *fiber.App) {
	review := app.Group("/reviews")

	review.Get("/", controllers.GetReviews)
	review.Get("/service/:service_id", controllers.GetReviews)
	review.Post("/", middleware.Protected(), controllers.CreateReview)
	review.Post("/:id/respond", middleware.Protected(), middleware.RequireRole(models.RoleStaff, models.RoleAdmin), controllers.RespondToReview)
}
