package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/salonlux/salon-booking/controllers"
	"github.com/salonlux/salon-booking/middleware"
)

func SetupPaymentRoutes(app *fiber.App) {
	payment := app.Group("/payments")

	payment.Post("/order", middleware.Protected(), controllers.CreatePaymentOrder)
	payment.Get("/verify", middleware.Protected(), controllers.VerifyPayment)

	// No JWT on the webhook; the provider signature is the auth.
	payment.Post("/webhook", controllers.PaymentWebhook)
}
