package main

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/salonlux/salon-booking/booking"
	"github.com/salonlux/salon-booking/controllers"
	"github.com/salonlux/salon-booking/cron"
	"github.com/salonlux/salon-booking/db"
	"github.com/salonlux/salon-booking/notify"
	"github.com/salonlux/salon-booking/payments"
	"github.com/salonlux/salon-booking/redis"
	"github.com/salonlux/salon-booking/routes"
)

func main() {
	app := fiber.New()
	db.Migrate()

	tz := os.Getenv("BUSINESS_TIMEZONE")
	if tz == "" {
		tz = "Asia/Kolkata"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Fatalf("Invalid BUSINESS_TIMEZONE %q: %v", tz, err)
	}
	redis.InitRedis(loc)

	engine := booking.NewEngine(db.DB, loc, notify.NewEmailNotifier())
	controllers.Engine = engine
	controllers.Gateway = payments.NewStripeGateway(
		os.Getenv("STRIPE_SECRET_KEY"),
		os.Getenv("STRIPE_WEBHOOK_SECRET"),
	)

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Salon booking API")
	})
	routes.SetupAuthRoutes(app)
	routes.SetupServiceRoutes(app)
	routes.SetupStaffRoutes(app)
	routes.SetupAppointmentRoutes(app)
	routes.SetupPaymentRoutes(app)
	routes.SetupReviewRoutes(app)
	routes.SetupAdminRoutes(app)

	cron.StartCronJobs(engine)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	log.Fatal(app.Listen(":" + port))
}
