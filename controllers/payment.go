package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/salonlux/salon-booking/db"
	"github.com/salonlux/salon-booking/middleware"
	"github.com/salonlux/salon-booking/models"
	"github.com/salonlux/salon-booking/payments"
	"github.com/salonlux/salon-booking/utils"
)

// CreatePaymentOrder godoc
// @Summary Create a payment order for a pending appointment
// @Description Register the appointment's payment with the provider and return the checkout session
// @Tags payments
// @Accept json
// @Produce json
// @Success 201 {object} fiber.Map
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /payments/order [post]
func CreatePaymentOrder(c *fiber.Ctx) error {
	type OrderInput struct {
		AppointmentID string `json:"appointment_id"`
	}

	input := new(OrderInput)
	if err := c.BodyParser(input); err != nil || input.AppointmentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "appointment_id is required",
			Error:   "invalid request body",
		})
	}

	p := middleware.Principal(c)

	var appointment models.Appointment
	err := db.DB.Preload("Service").Preload("Customer").
		First(&appointment, "id = ?", input.AppointmentID).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Appointment not found",
			Error:   err.Error(),
		})
	}
	if appointment.CustomerID != p.UserID {
		return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
			Message: "You can only pay for your own appointments",
			Error:   "forbidden",
		})
	}
	if appointment.Status != models.StatusPending || appointment.PaymentStatus != models.PaymentPending {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Appointment is not awaiting payment",
			Error:   "invalid appointment state",
		})
	}

	// Reuse the existing order on retry so the provider sees one payment.
	orderID := ""
	if appointment.PaymentOrderID != nil {
		orderID = *appointment.PaymentOrderID
	}
	if orderID == "" {
		orderID = "ORD_" + uuid.NewString()
	}

	session, err := Gateway.CreateOrder(c.Context(), payments.Order{
		OrderID:       orderID,
		AppointmentID: appointment.ID,
		Amount:        appointment.Service.Price,
		Currency:      "INR",
		CustomerEmail: appointment.Customer.Email,
	})
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(utils.ErrorResponse{
			Message: "Failed to create payment order",
			Error:   err.Error(),
		})
	}

	payment := models.Payment{
		OrderID:       orderID,
		AppointmentID: appointment.ID,
		UserID:        p.UserID,
		Amount:        appointment.Service.Price,
		Currency:      "INR",
		Status:        models.PaymentPending,
		TransactionID: session.ProviderRef,
	}
	err = db.DB.Where("order_id = ?", orderID).
		Assign(models.Payment{TransactionID: session.ProviderRef}).
		FirstOrCreate(&payment).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to record payment order",
			Error:   err.Error(),
		})
	}
	err = db.DB.Model(&appointment).Update("payment_order_id", orderID).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to attach payment order",
			Error:   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order_id":      orderID,
		"client_secret": session.ClientSecret,
		"amount":        payment.Amount,
		"currency":      payment.Currency,
	})
}

// VerifyPayment godoc
// @Summary Verify a payment after checkout
// @Description Look up the payment's provider status and confirm or fail the appointment
// @Tags payments
// @Accept json
// @Produce json
// @Param order_id query string true "Order ID"
// @Success 200 {object} fiber.Map
// @Failure 404 {object} utils.ErrorResponse
// @Router /payments/verify [get]
func VerifyPayment(c *fiber.Ctx) error {
	orderID := c.Query("order_id")
	if orderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "order_id is required",
			Error:   "missing query parameter",
		})
	}

	var payment models.Payment
	if err := db.DB.First(&payment, "order_id = ?", orderID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Payment order not found",
			Error:   err.Error(),
		})
	}

	status, err := Gateway.FetchStatus(c.Context(), payment.TransactionID)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(utils.ErrorResponse{
			Message: "Failed to fetch payment status",
			Error:   err.Error(),
		})
	}

	switch status {
	case payments.StatusPaid:
		appointment, err := Engine.ConfirmPayment(c.Context(), payment.AppointmentID, orderID, payment.TransactionID)
		if err != nil {
			return bookingError(c, "Failed to confirm payment", err)
		}
		return c.JSON(fiber.Map{"status": "paid", "appointment": appointment})
	case payments.StatusFailed:
		appointment, err := Engine.FailPayment(c.Context(), payment.AppointmentID, orderID)
		if err != nil {
			return bookingError(c, "Failed to record payment failure", err)
		}
		return c.JSON(fiber.Map{"status": "failed", "appointment": appointment})
	default:
		return c.JSON(fiber.Map{"status": "pending"})
	}
}

// PaymentWebhook godoc
// @Summary Payment provider webhook
// @Description Receive provider payment events; signature verification is the auth
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} fiber.Map
// @Failure 400 {object} utils.ErrorResponse
// @Router /payments/webhook [post]
func PaymentWebhook(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) > 1<<20 {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(utils.ErrorResponse{
			Message: "Payload too large",
			Error:   "webhook body exceeds 1 MiB",
		})
	}

	event, err := Gateway.ParseWebhook(body, c.Get("Stripe-Signature"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid webhook",
			Error:   err.Error(),
		})
	}
	if event == nil {
		// Event type we don't act on.
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	switch event.Status {
	case payments.StatusPaid:
		if _, err := Engine.ConfirmPayment(c.Context(), event.AppointmentID, event.OrderID, event.ProviderRef); err != nil {
			return bookingError(c, "Failed to apply payment event", err)
		}
	default:
		_, err := Engine.FailPayment(c.Context(), event.AppointmentID, event.OrderID)
		// A replayed failure event for an appointment that is already
		// cancelled must not make the provider retry forever.
		if err != nil && !errors.Is(err, models.ErrAlreadyCancelled) && !errors.Is(err, models.ErrInvalidTransition) {
			return bookingError(c, "Failed to apply payment event", err)
		}
	}

	return c.JSON(fiber.Map{"status": "ok"})
}
