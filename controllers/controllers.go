// Package controllers holds the HTTP handlers. Handlers validate and decode
// requests, then delegate every appointment mutation to the booking engine.
package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/salonlux/salon-booking/booking"
	"github.com/salonlux/salon-booking/models"
	"github.com/salonlux/salon-booking/payments"
	"github.com/salonlux/salon-booking/utils"
)

// Engine and Gateway are wired at startup from main.
var (
	Engine  *booking.Engine
	Gateway payments.Gateway
)

// bookingError maps the engine's error taxonomy to HTTP statuses.
func bookingError(c *fiber.Ctx, message string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, booking.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, booking.ErrSlotUnavailable):
		status = fiber.StatusConflict
	case errors.Is(err, booking.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, booking.ErrInvalidInput),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrAlreadyCancelled),
		errors.Is(err, models.ErrOrderMismatch):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(utils.ErrorResponse{
		Message: message,
		Error:   err.Error(),
	})
}
