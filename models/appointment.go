package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusBooked    AppointmentStatus = "booked"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSuccess   PaymentStatus = "success"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// OccupyingStatuses are the appointment statuses that reserve a slot
// against new bookings. A payment-pending appointment holds its slot so two
// customers cannot reserve the same time while the first one pays.
var OccupyingStatuses = []AppointmentStatus{StatusPending, StatusBooked}

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyCancelled  = errors.New("appointment already cancelled")
	ErrOrderMismatch     = errors.New("payment order id does not match appointment")
)

type Appointment struct {
	ID              string            `json:"id" gorm:"type:uuid;primaryKey"`
	CustomerID      string            `json:"customer_id" gorm:"type:uuid"`
	Customer        User              `json:"customer" gorm:"foreignKey:CustomerID"`
	StaffProfileID  string            `json:"staff_profile_id" gorm:"type:uuid;index"`
	StaffProfile    StaffProfile      `json:"staff_profile" gorm:"foreignKey:StaffProfileID"`
	ServiceID       string            `json:"service_id" gorm:"type:uuid"`
	Service         Service           `json:"service" gorm:"foreignKey:ServiceID"`
	AppointmentDate time.Time         `json:"appointment_date"`
	Status          AppointmentStatus `json:"status"`
	PaymentStatus   PaymentStatus     `json:"payment_status"`
	PaymentOrderID  *string           `json:"payment_order_id"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	if a.PaymentStatus == "" {
		a.PaymentStatus = PaymentPending
	}
	return nil
}

// Occupies reports whether the appointment currently reserves its slot.
func (a *Appointment) Occupies() bool {
	return a.Status == StatusPending || a.Status == StatusBooked
}

// ConfirmPayment transitions pending -> booked on a successful payment.
// Confirming an already-booked appointment with the same order id is a
// no-op so webhook retries cannot corrupt state.
func (a *Appointment) ConfirmPayment(orderID string) error {
	if a.PaymentOrderID == nil || *a.PaymentOrderID != orderID {
		return ErrOrderMismatch
	}
	if a.Status == StatusBooked && a.PaymentStatus == PaymentSuccess {
		return nil
	}
	if a.Status != StatusPending {
		return fmt.Errorf("%w: cannot confirm payment from %s", ErrInvalidTransition, a.Status)
	}
	a.Status = StatusBooked
	a.PaymentStatus = PaymentSuccess
	return nil
}

// FailPayment cancels the appointment and releases its slot after a failed
// or timed-out payment.
func (a *Appointment) FailPayment(orderID string) error {
	if a.PaymentOrderID == nil || *a.PaymentOrderID != orderID {
		return ErrOrderMismatch
	}
	if a.Status == StatusCancelled && a.PaymentStatus == PaymentFailed {
		return nil
	}
	if a.Status != StatusPending {
		return fmt.Errorf("%w: cannot fail payment from %s", ErrInvalidTransition, a.Status)
	}
	a.Status = StatusCancelled
	a.PaymentStatus = PaymentFailed
	return nil
}

// Cancel releases the slot. Allowed from pending or booked.
func (a *Appointment) Cancel() error {
	switch a.Status {
	case StatusPending, StatusBooked:
		a.Status = StatusCancelled
		if a.PaymentStatus == PaymentPending {
			a.PaymentStatus = PaymentCancelled
		}
		return nil
	case StatusCancelled:
		return ErrAlreadyCancelled
	default:
		return fmt.Errorf("%w: cannot cancel a %s appointment", ErrInvalidTransition, a.Status)
	}
}

// Complete marks a booked appointment as done.
func (a *Appointment) Complete() error {
	if a.Status != StatusBooked {
		return fmt.Errorf("%w: cannot complete a %s appointment", ErrInvalidTransition, a.Status)
	}
	a.Status = StatusCompleted
	return nil
}
