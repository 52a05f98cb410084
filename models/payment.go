package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Payment struct {
	ID            string        `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID       string        `json:"order_id" gorm:"unique"`
	AppointmentID string        `json:"appointment_id" gorm:"type:uuid"`
	Appointment   Appointment   `json:"appointment" gorm:"foreignKey:AppointmentID"`
	UserID        string        `json:"user_id" gorm:"type:uuid"`
	User          User          `json:"user" gorm:"foreignKey:UserID"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency" gorm:"default:INR"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transaction_id"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = PaymentPending
	}
	return nil
}
