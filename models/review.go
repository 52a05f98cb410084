package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Review struct {
	ID            string      `json:"id" gorm:"type:uuid;primaryKey"`
	Rating        int         `json:"rating"`
	Comment       string      `json:"comment"`
	StaffResponse string      `json:"staff_response"`
	CustomerID    string      `json:"customer_id" gorm:"type:uuid"`
	Customer      User        `json:"customer" gorm:"foreignKey:CustomerID"`
	ServiceID     string      `json:"service_id" gorm:"type:uuid"`
	Service       Service     `json:"service" gorm:"foreignKey:ServiceID"`
	AppointmentID string      `json:"appointment_id" gorm:"type:uuid;unique"`
	Appointment   Appointment `json:"appointment" gorm:"foreignKey:AppointmentID"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
