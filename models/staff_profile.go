package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StaffProfile struct {
	ID             string        `json:"id" gorm:"type:uuid;primaryKey"`
	UserID         string        `json:"user_id" gorm:"type:uuid;unique"`
	User           User          `json:"user" gorm:"foreignKey:UserID"`
	Specialization string        `json:"specialization"`
	WorkingHours   WeekSchedule  `json:"working_hours" gorm:"type:jsonb"`
	PhotoURL       string        `json:"photo_url"`
	Services       []Service     `json:"services,omitempty" gorm:"many2many:staff_services;"`
	Appointments   []Appointment `json:"appointments,omitempty" gorm:"foreignKey:StaffProfileID"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (s *StaffProfile) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.WorkingHours == nil {
		s.WorkingHours = WeekSchedule{}
	}
	return nil
}
