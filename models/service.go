package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	ID              string         `json:"id" gorm:"type:uuid;primaryKey"`
	Name            string         `json:"name" gorm:"unique"`
	Description     string         `json:"description"`
	DurationMinutes int            `json:"duration_minutes"`
	Price           float64        `json:"price"`
	IsActive        bool           `json:"is_active" gorm:"default:true"`
	Staff           []StaffProfile `json:"staff,omitempty" gorm:"many2many:staff_services;"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Duration returns the slot width the service books.
func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}
