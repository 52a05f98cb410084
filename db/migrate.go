package db

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/salonlux/salon-booking/models"
)

// AutoMigrate creates the schema plus the partial unique index that backs
// the no-double-booking invariant: at most one occupying appointment per
// (staff_profile_id, appointment_date). A concurrent insert that loses the
// race hits this index and surfaces as gorm.ErrDuplicatedKey.
func AutoMigrate(g *gorm.DB) error {
	err := g.AutoMigrate(
		&models.User{},
		&models.StaffProfile{},
		&models.Service{},
		&models.Appointment{},
		&models.Payment{},
		&models.Review{},
	)
	if err != nil {
		return err
	}

	return g.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uniq_staff_slot
		ON appointments (staff_profile_id, appointment_date)
		WHERE status IN ('pending', 'booked')
	`).Error
}

func Migrate() {
	// Initialize DB connection
	Init()

	// Run AutoMigrate only when explicitly called
	if err := AutoMigrate(DB); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	fmt.Println("✅ Migrations applied successfully!")
}
