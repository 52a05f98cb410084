// Package cron runs the background sweeps: reminder emails an hour before
// confirmed appointments, and expiry of payment-pending appointments that
// were abandoned at checkout.
package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/salonlux/salon-booking/booking"
	"github.com/salonlux/salon-booking/db"
	"github.com/salonlux/salon-booking/models"
	"github.com/salonlux/salon-booking/notify"
)

// Pending appointments hold their slot this long before the expiry sweep
// reclaims them.
const pendingTTL = 30 * time.Minute

// StartCronJobs initializes and starts the background job scheduler.
func StartCronJobs(engine *booking.Engine) {
	c := cron.New()

	_, err := c.AddFunc("*/15 * * * *", sendAppointmentReminders)
	if err != nil {
		log.Fatalf("Failed to add reminder cron job: %v", err)
	}
	_, err = c.AddFunc("*/5 * * * *", func() { expireStalePending(engine) })
	if err != nil {
		log.Fatalf("Failed to add expiry cron job: %v", err)
	}

	c.Start()
	log.Println("Cron scheduler started: reminders every 15m, pending expiry every 5m")
}

// sendAppointmentReminders emails customers whose confirmed appointment
// starts in roughly one hour. The 15 minute window matches the cadence so an
// appointment gets exactly one reminder.
func sendAppointmentReminders() {
	now := time.Now()
	startWindow := now.Add(60 * time.Minute)
	endWindow := now.Add(75 * time.Minute)

	var appointments []models.Appointment
	err := db.DB.Preload("Customer").Preload("Service").Preload("StaffProfile.User").
		Where("status = ? AND appointment_date >= ? AND appointment_date < ?", models.StatusBooked, startWindow, endWindow).
		Find(&appointments).Error
	if err != nil {
		log.Printf("Error fetching appointments for reminders: %v", err)
		return
	}
	if len(appointments) == 0 {
		return
	}

	fmt.Printf("Found %d appointments for reminders\n", len(appointments))

	for _, appointment := range appointments {
		if err := notify.Reminder(&appointment); err != nil {
			log.Printf("Failed to send reminder for appointment %s: %v", appointment.ID, err)
			continue
		}
		log.Printf("Sent reminder for appointment %s to %s", appointment.ID, appointment.Customer.Email)
	}
}

// expireStalePending releases slots held by checkouts that never paid.
func expireStalePending(engine *booking.Engine) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := engine.ExpireStalePending(ctx, pendingTTL)
	if err != nil {
		log.Printf("Error expiring stale pending appointments: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Expired %d stale pending appointments", n)
	}
}
