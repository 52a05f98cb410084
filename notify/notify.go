// Package notify delivers customer-facing emails for appointment lifecycle
// events. Delivery is best effort and never blocks or fails the transition
// that triggered it.
package notify

import (
	"fmt"
	"log"

	"github.com/salonlux/salon-booking/models"
	"github.com/salonlux/salon-booking/utils"
)

// EmailNotifier implements booking.Notifier over SMTP.
type EmailNotifier struct{}

func NewEmailNotifier() *EmailNotifier {
	return &EmailNotifier{}
}

func (n *EmailNotifier) AppointmentBooked(a *models.Appointment) {
	n.send(a, "Appointment Received", fmt.Sprintf(
		"<p>Dear %s,</p><p>Your appointment request has been received and is awaiting payment.</p>%s<p>Your slot is held for 30 minutes. Complete the payment to confirm it.</p>",
		a.Customer.Name, detailBlock(a)))
}

func (n *EmailNotifier) PaymentConfirmed(a *models.Appointment) {
	n.send(a, "Appointment Confirmed", fmt.Sprintf(
		"<p>Dear %s,</p><p>Your payment was received and your appointment is confirmed.</p>%s<p>We look forward to seeing you.</p>",
		a.Customer.Name, detailBlock(a)))
}

func (n *EmailNotifier) AppointmentCancelled(a *models.Appointment) {
	n.send(a, "Appointment Cancelled", fmt.Sprintf(
		"<p>Dear %s,</p><p>Your appointment has been cancelled.</p>%s<p>If this was unexpected, please contact us.</p>",
		a.Customer.Name, detailBlock(a)))
}

func (n *EmailNotifier) AppointmentRescheduled(a *models.Appointment) {
	n.send(a, "Appointment Rescheduled", fmt.Sprintf(
		"<p>Dear %s,</p><p>Your appointment has been moved to a new time.</p>%s",
		a.Customer.Name, detailBlock(a)))
}

func (n *EmailNotifier) send(a *models.Appointment, subject, body string) {
	if a == nil || a.Customer.Email == "" {
		return
	}
	to := a.Customer.Email
	go func() {
		if err := utils.SendEmail(to, subject, body); err != nil {
			log.Printf("Failed to send %q email for appointment %s: %v", subject, a.ID, err)
		}
	}()
}

func detailBlock(a *models.Appointment) string {
	staffName := ""
	if a.StaffProfile.User.Name != "" {
		staffName = a.StaffProfile.User.Name
	}
	return fmt.Sprintf(`
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Service:</strong> %s</li>
			<li><strong>Staff:</strong> %s</li>
			<li><strong>Time:</strong> %s</li>
			<li><strong>Status:</strong> %s</li>
		</ul>
	`, a.Service.Name, staffName, a.AppointmentDate.Format("2006-01-02 15:04"), a.Status)
}

// Reminder sends the one-hour-before reminder used by the cron sweep.
func Reminder(a *models.Appointment) error {
	subject := fmt.Sprintf("Reminder: Upcoming Appointment - %s", a.Service.Name)
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>This is a reminder for your upcoming appointment scheduled in one hour.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Service:</strong> %s</li>
			<li><strong>Staff:</strong> %s</li>
			<li><strong>Time:</strong> %s</li>
		</ul>
		<p>Please arrive on time. If you need to reschedule or cancel, contact us as soon as possible.</p>
		<p>Best regards,</p>
		<p>Your Salon Team</p>
	`, a.Customer.Name, a.Service.Name, a.StaffProfile.User.Name,
		a.AppointmentDate.Format("2006-01-02 15:04"))

	return utils.SendEmail(a.Customer.Email, subject, body)
}
