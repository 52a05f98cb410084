// Package booking is the appointment engine: it exposes the only entry
// points that may create or mutate appointments. All correctness under
// concurrent requests comes from the storage layer: every read-check-write
// runs inside a transaction, and the partial unique index on
// (staff_profile_id, appointment_date) over occupying statuses catches any
// race the in-transaction conflict check misses.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/salonlux/salon-booking/models"
	"github.com/salonlux/salon-booking/scheduling"
)

// Principal is the authenticated caller, supplied by the auth middleware.
type Principal struct {
	UserID string
	Role   models.Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// Notifier receives lifecycle events after the underlying transition has
// committed. Implementations must not fail the transition; delivery errors
// are theirs to log and drop.
type Notifier interface {
	AppointmentBooked(a *models.Appointment)
	AppointmentCancelled(a *models.Appointment)
	AppointmentRescheduled(a *models.Appointment)
	PaymentConfirmed(a *models.Appointment)
}

// NoopNotifier discards all events.
type NoopNotifier struct{}

func (NoopNotifier) AppointmentBooked(*models.Appointment)      {}
func (NoopNotifier) AppointmentCancelled(*models.Appointment)   {}
func (NoopNotifier) AppointmentRescheduled(*models.Appointment) {}
func (NoopNotifier) PaymentConfirmed(*models.Appointment)       {}

type Engine struct {
	db       *gorm.DB
	loc      *time.Location
	notifier Notifier
}

// NewEngine wires the engine to its database and the business time zone.
// All stored working hours are interpreted in loc.
func NewEngine(db *gorm.DB, loc *time.Location, notifier Notifier) *Engine {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Engine{db: db, loc: loc, notifier: notifier}
}

// Location returns the business time zone calendar days resolve in.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// AvailableSlots resolves the staff member's working hours for date,
// generates the slot grid for the service's duration and removes slots
// already held by an occupying appointment. A closed or malformed schedule
// yields an empty list, never an error.
func (e *Engine) AvailableSlots(ctx context.Context, staffProfileID, serviceID string, date time.Time) ([]time.Time, error) {
	// date names a calendar day. Callers may have parsed it in any zone,
	// so reanchor its year/month/day to midnight in the business zone
	// before resolving the weekday.
	y, m, d := date.Date()
	date = time.Date(y, m, d, 0, 0, 0, 0, e.loc)

	tx := e.db.WithContext(ctx)

	svc, staff, err := e.loadTarget(tx, staffProfileID, serviceID)
	if err != nil {
		return nil, err
	}

	start, end, open := staff.WorkingHours.ResolveInterval(date, e.loc)
	if !open {
		return []time.Time{}, nil
	}

	slots, err := scheduling.GenerateSlots(start, end, svc.Duration())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	booked, err := e.occupiedInstants(tx, staffProfileID, start, end)
	if err != nil {
		return nil, err
	}

	return scheduling.FilterAvailable(slots, booked), nil
}

// Book atomically validates and persists a new appointment at the requested
// slot. The new appointment starts as pending/pending; payment confirmation
// moves it to booked. A losing concurrent request gets ErrSlotUnavailable.
func (e *Engine) Book(ctx context.Context, customerID, staffProfileID, serviceID string, start time.Time) (*models.Appointment, error) {
	var appt models.Appointment

	err := e.runTx(ctx, func(tx *gorm.DB) error {
		svc, staff, err := e.loadTarget(tx, staffProfileID, serviceID)
		if err != nil {
			return err
		}

		if err := e.checkOnGrid(staff, svc, start); err != nil {
			return err
		}

		var conflicts int64
		err = tx.Model(&models.Appointment{}).
			Where("staff_profile_id = ? AND appointment_date = ?", staffProfileID, start).
			Where("status IN ?", models.OccupyingStatuses).
			Count(&conflicts).Error
		if err != nil {
			return err
		}
		if conflicts > 0 {
			return ErrSlotUnavailable
		}

		appt = models.Appointment{
			CustomerID:      customerID,
			StaffProfileID:  staffProfileID,
			ServiceID:       serviceID,
			AppointmentDate: start,
			Status:          models.StatusPending,
			PaymentStatus:   models.PaymentPending,
		}
		if err := tx.Create(&appt).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSlotUnavailable
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := e.reload(ctx, appt.ID)
	e.notifier.AppointmentBooked(out)
	return out, nil
}

// Cancel releases the appointment's slot. Allowed for the owning customer
// or an admin while the appointment is pending or booked.
func (e *Engine) Cancel(ctx context.Context, p Principal, appointmentID string) (*models.Appointment, error) {
	err := e.runTx(ctx, func(tx *gorm.DB) error {
		var a models.Appointment
		if err := tx.First(&a, "id = ?", appointmentID).Error; err != nil {
			return asNotFound(err)
		}
		if !p.IsAdmin() && a.CustomerID != p.UserID {
			return ErrForbidden
		}
		if err := a.Cancel(); err != nil {
			return err
		}
		return tx.Save(&a).Error
	})
	if err != nil {
		return nil, err
	}

	out := e.reload(ctx, appointmentID)
	e.notifier.AppointmentCancelled(out)
	return out, nil
}

// Reschedule moves a booked appointment to a new slot. Only the owning
// customer may reschedule, and the conflict check against the new
// (staff, instant) runs in the same transaction as the update, so a failed
// reschedule leaves the original row completely untouched.
func (e *Engine) Reschedule(ctx context.Context, p Principal, appointmentID string, newStart time.Time) (*models.Appointment, error) {
	err := e.runTx(ctx, func(tx *gorm.DB) error {
		var a models.Appointment
		if err := tx.First(&a, "id = ?", appointmentID).Error; err != nil {
			return asNotFound(err)
		}
		if a.CustomerID != p.UserID {
			return ErrForbidden
		}
		if a.Status != models.StatusBooked {
			return fmt.Errorf("%w: only booked appointments can be rescheduled", models.ErrInvalidTransition)
		}

		svc, staff, err := e.loadTarget(tx, a.StaffProfileID, a.ServiceID)
		if err != nil {
			return err
		}
		if err := e.checkOnGrid(staff, svc, newStart); err != nil {
			return err
		}

		var conflicts int64
		err = tx.Model(&models.Appointment{}).
			Where("staff_profile_id = ? AND appointment_date = ? AND id <> ?", a.StaffProfileID, newStart, a.ID).
			Where("status IN ?", models.OccupyingStatuses).
			Count(&conflicts).Error
		if err != nil {
			return err
		}
		if conflicts > 0 {
			return ErrSlotUnavailable
		}

		err = tx.Model(&a).Update("appointment_date", newStart).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlotUnavailable
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	out := e.reload(ctx, appointmentID)
	e.notifier.AppointmentRescheduled(out)
	return out, nil
}

// ConfirmPayment is called by the payment collaborator (verify redirect or
// webhook) on a successful payment. It is idempotent for webhook retries.
func (e *Engine) ConfirmPayment(ctx context.Context, appointmentID, orderID, transactionID string) (*models.Appointment, error) {
	var confirmed bool

	err := e.runTx(ctx, func(tx *gorm.DB) error {
		var a models.Appointment
		if err := tx.First(&a, "id = ?", appointmentID).Error; err != nil {
			return asNotFound(err)
		}

		wasPending := a.Status == models.StatusPending
		if err := a.ConfirmPayment(orderID); err != nil {
			return err
		}
		confirmed = wasPending

		if err := tx.Save(&a).Error; err != nil {
			return err
		}
		return tx.Model(&models.Payment{}).
			Where("order_id = ?", orderID).
			Updates(map[string]interface{}{
				"status":         models.PaymentSuccess,
				"transaction_id": transactionID,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	out := e.reload(ctx, appointmentID)
	if confirmed {
		e.notifier.PaymentConfirmed(out)
	}
	return out, nil
}

// FailPayment cancels the appointment after a failed or timed-out payment,
// releasing the slot for other customers.
func (e *Engine) FailPayment(ctx context.Context, appointmentID, orderID string) (*models.Appointment, error) {
	err := e.runTx(ctx, func(tx *gorm.DB) error {
		var a models.Appointment
		if err := tx.First(&a, "id = ?", appointmentID).Error; err != nil {
			return asNotFound(err)
		}
		if err := a.FailPayment(orderID); err != nil {
			return err
		}
		if err := tx.Save(&a).Error; err != nil {
			return err
		}
		return tx.Model(&models.Payment{}).
			Where("order_id = ?", orderID).
			Update("status", models.PaymentFailed).Error
	})
	if err != nil {
		return nil, err
	}

	out := e.reload(ctx, appointmentID)
	e.notifier.AppointmentCancelled(out)
	return out, nil
}

// Complete marks a booked appointment as done. Allowed for the staff member
// the appointment belongs to, or an admin.
func (e *Engine) Complete(ctx context.Context, p Principal, appointmentID string) (*models.Appointment, error) {
	err := e.runTx(ctx, func(tx *gorm.DB) error {
		var a models.Appointment
		if err := tx.Preload("StaffProfile").First(&a, "id = ?", appointmentID).Error; err != nil {
			return asNotFound(err)
		}
		if !p.IsAdmin() && a.StaffProfile.UserID != p.UserID {
			return ErrForbidden
		}
		if err := a.Complete(); err != nil {
			return err
		}
		return tx.Save(&a).Error
	})
	if err != nil {
		return nil, err
	}
	return e.reload(ctx, appointmentID), nil
}

// ExpireStalePending reclaims pending appointments older than olderThan
// whose payment never arrived, releasing their slots. Run from the cron
// sweep so no slot stays held indefinitely by an abandoned checkout.
func (e *Engine) ExpireStalePending(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res := e.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("status = ? AND created_at < ?", models.StatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":         models.StatusCancelled,
			"payment_status": models.PaymentCancelled,
		})
	return res.RowsAffected, res.Error
}

// loadTarget fetches the active service and the staff profile, and verifies
// the staff member is assigned to the service.
func (e *Engine) loadTarget(tx *gorm.DB, staffProfileID, serviceID string) (*models.Service, *models.StaffProfile, error) {
	var svc models.Service
	if err := tx.First(&svc, "id = ? AND is_active = ?", serviceID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: service %s", ErrNotFound, serviceID)
		}
		return nil, nil, err
	}

	var staff models.StaffProfile
	if err := tx.First(&staff, "id = ?", staffProfileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: staff profile %s", ErrNotFound, staffProfileID)
		}
		return nil, nil, err
	}

	var assigned int64
	err := tx.Table("staff_services").
		Where("staff_profile_id = ? AND service_id = ?", staffProfileID, serviceID).
		Count(&assigned).Error
	if err != nil {
		return nil, nil, err
	}
	if assigned == 0 {
		return nil, nil, fmt.Errorf("%w: staff %s does not offer service %s", ErrNotFound, staffProfileID, serviceID)
	}

	return &svc, &staff, nil
}

// checkOnGrid verifies the requested instant is one of the generated slots
// for that staff/day/service. Client-supplied instants are never trusted.
func (e *Engine) checkOnGrid(staff *models.StaffProfile, svc *models.Service, start time.Time) error {
	dayStart, dayEnd, open := staff.WorkingHours.ResolveInterval(start, e.loc)
	if !open {
		return fmt.Errorf("%w: staff is closed on %s", ErrSlotUnavailable, models.DayName(start.In(e.loc)))
	}
	slots, err := scheduling.GenerateSlots(dayStart, dayEnd, svc.Duration())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !scheduling.OnGrid(slots, start) {
		return fmt.Errorf("%w: %s is not a bookable slot", ErrSlotUnavailable, start.Format(time.RFC3339))
	}
	return nil
}

func (e *Engine) occupiedInstants(tx *gorm.DB, staffProfileID string, start, end time.Time) ([]time.Time, error) {
	var instants []time.Time
	err := tx.Model(&models.Appointment{}).
		Where("staff_profile_id = ? AND appointment_date >= ? AND appointment_date <= ?", staffProfileID, start, end).
		Where("status IN ?", models.OccupyingStatuses).
		Pluck("appointment_date", &instants).Error
	if err != nil {
		return nil, err
	}
	return instants, nil
}

// runTx runs fn in a transaction, retrying once on a transient storage
// failure. Terminal errors (our taxonomy and state-machine errors) are
// never retried.
func (e *Engine) runTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := e.db.WithContext(ctx).Transaction(fn)
	if err != nil && isTransient(err) {
		err = e.db.WithContext(ctx).Transaction(fn)
	}
	return err
}

func isTransient(err error) bool {
	for _, terminal := range []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrSlotUnavailable,
		ErrForbidden,
		models.ErrInvalidTransition,
		models.ErrAlreadyCancelled,
		models.ErrOrderMismatch,
		gorm.ErrDuplicatedKey,
	} {
		if errors.Is(err, terminal) {
			return false
		}
	}
	return true
}

func asNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: appointment", ErrNotFound)
	}
	return err
}

// reload fetches the appointment with its relations for responses and
// notifications. A load failure here degrades the payload, nothing else.
func (e *Engine) reload(ctx context.Context, id string) *models.Appointment {
	var a models.Appointment
	err := e.db.WithContext(ctx).
		Preload("Customer").
		Preload("Service").
		Preload("StaffProfile.User").
		First(&a, "id = ?", id).Error
	if err != nil {
		return &models.Appointment{ID: id}
	}
	return &a
}
