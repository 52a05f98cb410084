package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/salonlux/salon-booking/db"
	"github.com/salonlux/salon-booking/models"
)

// monday/sunday are fixed calendar days so the weekday resolution in these
// tests never depends on the wall clock.
var (
	monday = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	sunday = time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	g, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// A single connection serializes transactions the way a real server's
	// storage layer would under SERIALIZABLE isolation.
	sqlDB, err := g.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(g); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	return NewEngine(g, time.UTC, nil)
}

type fixture struct {
	customer models.User
	other    models.User
	staff    models.StaffProfile
	service  models.Service
}

func seed(t *testing.T, e *Engine) fixture {
	t.Helper()

	customer := models.User{Name: "Asha", Email: fmt.Sprintf("asha+%s@example.com", t.Name()), Role: models.RoleCustomer}
	if err := e.db.Create(&customer).Error; err != nil {
		t.Fatalf("failed to create customer: %v", err)
	}
	other := models.User{Name: "Ravi", Email: fmt.Sprintf("ravi+%s@example.com", t.Name()), Role: models.RoleCustomer}
	if err := e.db.Create(&other).Error; err != nil {
		t.Fatalf("failed to create second customer: %v", err)
	}

	staffUser := models.User{Name: "Meera", Email: fmt.Sprintf("meera+%s@example.com", t.Name()), Role: models.RoleStaff}
	if err := e.db.Create(&staffUser).Error; err != nil {
		t.Fatalf("failed to create staff user: %v", err)
	}

	profile := models.StaffProfile{
		UserID:         staffUser.ID,
		Specialization: "Hair",
		WorkingHours:   models.WeekSchedule{"monday": "10:00-18:00"},
	}
	if err := e.db.Create(&profile).Error; err != nil {
		t.Fatalf("failed to create staff profile: %v", err)
	}

	service := models.Service{Name: "Haircut " + t.Name(), DurationMinutes: 60, Price: 500, IsActive: true}
	if err := e.db.Create(&service).Error; err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	if err := e.db.Model(&profile).Association("Services").Append(&service); err != nil {
		t.Fatalf("failed to assign service to staff: %v", err)
	}

	return fixture{customer: customer, other: other, staff: profile, service: service}
}

func TestAvailableSlots_FullWorkingDay(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)

	slots, err := e.AvailableSlots(context.Background(), fx.staff.ID, fx.service.ID, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 8 {
		t.Fatalf("expected 8 slots for 10:00-18:00 at 60min, got %d", len(slots))
	}
	if want := monday.Add(10 * time.Hour); !slots[0].Equal(want) {
		t.Fatalf("expected first slot 10:00, got %s", slots[0].Format(time.RFC3339))
	}
	if want := monday.Add(17 * time.Hour); !slots[7].Equal(want) {
		t.Fatalf("expected last slot 17:00, got %s", slots[7].Format(time.RFC3339))
	}
}

func TestAvailableSlots_NegativeOffsetTimeZone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}
	e := newTestEngine(t)
	e.loc = ny
	fx := seed(t, e)

	// HTTP handlers may parse ?date= at UTC midnight, which in a
	// negative-offset zone is still the previous evening. The engine must
	// resolve the calendar day, not the instant.
	slots, err := e.AvailableSlots(context.Background(), fx.staff.ID, fx.service.ID, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 8 {
		t.Fatalf("expected 8 Monday slots in America/New_York, got %d", len(slots))
	}
	if want := time.Date(2026, 9, 7, 10, 0, 0, 0, ny); !slots[0].Equal(want) {
		t.Fatalf("expected first slot 10:00 local, got %s", slots[0].Format(time.RFC3339))
	}

	// The closed day stays closed under the same parsing.
	slots, err = e.AvailableSlots(context.Background(), fx.staff.ID, fx.service.ID, sunday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots on a closed Sunday, got %d", len(slots))
	}
}

func TestAvailableSlots_ExcludesOccupied(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)
	one := monday.Add(13 * time.Hour)

	if _, err := e.Book(context.Background(), fx.customer.ID, fx.staff.ID, fx.service.ID, one); err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	slots, err := e.AvailableSlots(context.Background(), fx.staff.ID, fx.service.ID, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 7 {
		t.Fatalf("expected 7 slots after booking 13:00, got %d", len(slots))
	}
	for _, s := range slots {
		if s.Equal(one) {
			t.Fatal("13:00 still listed as available")
		}
	}
}

func TestAvailableSlots_PendingAlsoOccupies(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)
	one := monday.Add(11 * time.Hour)

	// A freshly booked appointment is pending until payment confirms, and
	// must already hold its slot.
	a, err := e.Book(context.Background(), fx.customer.ID, fx.staff.ID, fx.service.ID, one)
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if a.Status != models.StatusPending {
		t.Fatalf("expected pending, got %s", a.Status)
	}

	slots, err := e.AvailableSlots(context.Background(), fx.staff.ID, fx.service.ID, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range slots {
		if s.Equal(one) {
			t.Fatal("payment-pending slot still listed as available")
		}
	}
}

func TestAvailableSlots_ClosedDay(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)

	slots, err := e.AvailableSlots(context.Background(), fx.staff.ID, fx.service.ID, sunday)
	if err != nil {
		t.Fatalf("closed day must not error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots on a closed day, got %d", len(slots))
	}
}

func TestAvailableSlots_MalformedScheduleIsClosed(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)

	err := e.db.Model(&fx.staff).
		Update("working_hours", models.WeekSchedule{"monday": "not-a-range"}).Error
	if err != nil {
		t.Fatalf("failed to save schedule: %v", err)
	}

	slots, err := e.AvailableSlots(context.Background(), fx.staff.ID, fx.service.ID, monday)
	if err != nil {
		t.Fatalf("malformed schedule must not error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots, got %d", len(slots))
	}
}

func TestAvailableSlots_UnknownRefs(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)

	if _, err := e.AvailableSlots(context.Background(), fx.staff.ID, "no-such-service", monday); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown service, got %v", err)
	}
	if _, err := e.AvailableSlots(context.Background(), "no-such-staff", fx.service.ID, monday); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown staff, got %v", err)
	}
}

func TestBook_SlotFromAvailabilityIsBookable(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)

	slots, err := e.AvailableSlots(context.Background(), fx.staff.ID, fx.service.ID, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, err := e.Book(context.Background(), fx.customer.ID, fx.staff.ID, fx.service.ID, slots[0])
	if err != nil {
		t.Fatalf("slot returned by AvailableSlots must be bookable: %v", err)
	}
	if a.Status != models.StatusPending || a.PaymentStatus != models.PaymentPending {
		t.Fatalf("new appointment must be pending/pending, got %s/%s", a.Status, a.PaymentStatus)
	}
	if !a.AppointmentDate.Equal(slots[0]) {
		t.Fatalf("appointment date mismatch: %s", a.AppointmentDate.Format(time.RFC3339))
	}
}

func TestBook_DoubleBookingRejected(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)
	slot := monday.Add(12 * time.Hour)

	if _, err := e.Book(context.Background(), fx.customer.ID, fx.staff.ID, fx.service.ID, slot); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	if _, err := e.Book(context.Background(), fx.other.ID, fx.staff.ID, fx.service.ID, slot); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}
}

func TestBook_ConcurrentCallersGetExactlyOneSlot(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)
	slot := monday.Add(15 * time.Hour)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, customerID := range []string{fx.customer.ID, fx.other.ID} {
		wg.Add(1)
		go func(i int, customerID string) {
			defer wg.Done()
			_, errs[i] = e.Book(context.Background(), customerID, fx.staff.ID, fx.service.ID, slot)
		}(i, customerID)
	}
	wg.Wait()

	var created, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrSlotUnavailable):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if created != 1 || rejected != 1 {
		t.Fatalf("expected exactly one winner, got %d created / %d rejected", created, rejected)
	}

	var count int64
	e.db.Model(&models.Appointment{}).
		Where("staff_profile_id = ? AND appointment_date = ?", fx.staff.ID, slot).
		Where("status IN ?", models.OccupyingStatuses).
		Count(&count)
	if count != 1 {
		t.Fatalf("expected a single occupying row, found %d", count)
	}
}

func TestBook_OffGridInstantRejected(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)

	// 10:30 is inside working hours but not on the 60-minute grid.
	if _, err := e.Book(context.Background(), fx.customer.ID, fx.staff.ID, fx.service.ID, monday.Add(10*time.Hour+30*time.Minute)); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable for off-grid instant, got %v", err)
	}
	// Sunday is closed entirely.
	if _, err := e.Book(context.Background(), fx.customer.ID, fx.staff.ID, fx.service.ID, sunday.Add(12*time.Hour)); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable on closed day, got %v", err)
	}
}

func TestBook_InvalidReferences(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)
	slot := monday.Add(10 * time.Hour)

	if _, err := e.Book(context.Background(), fx.customer.ID, fx.staff.ID, "missing", slot); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown service: expected ErrNotFound, got %v", err)
	}
	if _, err := e.Book(context.Background(), fx.customer.ID, "missing", fx.service.ID, slot); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown staff: expected ErrNotFound, got %v", err)
	}

	// Deactivated services are hidden from booking.
	if err := e.db.Model(&fx.service).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to deactivate service: %v", err)
	}
	if _, err := e.Book(context.Background(), fx.customer.ID, fx.staff.ID, fx.service.ID, slot); !errors.Is(err, ErrNotFound) {
		t.Fatalf("inactive service: expected ErrNotFound, got %v", err)
	}
}

func TestBook_StaffNotAssignedToService(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)

	unassigned := models.Service{Name: "Facial " + t.Name(), DurationMinutes: 30, Price: 900, IsActive: true}
	if err := e.db.Create(&unassigned).Error; err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	if _, err := e.Book(context.Background(), fx.customer.ID, fx.staff.ID, unassigned.ID, monday.Add(10*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unassigned service, got %v", err)
	}
}

func TestBook_ZeroDurationService(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)

	if err := e.db.Model(&fx.service).Update("duration_minutes", 0).Error; err != nil {
		t.Fatalf("failed to zero duration: %v", err)
	}

	if _, err := e.Book(context.Background(), fx.customer.ID, fx.staff.ID, fx.service.ID, monday.Add(10*time.Hour)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero duration, got %v", err)
	}
}

func TestCancel_ReleasesSlot(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)
	slot := monday.Add(14 * time.Hour)
	owner := Principal{UserID: fx.customer.ID, Role: models.RoleCustomer}

	a, err := e.Book(context.Background(), fx.customer.ID, fx.staff.ID, fx.service.ID, slot)
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	cancelled, err := e.Cancel(context.Background(), owner, a.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	// The slot is bookable again.
	if _, err := e.Book(context.Background(), fx.other.ID, fx.staff.ID, fx.service.ID, slot); err != nil {
		t.Fatalf("slot not released after cancel: %v", err)
	}
}

func TestCancel_Ownership(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)

	a, err := e.Book(context.Background(), fx.customer.ID, fx.staff.ID, fx.service.ID, monday.Add(16*time.Hour))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	stranger := Principal{UserID: fx.other.ID, Role: models.RoleCustomer}
	if _, err := e.Cancel(context.Background(), stranger, a.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	admin := Principal{UserID: "admin-user", Role: models.RoleAdmin}
	if _, err := e.Cancel(context.Background(), admin, a.ID); err != nil {
		t.Fatalf("admin cancel failed: %v", err)
	}
}

func TestCancel_Twice(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)
	owner := Principal{UserID: fx.customer.ID, Role: models.RoleCustomer}

	a, err := e.Book(context.Background(), fx.customer.ID, fx.staff.ID, fx.service.ID, monday.Add(10*time.Hour))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if _, err := e.Cancel(context.Background(), owner, a.ID); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}
	if _, err := e.Cancel(context.Background(), owner, a.ID); !errors.Is(err, models.ErrAlreadyCancelled) {
		t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
	}
}

func TestCancel_UnknownAppointment(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)
	owner := Principal{UserID: fx.customer.ID, Role: models.RoleCustomer}

	if _, err := e.Cancel(context.Background(), owner, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func confirm(t *testing.T, e *Engine, a *models.Appointment) *models.Appointment {
	t.Helper()
	order := "ORD_" + a.ID
	if err := e.db.Model(a).Update("payment_order_id", order).Error; err != nil {
		t.Fatalf("failed to attach order: %v", err)
	}
	out, err := e.ConfirmPayment(context.Background(), a.ID, order, "txn_1")
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	return out
}

func TestReschedule_MovesBookedAppointment(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)
	owner := Principal{UserID: fx.customer.ID, Role: models.RoleCustomer}

	a, err := e.Book(context.Background(), fx.customer.ID, fx.staff.ID, fx.service.ID, monday.Add(11*time.Hour))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	a = confirm(t, e, a)

	target := monday.Add(15 * time.Hour)
	moved, err := e.Reschedule(context.Background(), owner, a.ID, target)
	if err != nil {
		t.Fatalf("reschedule failed: %v", err)
	}
	if moved.ID != a.ID {
		t.Fatal("reschedule must mutate in place, not create a new appointment")
	}
	if !moved.AppointmentDate.Equal(target) {
		t.Fatalf("expected new date %s, got %s", target.Format(time.RFC3339), moved.AppointmentDate.Format(time.RFC3339))
	}

	// The old slot is free again.
	if _, err := e.Book(context.Background(), fx.other.ID, fx.staff.ID, fx.service.ID, monday.Add(11*time.Hour)); err != nil {
		t.Fatalf("old slot not released: %v", err)
	}
}

func TestReschedule_ConflictLeavesOriginalUntouched(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)
	owner := Principal{UserID: fx.customer.ID, Role: models.RoleCustomer}
	original := monday.Add(11 * time.Hour)
	taken := monday.Add(13 * time.Hour)

	a, err := e.Book(context.Background(), fx.customer.ID, fx.staff.ID, fx.service.ID, original)
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	a = confirm(t, e, a)

	if _, err := e.Book(context.Background(), fx.other.ID, fx.staff.ID, fx.service.ID, taken); err != nil {
		t.Fatalf("second booking failed: %v", err)
	}

	if _, err := e.Reschedule(context.Background(), owner, a.ID, taken); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}

	var after models.Appointment
	if err := e.db.First(&after, "id = ?", a.ID).Error; err != nil {
		t.Fatalf("failed to reload appointment: %v", err)
	}
	if !after.AppointmentDate.Equal(original) {
		t.Fatalf("failed reschedule moved the appointment to %s", after.AppointmentDate.Format(time.RFC3339))
	}
	if after.Status != models.StatusBooked {
		t.Fatalf("failed reschedule changed status to %s", after.Status)
	}
}

func TestReschedule_OnlyOwnerAndOnlyBooked(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)

	a, err := e.Book(context.Background(), fx.customer.ID, fx.staff.ID, fx.service.ID, monday.Add(11*time.Hour))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	// Still pending: not reschedulable.
	owner := Principal{UserID: fx.customer.ID, Role: models.RoleCustomer}
	if _, err := e.Reschedule(context.Background(), owner, a.ID, monday.Add(15*time.Hour)); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for pending, got %v", err)
	}

	a = confirm(t, e, a)

	stranger := Principal{UserID: fx.other.ID, Role: models.RoleCustomer}
	if _, err := e.Reschedule(context.Background(), stranger, a.ID, monday.Add(15*time.Hour)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestConfirmPayment_IdempotentAcrossRetries(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)

	a, err := e.Book(context.Background(), fx.customer.ID, fx.staff.ID, fx.service.ID, monday.Add(12*time.Hour))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	order := "ORD_" + a.ID
	if err := e.db.Model(a).Update("payment_order_id", order).Error; err != nil {
		t.Fatalf("failed to attach order: %v", err)
	}

	first, err := e.ConfirmPayment(context.Background(), a.ID, order, "txn_9")
	if err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}
	if first.Status != models.StatusBooked || first.PaymentStatus != models.PaymentSuccess {
		t.Fatalf("unexpected state after confirm: %s/%s", first.Status, first.PaymentStatus)
	}

	// Webhook retry.
	second, err := e.ConfirmPayment(context.Background(), a.ID, order, "txn_9")
	if err != nil {
		t.Fatalf("retried confirm errored: %v", err)
	}
	if second.Status != first.Status || second.PaymentStatus != first.PaymentStatus {
		t.Fatalf("retry changed state: %s/%s", second.Status, second.PaymentStatus)
	}

	if _, err := e.ConfirmPayment(context.Background(), a.ID, "ORD_other", "txn_9"); !errors.Is(err, models.ErrOrderMismatch) {
		t.Fatalf("expected ErrOrderMismatch, got %v", err)
	}
}

func TestFailPayment_CancelsAndReleases(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)
	slot := monday.Add(12 * time.Hour)

	a, err := e.Book(context.Background(), fx.customer.ID, fx.staff.ID, fx.service.ID, slot)
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	order := "ORD_" + a.ID
	if err := e.db.Model(a).Update("payment_order_id", order).Error; err != nil {
		t.Fatalf("failed to attach order: %v", err)
	}

	failed, err := e.FailPayment(context.Background(), a.ID, order)
	if err != nil {
		t.Fatalf("fail payment errored: %v", err)
	}
	if failed.Status != models.StatusCancelled || failed.PaymentStatus != models.PaymentFailed {
		t.Fatalf("unexpected state: %s/%s", failed.Status, failed.PaymentStatus)
	}

	if _, err := e.Book(context.Background(), fx.other.ID, fx.staff.ID, fx.service.ID, slot); err != nil {
		t.Fatalf("slot not released after failed payment: %v", err)
	}
}

func TestComplete_StaffOrAdminOnly(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)

	a, err := e.Book(context.Background(), fx.customer.ID, fx.staff.ID, fx.service.ID, monday.Add(10*time.Hour))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	a = confirm(t, e, a)

	customer := Principal{UserID: fx.customer.ID, Role: models.RoleCustomer}
	if _, err := e.Complete(context.Background(), customer, a.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for customer, got %v", err)
	}

	owner := Principal{UserID: fx.staff.UserID, Role: models.RoleStaff}
	done, err := e.Complete(context.Background(), owner, a.ID)
	if err != nil {
		t.Fatalf("staff complete failed: %v", err)
	}
	if done.Status != models.StatusCompleted {
		t.Fatalf("expected completed, got %s", done.Status)
	}
}

func TestExpireStalePending(t *testing.T) {
	e := newTestEngine(t)
	fx := seed(t, e)
	slot := monday.Add(10 * time.Hour)

	a, err := e.Book(context.Background(), fx.customer.ID, fx.staff.ID, fx.service.ID, slot)
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	// Backdate the row so the sweep sees it as stale.
	if err := e.db.Model(&models.Appointment{}).Where("id = ?", a.ID).
		Update("created_at", time.Now().Add(-2*time.Hour)).Error; err != nil {
		t.Fatalf("failed to backdate appointment: %v", err)
	}

	n, err := e.ExpireStalePending(context.Background(), 30*time.Minute)
	if err != nil {
		t.Fatalf("expiry sweep errored: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired appointment, got %d", n)
	}

	var after models.Appointment
	if err := e.db.First(&after, "id = ?", a.ID).Error; err != nil {
		t.Fatalf("failed to reload appointment: %v", err)
	}
	if after.Status != models.StatusCancelled || after.PaymentStatus != models.PaymentCancelled {
		t.Fatalf("unexpected state after expiry: %s/%s", after.Status, after.PaymentStatus)
	}

	// The reclaimed slot is bookable again.
	if _, err := e.Book(context.Background(), fx.other.ID, fx.staff.ID, fx.service.ID, slot); err != nil {
		t.Fatalf("slot not released by expiry sweep: %v", err)
	}
}
