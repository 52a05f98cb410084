package models

import "testing"

func TestAppointmentConfirmPayment_Idempotent(t *testing.T) {
	order := "ORD_test"
	a := &Appointment{Status: StatusPending, PaymentStatus: PaymentPending, PaymentOrderID: &order}

	if err := a.ConfirmPayment(order); err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}
	if a.Status != StatusBooked || a.PaymentStatus != PaymentSuccess {
		t.Fatalf("unexpected state after confirm: %s/%s", a.Status, a.PaymentStatus)
	}
	// Webhook retry with the same order id is a no-op success.
	if err := a.ConfirmPayment(order); err != nil {
		t.Fatalf("retry confirm errored: %v", err)
	}
	if a.Status != StatusBooked || a.PaymentStatus != PaymentSuccess {
		t.Fatalf("retry changed state: %s/%s", a.Status, a.PaymentStatus)
	}
}

func TestAppointmentConfirmPayment_OrderMismatch(t *testing.T) {
	order := "ORD_a"
	a := &Appointment{Status: StatusPending, PaymentStatus: PaymentPending, PaymentOrderID: &order}
	if err := a.ConfirmPayment("ORD_b"); err != ErrOrderMismatch {
		t.Fatalf("expected ErrOrderMismatch, got %v", err)
	}
}

func TestAppointmentFailPayment_ReleasesSlot(t *testing.T) {
	order := "ORD_fail"
	a := &Appointment{Status: StatusPending, PaymentStatus: PaymentPending, PaymentOrderID: &order}
	if err := a.FailPayment(order); err != nil {
		t.Fatalf("fail payment errored: %v", err)
	}
	if a.Status != StatusCancelled || a.PaymentStatus != PaymentFailed {
		t.Fatalf("unexpected state: %s/%s", a.Status, a.PaymentStatus)
	}
	if a.Occupies() {
		t.Fatal("cancelled appointment must not occupy its slot")
	}
}

func TestAppointmentCancel_Transitions(t *testing.T) {
	a := &Appointment{Status: StatusPending, PaymentStatus: PaymentPending}
	if err := a.Cancel(); err != nil {
		t.Fatalf("cancel from pending failed: %v", err)
	}
	if a.PaymentStatus != PaymentCancelled {
		t.Fatalf("expected payment status cancelled, got %s", a.PaymentStatus)
	}
	if err := a.Cancel(); err != ErrAlreadyCancelled {
		t.Fatalf("second cancel: expected ErrAlreadyCancelled, got %v", err)
	}

	b := &Appointment{Status: StatusCompleted}
	if err := b.Cancel(); err == nil {
		t.Fatal("expected error cancelling a completed appointment")
	}
}

func TestAppointmentComplete(t *testing.T) {
	a := &Appointment{Status: StatusBooked, PaymentStatus: PaymentSuccess}
	if err := a.Complete(); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if a.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", a.Status)
	}

	b := &Appointment{Status: StatusPending}
	if err := b.Complete(); err == nil {
		t.Fatal("expected error completing a pending appointment")
	}
}
