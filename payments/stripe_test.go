package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/stripe/stripe-go/v79"
)

func TestMapIntentStatus(t *testing.T) {
	cases := []struct {
		in   stripe.PaymentIntentStatus
		want Status
	}{
		{stripe.PaymentIntentStatusSucceeded, StatusPaid},
		{stripe.PaymentIntentStatusCanceled, StatusFailed},
		{stripe.PaymentIntentStatusProcessing, StatusPending},
		{stripe.PaymentIntentStatusRequiresPaymentMethod, StatusPending},
	}
	for _, tc := range cases {
		if got := mapIntentStatus(tc.in); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.in, tc.want, got)
		}
	}
}

func TestAmountInSubunits(t *testing.T) {
	cases := []struct {
		amount float64
		want   int64
	}{
		{500, 50000},
		{19.99, 1999},
		{0.1, 10},
		{1234.56, 123456},
		{0, 0},
	}
	for _, tc := range cases {
		if got := amountInSubunits(tc.amount); got != tc.want {
			t.Fatalf("%.2f: expected %d, got %d", tc.amount, tc.want, got)
		}
	}
}

func TestUnconfiguredGateway(t *testing.T) {
	g := NewStripeGateway("", "")

	if _, err := g.CreateOrder(context.Background(), Order{OrderID: "ORD_x"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := g.FetchStatus(context.Background(), "pi_x"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := g.ParseWebhook([]byte("{}"), "sig"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
