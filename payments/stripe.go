package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"github.com/stripe/stripe-go/v79/webhook"
)

// ErrNotConfigured is returned when the Stripe keys are missing from the
// environment.
var ErrNotConfigured = errors.New("stripe is not configured")

// StripeGateway implements Gateway on Stripe PaymentIntents. Stripe's SDK
// uses a global API key, set once at construction.
type StripeGateway struct {
	webhookSecret    string
	webhookTolerance time.Duration
	timeout          time.Duration
	configured       bool
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	secretKey = strings.TrimSpace(secretKey)
	if secretKey != "" {
		stripe.Key = secretKey
	}

	timeout := 10 * time.Second
	if s := os.Getenv("PAYMENT_TIMEOUT"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}

	return &StripeGateway{
		webhookSecret:    strings.TrimSpace(webhookSecret),
		webhookTolerance: 300 * time.Second,
		timeout:          timeout,
		configured:       secretKey != "",
	}
}

// amountInSubunits converts a major-unit price to the currency's smallest
// unit. Rounding matters: 19.99 has no exact float representation, and
// truncating 19.99*100 would charge 1998 instead of 1999.
func amountInSubunits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (g *StripeGateway) CreateOrder(ctx context.Context, order Order) (*Session, error) {
	if !g.configured {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInSubunits(order.Amount)),
		Currency: stripe.String(strings.ToLower(order.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"order_id":       order.OrderID,
			"appointment_id": order.AppointmentID,
		},
	}
	params.Context = ctx
	// Retries of the same order must not create a second intent.
	params.IdempotencyKey = stripe.String(order.OrderID)
	if order.CustomerEmail != "" {
		params.ReceiptEmail = stripe.String(order.CustomerEmail)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}

	return &Session{
		OrderID:      order.OrderID,
		ProviderRef:  pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

func (g *StripeGateway) FetchStatus(ctx context.Context, providerRef string) (Status, error) {
	if !g.configured {
		return StatusPending, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := paymentintent.Get(providerRef, params)
	if err != nil {
		return StatusPending, fmt.Errorf("stripe: fetch payment intent: %w", err)
	}
	return mapIntentStatus(pi.Status), nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	if g.webhookSecret == "" {
		return nil, ErrNotConfigured
	}

	evt, err := webhook.ConstructEventWithTolerance(payload, signature, g.webhookSecret, g.webhookTolerance)
	if err != nil {
		return nil, fmt.Errorf("stripe: invalid webhook signature: %w", err)
	}

	switch evt.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed", "payment_intent.canceled":
	default:
		return nil, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(evt.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("stripe: invalid payment intent payload: %w", err)
	}

	out := &Event{
		OrderID:       strings.TrimSpace(pi.Metadata["order_id"]),
		AppointmentID: strings.TrimSpace(pi.Metadata["appointment_id"]),
		ProviderRef:   pi.ID,
		Status:        mapIntentStatus(pi.Status),
	}
	if evt.Type != "payment_intent.succeeded" {
		out.Status = StatusFailed
	}
	if out.OrderID == "" || out.AppointmentID == "" {
		return nil, fmt.Errorf("stripe: missing order metadata on event %s", evt.ID)
	}
	return out, nil
}

func mapIntentStatus(s stripe.PaymentIntentStatus) Status {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return StatusPaid
	case stripe.PaymentIntentStatusCanceled:
		return StatusFailed
	default:
		return StatusPending
	}
}
