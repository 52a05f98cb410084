// Package payments abstracts the payment provider behind a small gateway
// interface so controllers never talk to the provider SDK directly.
package payments

import "context"

// Order is the payment request for one appointment. OrderID is ours and is
// carried through the provider as metadata; ProviderRef on the resulting
// session is the provider's identifier.
type Order struct {
	OrderID       string
	AppointmentID string
	Amount        float64
	Currency      string
	CustomerEmail string
}

// Session is what the client needs to complete the payment.
type Session struct {
	OrderID      string
	ProviderRef  string
	ClientSecret string
}

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

// Event is a provider webhook notification mapped back to our identifiers.
type Event struct {
	OrderID       string
	AppointmentID string
	ProviderRef   string
	Status        Status
}

type Gateway interface {
	// CreateOrder registers the payment with the provider.
	CreateOrder(ctx context.Context, order Order) (*Session, error)
	// FetchStatus looks up the current payment status by the provider's
	// own reference, used when verifying a client redirect.
	FetchStatus(ctx context.Context, providerRef string) (Status, error)
	// ParseWebhook verifies the webhook signature and maps the payload to
	// an Event. Unknown event types return nil with no error.
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
