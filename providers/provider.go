package providers

import (
	"context"
	"fmt"
)

// ProviderRequest is the internal shape handed to a gateway adapter.
type ProviderRequest struct {
	OrderID       string
	Reference     string // our reference, echoed back by the provider
	Amount        int64  // smallest currency unit
	Currency      string
	OperatorCode  string
	Country       string
	PhoneNumber   string
	CustomerEmail string
	CustomerName  string
	CallbackURL   string
	ReturnURL     string
}

// ProviderResponse is the normalized result of a successful initiation.
type ProviderResponse struct {
	TransactionID string // the provider's own identifier, webhook reconciliation key
	PaymentURL    string // hosted page the payer is redirected to
	Status        string
}

// ProviderError is returned when the gateway rejects a request or cannot be
// reached. StatusCode carries the upstream HTTP status (or 502 for transport
// failures).
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (%d): %s", e.StatusCode, e.Message)
}

// PaymentProvider is the interface all gateway integrations implement.
type PaymentProvider interface {
	// Name identifies the provider in logs and payment records.
	Name() string

	// InitiatePayment asks the gateway to start a collection and returns the
	// hosted payment URL and the provider's transaction id.
	InitiatePayment(ctx context.Context, req ProviderRequest) (*ProviderResponse, error)
}
