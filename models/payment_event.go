package models

import "time"

// PaymentEvent is the message published on every payment status change.
type PaymentEvent struct {
	Type      string    `json:"type"` // "payment_completed", "payment_failed", "payment_pending"
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	PaymentID string    `json:"payment_id"`
	Reference string    `json:"reference"`
	Amount    int64     `json:"amount"` // smallest currency unit
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"` // UTC event time
}

// PaymentRequest is the client-facing payment initiation body.
// Validation tags are checked by validation.Validator, not by gin binding,
// so that every invalid field is reported at once.
type PaymentRequest struct {
	OrderID        string `json:"order_id" validate:"required"`
	Amount         int64  `json:"amount" validate:"required,gt=0"`
	Currency       string `json:"currency" validate:"required,supported_currency"`
	CustomerPhone  string `json:"customer_phone" validate:"required,msisdn"`
	CustomerEmail  string `json:"customer_email" validate:"required,email"`
	CustomerName   string `json:"customer_name" validate:"required"`
	OperatorCode   string `json:"operator_code" validate:"required"`
	Country        string `json:"country" validate:"required,len=2"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// InitiationResult is returned to the client after a successful initiation.
type InitiationResult struct {
	PaymentID     string `json:"payment_id"`
	PaymentURL    string `json:"payment_url"`
	TransactionID string `json:"transaction_id"`
	Reference     string `json:"reference"`
}
