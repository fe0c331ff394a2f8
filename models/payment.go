package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusProcessing PaymentStatus = "processing"
	StatusCompleted  PaymentStatus = "completed"
	StatusFailed     PaymentStatus = "failed"
	StatusCancelled  PaymentStatus = "cancelled"
)

// TerminalStatuses are the states a payment can never leave.
var TerminalStatuses = []PaymentStatus{StatusCompleted, StatusFailed, StatusCancelled}

// IsTerminal reports whether no further transitions are allowed from s.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether moving from s to target is a valid
// state-machine transition.
//
// Valid transitions:
//   - pending → processing, completed, failed, cancelled
//   - processing → completed, failed, cancelled
//
// Terminal states allow nothing.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case StatusPending:
		return target == StatusProcessing || target == StatusCompleted ||
			target == StatusFailed || target == StatusCancelled
	case StatusProcessing:
		return target == StatusCompleted || target == StatusFailed || target == StatusCancelled
	default:
		return false
	}
}

// SupportedCurrencies is the allow-list of currencies payments may be made in.
var SupportedCurrencies = map[string]bool{
	"XAF": true,
	"XOF": true,
	"NGN": true,
	"GHS": true,
	"KES": true,
	"UGX": true,
	"TZS": true,
	"USD": true,
	"EUR": true,
}

type Payment struct {
	PaymentID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"payment_id"`
	OrderID               string         `gorm:"type:varchar(64);index;not null" json:"order_id"`
	UserID                string         `gorm:"type:varchar(64);index;not null" json:"user_id"`
	Amount                int64          `gorm:"not null" json:"amount"` // smallest currency unit
	Currency              string         `gorm:"type:varchar(10);not null" json:"currency"`
	OperatorCode          string         `gorm:"type:varchar(32);not null" json:"operator_code"`
	Country               string         `gorm:"type:varchar(2);not null" json:"country"`
	PhoneNumber           string         `gorm:"type:varchar(20)" json:"phone_number"`
	CustomerEmail         string         `gorm:"type:varchar(255)" json:"customer_email"`
	CustomerName          string         `gorm:"type:varchar(255)" json:"customer_name"`
	Status                PaymentStatus  `gorm:"type:varchar(20);not null;index" json:"status"`
	Reference             string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"reference"`
	IdempotencyKey        string         `gorm:"type:varchar(128);uniqueIndex" json:"-"`
	GatewayTransactionID  *string        `gorm:"uniqueIndex" json:"gateway_transaction_id,omitempty"`
	PaymentURL            *string        `gorm:"type:varchar(1024)" json:"payment_url,omitempty"` // hosted page, set at creation
	FeeAmount             int64          `json:"fee_amount"`
	TotalAmount           int64          `json:"total_amount"`
	GatewayResponse       *string        `gorm:"type:jsonb" json:"-"` // last raw provider payload, audit only
	CompletedAt           *time.Time     `json:"completed_at,omitempty"`
	LastVerificationCheck *time.Time     `json:"-"`
	CreatedAt             time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}
