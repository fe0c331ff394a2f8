package models

import "strings"

// WebhookKind is the normalized family of a provider webhook event.
type WebhookKind string

const (
	WebhookCompleted WebhookKind = "completed"
	WebhookFailed    WebhookKind = "failed"
	WebhookPending   WebhookKind = "pending"
	WebhookUnknown   WebhookKind = "unknown"
)

// ProviderWebhookPayload is the loosely-typed callback body providers post.
// Providers disagree on field names, so every known variant is captured and
// collapsed by Normalize.
type ProviderWebhookPayload struct {
	Event string      `json:"event"`
	Type  string      `json:"type"`
	Data  WebhookData `json:"data"`
}

type WebhookData struct {
	TxRef         string `json:"tx_ref"`
	Reference     string `json:"reference"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

// WebhookEvent is the canonical form every inbound callback is reduced to
// before dispatch.
type WebhookEvent struct {
	Kind           WebhookKind
	EventType      string // original event name, for logging
	TransactionRef string
}

// Normalize maps the provider-specific payload onto a canonical event.
// The transaction reference is taken from the first of tx_ref, reference,
// transaction_id that is present. The event name is matched by its suffix,
// which covers the charge.*, payment.* and transaction.* families; when no
// event name is sent the data.status field is used instead.
func (p *ProviderWebhookPayload) Normalize() WebhookEvent {
	ref := p.Data.TxRef
	if ref == "" {
		ref = p.Data.Reference
	}
	if ref == "" {
		ref = p.Data.TransactionID
	}

	name := p.Event
	if name == "" {
		name = p.Type
	}
	if name == "" {
		name = p.Data.Status
	}

	suffix := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		suffix = name[i+1:]
	}

	var kind WebhookKind
	switch strings.ToLower(suffix) {
	case "completed", "success", "successful", "succeeded":
		kind = WebhookCompleted
	case "failed", "failure":
		kind = WebhookFailed
	case "pending":
		kind = WebhookPending
	default:
		kind = WebhookUnknown
	}

	return WebhookEvent{Kind: kind, EventType: name, TransactionRef: ref}
}
