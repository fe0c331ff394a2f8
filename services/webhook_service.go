package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"mobile-money-service/models"
	"mobile-money-service/providers"
	"mobile-money-service/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrMalformedPayload is returned when the webhook body is not valid JSON.
var ErrMalformedPayload = errors.New("malformed webhook payload")

// EventPublisher publishes payment lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event models.PaymentEvent) error
}

// WebhookService reconciles asynchronous provider callbacks against stored
// payments.
type WebhookService interface {
	// Handle verifies and dispatches one inbound provider callback. A nil
	// return means the provider should be answered with success, including
	// the unknown-reference and unknown-event cases, so that providers do
	// not retry payloads this system will never recognize.
	Handle(ctx context.Context, signature, timestamp string, body []byte) error
}

type webhookServiceImpl struct {
	repo     repository.PaymentRepository
	verifier *providers.SignatureVerifier
	producer EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewWebhookService creates a new WebhookService.
func NewWebhookService(
	repo repository.PaymentRepository,
	verifier *providers.SignatureVerifier,
	producer EventPublisher,
	logger *zap.Logger,
) WebhookService {
	return &webhookServiceImpl{
		repo:     repo,
		verifier: verifier,
		producer: producer,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *webhookServiceImpl) Handle(ctx context.Context, signature, timestamp string, body []byte) error {
	if err := s.verifier.Verify(signature, timestamp, body); err != nil {
		s.logger.Warn("Webhook signature verification failed", zap.Error(err))
		return err
	}

	var payload models.ProviderWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		s.logger.Warn("Failed to parse webhook payload", zap.Error(err))
		return ErrMalformedPayload
	}

	event := payload.Normalize()
	if event.TransactionRef == "" {
		s.logger.Warn("Webhook carries no transaction reference, discarding",
			zap.String("event_type", event.EventType))
		return nil
	}
	if event.Kind == models.WebhookUnknown {
		s.logger.Info("Unhandled webhook event type",
			zap.String("event_type", event.EventType),
			zap.String("transaction_ref", event.TransactionRef))
		return nil
	}

	payment, err := s.repo.FindByGatewayTransactionID(ctx, event.TransactionRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("Webhook for unknown payment, discarding",
				zap.String("transaction_ref", event.TransactionRef),
				zap.String("event_type", event.EventType))
			return nil
		}
		s.logger.Error("Payment lookup failed for webhook",
			zap.String("transaction_ref", event.TransactionRef), zap.Error(err))
		return err
	}

	var target models.PaymentStatus
	updates := map[string]interface{}{
		"gateway_response": string(body),
	}
	switch event.Kind {
	case models.WebhookCompleted:
		target = models.StatusCompleted
		now := s.now().UTC()
		updates["completed_at"] = &now
	case models.WebhookFailed:
		target = models.StatusFailed
	case models.WebhookPending:
		target = models.StatusPending
	}

	// The terminal guard lives in the UPDATE itself so a concurrent webhook
	// cannot downgrade a completed payment between a read and a write.
	applied, err := s.repo.UpdateStatusIfNotTerminal(ctx, payment.PaymentID, target, updates)
	if err != nil {
		s.logger.Error("Failed to update payment status",
			zap.String("payment_id", payment.PaymentID.String()), zap.Error(err))
		return err
	}
	if !applied {
		s.logger.Info("Skipping webhook for payment already in terminal state",
			zap.String("payment_id", payment.PaymentID.String()),
			zap.String("status", string(payment.Status)),
			zap.String("event_type", event.EventType))
		return nil
	}

	s.logger.Info("Payment status reconciled",
		zap.String("payment_id", payment.PaymentID.String()),
		zap.String("from", string(payment.Status)),
		zap.String("to", string(target)),
		zap.String("event_type", event.EventType))

	if target != payment.Status {
		s.publishPaymentEvent(ctx, payment, target)
	}
	return nil
}

func (s *webhookServiceImpl) publishPaymentEvent(ctx context.Context, payment *models.Payment, status models.PaymentStatus) {
	event := models.PaymentEvent{
		Type:      "payment_" + string(status),
		OrderID:   payment.OrderID,
		UserID:    payment.UserID,
		PaymentID: payment.PaymentID.String(),
		Reference: payment.Reference,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Status:    string(status),
		Timestamp: s.now().UTC(),
	}
	if err := s.producer.Publish(ctx, event); err != nil {
		// Logging only; a publish failure must not fail the webhook.
		s.logger.Error("Failed to publish payment event",
			zap.String("event_type", event.Type),
			zap.String("payment_id", event.PaymentID),
			zap.Error(err))
	}
}
