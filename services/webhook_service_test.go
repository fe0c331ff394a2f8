package services_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"mobile-money-service/models"
	"mobile-money-service/providers"
	"mobile-money-service/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const webhookSecret = "test-webhook-secret"

func newTestWebhookService(repo *mockRepo, producer *mockPublisher) services.WebhookService {
	logger, _ := zap.NewDevelopment()
	verifier := providers.NewSignatureVerifier(webhookSecret, 5*time.Minute)
	return services.NewWebhookService(repo, verifier, producer, logger)
}

// signedWebhook returns the signature and timestamp headers for a body.
func signedWebhook(t *testing.T, body []byte) (signature, timestamp string) {
	t.Helper()
	verifier := providers.NewSignatureVerifier(webhookSecret, 5*time.Minute)
	timestamp = strconv.FormatInt(time.Now().Unix(), 10)
	return verifier.Sign(timestamp, body), timestamp
}

func pendingPayment(txID string) *models.Payment {
	return &models.Payment{
		PaymentID:            uuid.New(),
		OrderID:              "order-7",
		UserID:               "user-7",
		Amount:               1000,
		Currency:             "NGN",
		Status:               models.StatusPending,
		Reference:            "MM-TESTREF",
		GatewayTransactionID: &txID,
		CreatedAt:            time.Now(),
	}
}

func TestHandle_CompletedTransition(t *testing.T) {
	repo := newMockRepo()
	producer := &mockPublisher{}
	svc := newTestWebhookService(repo, producer)

	payment := pendingPayment("yc-tx-10")
	assert.NoError(t, repo.Create(context.Background(), payment))

	body := []byte(`{"event":"charge.completed","data":{"tx_ref":"yc-tx-10"}}`)
	sig, ts := signedWebhook(t, body)

	assert.NoError(t, svc.Handle(context.Background(), sig, ts, body))

	got, _ := repo.FindByID(context.Background(), payment.PaymentID)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.NotNil(t, got.GatewayResponse)

	events := producer.published()
	assert.Len(t, events, 1)
	assert.Equal(t, "payment_completed", events[0].Type)
	assert.Equal(t, payment.PaymentID.String(), events[0].PaymentID)
}

func TestHandle_CompletedIsIdempotent(t *testing.T) {
	repo := newMockRepo()
	producer := &mockPublisher{}
	svc := newTestWebhookService(repo, producer)

	payment := pendingPayment("yc-tx-11")
	assert.NoError(t, repo.Create(context.Background(), payment))

	body := []byte(`{"event":"charge.completed","data":{"tx_ref":"yc-tx-11"}}`)
	sig, ts := signedWebhook(t, body)

	assert.NoError(t, svc.Handle(context.Background(), sig, ts, body))
	first, _ := repo.FindByID(context.Background(), payment.PaymentID)

	// At-least-once delivery: the same payload arrives again.
	assert.NoError(t, svc.Handle(context.Background(), sig, ts, body))
	second, _ := repo.FindByID(context.Background(), payment.PaymentID)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.CompletedAt, second.CompletedAt)
	assert.Len(t, producer.published(), 1, "duplicate delivery must not publish a second event")
}

func TestHandle_NoTransitionOutOfTerminalState(t *testing.T) {
	repo := newMockRepo()
	producer := &mockPublisher{}
	svc := newTestWebhookService(repo, producer)

	payment := pendingPayment("yc-tx-12")
	assert.NoError(t, repo.Create(context.Background(), payment))

	completed := []byte(`{"event":"charge.completed","data":{"tx_ref":"yc-tx-12"}}`)
	sig, ts := signedWebhook(t, completed)
	assert.NoError(t, svc.Handle(context.Background(), sig, ts, completed))

	for _, event := range []string{"charge.failed", "charge.pending", "transaction.failed"} {
		body := []byte(fmt.Sprintf(`{"event":"%s","data":{"tx_ref":"yc-tx-12"}}`, event))
		sig, ts := signedWebhook(t, body)
		assert.NoError(t, svc.Handle(context.Background(), sig, ts, body))

		got, _ := repo.FindByID(context.Background(), payment.PaymentID)
		assert.Equal(t, models.StatusCompleted, got.Status, "event %s must not leave terminal state", event)
	}
}

func TestHandle_FailedTransition(t *testing.T) {
	repo := newMockRepo()
	producer := &mockPublisher{}
	svc := newTestWebhookService(repo, producer)

	payment := pendingPayment("yc-tx-13")
	assert.NoError(t, repo.Create(context.Background(), payment))

	body := []byte(`{"event":"payment.failed","data":{"reference":"yc-tx-13"}}`)
	sig, ts := signedWebhook(t, body)
	assert.NoError(t, svc.Handle(context.Background(), sig, ts, body))

	got, _ := repo.FindByID(context.Background(), payment.PaymentID)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Nil(t, got.CompletedAt)
}

func TestHandle_UnknownReferenceMutatesNothing(t *testing.T) {
	repo := newMockRepo()
	producer := &mockPublisher{}
	svc := newTestWebhookService(repo, producer)

	payment := pendingPayment("yc-tx-14")
	assert.NoError(t, repo.Create(context.Background(), payment))

	body := []byte(`{"event":"charge.completed","data":{"tx_ref":"never-seen"}}`)
	sig, ts := signedWebhook(t, body)

	assert.NoError(t, svc.Handle(context.Background(), sig, ts, body), "unknown reference still reports success")

	got, _ := repo.FindByID(context.Background(), payment.PaymentID)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Empty(t, producer.published())
}

func TestHandle_UnknownEventTypeIgnored(t *testing.T) {
	repo := newMockRepo()
	svc := newTestWebhookService(repo, &mockPublisher{})

	payment := pendingPayment("yc-tx-15")
	assert.NoError(t, repo.Create(context.Background(), payment))

	body := []byte(`{"event":"charge.refund_requested","data":{"tx_ref":"yc-tx-15"}}`)
	sig, ts := signedWebhook(t, body)
	assert.NoError(t, svc.Handle(context.Background(), sig, ts, body))

	got, _ := repo.FindByID(context.Background(), payment.PaymentID)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestHandle_MissingReferenceDiscarded(t *testing.T) {
	repo := newMockRepo()
	svc := newTestWebhookService(repo, &mockPublisher{})

	body := []byte(`{"event":"charge.completed","data":{}}`)
	sig, ts := signedWebhook(t, body)
	assert.NoError(t, svc.Handle(context.Background(), sig, ts, body))
}

func TestHandle_BadSignatureRejected(t *testing.T) {
	repo := newMockRepo()
	svc := newTestWebhookService(repo, &mockPublisher{})

	payment := pendingPayment("yc-tx-16")
	assert.NoError(t, repo.Create(context.Background(), payment))

	body := []byte(`{"event":"charge.completed","data":{"tx_ref":"yc-tx-16"}}`)
	ts := strconv.FormatInt(time.Now().Unix(), 10)

	err := svc.Handle(context.Background(), "deadbeef", ts, body)
	assert.ErrorIs(t, err, providers.ErrInvalidSignature)

	got, _ := repo.FindByID(context.Background(), payment.PaymentID)
	assert.Equal(t, models.StatusPending, got.Status, "unverified payload must not be trusted")
}

func TestHandle_MalformedPayload(t *testing.T) {
	svc := newTestWebhookService(newMockRepo(), &mockPublisher{})

	body := []byte(`not-json`)
	sig, ts := signedWebhook(t, body)

	err := svc.Handle(context.Background(), sig, ts, body)
	assert.ErrorIs(t, err, services.ErrMalformedPayload)
}

func TestHandle_PublishFailureDoesNotFailWebhook(t *testing.T) {
	repo := newMockRepo()
	producer := &mockPublisher{err: fmt.Errorf("broker down")}
	svc := newTestWebhookService(repo, producer)

	payment := pendingPayment("yc-tx-17")
	assert.NoError(t, repo.Create(context.Background(), payment))

	body := []byte(`{"event":"charge.completed","data":{"tx_ref":"yc-tx-17"}}`)
	sig, ts := signedWebhook(t, body)

	assert.NoError(t, svc.Handle(context.Background(), sig, ts, body))

	got, _ := repo.FindByID(context.Background(), payment.PaymentID)
	assert.Equal(t, models.StatusCompleted, got.Status)
}
