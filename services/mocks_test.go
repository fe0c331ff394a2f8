package services_test

import (
	"context"
	"sync"
	"time"

	"mobile-money-service/models"
	"mobile-money-service/providers"
	"mobile-money-service/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ---- mock repository ----

// mockRepo is a map-backed PaymentRepository that mirrors the conditional
// update semantics of the gorm implementation.
type mockRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*models.Payment
}

func newMockRepo() *mockRepo {
	return &mockRepo{payments: make(map[uuid.UUID]*models.Payment)}
}

func (m *mockRepo) Create(_ context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.payments {
		if existing.IdempotencyKey == p.IdempotencyKey && p.IdempotencyKey != "" {
			return repository.ErrDuplicateIdempotencyKey
		}
	}
	cp := *p
	m.payments[p.PaymentID] = &cp
	return nil
}

func (m *mockRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRepo) FindByIdempotencyKey(_ context.Context, key string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.IdempotencyKey == key {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRepo) FindByGatewayTransactionID(_ context.Context, txID string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.GatewayTransactionID != nil && *p.GatewayTransactionID == txID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRepo) UpdateStatusIfNotTerminal(_ context.Context, id uuid.UUID, status models.PaymentStatus, updates map[string]interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok || p.Status.IsTerminal() {
		return false, nil
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	if raw, ok := updates["gateway_response"].(string); ok {
		p.GatewayResponse = &raw
	}
	if completedAt, ok := updates["completed_at"].(*time.Time); ok {
		p.CompletedAt = completedAt
	}
	return true, nil
}

func (m *mockRepo) ExpirePending(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.payments {
		if p.Status == models.StatusPending && p.CreatedAt.Before(cutoff) {
			p.Status = models.StatusFailed
			n++
		}
	}
	return n, nil
}

// ---- mock provider ----

type mockProvider struct {
	calls int
	resp  *providers.ProviderResponse
	err   error
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) InitiatePayment(_ context.Context, _ providers.ProviderRequest) (*providers.ProviderResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

// ---- mock event publisher ----

type mockPublisher struct {
	mu     sync.Mutex
	events []models.PaymentEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, event models.PaymentEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockPublisher) published() []models.PaymentEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.PaymentEvent, len(m.events))
	copy(out, m.events)
	return out
}
