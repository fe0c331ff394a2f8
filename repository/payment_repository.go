package repository

import (
	"context"
	"errors"
	"time"

	"mobile-money-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDuplicateIdempotencyKey is returned when a payment with the same
// idempotency key already exists.
var ErrDuplicateIdempotencyKey = errors.New("payment with this idempotency key already exists")

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*models.Payment, error)
	FindByGatewayTransactionID(ctx context.Context, txID string) (*models.Payment, error)

	// UpdateStatusIfNotTerminal applies the status change and extra column
	// updates in a single conditional UPDATE guarded by the terminal-state
	// check. It reports whether a row was actually updated; false means the
	// payment was already in a terminal state (or does not exist).
	UpdateStatusIfNotTerminal(ctx context.Context, id uuid.UUID, status models.PaymentStatus, updates map[string]interface{}) (bool, error)

	// ExpirePending moves all pending payments created before cutoff to
	// failed and returns how many rows were affected.
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)
}

type gormPaymentRepo struct {
	db *gorm.DB
}

func NewGormPaymentRepo(db *gorm.DB) PaymentRepository {
	return &gormPaymentRepo{db: db}
}

func (r *gormPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateIdempotencyKey
		}
		return err
	}
	return nil
}

func (r *gormPaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).Where("payment_id = ?", id).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *gormPaymentRepo) FindByIdempotencyKey(ctx context.Context, key string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *gormPaymentRepo) FindByGatewayTransactionID(ctx context.Context, txID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).Where("gateway_transaction_id = ?", txID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *gormPaymentRepo) UpdateStatusIfNotTerminal(ctx context.Context, id uuid.UUID, status models.PaymentStatus, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	updates["updated_at"] = time.Now()

	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("payment_id = ? AND status NOT IN ?", id, models.TerminalStatuses).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormPaymentRepo) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("status = ? AND created_at < ?", models.StatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":     models.StatusFailed,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}
