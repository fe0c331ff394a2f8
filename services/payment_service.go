package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mobile-money-service/models"
	"mobile-money-service/providers"
	"mobile-money-service/repository"
	"mobile-money-service/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ServiceError is a typed error with an HTTP status code. Fields is set only
// for validation failures so the controller can render per-field errors.
type ServiceError struct {
	StatusCode int
	Message    string
	Fields     validation.FieldErrors
}

func (e *ServiceError) Error() string { return e.Message }

// idempotencyBucket groups client submissions into 5-minute windows when no
// explicit idempotency key is supplied.
const idempotencyBucket = 5 * time.Minute

// PaymentService is the business logic for payment initiation and lookup.
type PaymentService interface {
	Initiate(ctx context.Context, userID string, req *models.PaymentRequest) (*models.InitiationResult, *ServiceError)

	// GetPayment returns (nil, nil) when the payment does not exist; the
	// caller is responsible for mapping that to a 404.
	GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, *ServiceError)

	// ExpirePending fails every pending payment older than the expiry window.
	ExpirePending(ctx context.Context) (int64, error)
}

// IsPaymentExpired reports whether a payment created at createdAt has
// outlived the allowed window at instant now. The boundary is strict: a
// payment exactly window old is not yet expired.
func IsPaymentExpired(createdAt, now time.Time, window time.Duration) bool {
	return now.Sub(createdAt) > window
}

type paymentServiceImpl struct {
	repo         repository.PaymentRepository
	provider     providers.PaymentProvider
	validator    *validation.Validator
	fees         *FeeCalculator
	producer     EventPublisher
	callbackURL  string
	returnURL    string
	expiryWindow time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	repo repository.PaymentRepository,
	provider providers.PaymentProvider,
	validator *validation.Validator,
	fees *FeeCalculator,
	producer EventPublisher,
	callbackURL string,
	returnURL string,
	expiryWindow time.Duration,
	logger *zap.Logger,
) PaymentService {
	return &paymentServiceImpl{
		repo:         repo,
		provider:     provider,
		validator:    validator,
		fees:         fees,
		producer:     producer,
		callbackURL:  callbackURL,
		returnURL:    returnURL,
		expiryWindow: expiryWindow,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *paymentServiceImpl) Initiate(ctx context.Context, userID string, req *models.PaymentRequest) (*models.InitiationResult, *ServiceError) {
	if errs := s.validator.ValidatePaymentRequest(req); errs != nil {
		return nil, &ServiceError{
			StatusCode: http.StatusBadRequest,
			Message:    "validation failed",
			Fields:     errs,
		}
	}

	idempotencyKey := req.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = deriveIdempotencyKey(req, s.now())
	}

	// A repeated submission returns the payment created the first time round
	// without touching the gateway again.
	if existing, err := s.repo.FindByIdempotencyKey(ctx, idempotencyKey); err == nil {
		s.logger.Info("Duplicate initiation collapsed onto existing payment",
			zap.String("payment_id", existing.PaymentID.String()),
			zap.String("order_id", existing.OrderID),
		)
		return initiationResult(existing), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Idempotency lookup failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "failed to process payment"}
	}

	fees := s.fees.Calculate(req.Amount, FeeTypeCombined)
	reference := generateReference()

	resp, err := s.provider.InitiatePayment(ctx, providers.ProviderRequest{
		OrderID:       req.OrderID,
		Reference:     reference,
		Amount:        req.Amount,
		Currency:      strings.ToUpper(req.Currency),
		OperatorCode:  req.OperatorCode,
		Country:       strings.ToUpper(req.Country),
		PhoneNumber:   req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		CallbackURL:   s.callbackURL,
		ReturnURL:     s.returnURL,
	})
	if err != nil {
		// No payment record is created for a request the provider rejected.
		var perr *providers.ProviderError
		if errors.As(err, &perr) {
			s.logger.Warn("Gateway rejected initiation",
				zap.String("order_id", req.OrderID),
				zap.Int("gateway_status", perr.StatusCode),
				zap.String("message", perr.Message),
			)
			return nil, &ServiceError{StatusCode: http.StatusBadGateway, Message: perr.Message}
		}
		s.logger.Error("Gateway call failed", zap.String("order_id", req.OrderID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusBadGateway, Message: "payment gateway unavailable"}
	}

	payment := &models.Payment{
		PaymentID:      uuid.New(),
		OrderID:        req.OrderID,
		UserID:         userID,
		Amount:         req.Amount,
		Currency:       strings.ToUpper(req.Currency),
		OperatorCode:   req.OperatorCode,
		Country:        strings.ToUpper(req.Country),
		PhoneNumber:    req.CustomerPhone,
		CustomerEmail:  req.CustomerEmail,
		CustomerName:   req.CustomerName,
		Status:         models.StatusPending,
		Reference:      reference,
		IdempotencyKey: idempotencyKey,
		FeeAmount:      fees.Total,
		TotalAmount:    fees.TotalAmount,
		CreatedAt:      s.now().UTC(),
	}
	if resp.TransactionID != "" {
		payment.GatewayTransactionID = &resp.TransactionID
	}
	if resp.PaymentURL != "" {
		payment.PaymentURL = &resp.PaymentURL
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrDuplicateIdempotencyKey) {
			// Raced with a concurrent duplicate; return the winner.
			if existing, ferr := s.repo.FindByIdempotencyKey(ctx, idempotencyKey); ferr == nil {
				return initiationResult(existing), nil
			}
		}
		s.logger.Error("Failed to save payment", zap.String("order_id", req.OrderID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "failed to save payment"}
	}

	s.logger.Info("Payment initiated",
		zap.String("payment_id", payment.PaymentID.String()),
		zap.String("order_id", payment.OrderID),
		zap.String("reference", reference),
		zap.String("provider", s.provider.Name()),
	)

	// Event delivery is best-effort; the payment is already persisted.
	if err := s.producer.Publish(ctx, models.PaymentEvent{
		Type:      "payment_initiated",
		OrderID:   payment.OrderID,
		UserID:    payment.UserID,
		PaymentID: payment.PaymentID.String(),
		Reference: payment.Reference,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Status:    string(payment.Status),
		Timestamp: s.now().UTC(),
	}); err != nil {
		s.logger.Error("Failed to publish initiation event",
			zap.String("payment_id", payment.PaymentID.String()), zap.Error(err))
	}

	return initiationResult(payment), nil
}

func (s *paymentServiceImpl) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, *ServiceError) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("Payment lookup failed", zap.String("payment_id", id.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "failed to fetch payment"}
	}
	return payment, nil
}

func (s *paymentServiceImpl) ExpirePending(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.expiryWindow)
	n, err := s.repo.ExpirePending(ctx, cutoff)
	if err != nil {
		s.logger.Error("Expiry sweep failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		s.logger.Info("Expired stale pending payments", zap.Int64("count", n))
	}
	return n, nil
}

func initiationResult(p *models.Payment) *models.InitiationResult {
	res := &models.InitiationResult{
		PaymentID: p.PaymentID.String(),
		Reference: p.Reference,
	}
	if p.PaymentURL != nil {
		res.PaymentURL = *p.PaymentURL
	}
	if p.GatewayTransactionID != nil {
		res.TransactionID = *p.GatewayTransactionID
	}
	return res
}

// deriveIdempotencyKey collapses rapid duplicate submissions of the same
// order into one payment when the client sends no explicit key.
func deriveIdempotencyKey(req *models.PaymentRequest, now time.Time) string {
	bucket := now.Unix() / int64(idempotencyBucket.Seconds())
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s|%d", req.OrderID, req.Amount, strings.ToUpper(req.Currency), bucket)))
	return hex.EncodeToString(sum[:])
}

// generateReference produces the customer-facing payment reference.
func generateReference() string {
	b := make([]byte, 10)
	_, _ = rand.Read(b)
	return "MM-" + strings.ToUpper(hex.EncodeToString(b))
}
