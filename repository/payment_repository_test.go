package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"mobile-money-service/models"
	"mobile-money-service/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return gormDB, mock
}

func TestCreate_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepo(gormDB)

	txID := "yc-tx-1"
	url := "https://pay.example/yc-tx-1"
	payment := &models.Payment{
		PaymentID:            uuid.New(),
		OrderID:              "order-1",
		UserID:               "user-1",
		Amount:               1000,
		Currency:             "NGN",
		OperatorCode:         "mtn-ng",
		Country:              "NG",
		Status:               models.StatusPending,
		Reference:            "MM-REF1",
		IdempotencyKey:       "key-1",
		GatewayTransactionID: &txID,
		PaymentURL:           &url,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "payments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id"}).AddRow(payment.PaymentID))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), payment)
	assert.NoError(t, err)
}

func TestFindByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepo(gormDB)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payments"`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{}))

	p, err := repo.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Nil(t, p)
}

func TestFindByGatewayTransactionID_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepo(gormDB)

	id := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"payment_id", "order_id", "user_id", "amount", "currency", "status", "reference", "gateway_transaction_id", "created_at", "updated_at"}).
		AddRow(id, "order-2", "user-2", 1000, "NGN", models.StatusPending, "MM-REF2", "yc-tx-2", now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payments"`)).
		WithArgs("yc-tx-2").
		WillReturnRows(rows)

	p, err := repo.FindByGatewayTransactionID(context.Background(), "yc-tx-2")
	assert.NoError(t, err)
	assert.Equal(t, id, p.PaymentID)
	assert.Equal(t, models.StatusPending, p.Status)
}

func TestUpdateStatusIfNotTerminal_Applied(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepo(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "payments" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := repo.UpdateStatusIfNotTerminal(context.Background(), uuid.New(), models.StatusCompleted, map[string]interface{}{
		"gateway_response": `{"event":"charge.completed"}`,
	})
	assert.NoError(t, err)
	assert.True(t, applied)
}

func TestUpdateStatusIfNotTerminal_AlreadyTerminal(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepo(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "payments" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	applied, err := repo.UpdateStatusIfNotTerminal(context.Background(), uuid.New(), models.StatusPending, nil)
	assert.NoError(t, err)
	assert.False(t, applied, "terminal rows are excluded by the guard")
}

func TestExpirePending(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepo(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "payments" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	n, err := repo.ExpirePending(context.Background(), time.Now().Add(-30*time.Minute))
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
