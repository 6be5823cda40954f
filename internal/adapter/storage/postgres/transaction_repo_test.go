package postgres

import (
	"context"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction() *domain.Transaction {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Transaction{
		ID:              uuid.New(),
		PayerID:         uuid.New(),
		PayeeID:         uuid.New(),
		PaymentMethodID: uuid.New(),
		Amount:          decimal.RequireFromString("40.00"),
		Currency:        "ETB",
		Status:          domain.TransactionStatusInitiated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func txColumns() []string {
	return []string{"id", "payer_id", "payee_id", "payment_method_id", "amount", "currency", "status",
		"created_at", "updated_at", "settled_at"}
}

func txRow(t *domain.Transaction) *pgxmock.Rows {
	return pgxmock.NewRows(txColumns()).AddRow(
		t.ID, t.PayerID, t.PayeeID, t.PaymentMethodID, t.Amount, t.Currency, t.Status,
		t.CreatedAt, t.UpdatedAt, t.SettledAt,
	)
}

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(txn.ID, txn.PayerID, txn.PayeeID, txn.PaymentMethodID, pgxmock.AnyArg(), txn.Currency,
			txn.Status, txn.CreatedAt, txn.UpdatedAt, txn.SettledAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.Create(context.Background(), tx, txn))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(txn.ID).
		WillReturnRows(txRow(txn))

	result, err := repo.GetByID(context.Background(), txn.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, txn.ID, result.ID)
	assert.Equal(t, domain.TransactionStatusInitiated, result.Status)
	assert.Nil(t, result.SettledAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestTransactionRepo_GetByIDForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()
	settled := txn.CreatedAt.Add(time.Minute)
	txn.Status = domain.TransactionStatusSuccess
	txn.SettledAt = &settled

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id .+ FOR UPDATE").
		WithArgs(txn.ID).
		WillReturnRows(txRow(txn))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByIDForUpdate(context.Background(), tx, txn.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotNil(t, result.SettledAt)
	assert.Equal(t, settled, *result.SettledAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	id := uuid.New()
	settled := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE transactions SET status").
		WithArgs(domain.TransactionStatusSuccess, &settled, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.UpdateStatus(context.Background(), tx, id, domain.TransactionStatusSuccess, &settled))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_UpdateStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE transactions SET status").
		WithArgs(domain.TransactionStatusProcessing, pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateStatus(context.Background(), tx, id, domain.TransactionStatusProcessing, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction not found")
}

func TestTransactionRepo_SumSettled(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	payer, method := uuid.New(), uuid.New()
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM transactions").
		WithArgs(payer, method, from, to).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(decimal.RequireFromString("50.00")))

	total, err := repo.SumSettled(context.Background(), payer, method, from, to)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(50)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
