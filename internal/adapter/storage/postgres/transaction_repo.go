package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, payer_id, payee_id, payment_method_id, amount, currency, status,
		created_at, updated_at, settled_at`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new transaction within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.PayerID, t.PayeeID, t.PaymentMethodID, t.Amount, t.Currency, t.Status,
		t.CreatedAt, t.UpdatedAt, t.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches a transaction with a row lock.
// This MUST be called within a transaction.
func (r *TransactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`

	return scanTransaction(tx.QueryRow(ctx, query, id))
}

// UpdateStatus updates a transaction's status within a database transaction.
// settled_at is only overwritten when settledAt is non-nil.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus, settledAt *time.Time) error {
	query := `UPDATE transactions SET status = $1, updated_at = NOW(), settled_at = COALESCE($2, settled_at) WHERE id = $3`

	tag, err := tx.Exec(ctx, query, status, settledAt, id)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %s", id)
	}
	return nil
}

// SumSettled totals successful amounts for a payer and method whose settled_at falls in [from, to).
func (r *TransactionRepo) SumSettled(ctx context.Context, payerID, methodID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE payer_id = $1 AND payment_method_id = $2 AND status = 'SUCCESS'
		AND settled_at >= $3 AND settled_at < $4`

	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, payerID, methodID, from, to).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum settled transactions: %w", err)
	}
	return total, nil
}

// scanTransaction is a helper to scan a single row into a Transaction.
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.PayerID, &t.PayeeID, &t.PaymentMethodID, &t.Amount, &t.Currency, &t.Status,
		&t.CreatedAt, &t.UpdatedAt, &t.SettledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}
