package ports

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepository defines persistence operations for accounts and their balances.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal) error
}

// PaymentMethodRepository defines read access to payment methods.
type PaymentMethodRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMethod, error)
}

// TransactionRepository defines persistence operations for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error)
	// UpdateStatus writes the status, bumps updated_at and sets settled_at when non-nil.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus, settledAt *time.Time) error
	// SumSettled totals SUCCESS amounts for payer+method with settled_at in [from, to).
	SumSettled(ctx context.Context, payerID, methodID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
}

// LimitRepository defines persistence for limit configs.
type LimitRepository interface {
	GetByAccount(ctx context.Context, accountID, methodID uuid.UUID) (*domain.LimitConfig, error)
	GetByRole(ctx context.Context, roleID, methodID uuid.UUID) (*domain.LimitConfig, error)
	// Upsert inserts or replaces the config for its (scope, method) pair.
	Upsert(ctx context.Context, cfg *domain.LimitConfig) error
}

// AuditRepository persists audit records.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
