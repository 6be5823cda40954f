package ports

import (
	"context"
	"errors"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ErrLockTimeout is returned by an AccountLocker when the bounded wait elapses.
var ErrLockTimeout = errors.New("lock wait timed out")

// AccountLocker serializes work on keyed resources (account ids, transaction ids).
type AccountLocker interface {
	// Acquire locks every key, in sorted order, waiting at most the configured timeout.
	// The returned release func unlocks all of them and is safe to call once.
	Acquire(ctx context.Context, keys ...string) (release func(), err error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject string
}

// IdempotencyCache is the Redis-layer idempotency check.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	// Claim marks key as in flight. It returns false if the key is already claimed or stored.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Release drops an in-flight claim so the request can be retried.
	Release(ctx context.Context, key string) error
}

// SettlementPublisher announces terminal transactions to downstream consumers.
type SettlementPublisher interface {
	Publish(ctx context.Context, event domain.SettlementEvent) error
}

// AuditService records audit entries without blocking the caller.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

// --- Service Ports (Business Logic) ---

// TxHook runs inside the ledger's storage transaction after both transfer legs are written.
type TxHook func(ctx context.Context, tx pgx.Tx) error

// Ledger owns account balances. Every mutation is atomic and keeps balances non-negative.
type Ledger interface {
	GetBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
	HasSufficientBalance(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (bool, error)
	Credit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	Debit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	Transfer(ctx context.Context, fromID, toID uuid.UUID, amount decimal.Decimal) error
	TransferWith(ctx context.Context, fromID, toID uuid.UUID, amount decimal.Decimal, onApplied TxHook) error
}

// LimitEvaluator checks a prospective transfer against configured ceilings.
type LimitEvaluator interface {
	Evaluate(ctx context.Context, payer *domain.Account, methodID uuid.UUID, amount decimal.Decimal) error
}

// LimitService evaluates and administers limit configs.
type LimitService interface {
	LimitEvaluator
	ConfigureLimit(ctx context.Context, cfg *domain.LimitConfig) (*domain.LimitConfig, error)
}

// TransactionService drives the transaction lifecycle.
type TransactionService interface {
	InitiateTransfer(ctx context.Context, req InitiateTransferRequest) (*domain.Transaction, error)
	SettleTransaction(ctx context.Context, id uuid.UUID, target string) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetAccountBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
}

// InitiateTransferRequest holds validated input for a new transfer.
type InitiateTransferRequest struct {
	PayerID         uuid.UUID
	PayeeID         uuid.UUID
	PaymentMethodID uuid.UUID
	Amount          decimal.Decimal
	Currency        string
	IdempotencyKey  string // optional
}
