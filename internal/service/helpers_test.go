package service

import (
	"context"
	"testing"
	"time"

	"wallet-ledger/internal/adapter/lock/local"
	"wallet-ledger/internal/adapter/storage/memory"
	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

func noRelease() {}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// memEnv wires the real services over the in-memory store and the local locker.
type memEnv struct {
	store  *memory.Store
	ledger *LedgerService
	limits *LimitServiceImpl
	txns   *TransactionServiceImpl
	method domain.PaymentMethod
	clock  time.Time
}

func newMemEnv(t *testing.T) *memEnv {
	t.Helper()
	store := memory.NewStore()
	locker := local.New(2 * time.Second)
	log := zerolog.Nop()

	env := &memEnv{
		store: store,
		method: domain.PaymentMethod{
			ID:       uuid.New(),
			Name:     "WALLET",
			IsActive: true,
		},
		clock: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
	store.AddPaymentMethod(env.method)

	env.ledger = NewLedgerService(store.Accounts(), store, locker, log)
	env.limits = NewLimitService(store.Limits(), store.Transactions(), time.UTC, log,
		WithClock(func() time.Time { return env.clock }))
	env.txns = NewTransactionService(
		store.Accounts(), store.PaymentMethods(), store.Transactions(),
		env.ledger, env.limits, store, locker, nil, nil, log,
	)
	env.txns.now = func() time.Time { return env.clock }
	return env
}

func (e *memEnv) account(t *testing.T, balance string) *domain.Account {
	t.Helper()
	a := &domain.Account{
		ID:        uuid.New(),
		Name:      "acct",
		Status:    domain.AccountStatusActive,
		KycStatus: domain.KycStatusVerified,
		Balance:   dec(balance),
	}
	require.NoError(t, e.store.Accounts().Create(context.Background(), a))
	return a
}

func (e *memEnv) balance(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	b, err := e.ledger.GetBalance(context.Background(), id)
	require.NoError(t, err)
	return b
}
