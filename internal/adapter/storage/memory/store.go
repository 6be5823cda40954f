// Package memory is a process-local storage backend. It offers no row locks:
// isolation comes from the AccountLocker the ledger acquires before every mutation.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ErrNegativeBalance mirrors the accounts.balance CHECK constraint of the SQL schema.
var ErrNegativeBalance = errors.New("balance must not be negative")

type limitKey struct {
	scope   uuid.UUID
	account bool
	method  uuid.UUID
}

// Store holds every entity in maps guarded by one RWMutex.
type Store struct {
	mu           sync.RWMutex
	accounts     map[uuid.UUID]domain.Account
	methods      map[uuid.UUID]domain.PaymentMethod
	transactions map[uuid.UUID]domain.Transaction
	limits       map[limitKey]domain.LimitConfig
	audits       []domain.AuditLog
	now          func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:     make(map[uuid.UUID]domain.Account),
		methods:      make(map[uuid.UUID]domain.PaymentMethod),
		transactions: make(map[uuid.UUID]domain.Transaction),
		limits:       make(map[limitKey]domain.LimitConfig),
		now:          time.Now,
	}
}

// Begin starts a buffered transaction. Writes become visible on Commit.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	return &Tx{
		store:    s,
		balances: make(map[uuid.UUID]decimal.Decimal),
		created:  make(map[uuid.UUID]domain.Transaction),
		statuses: make(map[uuid.UUID]statusWrite),
	}, nil
}

// AddPaymentMethod registers a payment method.
func (s *Store) AddPaymentMethod(pm domain.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods[pm.ID] = pm
}

// TotalBalance sums every account balance.
func (s *Store) TotalBalance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, a := range s.accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// AuditLogs returns a copy of the recorded audit entries.
func (s *Store) AuditLogs() []domain.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.AuditLog(nil), s.audits...)
}

func (s *Store) Accounts() ports.AccountRepository             { return accountRepo{s} }
func (s *Store) PaymentMethods() ports.PaymentMethodRepository { return methodRepo{s} }
func (s *Store) Transactions() ports.TransactionRepository     { return transactionRepo{s} }
func (s *Store) Limits() ports.LimitRepository                 { return limitRepo{s} }
func (s *Store) Audits() ports.AuditRepository                 { return auditRepo{s} }

// Ping implements ports.HealthChecker.
func (s *Store) Ping(ctx context.Context) error { return nil }

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "memory" }

type statusWrite struct {
	status    domain.TransactionStatus
	settledAt *time.Time
	at        time.Time
}

// Tx buffers writes until Commit. Only Commit and Rollback of pgx.Tx are usable.
type Tx struct {
	pgx.Tx
	store    *Store
	balances map[uuid.UUID]decimal.Decimal
	created  map[uuid.UUID]domain.Transaction
	statuses map[uuid.UUID]statusWrite
	closed   bool
}

func (t *Tx) Commit(ctx context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, bal := range t.balances {
		a := s.accounts[id]
		a.Balance = bal
		a.UpdatedAt = now
		s.accounts[id] = a
	}
	for id, txn := range t.created {
		s.transactions[id] = txn
	}
	for id, w := range t.statuses {
		txn, ok := s.transactions[id]
		if !ok {
			continue
		}
		txn.Status = w.status
		txn.UpdatedAt = w.at
		if w.settledAt != nil {
			txn.SettledAt = w.settledAt
		}
		s.transactions[id] = txn
	}
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true
	return nil
}

func asTx(tx pgx.Tx) (*Tx, error) {
	mt, ok := tx.(*Tx)
	if !ok || mt == nil {
		return nil, fmt.Errorf("memory store: foreign transaction %T", tx)
	}
	if mt.closed {
		return nil, pgx.ErrTxClosed
	}
	return mt, nil
}
