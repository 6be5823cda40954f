package memory

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// --- Accounts ---

type accountRepo struct{ s *Store }

func (r accountRepo) Create(ctx context.Context, a *domain.Account) error {
	if a.Balance.IsNegative() {
		return ErrNegativeBalance
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.accounts[a.ID]; exists {
		return fmt.Errorf("account %s already exists", a.ID)
	}
	now := r.s.now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	r.s.accounts[a.ID] = *a
	return nil
}

func (r accountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r accountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error) {
	mt, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	a, err := r.GetByID(ctx, id)
	if err != nil || a == nil {
		return a, err
	}
	if bal, ok := mt.balances[id]; ok {
		a.Balance = bal
	}
	return a, nil
}

func (r accountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal) error {
	mt, err := asTx(tx)
	if err != nil {
		return err
	}
	if balance.IsNegative() {
		return ErrNegativeBalance
	}
	r.s.mu.RLock()
	_, ok := r.s.accounts[id]
	r.s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("account %s not found", id)
	}
	mt.balances[id] = balance
	return nil
}

// --- Payment methods ---

type methodRepo struct{ s *Store }

func (r methodRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMethod, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	pm, ok := r.s.methods[id]
	if !ok {
		return nil, nil
	}
	return &pm, nil
}

// --- Transactions ---

type transactionRepo struct{ s *Store }

func (r transactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	mt, err := asTx(tx)
	if err != nil {
		return err
	}
	r.s.mu.RLock()
	_, exists := r.s.transactions[t.ID]
	r.s.mu.RUnlock()
	if _, pending := mt.created[t.ID]; exists || pending {
		return fmt.Errorf("transaction %s already exists", t.ID)
	}
	mt.created[t.ID] = *t
	return nil
}

func (r transactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.transactions[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r transactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error) {
	mt, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	if t, ok := mt.created[id]; ok {
		return &t, nil
	}
	t, err := r.GetByID(ctx, id)
	if err != nil || t == nil {
		return t, err
	}
	if w, ok := mt.statuses[id]; ok {
		t.Status = w.status
		t.UpdatedAt = w.at
		if w.settledAt != nil {
			t.SettledAt = w.settledAt
		}
	}
	return t, nil
}

func (r transactionRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus, settledAt *time.Time) error {
	mt, err := asTx(tx)
	if err != nil {
		return err
	}
	now := r.s.now()
	if t, ok := mt.created[id]; ok {
		t.Status = status
		t.UpdatedAt = now
		if settledAt != nil {
			t.SettledAt = settledAt
		}
		mt.created[id] = t
		return nil
	}
	r.s.mu.RLock()
	_, ok := r.s.transactions[id]
	r.s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("transaction %s not found", id)
	}
	mt.statuses[id] = statusWrite{status: status, settledAt: settledAt, at: now}
	return nil
}

func (r transactionRepo) SumSettled(ctx context.Context, payerID, methodID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := decimal.Zero
	for _, t := range r.s.transactions {
		if t.PayerID != payerID || t.PaymentMethodID != methodID {
			continue
		}
		if t.Status != domain.TransactionStatusSuccess || t.SettledAt == nil {
			continue
		}
		if t.SettledAt.Before(from) || !t.SettledAt.Before(to) {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total, nil
}

// --- Limits ---

type limitRepo struct{ s *Store }

func keyFor(cfg *domain.LimitConfig) limitKey {
	if cfg.AccountID != nil {
		return limitKey{scope: *cfg.AccountID, account: true, method: cfg.PaymentMethodID}
	}
	return limitKey{scope: *cfg.RoleID, method: cfg.PaymentMethodID}
}

func (r limitRepo) get(k limitKey) *domain.LimitConfig {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	cfg, ok := r.s.limits[k]
	if !ok {
		return nil
	}
	return &cfg
}

func (r limitRepo) GetByAccount(ctx context.Context, accountID, methodID uuid.UUID) (*domain.LimitConfig, error) {
	return r.get(limitKey{scope: accountID, account: true, method: methodID}), nil
}

func (r limitRepo) GetByRole(ctx context.Context, roleID, methodID uuid.UUID) (*domain.LimitConfig, error) {
	return r.get(limitKey{scope: roleID, method: methodID}), nil
}

func (r limitRepo) Upsert(ctx context.Context, cfg *domain.LimitConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := keyFor(cfg)
	now := r.s.now()
	if existing, ok := r.s.limits[k]; ok {
		cfg.ID = existing.ID
		cfg.CreatedAt = existing.CreatedAt
	} else {
		if cfg.ID == uuid.Nil {
			cfg.ID = uuid.New()
		}
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now
	r.s.limits[k] = *cfg
	return nil
}

// --- Audit ---

type auditRepo struct{ s *Store }

func (r auditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audits = append(r.s.audits, *log)
	return nil
}
