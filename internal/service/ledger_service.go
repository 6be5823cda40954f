package service

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerService implements ports.Ledger.
// Every mutation holds the account locks for its whole duration and reads
// balances FOR UPDATE inside one storage transaction.
type LedgerService struct {
	accounts   ports.AccountRepository
	transactor ports.DBTransactor
	locker     ports.AccountLocker
	log        zerolog.Logger
}

// NewLedgerService creates a new ledger.
func NewLedgerService(
	accounts ports.AccountRepository,
	transactor ports.DBTransactor,
	locker ports.AccountLocker,
	log zerolog.Logger,
) *LedgerService {
	return &LedgerService{
		accounts:   accounts,
		transactor: transactor,
		locker:     locker,
		log:        log,
	}
}

// GetBalance returns the committed balance of an account.
func (s *LedgerService) GetBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return decimal.Zero, apperror.ErrAccountNotFound(accountID.String())
	}
	return account.Balance, nil
}

// HasSufficientBalance is a point-in-time check. It does not reserve funds.
func (s *LedgerService) HasSufficientBalance(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (bool, error) {
	if !amount.IsPositive() {
		return false, apperror.ErrInvalidAmount()
	}
	balance, err := s.GetBalance(ctx, accountID)
	if err != nil {
		return false, err
	}
	return balance.GreaterThanOrEqual(amount), nil
}

// Credit adds amount to an account and returns the new balance.
func (s *LedgerService) Credit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperror.ErrInvalidAmount()
	}
	return s.adjust(ctx, accountID, amount, "credit")
}

// Debit removes amount from an account and returns the new balance.
func (s *LedgerService) Debit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperror.ErrInvalidAmount()
	}
	return s.adjust(ctx, accountID, amount.Neg(), "debit")
}

func (s *LedgerService) adjust(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal, op string) (decimal.Decimal, error) {
	release, err := s.lock(ctx, domain.AccountLockKey(accountID))
	if err != nil {
		return decimal.Zero, err
	}
	defer release()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	account, err := s.accounts.GetByIDForUpdate(ctx, dbTx, accountID)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if account == nil {
		return decimal.Zero, apperror.ErrAccountNotFound(accountID.String())
	}

	newBalance := account.Balance.Add(delta)
	if newBalance.IsNegative() {
		return decimal.Zero, apperror.ErrInsufficientBalance()
	}

	if err := s.accounts.UpdateBalance(ctx, dbTx, accountID, newBalance); err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("op", op).
		Str("account_id", accountID.String()).
		Str("amount", delta.Abs().String()).
		Str("balance", newBalance.String()).
		Msg("balance adjusted")

	return newBalance, nil
}

// Transfer moves amount between two accounts atomically.
func (s *LedgerService) Transfer(ctx context.Context, fromID, toID uuid.UUID, amount decimal.Decimal) error {
	return s.TransferWith(ctx, fromID, toID, amount, nil)
}

// TransferWith moves amount and runs onApplied inside the same storage transaction,
// after both legs are written and before commit. An onApplied error rolls everything back
// and is returned unchanged.
func (s *LedgerService) TransferWith(ctx context.Context, fromID, toID uuid.UUID, amount decimal.Decimal, onApplied ports.TxHook) error {
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount()
	}
	if fromID == toID {
		return apperror.ErrSelfTransfer()
	}

	release, err := s.lock(ctx, domain.AccountLockKey(fromID), domain.AccountLockKey(toID))
	if err != nil {
		return err
	}
	defer release()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Row locks follow the same order as the account locks.
	order := []uuid.UUID{fromID, toID}
	if toID.String() < fromID.String() {
		order = []uuid.UUID{toID, fromID}
	}
	locked := make(map[uuid.UUID]*domain.Account, 2)
	for _, id := range order {
		account, err := s.accounts.GetByIDForUpdate(ctx, dbTx, id)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("lock account %s: %w", id, err))
		}
		if account == nil {
			return apperror.ErrAccountNotFound(id.String())
		}
		locked[id] = account
	}
	payer, payee := locked[fromID], locked[toID]

	if payer.Balance.LessThan(amount) {
		return apperror.ErrInsufficientBalance()
	}

	if err := s.accounts.UpdateBalance(ctx, dbTx, fromID, payer.Balance.Sub(amount)); err != nil {
		return apperror.InternalError(fmt.Errorf("debit leg: %w", err))
	}
	if err := s.accounts.UpdateBalance(ctx, dbTx, toID, payee.Balance.Add(amount)); err != nil {
		// Compensate the debit leg before rolling back.
		if rerr := s.accounts.UpdateBalance(ctx, dbTx, fromID, payer.Balance); rerr != nil {
			s.log.Warn().Err(rerr).Str("account_id", fromID.String()).Msg("compensating credit failed, relying on rollback")
		}
		return apperror.InternalError(fmt.Errorf("credit leg: %w", err))
	}

	if onApplied != nil {
		if err := onApplied(ctx, dbTx); err != nil {
			return err
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("from", fromID.String()).
		Str("to", toID.String()).
		Str("amount", amount.String()).
		Msg("transfer applied")

	return nil
}

func (s *LedgerService) lock(ctx context.Context, keys ...string) (func(), error) {
	return acquire(ctx, s.locker, keys...)
}

// acquire maps a lock timeout to ErrBusy so callers can retry.
func acquire(ctx context.Context, locker ports.AccountLocker, keys ...string) (func(), error) {
	release, err := locker.Acquire(ctx, keys...)
	if err != nil {
		if errors.Is(err, ports.ErrLockTimeout) {
			return nil, apperror.ErrBusy(err)
		}
		return nil, apperror.InternalError(fmt.Errorf("acquire locks: %w", err))
	}
	return release, nil
}
