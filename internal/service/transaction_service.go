package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	idempotencyTTL      = 24 * time.Hour
	idempotencyClaimTTL = 30 * time.Second
)

// errAlreadyTerminal aborts a settlement transfer whose transaction was finalized concurrently.
var errAlreadyTerminal = errors.New("transaction already terminal")

// TransactionServiceImpl implements ports.TransactionService.
type TransactionServiceImpl struct {
	accounts   ports.AccountRepository
	methods    ports.PaymentMethodRepository
	txns       ports.TransactionRepository
	ledger     ports.Ledger
	limits     ports.LimitEvaluator
	transactor ports.DBTransactor
	locker     ports.AccountLocker
	idempCache ports.IdempotencyCache    // optional
	publisher  ports.SettlementPublisher // optional
	log        zerolog.Logger
	now        func() time.Time
}

// NewTransactionService creates a new transaction service.
// idempCache and publisher may be nil, which disables idempotency keys and settlement events.
func NewTransactionService(
	accounts ports.AccountRepository,
	methods ports.PaymentMethodRepository,
	txns ports.TransactionRepository,
	ledger ports.Ledger,
	limits ports.LimitEvaluator,
	transactor ports.DBTransactor,
	locker ports.AccountLocker,
	idempCache ports.IdempotencyCache,
	publisher ports.SettlementPublisher,
	log zerolog.Logger,
) *TransactionServiceImpl {
	return &TransactionServiceImpl{
		accounts:   accounts,
		methods:    methods,
		txns:       txns,
		ledger:     ledger,
		limits:     limits,
		transactor: transactor,
		locker:     locker,
		idempCache: idempCache,
		publisher:  publisher,
		log:        log,
		now:        time.Now,
	}
}

// InitiateTransfer validates a transfer request and records it as INITIATED.
// Balances are not touched until settlement.
func (s *TransactionServiceImpl) InitiateTransfer(ctx context.Context, req ports.InitiateTransferRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	if !domain.IsValidCurrency(req.Currency) {
		return nil, apperror.Validation("currency must be a 3-letter ISO-4217 code")
	}

	if req.IdempotencyKey == "" || s.idempCache == nil {
		return s.initiate(ctx, req)
	}

	idempKey := domain.BuildIdempotencyKey(req.PayerID, req.IdempotencyKey)
	if txn := s.cachedTransfer(ctx, idempKey); txn != nil {
		return txn, nil
	}

	claimed, err := s.idempCache.Claim(ctx, idempKey, idempotencyClaimTTL)
	if err != nil {
		// Redis is best effort; proceed without the key.
		s.log.Warn().Err(err).Str("key", idempKey).Msg("idempotency claim failed")
		return s.initiate(ctx, req)
	}
	if !claimed {
		if txn := s.cachedTransfer(ctx, idempKey); txn != nil {
			return txn, nil
		}
		return nil, apperror.ErrIdempotencyInFlight()
	}

	txn, err := s.initiate(ctx, req)
	if err != nil {
		if rerr := s.idempCache.Release(ctx, idempKey); rerr != nil {
			s.log.Warn().Err(rerr).Str("key", idempKey).Msg("failed to release idempotency claim")
		}
		return nil, err
	}

	respJSON, err := json.Marshal(txn)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal response: %w", err))
	}
	if err := s.idempCache.Set(ctx, idempKey, respJSON, idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache idempotency in redis")
	}
	return txn, nil
}

func (s *TransactionServiceImpl) initiate(ctx context.Context, req ports.InitiateTransferRequest) (*domain.Transaction, error) {
	payer, err := s.loadAccount(ctx, req.PayerID)
	if err != nil {
		return nil, err
	}
	payee, err := s.loadAccount(ctx, req.PayeeID)
	if err != nil {
		return nil, err
	}
	method, err := s.methods.GetByID(ctx, req.PaymentMethodID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get payment method: %w", err))
	}
	if method == nil {
		return nil, apperror.ErrNotFound("payment method")
	}

	if err := CheckEligibility(payer, payee, method); err != nil {
		return nil, err
	}
	if err := s.limits.Evaluate(ctx, payer, method.ID, req.Amount); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	txn := &domain.Transaction{
		ID:              uuid.New(),
		PayerID:         payer.ID,
		PayeeID:         payee.ID,
		PaymentMethodID: method.ID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Status:          domain.TransactionStatusInitiated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.txns.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("payer_id", payer.ID.String()).
		Str("payee_id", payee.ID.String()).
		Str("amount", txn.Amount.String()).
		Str("currency", txn.Currency).
		Msg("transfer initiated")

	return txn, nil
}

// SettleTransaction advances a transaction toward target.
// Terminal transactions are never changed; a repeated call returns the stored record.
func (s *TransactionServiceImpl) SettleTransaction(ctx context.Context, id uuid.UUID, target string) (*domain.Transaction, error) {
	status, ok := domain.ParseTransactionStatus(target)
	if !ok {
		return nil, apperror.ErrInvalidStatus(target)
	}

	release, err := acquire(ctx, s.locker, domain.TransactionLockKey(id))
	if err != nil {
		return nil, err
	}
	defer release()

	txn, err := s.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn.IsTerminal() || txn.Status == status {
		s.log.Debug().
			Str("tx_id", id.String()).
			Str("status", string(txn.Status)).
			Str("target", string(status)).
			Msg("settlement is a no-op")
		return txn, nil
	}

	if status == domain.TransactionStatusSuccess {
		return s.settle(ctx, txn)
	}

	updated, err := s.writeStatus(ctx, txn, status)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, updated)
	return updated, nil
}

// settle runs the ledger transfer and marks the transaction SUCCESS in the same storage transaction.
func (s *TransactionServiceImpl) settle(ctx context.Context, txn *domain.Transaction) (*domain.Transaction, error) {
	var result *domain.Transaction

	err := s.ledger.TransferWith(ctx, txn.PayerID, txn.PayeeID, txn.Amount, func(ctx context.Context, tx pgx.Tx) error {
		current, err := s.txns.GetByIDForUpdate(ctx, tx, txn.ID)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("lock transaction: %w", err))
		}
		if current == nil {
			return apperror.ErrTransactionNotFound(txn.ID.String())
		}
		if current.IsTerminal() {
			result = current
			return errAlreadyTerminal
		}

		now := s.now().UTC()
		if err := s.txns.UpdateStatus(ctx, tx, txn.ID, domain.TransactionStatusSuccess, &now); err != nil {
			return apperror.InternalError(fmt.Errorf("update status: %w", err))
		}
		settled := *current
		settled.Status = domain.TransactionStatusSuccess
		settled.UpdatedAt = now
		settled.SettledAt = &now
		result = &settled
		return nil
	})

	switch {
	case err == nil:
		s.log.Info().
			Str("tx_id", txn.ID.String()).
			Str("amount", txn.Amount.String()).
			Msg("transaction settled")
		s.publish(ctx, result)
		return result, nil
	case errors.Is(err, errAlreadyTerminal):
		return result, nil
	case apperror.IsKind(err, apperror.KindBusy):
		return nil, err
	}

	failed, ferr := s.writeStatus(ctx, txn, domain.TransactionStatusFailed)
	if ferr != nil {
		s.log.Error().Err(ferr).Str("tx_id", txn.ID.String()).Msg("failed to mark transaction FAILED")
		return nil, err
	}
	s.log.Warn().
		Err(err).
		Str("tx_id", txn.ID.String()).
		Str("error_kind", string(apperror.KindOf(err))).
		Msg("settlement failed")
	s.publish(ctx, failed)
	return nil, err
}

func (s *TransactionServiceImpl) writeStatus(ctx context.Context, txn *domain.Transaction, status domain.TransactionStatus) (*domain.Transaction, error) {
	now := s.now().UTC()
	var settledAt *time.Time
	if status.IsTerminal() {
		settledAt = &now
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.txns.UpdateStatus(ctx, dbTx, txn.ID, status, settledAt); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update status: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	updated := *txn
	updated.Status = status
	updated.UpdatedAt = now
	if settledAt != nil {
		updated.SettledAt = settledAt
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("from", string(txn.Status)).
		Str("to", string(status)).
		Msg("transaction status updated")

	return &updated, nil
}

// publish announces terminal transactions. Failures are logged, never returned.
func (s *TransactionServiceImpl) publish(ctx context.Context, txn *domain.Transaction) {
	if s.publisher == nil || !txn.IsTerminal() {
		return
	}
	if err := s.publisher.Publish(ctx, domain.NewSettlementEvent(txn)); err != nil {
		s.log.Warn().Err(err).Str("tx_id", txn.ID.String()).Msg("failed to publish settlement event")
	}
}

// GetTransaction returns a transaction by ID.
func (s *TransactionServiceImpl) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.txns.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrTransactionNotFound(id.String())
	}
	return txn, nil
}

// GetAccountBalance returns the committed balance of an account.
func (s *TransactionServiceImpl) GetAccountBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	return s.ledger.GetBalance(ctx, accountID)
}

func (s *TransactionServiceImpl) loadAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound(id.String())
	}
	return account, nil
}

// cachedTransfer returns the stored response for key, or nil on a miss or cache error.
func (s *TransactionServiceImpl) cachedTransfer(ctx context.Context, key string) *domain.Transaction {
	data, err := s.idempCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis idempotency check failed, falling through")
		return nil
	}
	if data == nil {
		return nil
	}
	txn := &domain.Transaction{}
	if err := json.Unmarshal(data, txn); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("discarding unreadable idempotency entry")
		return nil
	}
	return txn
}
