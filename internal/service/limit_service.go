package service

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LimitServiceImpl implements ports.LimitService.
type LimitServiceImpl struct {
	limits ports.LimitRepository
	txns   ports.TransactionRepository
	loc    *time.Location
	now    func() time.Time
	log    zerolog.Logger
}

// LimitOption customizes a LimitServiceImpl.
type LimitOption func(*LimitServiceImpl)

// WithClock overrides the clock used to place the daily and monthly windows.
func WithClock(now func() time.Time) LimitOption {
	return func(s *LimitServiceImpl) { s.now = now }
}

// NewLimitService creates a limit evaluator whose calendar windows are cut in loc.
func NewLimitService(
	limits ports.LimitRepository,
	txns ports.TransactionRepository,
	loc *time.Location,
	log zerolog.Logger,
	opts ...LimitOption,
) *LimitServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	s := &LimitServiceImpl{
		limits: limits,
		txns:   txns,
		loc:    loc,
		now:    time.Now,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate checks amount against the payer's effective limit config for the method.
// An account-scoped config wins over a role-scoped one; with neither the payer is unlimited.
func (s *LimitServiceImpl) Evaluate(ctx context.Context, payer *domain.Account, methodID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount()
	}

	cfg, err := s.resolve(ctx, payer, methodID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("resolve limit config: %w", err))
	}
	if cfg == nil {
		return nil
	}

	if cfg.PerTransaction != nil && amount.GreaterThan(*cfg.PerTransaction) {
		return s.exceeded(payer, methodID, apperror.RulePerTransaction)
	}
	if cfg.Daily == nil && cfg.Monthly == nil {
		return nil
	}

	now := s.now().In(s.loc)
	if cfg.Daily != nil {
		from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
		ok, err := s.withinWindow(ctx, payer.ID, methodID, from, from.AddDate(0, 0, 1), amount, *cfg.Daily)
		if err != nil {
			return err
		}
		if !ok {
			return s.exceeded(payer, methodID, apperror.RuleDaily)
		}
	}
	if cfg.Monthly != nil {
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
		ok, err := s.withinWindow(ctx, payer.ID, methodID, from, from.AddDate(0, 1, 0), amount, *cfg.Monthly)
		if err != nil {
			return err
		}
		if !ok {
			return s.exceeded(payer, methodID, apperror.RuleMonthly)
		}
	}
	return nil
}

func (s *LimitServiceImpl) resolve(ctx context.Context, payer *domain.Account, methodID uuid.UUID) (*domain.LimitConfig, error) {
	cfg, err := s.limits.GetByAccount(ctx, payer.ID, methodID)
	if err != nil || cfg != nil {
		return cfg, err
	}
	if payer.RoleID == nil {
		return nil, nil
	}
	return s.limits.GetByRole(ctx, *payer.RoleID, methodID)
}

func (s *LimitServiceImpl) withinWindow(ctx context.Context, payerID, methodID uuid.UUID, from, to time.Time, amount, ceiling decimal.Decimal) (bool, error) {
	spent, err := s.txns.SumSettled(ctx, payerID, methodID, from, to)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("sum settled: %w", err))
	}
	return spent.Add(amount).LessThanOrEqual(ceiling), nil
}

func (s *LimitServiceImpl) exceeded(payer *domain.Account, methodID uuid.UUID, rule string) error {
	s.log.Info().
		Str("payer_id", payer.ID.String()).
		Str("method_id", methodID.String()).
		Str("rule", rule).
		Msg("transfer rejected by limit")
	return apperror.ErrTransactionLimitExceeded(rule)
}

// ConfigureLimit validates cfg and stores it, replacing any config with the same scope and method.
func (s *LimitServiceImpl) ConfigureLimit(ctx context.Context, cfg *domain.LimitConfig) (*domain.LimitConfig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, apperror.ErrInvalidLimitConfig(err.Error())
	}
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}

	if err := s.limits.Upsert(ctx, cfg); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("upsert limit config: %w", err))
	}

	s.log.Info().
		Str("limit_id", cfg.ID.String()).
		Str("method_id", cfg.PaymentMethodID.String()).
		Bool("account_scoped", cfg.IsAccountScoped()).
		Msg("limit configured")

	return cfg, nil
}

// NoopLimitEvaluator accepts every positive amount.
type NoopLimitEvaluator struct{}

func (NoopLimitEvaluator) Evaluate(_ context.Context, _ *domain.Account, _ uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount()
	}
	return nil
}
