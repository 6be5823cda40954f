package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const limitColumns = `id, account_id, role_id, payment_method_id, per_transaction, daily, monthly, created_at, updated_at`

// LimitRepo implements ports.LimitRepository.
type LimitRepo struct {
	pool Pool
}

// NewLimitRepo creates a new LimitRepo.
func NewLimitRepo(pool Pool) *LimitRepo {
	return &LimitRepo{pool: pool}
}

// GetByAccount fetches the account-scoped config for a payment method.
func (r *LimitRepo) GetByAccount(ctx context.Context, accountID, methodID uuid.UUID) (*domain.LimitConfig, error) {
	query := `SELECT ` + limitColumns + ` FROM transaction_limits WHERE account_id = $1 AND payment_method_id = $2`

	cfg, err := scanLimit(r.pool.QueryRow(ctx, query, accountID, methodID))
	if err != nil {
		return nil, fmt.Errorf("get account limit: %w", err)
	}
	return cfg, nil
}

// GetByRole fetches the role-scoped config for a payment method.
func (r *LimitRepo) GetByRole(ctx context.Context, roleID, methodID uuid.UUID) (*domain.LimitConfig, error) {
	query := `SELECT ` + limitColumns + ` FROM transaction_limits WHERE role_id = $1 AND payment_method_id = $2`

	cfg, err := scanLimit(r.pool.QueryRow(ctx, query, roleID, methodID))
	if err != nil {
		return nil, fmt.Errorf("get role limit: %w", err)
	}
	return cfg, nil
}

// Upsert inserts the config or replaces the ceilings of the existing one for the same scope and method.
// cfg.ID and cfg.CreatedAt are refreshed from the stored row.
func (r *LimitRepo) Upsert(ctx context.Context, cfg *domain.LimitConfig) error {
	conflict := `(role_id, payment_method_id) WHERE role_id IS NOT NULL`
	if cfg.IsAccountScoped() {
		conflict = `(account_id, payment_method_id) WHERE account_id IS NOT NULL`
	}
	query := `INSERT INTO transaction_limits (` + limitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT ` + conflict + ` DO UPDATE SET
			per_transaction = EXCLUDED.per_transaction,
			daily = EXCLUDED.daily,
			monthly = EXCLUDED.monthly,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		cfg.ID, cfg.AccountID, cfg.RoleID, cfg.PaymentMethodID,
		nullDecimal(cfg.PerTransaction), nullDecimal(cfg.Daily), nullDecimal(cfg.Monthly),
	).Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert limit: %w", err)
	}
	return nil
}

func scanLimit(row pgx.Row) (*domain.LimitConfig, error) {
	cfg := &domain.LimitConfig{}
	var perTxn, daily, monthly decimal.NullDecimal
	err := row.Scan(
		&cfg.ID, &cfg.AccountID, &cfg.RoleID, &cfg.PaymentMethodID,
		&perTxn, &daily, &monthly, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	cfg.PerTransaction = ceiling(perTxn)
	cfg.Daily = ceiling(daily)
	cfg.Monthly = ceiling(monthly)
	return cfg, nil
}

func ceiling(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
