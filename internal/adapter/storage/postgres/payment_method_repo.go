package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PaymentMethodRepo implements ports.PaymentMethodRepository.
type PaymentMethodRepo struct {
	pool Pool
}

// NewPaymentMethodRepo creates a new PaymentMethodRepo.
func NewPaymentMethodRepo(pool Pool) *PaymentMethodRepo {
	return &PaymentMethodRepo{pool: pool}
}

// GetByID fetches a payment method by its UUID.
func (r *PaymentMethodRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMethod, error) {
	query := `SELECT id, name, is_active, enabled_channels FROM payment_methods WHERE id = $1`

	pm := &domain.PaymentMethod{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&pm.ID, &pm.Name, &pm.IsActive, &pm.Channels)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment method by id: %w", err)
	}
	return pm, nil
}
