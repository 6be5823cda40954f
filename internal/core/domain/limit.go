package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LimitConfig bounds how much a party may move through one payment method.
// Exactly one of AccountID and RoleID is set. A nil ceiling is unlimited.
type LimitConfig struct {
	ID              uuid.UUID        `json:"id"`
	AccountID       *uuid.UUID       `json:"account_id,omitempty"`
	RoleID          *uuid.UUID       `json:"role_id,omitempty"`
	PaymentMethodID uuid.UUID        `json:"payment_method_id"`
	PerTransaction  *decimal.Decimal `json:"per_transaction,omitempty"`
	Daily           *decimal.Decimal `json:"daily,omitempty"`
	Monthly         *decimal.Decimal `json:"monthly,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Validate checks the scope and ceilings of the config.
func (l *LimitConfig) Validate() error {
	if (l.AccountID == nil) == (l.RoleID == nil) {
		return errors.New("exactly one of account_id and role_id must be set")
	}
	if l.PaymentMethodID == uuid.Nil {
		return errors.New("payment_method_id is required")
	}
	for _, c := range []*decimal.Decimal{l.PerTransaction, l.Daily, l.Monthly} {
		if c != nil && c.IsNegative() {
			return errors.New("ceilings must not be negative")
		}
	}
	return nil
}

// IsAccountScoped returns true if the config targets a single account.
func (l *LimitConfig) IsAccountScoped() bool {
	return l.AccountID != nil
}
