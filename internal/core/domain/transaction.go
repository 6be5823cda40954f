package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus represents the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionStatusInitiated  TransactionStatus = "INITIATED"
	TransactionStatusProcessing TransactionStatus = "PROCESSING"
	TransactionStatusSuccess    TransactionStatus = "SUCCESS"
	TransactionStatusFailed     TransactionStatus = "FAILED"
)

// ParseTransactionStatus returns the status named by s and whether it is known.
func ParseTransactionStatus(s string) (TransactionStatus, bool) {
	switch st := TransactionStatus(s); st {
	case TransactionStatusInitiated, TransactionStatusProcessing,
		TransactionStatusSuccess, TransactionStatusFailed:
		return st, true
	}
	return "", false
}

// IsTerminal returns true for SUCCESS and FAILED.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusSuccess || s == TransactionStatusFailed
}

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// IsValidCurrency reports whether code looks like an ISO-4217 alphabetic code.
func IsValidCurrency(code string) bool {
	return currencyPattern.MatchString(code)
}

// Transaction records one attempted movement of money from a payer to a payee.
type Transaction struct {
	ID              uuid.UUID         `json:"id"`
	PayerID         uuid.UUID         `json:"payer_id"`
	PayeeID         uuid.UUID         `json:"payee_id"`
	PaymentMethodID uuid.UUID         `json:"payment_method_id"`
	Amount          decimal.Decimal   `json:"amount"`
	Currency        string            `json:"currency"`
	Status          TransactionStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	SettledAt       *time.Time        `json:"settled_at,omitempty"`
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status.IsTerminal()
}
