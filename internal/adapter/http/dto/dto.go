package dto

import "github.com/shopspring/decimal"

// TransferRequest is the request body for transfer initiation.
type TransferRequest struct {
	PayerID         string          `json:"payer_id" binding:"required,uuid"`
	PayeeID         string          `json:"payee_id" binding:"required,uuid"`
	PaymentMethodID string          `json:"payment_method_id" binding:"required,uuid"`
	Amount          decimal.Decimal `json:"amount" binding:"required,money"`
	Currency        string          `json:"currency" binding:"required,currency"`
}

// SettleRequest is the request body for advancing a transaction's status.
type SettleRequest struct {
	Status string `json:"status" binding:"required,max=20"`
}

// AmountRequest is the request body for top-ups and withdrawals.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,money"`
}

// LimitRequest is the request body for configuring a limit.
// Exactly one of AccountID and RoleID must be set.
type LimitRequest struct {
	AccountID       *string          `json:"account_id,omitempty" binding:"omitempty,uuid,excluded_with=RoleID"`
	RoleID          *string          `json:"role_id,omitempty" binding:"omitempty,uuid"`
	PaymentMethodID string           `json:"payment_method_id" binding:"required,uuid"`
	PerTransaction  *decimal.Decimal `json:"per_transaction,omitempty" binding:"omitempty,ceiling"`
	Daily           *decimal.Decimal `json:"daily,omitempty" binding:"omitempty,ceiling"`
	Monthly         *decimal.Decimal `json:"monthly,omitempty" binding:"omitempty,ceiling"`
}

// TransactionResponse is the response body for transaction results.
type TransactionResponse struct {
	ID              string  `json:"id"`
	PayerID         string  `json:"payer_id"`
	PayeeID         string  `json:"payee_id"`
	PaymentMethodID string  `json:"payment_method_id"`
	Amount          string  `json:"amount"`
	Currency        string  `json:"currency"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
	SettledAt       *string `json:"settled_at,omitempty"`
}

// BalanceResponse is the response for balance queries and balance changes.
type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   string `json:"balance"`
}

// LimitResponse is the response body for a stored limit config.
type LimitResponse struct {
	ID              string  `json:"id"`
	AccountID       *string `json:"account_id,omitempty"`
	RoleID          *string `json:"role_id,omitempty"`
	PaymentMethodID string  `json:"payment_method_id"`
	PerTransaction  *string `json:"per_transaction,omitempty"`
	Daily           *string `json:"daily,omitempty"`
	Monthly         *string `json:"monthly,omitempty"`
}
