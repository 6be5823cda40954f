package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementEvent is emitted once a transaction reaches a terminal status.
type SettlementEvent struct {
	TransactionID   uuid.UUID         `json:"transaction_id"`
	PayerID         uuid.UUID         `json:"payer_id"`
	PayeeID         uuid.UUID         `json:"payee_id"`
	PaymentMethodID uuid.UUID         `json:"payment_method_id"`
	Amount          decimal.Decimal   `json:"amount"`
	Currency        string            `json:"currency"`
	Status          TransactionStatus `json:"status"`
	OccurredAt      time.Time         `json:"occurred_at"`
}

// NewSettlementEvent builds the event for a settled transaction.
func NewSettlementEvent(t *Transaction) SettlementEvent {
	occurred := t.UpdatedAt
	if t.SettledAt != nil {
		occurred = *t.SettledAt
	}
	return SettlementEvent{
		TransactionID:   t.ID,
		PayerID:         t.PayerID,
		PayeeID:         t.PayeeID,
		PaymentMethodID: t.PaymentMethodID,
		Amount:          t.Amount,
		Currency:        t.Currency,
		Status:          t.Status,
		OccurredAt:      occurred,
	}
}
