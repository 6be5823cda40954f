package domain

import "github.com/google/uuid"

// PaymentMethod is the channel a transfer is made through. Inactive methods reject new transfers.
type PaymentMethod struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	IsActive bool      `json:"is_active"`
	Channels []string  `json:"channels,omitempty"`
}
