package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountStatus represents the lifecycle state of a party account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusInactive  AccountStatus = "INACTIVE"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
	AccountStatusClosed    AccountStatus = "CLOSED"
)

// KycStatus represents the identity verification state of a party.
type KycStatus string

const (
	KycStatusPending  KycStatus = "PENDING"
	KycStatusVerified KycStatus = "VERIFIED"
	KycStatusRejected KycStatus = "REJECTED"
)

// Account is a transacting party (payer or payee) together with its custodial balance.
// Balance is never negative and only changes through the ledger.
type Account struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Status    AccountStatus   `json:"status"`
	KycStatus KycStatus       `json:"kyc_status"`
	RoleID    *uuid.UUID      `json:"role_id,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IsActive returns true if the account may take part in transfers.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// IsKycVerified returns true if the party has passed KYC.
func (a *Account) IsKycVerified() bool {
	return a.KycStatus == KycStatusVerified
}
