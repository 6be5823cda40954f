package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAccount_IsActive(t *testing.T) {
	tests := []struct {
		name   string
		status AccountStatus
		want   bool
	}{
		{"active", AccountStatusActive, true},
		{"inactive", AccountStatusInactive, false},
		{"suspended", AccountStatusSuspended, false},
		{"closed", AccountStatusClosed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Account{Status: tt.status}
			assert.Equal(t, tt.want, a.IsActive())
		})
	}
}

func TestAccount_IsKycVerified(t *testing.T) {
	assert.True(t, (&Account{KycStatus: KycStatusVerified}).IsKycVerified())
	assert.False(t, (&Account{KycStatus: KycStatusPending}).IsKycVerified())
	assert.False(t, (&Account{KycStatus: KycStatusRejected}).IsKycVerified())
}

func TestTransaction_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status TransactionStatus
		want   bool
	}{
		{"initiated", TransactionStatusInitiated, false},
		{"processing", TransactionStatusProcessing, false},
		{"success", TransactionStatusSuccess, true},
		{"failed", TransactionStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{Status: tt.status}
			assert.Equal(t, tt.want, tx.IsTerminal())
		})
	}
}

func TestParseTransactionStatus(t *testing.T) {
	st, ok := ParseTransactionStatus("SUCCESS")
	assert.True(t, ok)
	assert.Equal(t, TransactionStatusSuccess, st)

	_, ok = ParseTransactionStatus("REVERSED")
	assert.False(t, ok)

	_, ok = ParseTransactionStatus("success")
	assert.False(t, ok)
}

func TestIsValidCurrency(t *testing.T) {
	assert.True(t, IsValidCurrency("ETB"))
	assert.True(t, IsValidCurrency("USD"))
	assert.False(t, IsValidCurrency("usd"))
	assert.False(t, IsValidCurrency("US"))
	assert.False(t, IsValidCurrency("USDT"))
	assert.False(t, IsValidCurrency(""))
}

func TestLimitConfig_Validate(t *testing.T) {
	accountID := uuid.New()
	roleID := uuid.New()
	methodID := uuid.New()
	neg := decimal.NewFromInt(-1)
	ten := decimal.NewFromInt(10)

	tests := []struct {
		name    string
		cfg     LimitConfig
		wantErr bool
	}{
		{"account scoped", LimitConfig{AccountID: &accountID, PaymentMethodID: methodID, Daily: &ten}, false},
		{"role scoped", LimitConfig{RoleID: &roleID, PaymentMethodID: methodID}, false},
		{"both scopes", LimitConfig{AccountID: &accountID, RoleID: &roleID, PaymentMethodID: methodID}, true},
		{"no scope", LimitConfig{PaymentMethodID: methodID}, true},
		{"no method", LimitConfig{AccountID: &accountID}, true},
		{"negative ceiling", LimitConfig{AccountID: &accountID, PaymentMethodID: methodID, Monthly: &neg}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewSettlementEvent(t *testing.T) {
	tx := &Transaction{
		ID:       uuid.New(),
		PayerID:  uuid.New(),
		PayeeID:  uuid.New(),
		Amount:   decimal.NewFromInt(40),
		Currency: "ETB",
		Status:   TransactionStatusSuccess,
	}
	settled := tx.CreatedAt.Add(1)
	tx.SettledAt = &settled

	ev := NewSettlementEvent(tx)
	assert.Equal(t, tx.ID, ev.TransactionID)
	assert.True(t, ev.Amount.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, TransactionStatusSuccess, ev.Status)
	assert.Equal(t, settled, ev.OccurredAt)
}

func TestBuildIdempotencyKey(t *testing.T) {
	id := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	key := BuildIdempotencyKey(id, "ORD-001")
	assert.Equal(t, "transfer:550e8400-e29b-41d4-a716-446655440000:ORD-001", key)
}

func TestLockKeys(t *testing.T) {
	id := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	assert.Equal(t, "account:550e8400-e29b-41d4-a716-446655440000", AccountLockKey(id))
	assert.Equal(t, "txn:550e8400-e29b-41d4-a716-446655440000", TransactionLockKey(id))
}
