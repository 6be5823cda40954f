package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New(KindInsufficientBalance, "PAY_001", "Insufficient funds", http.StatusPaymentRequired),
			expected: "[PAY_001] Insufficient funds",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap(KindInternal, "SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap(KindInternal, "SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("settle: %w", ErrBusy(errors.New("timeout")))

	assert.True(t, errors.Is(err, ErrBusy(nil)))
	assert.False(t, errors.Is(err, ErrInsufficientBalance()))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), KindInternal},
		{"not found", ErrAccountNotFound("a"), KindNotFound},
		{"wrapped policy", fmt.Errorf("x: %w", ErrKycNotVerified("payer", "PENDING")), KindPolicyViolation},
		{"insufficient", ErrInsufficientBalance(), KindInsufficientBalance},
		{"busy", ErrBusy(nil), KindBusy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsKind(t *testing.T) {
	assert.True(t, IsKind(ErrInvalidAmount(), KindInvalidInput))
	assert.False(t, IsKind(nil, KindInvalidInput))
	assert.False(t, IsKind(ErrInvalidAmount(), KindNotFound))
}

func TestTransactionLimitExceeded_CarriesRule(t *testing.T) {
	err := ErrTransactionLimitExceeded(RuleDaily)

	assert.Equal(t, "PAY_005", err.Code)
	assert.Equal(t, RuleDaily, err.Rule)
	assert.Equal(t, KindPolicyViolation, err.Kind)
	assert.Contains(t, err.Message, "DAILY")
}

func TestPolicyErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		rule       string
		httpStatus int
	}{
		{"AccountNotActive", ErrAccountNotActive("payer", "SUSPENDED"), "ACC_002", "payer_ACCOUNT_STATUS", 403},
		{"KycNotVerified", ErrKycNotVerified("payee", "PENDING"), "ACC_003", "payee_KYC_STATUS", 403},
		{"PaymentMethodInactive", ErrPaymentMethodInactive("CARD"), "PAY_008", "PAYMENT_METHOD_STATUS", 403},
		{"SelfTransfer", ErrSelfTransfer(), "PAY_009", "SELF_TRANSFER", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.rule, tt.err.Rule)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestNotFoundErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"AccountNotFound", ErrAccountNotFound("abc"), "ACC_001", 404},
		{"TransactionNotFound", ErrTransactionNotFound("abc"), "TXN_001", 404},
		{"NotFound", ErrNotFound("payment method"), "PAY_004", 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, KindNotFound, tt.err.Kind)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestSystemErrors(t *testing.T) {
	inner := fmt.Errorf("lock wait exceeded")

	busy := ErrBusy(inner)
	assert.Equal(t, "SYS_002", busy.Code)
	assert.Equal(t, http.StatusServiceUnavailable, busy.HTTPStatus)
	assert.True(t, errors.Is(busy, inner))

	internal := InternalError(inner)
	assert.Equal(t, "SYS_001", internal.Code)
	assert.Equal(t, KindInternal, internal.Kind)
}
