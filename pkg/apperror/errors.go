package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError so callers can branch on the condition
// without inspecting codes or messages.
type Kind string

const (
	KindNotFound            Kind = "NOT_FOUND"
	KindPolicyViolation     Kind = "POLICY_VIOLATION"
	KindInsufficientBalance Kind = "INSUFFICIENT_BALANCE"
	KindInvalidInput        Kind = "INVALID_INPUT"
	KindBusy                Kind = "BUSY"
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindRateLimited         Kind = "RATE_LIMITED"
	KindInternal            Kind = "INTERNAL"
)

// Ceilings named by TransactionLimitExceeded.
const (
	RulePerTransaction = "PER_TRANSACTION"
	RuleDaily          = "DAILY"
	RuleMonthly        = "MONTHLY"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Kind       Kind   `json:"error_kind"`
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	Rule       string `json:"rule,omitempty"` // Violated rule, e.g. the breached limit ceiling
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another *AppError by code, so errors.Is(err, apperror.ErrBusy(nil)) works.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New creates a new AppError.
func New(kind Kind, code string, message string, httpStatus int) *AppError {
	return &AppError{
		Kind:       kind,
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(kind Kind, code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Kind:       kind,
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// KindOf returns the Kind of the first AppError in err's chain,
// or KindInternal for any other non-nil error.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ---- Accounts (ACC) ----

func ErrAccountNotFound(id string) *AppError {
	return New(KindNotFound, "ACC_001", fmt.Sprintf("account %s not found", id), http.StatusNotFound)
}

func ErrAccountNotActive(party string, status string) *AppError {
	e := New(KindPolicyViolation, "ACC_002",
		fmt.Sprintf("%s account is %s, only ACTIVE accounts can transact", party, status), http.StatusForbidden)
	e.Rule = party + "_ACCOUNT_STATUS"
	return e
}

func ErrKycNotVerified(party string, status string) *AppError {
	e := New(KindPolicyViolation, "ACC_003",
		fmt.Sprintf("%s KYC status is %s, verification is required", party, status), http.StatusForbidden)
	e.Rule = party + "_KYC_STATUS"
	return e
}

// ---- Payment Business Logic (PAY) ----

func ErrInsufficientBalance() *AppError {
	return New(KindInsufficientBalance, "PAY_001", "Insufficient wallet balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New(KindInvalidInput, "PAY_002", "Amount must be greater than zero", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New(KindNotFound, "PAY_004", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrTransactionLimitExceeded(rule string) *AppError {
	e := New(KindPolicyViolation, "PAY_005",
		fmt.Sprintf("Transaction limit exceeded: %s ceiling", rule), http.StatusUnprocessableEntity)
	e.Rule = rule
	return e
}

func ErrPaymentMethodInactive(name string) *AppError {
	e := New(KindPolicyViolation, "PAY_008",
		fmt.Sprintf("Payment method '%s' is currently inactive", name), http.StatusForbidden)
	e.Rule = "PAYMENT_METHOD_STATUS"
	return e
}

func ErrSelfTransfer() *AppError {
	e := New(KindInvalidInput, "PAY_009", "Payer and payee must be different accounts", http.StatusBadRequest)
	e.Rule = "SELF_TRANSFER"
	return e
}

func ErrIdempotencyInFlight() *AppError {
	return New(KindBusy, "PAY_010", "A request with this idempotency key is already in progress", http.StatusConflict)
}

// ---- Transactions (TXN) ----

func ErrTransactionNotFound(id string) *AppError {
	return New(KindNotFound, "TXN_001", fmt.Sprintf("transaction %s not found", id), http.StatusNotFound)
}

func ErrInvalidStatus(status string) *AppError {
	return New(KindInvalidInput, "TXN_002", fmt.Sprintf("unknown transaction status %q", status), http.StatusBadRequest)
}

func ErrInvalidLimitConfig(reason string) *AppError {
	return New(KindInvalidInput, "LIM_001", "Invalid limit configuration: "+reason, http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New(KindUnauthorized, "AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(KindRateLimited, "RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// ErrBusy reports that account locks could not be acquired within the bounded wait.
// Callers should retry with backoff.
func ErrBusy(err error) *AppError {
	return Wrap(KindBusy, "SYS_002", "Resource busy, retry later", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(KindInternal, "SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a PAY_002-style validation error.
func Validation(message string) *AppError {
	return New(KindInvalidInput, "PAY_002", message, http.StatusBadRequest)
}
