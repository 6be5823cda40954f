package service

import (
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/pkg/apperror"
)

// CheckEligibility runs the transfer preconditions in a fixed order and
// returns the first one that fails. The order decides which error a caller sees
// when several conditions fail at once.
func CheckEligibility(payer, payee *domain.Account, method *domain.PaymentMethod) error {
	if payer.ID == payee.ID {
		return apperror.ErrSelfTransfer()
	}
	if !payer.IsActive() {
		return apperror.ErrAccountNotActive("payer", string(payer.Status))
	}
	if !payer.IsKycVerified() {
		return apperror.ErrKycNotVerified("payer", string(payer.KycStatus))
	}
	if !payee.IsActive() {
		return apperror.ErrAccountNotActive("payee", string(payee.Status))
	}
	if !payee.IsKycVerified() {
		return apperror.ErrKycNotVerified("payee", string(payee.KycStatus))
	}
	if !method.IsActive {
		return apperror.ErrPaymentMethodInactive(method.Name)
	}
	return nil
}
