package handler

import (
	"context"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountHandler handles balance endpoints.
type AccountHandler struct {
	txnSvc ports.TransactionService
	ledger ports.Ledger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(txnSvc ports.TransactionService, ledger ports.Ledger) *AccountHandler {
	return &AccountHandler{txnSvc: txnSvc, ledger: ledger}
}

// GetBalance handles GET /api/v1/accounts/:id/balance.
func (h *AccountHandler) GetBalance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	balance, err := h.txnSvc.GetAccountBalance(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toBalanceResponse(id, balance))
}

// Topup handles POST /api/v1/accounts/:id/topup.
func (h *AccountHandler) Topup(c *gin.Context) {
	h.adjust(c, h.ledger.Credit)
}

// Withdraw handles POST /api/v1/accounts/:id/withdraw.
func (h *AccountHandler) Withdraw(c *gin.Context) {
	h.adjust(c, h.ledger.Debit)
}

type balanceOp func(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)

func (h *AccountHandler) adjust(c *gin.Context, op balanceOp) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	balance, err := op(c.Request.Context(), id, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toBalanceResponse(id, balance))
}

func toBalanceResponse(id uuid.UUID, balance decimal.Decimal) dto.BalanceResponse {
	return dto.BalanceResponse{
		AccountID: id.String(),
		Balance:   balance.StringFixed(2),
	}
}
