package handler

import (
	"time"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderIdempotencyKey lets clients retry transfer initiation safely.
const HeaderIdempotencyKey = "Idempotency-Key"

// TransferHandler handles transfer lifecycle endpoints.
type TransferHandler struct {
	txnSvc ports.TransactionService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(txnSvc ports.TransactionService) *TransferHandler {
	return &TransferHandler{txnSvc: txnSvc}
}

// Initiate handles POST /api/v1/transfers.
func (h *TransferHandler) Initiate(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	idempKey := c.GetHeader(HeaderIdempotencyKey)
	if idempKey != "" && !dto.ValidIdempotencyKey(idempKey) {
		response.Error(c, apperror.Validation("invalid Idempotency-Key header"))
		return
	}

	result, err := h.txnSvc.InitiateTransfer(c.Request.Context(), ports.InitiateTransferRequest{
		PayerID:         uuid.MustParse(req.PayerID),
		PayeeID:         uuid.MustParse(req.PayeeID),
		PaymentMethodID: uuid.MustParse(req.PaymentMethodID),
		Amount:          req.Amount,
		Currency:        req.Currency,
		IdempotencyKey:  idempKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, result.ID.String())
	response.Created(c, toTransactionResponse(result))
}

// Get handles GET /api/v1/transfers/:id.
func (h *TransferHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.txnSvc.GetTransaction(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponse(result))
}

// Settle handles PUT /api/v1/transfers/:id/status.
func (h *TransferHandler) Settle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.txnSvc.SettleTransaction(c.Request.Context(), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponse(result))
}

// pathID parses the :id path parameter, writing a validation error on failure.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("id must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// toTransactionResponse converts domain.Transaction to DTO.
func toTransactionResponse(tx *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:              tx.ID.String(),
		PayerID:         tx.PayerID.String(),
		PayeeID:         tx.PayeeID.String(),
		PaymentMethodID: tx.PaymentMethodID.String(),
		Amount:          tx.Amount.StringFixed(2),
		Currency:        tx.Currency,
		Status:          string(tx.Status),
		CreatedAt:       tx.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       tx.UpdatedAt.Format(time.RFC3339),
	}
	if tx.SettledAt != nil {
		s := tx.SettledAt.Format(time.RFC3339)
		resp.SettledAt = &s
	}
	return resp
}
