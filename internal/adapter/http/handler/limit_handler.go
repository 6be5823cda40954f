package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LimitHandler handles limit administration.
type LimitHandler struct {
	limitSvc ports.LimitService
}

// NewLimitHandler creates a new LimitHandler.
func NewLimitHandler(limitSvc ports.LimitService) *LimitHandler {
	return &LimitHandler{limitSvc: limitSvc}
}

// Configure handles POST /api/v1/limits.
func (h *LimitHandler) Configure(c *gin.Context) {
	var req dto.LimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	cfg := &domain.LimitConfig{
		AccountID:       parseOptionalID(req.AccountID),
		RoleID:          parseOptionalID(req.RoleID),
		PaymentMethodID: uuid.MustParse(req.PaymentMethodID),
		PerTransaction:  req.PerTransaction,
		Daily:           req.Daily,
		Monthly:         req.Monthly,
	}

	result, err := h.limitSvc.ConfigureLimit(c.Request.Context(), cfg)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, result.ID.String())
	response.OK(c, toLimitResponse(result))
}

// parseOptionalID expects a value already validated by the uuid binding tag.
func parseOptionalID(s *string) *uuid.UUID {
	if s == nil {
		return nil
	}
	id := uuid.MustParse(*s)
	return &id
}

func toLimitResponse(cfg *domain.LimitConfig) dto.LimitResponse {
	str := func(id *uuid.UUID) *string {
		if id == nil {
			return nil
		}
		s := id.String()
		return &s
	}
	amount := func(d *decimal.Decimal) *string {
		if d == nil {
			return nil
		}
		s := d.StringFixed(2)
		return &s
	}
	return dto.LimitResponse{
		ID:              cfg.ID.String(),
		AccountID:       str(cfg.AccountID),
		RoleID:          str(cfg.RoleID),
		PaymentMethodID: cfg.PaymentMethodID.String(),
		PerTransaction:  amount(cfg.PerTransaction),
		Daily:           amount(cfg.Daily),
		Monthly:         amount(cfg.Monthly),
	}
}
