package middleware

import (
	"encoding/json"
	"net/http"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuditLog creates an audit middleware that records successful write operations.
// Actions are resolved from the matched route pattern, not the raw path.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}

		action, resourceType := mapRouteToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		resourceID := c.Param("id")
		if id := c.GetString(CtxResourceID); id != "" {
			resourceID = id
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"request_id": c.GetString(response.CtxRequestID),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			Actor:        c.GetString(CtxSubject),
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
		})
	}
}

func mapRouteToAction(route, method string) (domain.AuditAction, string) {
	switch {
	case route == "/api/v1/transfers" && method == http.MethodPost:
		return domain.AuditActionInitiateTransfer, "transaction"
	case route == "/api/v1/transfers/:id/status" && method == http.MethodPut:
		return domain.AuditActionSettleTransfer, "transaction"
	case route == "/api/v1/accounts/:id/topup" && method == http.MethodPost:
		return domain.AuditActionTopup, "account"
	case route == "/api/v1/accounts/:id/withdraw" && method == http.MethodPost:
		return domain.AuditActionWithdraw, "account"
	case route == "/api/v1/limits" && method == http.MethodPost:
		return domain.AuditActionConfigureLimit, "limit"
	}
	return "", ""
}
