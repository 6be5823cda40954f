package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionInitiateTransfer AuditAction = "INITIATE_TRANSFER"
	AuditActionSettleTransfer   AuditAction = "SETTLE_TRANSFER"
	AuditActionTopup            AuditAction = "TOPUP"
	AuditActionWithdraw         AuditAction = "WITHDRAW"
	AuditActionConfigureLimit   AuditAction = "CONFIGURE_LIMIT"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	Actor        string      `json:"actor,omitempty"` // JWT subject of the operator
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
