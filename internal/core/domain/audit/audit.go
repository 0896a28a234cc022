package audit

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records one administrative change to the catalog.
type AuditLog struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Subject    string    `json:"subject" db:"subject"`
	Action     string    `json:"action" db:"action"`
	Resource   string    `json:"resource" db:"resource"`
	ResourceID string    `json:"resource_id" db:"resource_id"`
	Details    any       `json:"details,omitempty" db:"details"`
	IPAddress  string    `json:"ip_address" db:"ip_address"`
	UserAgent  string    `json:"user_agent" db:"user_agent"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
}

type AuditAction string

const (
	ActionCreate     AuditAction = "create"
	ActionUpdate     AuditAction = "update"
	ActionDelete     AuditAction = "delete"
	ActionInvalidate AuditAction = "invalidate"
)

type AuditResource string

const (
	ResourceBook      AuditResource = "book"
	ResourceListCache AuditResource = "list_cache"
)

// CreateAuditLogRequest represents the request to create an audit log entry
type CreateAuditLogRequest struct {
	Subject    string        `json:"subject"`
	Action     AuditAction   `json:"action"`
	Resource   AuditResource `json:"resource"`
	ResourceID string        `json:"resource_id,omitempty"`
	Details    any           `json:"details,omitempty"`
	IPAddress  string        `json:"ip_address"`
	UserAgent  string        `json:"user_agent"`
}

// AuditLogFilter represents filters for querying audit logs
type AuditLogFilter struct {
	Subject    *string        `json:"subject,omitempty" query:"subject"`
	Action     *AuditAction   `json:"action,omitempty" query:"action"`
	Resource   *AuditResource `json:"resource,omitempty" query:"resource"`
	ResourceID *string        `json:"resource_id,omitempty" query:"resource_id"`
	StartTime  *time.Time     `json:"start_time,omitempty" query:"start_time"`
	EndTime    *time.Time     `json:"end_time,omitempty" query:"end_time"`
	Limit      int            `json:"limit" query:"limit"`
	Offset     int            `json:"offset" query:"offset"`
}
