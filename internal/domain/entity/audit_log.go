package entity

import (
	"encoding/json"
	"time"
)

// Acciones registradas en audit_logs.
const (
	AuditActionCreate        = "CREATE"
	AuditActionUpdate        = "UPDATE"
	AuditActionDeactivate    = "DEACTIVATE"
	AuditActionSendEmail     = "SEND_EMAIL"
	AuditActionQueueDigest   = "QUEUE_DIGEST"
	AuditActionIgnoreAlert   = "IGNORE_ALERT"
	AuditActionSuppressAlert = "SUPPRESS_ALERT"
	AuditActionImport        = "IMPORT"
)

// Entidades auditadas fuera de los tipos de alerta.
const (
	AuditEntityProduct     = "PRODUCT"
	AuditEntityMovement    = "STOCK_MOVEMENT"
	AuditEntityCompany     = "COMPANY"
	AuditEntityDailyDigest = "DAILY_DIGEST"
)

// AuditLog entrada append-only de la trilha de auditoría.
type AuditLog struct {
	ID         string
	CompanyID  string
	EntityName string
	EntityID   string
	Action     string
	Before     json.RawMessage
	After      json.RawMessage
	Actor      string
	CreatedAt  time.Time
}
