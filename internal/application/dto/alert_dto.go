package dto

import (
	"encoding/json"
	"time"
)

// IgnoreAlertRequest body de POST /api/alerts/ignore.
type IgnoreAlertRequest struct {
	AlertType string `json:"alert_type"` // MIN_STOCK | UNUSUAL_CONSUMPTION
	ProductID string `json:"product_id"`
}

// IgnoreAlertResponse hasta cuándo queda silenciada la alerta.
type IgnoreAlertResponse struct {
	AlertType     string    `json:"alert_type"`
	ProductID     string    `json:"product_id"`
	SilencedUntil time.Time `json:"silenced_until"`
}

// DigestRunResponse resultado de POST /api/alerts/digest/run.
type DigestRunResponse struct {
	Status      string   `json:"status"` // sent | already_sent | no_items | no_recipients | locked
	DigestDate  string   `json:"digest_date"`
	Recipients  []string `json:"recipients,omitempty"`
	ItemCount   int      `json:"item_count"`
	AtRiskCount int      `json:"at_risk_count"`
}

// AuditListRequest query de GET /api/audit.
type AuditListRequest struct {
	EntityName string `query:"entity_name"`
	EntityID   string `query:"entity_id"`
	Action     string `query:"action"`
	PageRequest
}

// AuditLogDTO entrada de auditoría.
type AuditLogDTO struct {
	ID         string          `json:"id"`
	EntityName string          `json:"entity_name"`
	EntityID   string          `json:"entity_id"`
	Action     string          `json:"action"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	Actor      string          `json:"actor"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AuditListResponse lista paginada de auditoría.
type AuditListResponse struct {
	Items []AuditLogDTO `json:"items"`
	Page  PageResponse  `json:"page"`
}
