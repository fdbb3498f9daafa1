package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de alerta.
const (
	AlertTypeMinStock           = "MIN_STOCK"
	AlertTypeUnusualConsumption = "UNUSUAL_CONSUMPTION"
)

// Severidades.
const (
	SeverityCritical = "CRITICAL"
	SeverityWarning  = "WARNING"
)

// ValidAlertType informa si t es un tipo de alerta conocido.
func ValidAlertType(t string) bool {
	return t == AlertTypeMinStock || t == AlertTypeUnusualConsumption
}

// AlertState estado de cooldown/silencio por (empresa, tipo, producto).
type AlertState struct {
	CompanyID     string
	AlertType     string
	ProductID     string
	LastSentAt    *time.Time
	SilencedUntil *time.Time
	UpdatedAt     time.Time
}

// DigestItem advertencia encolada para el resumen diario.
type DigestItem struct {
	ID          string
	CompanyID   string
	AlertType   string
	ProductID   string
	ProductName string
	Severity    string
	Metrics     json.RawMessage
	Suggestion  string
	QueuedAt    time.Time
}

// DigestRun registro del envío diario; único por (empresa, fecha).
type DigestRun struct {
	CompanyID   string
	DigestDate  string // YYYY-MM-DD en la zona de la empresa
	SentAt      time.Time
	Recipients  []string
	ItemCount   int
	AtRiskCount int
}

// AtRiskProduct producto con saldo menor o igual al mínimo.
type AtRiskProduct struct {
	ProductID   string
	Code        string
	Description string
	Unit        string
	Balance     decimal.Decimal
	MinStock    decimal.Decimal
}
