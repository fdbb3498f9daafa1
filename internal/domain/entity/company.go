package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Company representa una organización/tenant del sistema. Todo dato se filtra por su ID.
type Company struct {
	ID            string
	Name          string
	CNPJ          string
	Address       string
	Phone         string
	Email         string
	Status        string // active, suspended, inactive
	AlertSettings AlertSettings
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CompanyStatusActive estado de una empresa operativa.
const CompanyStatusActive = "active"

// AlertSettings configuración de alertas por empresa (columna JSONB alert_settings).
type AlertSettings struct {
	MinStock             bool            `json:"min_stock"`
	UnusualConsumption   bool            `json:"unusual_consumption"`
	ConsumptionThreshold decimal.Decimal `json:"consumption_threshold"` // porcentaje
	AlertEmails          string          `json:"alert_emails"`          // lista separada por comas
	AlertSectorID        string          `json:"alert_sector_id"`
}

// DefaultAlertSettings ambas alertas activas y umbral de 25%.
func DefaultAlertSettings() AlertSettings {
	return AlertSettings{
		MinStock:             true,
		UnusualConsumption:   true,
		ConsumptionThreshold: decimal.NewFromInt(25),
	}
}

// Threshold devuelve el umbral configurado o 25 si no es positivo.
func (s AlertSettings) Threshold() decimal.Decimal {
	if s.ConsumptionThreshold.GreaterThan(decimal.Zero) {
		return s.ConsumptionThreshold
	}
	return decimal.NewFromInt(25)
}
