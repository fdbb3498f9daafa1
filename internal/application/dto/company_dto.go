package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCompanyRequest entrada para crear una empresa.
type CreateCompanyRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	CNPJ    string `json:"cnpj" validate:"required,min=1,max=20"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
}

// UpdateCompanyRequest entrada para actualizar una empresa (campos opcionales).
type UpdateCompanyRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Status  *string `json:"status" validate:"omitempty,oneof=active suspended inactive"`
}

// AlertSettingsDTO configuración de alertas por empresa.
type AlertSettingsDTO struct {
	MinStock             bool            `json:"min_stock"`
	UnusualConsumption   bool            `json:"unusual_consumption"`
	ConsumptionThreshold decimal.Decimal `json:"consumption_threshold"`
	AlertEmails          string          `json:"alert_emails"`
	AlertSectorID        string          `json:"alert_sector_id"`
}

// CompanyResponse salida de una empresa (sin datos sensibles).
type CompanyResponse struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	CNPJ          string           `json:"cnpj"`
	Address       string           `json:"address"`
	Phone         string           `json:"phone"`
	Email         string           `json:"email"`
	Status        string           `json:"status"`
	AlertSettings AlertSettingsDTO `json:"alert_settings"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
