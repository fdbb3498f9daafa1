package dto

import "github.com/shopspring/decimal"

// ReportRequest parámetros de GET /api/reports/narrative y /api/reports/stock.pdf.
type ReportRequest struct {
	Month string `query:"month"` // YYYY-MM; por defecto el mes actual
}

// PeriodDTO rango de fechas del reporte.
type PeriodDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// SectorConsumptionDTO consumo por setor.
type SectorConsumptionDTO struct {
	SectorID   string          `json:"sector_id,omitempty"`
	SectorName string          `json:"sector_name"`
	Quantity   decimal.Decimal `json:"quantity"`
	Value      decimal.Decimal `json:"value"`
}

// MonthlyReportDataDTO datos consolidados que alimentan el relatório narrativo.
type MonthlyReportDataDTO struct {
	CompanyName    string                 `json:"company_name"`
	Period         PeriodDTO              `json:"period"`
	InValue        decimal.Decimal        `json:"in_value"`
	OutValue       decimal.Decimal        `json:"out_value"`
	StockValue     decimal.Decimal        `json:"stock_value"`
	AtRiskProducts int                    `json:"at_risk_products"`
	TopProducts    []TopConsumedDTO       `json:"top_products"`
	Sectors        []SectorConsumptionDTO `json:"sectors"`
}

// NarrativeReportDTO respuesta del relatório mensal redactado por IA.
type NarrativeReportDTO struct {
	Data      MonthlyReportDataDTO `json:"data"`
	Narrative string               `json:"narrative"`
	Model     string               `json:"model,omitempty"`
}

// StockPositionItemDTO línea del relatório de posição de estoque.
type StockPositionItemDTO struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Balance     decimal.Decimal `json:"balance"`
	MinStock    decimal.Decimal `json:"min_stock"`
	Pmed        decimal.Decimal `json:"pmed"`
	Value       decimal.Decimal `json:"value"`
	AtRisk      bool            `json:"at_risk"`
}

// StockPositionReportDTO datos del PDF de posição de estoque.
type StockPositionReportDTO struct {
	CompanyName string                 `json:"company_name"`
	CompanyCNPJ string                 `json:"company_cnpj"`
	GeneratedAt string                 `json:"generated_at"`
	Items       []StockPositionItemDTO `json:"items"`
	TotalValue  decimal.Decimal        `json:"total_value"`
	AtRiskCount int                    `json:"at_risk_count"`
}
