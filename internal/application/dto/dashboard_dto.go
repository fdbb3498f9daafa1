package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// KPIs del almoxarifado: valor en estoque, productos en riesgo y movimientos del mes.
type DashboardSummaryDTO struct {
	StockValue     decimal.Decimal `json:"stock_value"` // Σ saldo * pmed
	ActiveProducts int             `json:"active_products"`
	AtRiskProducts int             `json:"at_risk_products"` // saldo <= mínimo

	// Mes en curso (día 1 – hoy)
	MonthInValue   decimal.Decimal  `json:"month_in_value"`
	MonthOutValue  decimal.Decimal  `json:"month_out_value"`
	MonthInCount   int              `json:"month_in_count"`
	MonthOutCount  int              `json:"month_out_count"`
	TopConsumption []TopConsumedDTO `json:"top_consumption"`

	DateLabel string `json:"date_label"` // ej: "Março 2026"
}

// TopConsumedDTO producto con mayor consumo valorizado del mes.
type TopConsumedDTO struct {
	ProductID   string          `json:"product_id"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Value       decimal.Decimal `json:"value"`
}
