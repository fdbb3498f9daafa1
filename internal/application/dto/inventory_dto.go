package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// RegisterMovementRequest body para POST /api/movements.
type RegisterMovementRequest struct {
	ProductID     string           `json:"product_id"`
	Type          string           `json:"type"` // IN | OUT
	Quantity      decimal.Decimal  `json:"quantity"`
	TotalValue    *decimal.Decimal `json:"total_value,omitempty"` // obligatorio en IN (o unit_cost)
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	MovementDate  *time.Time       `json:"movement_date,omitempty"`
	SupplierID    string           `json:"supplier_id,omitempty"`
	SectorID      string           `json:"sector_id,omitempty"`
	Person        string           `json:"person,omitempty"`
	Destination   string           `json:"destination,omitempty"`
	InvoiceNumber string           `json:"invoice_number,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

// MovementDTO salida de un movimiento del ledger.
type MovementDTO struct {
	ID            string          `json:"id"`
	CompanyID     string          `json:"company_id"`
	ProductID     string          `json:"product_id"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
	PmedAtTime    decimal.Decimal `json:"pmed_at_time"`
	MovementDate  time.Time       `json:"movement_date"`
	MonthRef      string          `json:"month_ref"`
	SupplierID    string          `json:"supplier_id,omitempty"`
	SectorID      string          `json:"sector_id,omitempty"`
	Person        string          `json:"person,omitempty"`
	Destination   string          `json:"destination,omitempty"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToMovementDTO convierte la entidad a su representación JSON.
func ToMovementDTO(m *entity.StockMovement) MovementDTO {
	return MovementDTO{
		ID:            m.ID,
		CompanyID:     m.CompanyID,
		ProductID:     m.ProductID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		TotalValue:    m.TotalValue,
		PmedAtTime:    m.PmedAtTime,
		MovementDate:  m.MovementDate,
		MonthRef:      m.MonthRef,
		SupplierID:    m.SupplierID,
		SectorID:      m.SectorID,
		Person:        m.Person,
		Destination:   m.Destination,
		InvoiceNumber: m.InvoiceNumber,
		Notes:         m.Notes,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// MovementResponse respuesta de POST /api/movements.
type MovementResponse struct {
	MovementDTO
	ResultBalance decimal.Decimal `json:"result_balance"`
	ProductPmed   decimal.Decimal `json:"product_pmed"`
}

// MovementListRequest query de GET /api/movements.
type MovementListRequest struct {
	ProductID string `query:"product_id"`
	Type      string `query:"type"`
	SectorID  string `query:"sector_id"`
	From      string `query:"from"` // YYYY-MM-DD
	To        string `query:"to"`   // YYYY-MM-DD
	PageRequest
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementDTO `json:"items"`
	Page  PageResponse  `json:"page"`
}

// BalanceDTO saldo actual de un producto.
type BalanceDTO struct {
	ProductID   string          `json:"product_id"`
	Code        string          `json:"code,omitempty"`
	Description string          `json:"description,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinStock    decimal.Decimal `json:"min_stock"`
	Pmed        decimal.Decimal `json:"pmed"`
	TotalValue  decimal.Decimal `json:"total_value"` // quantity * pmed
	BelowMin    bool            `json:"below_min"`
}

// DiscrepancyDTO producto cuyo saldo materializado no coincide con el ledger.
type DiscrepancyDTO struct {
	ProductID    string          `json:"product_id"`
	Materialized decimal.Decimal `json:"materialized"`
	Ledger       decimal.Decimal `json:"ledger"`
}

// ReconcileReportDTO respuesta de GET /api/stock/reconcile.
type ReconcileReportDTO struct {
	CheckedProducts int              `json:"checked_products"`
	Consistent      bool             `json:"consistent"`
	Discrepancies   []DiscrepancyDTO `json:"discrepancies"`
}

// ReplenishmentSuggestionDTO sugerencia de compra para un producto en o por debajo del mínimo.
type ReplenishmentSuggestionDTO struct {
	ProductID           string           `json:"product_id"`
	Code                string           `json:"code"`
	Description         string           `json:"description"`
	Unit                string           `json:"unit"`
	CurrentStock        decimal.Decimal  `json:"current_stock"`
	MinStock            decimal.Decimal  `json:"min_stock"`
	IdealStock          decimal.Decimal  `json:"ideal_stock"`           // max(min*1.5, consumo de 30 días)
	SuggestedOrderQty   decimal.Decimal  `json:"suggested_order_qty"`   // IdealStock - CurrentStock
	Pmed                decimal.Decimal  `json:"pmed"`                  // costo medio vigente
	EstimatedOrderCost  decimal.Decimal  `json:"estimated_order_cost"`  // SuggestedOrderQty * Pmed
	AvgDailyConsumption decimal.Decimal  `json:"avg_daily_consumption"` // salidas de 30 días / 30
	DaysToRupture       *decimal.Decimal `json:"days_to_rupture,omitempty"`
	Priority            int              `json:"priority"` // 1 = más urgente
}
