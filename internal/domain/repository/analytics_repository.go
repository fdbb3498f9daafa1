package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MovementTotals totales valorizados del ledger en un período.
type MovementTotals struct {
	InValue     decimal.Decimal
	OutValue    decimal.Decimal
	InCount     int
	OutCount    int
	OutQuantity decimal.Decimal
}

// ProductConsumption salidas agregadas por producto.
type ProductConsumption struct {
	ProductID   string
	Code        string
	Description string
	Quantity    decimal.Decimal
	Value       decimal.Decimal
}

// SectorConsumption salidas agregadas por setor de destino.
type SectorConsumption struct {
	SectorID   string // "" para salidas sin setor
	SectorName string
	Quantity   decimal.Decimal
	Value      decimal.Decimal
}

// AnalyticsRepository define las consultas de lectura para dashboard, reposición y reportes.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	GetMovementTotals(ctx context.Context, companyID string, start, end time.Time) (MovementTotals, error)

	// GetConsumptionByProduct devuelve salidas por producto ordenadas por valor descendente.
	// limit 0 = todos.
	GetConsumptionByProduct(ctx context.Context, companyID string, start, end time.Time, limit int) ([]ProductConsumption, error)

	GetConsumptionBySector(ctx context.Context, companyID string, start, end time.Time) ([]SectorConsumption, error)
}
