package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de estoque.
const (
	MovementTypeIN  = "IN"  // entrada
	MovementTypeOUT = "OUT" // saída
)

// StockMovement registro inmutable del ledger (append-only). No existe update ni delete.
type StockMovement struct {
	ID            string
	CompanyID     string
	ProductID     string
	Type          string          // IN | OUT
	Quantity      decimal.Decimal // siempre > 0; el signo lo da Type
	TotalValue    decimal.Decimal
	MovementDate  time.Time
	MonthRef      string // YYYY-MM de MovementDate
	SupplierID    string
	SectorID      string
	Person        string
	Destination   string
	InvoiceNumber string
	Notes         string
	PmedAtTime    decimal.Decimal // snapshot del costo medio al registrar
	CreatedBy     string
	CreatedAt     time.Time
}

// SignedQuantity devuelve +Quantity para IN y -Quantity para OUT.
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	if m.Type == MovementTypeOUT {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// MonthRefOf formatea la referencia mensual de una fecha.
func MonthRefOf(t time.Time) string {
	return t.Format("2006-01")
}
