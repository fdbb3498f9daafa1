package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance saldo materializado de un producto (running balance).
// Se actualiza en la misma transacción que el insert del movimiento; el fold del ledger es el oráculo.
type StockBalance struct {
	CompanyID string
	ProductID string
	Quantity  decimal.Decimal
	UpdatedAt time.Time
}
