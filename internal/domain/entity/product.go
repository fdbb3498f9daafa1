package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un ítem del almoxarifado.
// Pmed es el costo medio ponderado móvil; solo lo modifica el motor de costo (entradas) o una edición explícita.
// El saldo no vive en el producto: se deriva del ledger de movimientos (ver StockBalance).
type Product struct {
	ID          string
	CompanyID   string
	Code        string // normalizado en mayúsculas, único por empresa
	Description string
	Unit        string // UN, CX, KG, L...
	CategoryID  string
	SupplierID  string
	MinStock    decimal.Decimal
	Pmed        decimal.Decimal
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
