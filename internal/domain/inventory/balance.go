package inventory

import (
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// FoldBalance calcula Σ(IN) − Σ(OUT) sobre los movimientos dados (de un mismo producto).
func FoldBalance(movements []*entity.StockMovement) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		total = total.Add(m.SignedQuantity())
	}
	return total
}

// FoldBalances agrupa por producto. Incluye productos con saldo cero; el caller decide si omitirlos.
func FoldBalances(movements []*entity.StockMovement) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, m := range movements {
		out[m.ProductID] = out[m.ProductID].Add(m.SignedQuantity())
	}
	return out
}

// Discrepancy diferencia entre el saldo materializado y el fold del ledger.
type Discrepancy struct {
	ProductID    string
	Materialized decimal.Decimal
	Ledger       decimal.Decimal
}

// Reconcile compara saldos materializados con el fold del ledger.
// Productos ausentes en cualquiera de los lados cuentan como cero.
func Reconcile(materialized map[string]decimal.Decimal, ledger map[string]decimal.Decimal) []Discrepancy {
	var out []Discrepancy
	seen := make(map[string]struct{}, len(materialized))
	for id, q := range materialized {
		seen[id] = struct{}{}
		if l := ledger[id]; !l.Equal(q) {
			out = append(out, Discrepancy{ProductID: id, Materialized: q, Ledger: l})
		}
	}
	for id, l := range ledger {
		if _, ok := seen[id]; ok {
			continue
		}
		if !l.IsZero() {
			out = append(out, Discrepancy{ProductID: id, Materialized: decimal.Zero, Ledger: l})
		}
	}
	return out
}
