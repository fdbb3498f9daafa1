// Package inventory contiene los servicios de dominio del almoxarifado:
// costo medio ponderado (PMED), proyección de saldo desde el ledger y guard de salidas.
package inventory

import (
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/shopspring/decimal"
)

// CostCalculator implementa el costo medio ponderado móvil.
// NuevoPmed = ((SaldoActual * PmedActual) + (CantEntrada * CostoUnitEntrada)) / (SaldoActual + CantEntrada)
// Con saldo actual cero (o negativo por datos heredados) el nuevo PMED es el costo unitario de la entrada.
func CostCalculator(saldoActual, pmedActual, cantEntrada, costoUnitEntrada decimal.Decimal) decimal.Decimal {
	if !saldoActual.GreaterThan(decimal.Zero) {
		return costoUnitEntrada
	}
	sum := saldoActual.Add(cantEntrada)
	num := saldoActual.Mul(pmedActual).Add(cantEntrada.Mul(costoUnitEntrada))
	return num.Div(sum)
}

// UnitCost costo unitario de una entrada: valor total / cantidad.
func UnitCost(totalValue, quantity decimal.Decimal) (decimal.Decimal, error) {
	if !quantity.GreaterThan(decimal.Zero) {
		return decimal.Zero, domain.Invalid("quantity", "debe ser mayor que cero")
	}
	return totalValue.Div(quantity), nil
}

// NextPmed aplica una entrada de quantity unidades con valor total totalValue sobre el saldo actual.
func NextPmed(currentStock, oldPmed, quantity, totalValue decimal.Decimal) (decimal.Decimal, error) {
	unit, err := UnitCost(totalValue, quantity)
	if err != nil {
		return decimal.Zero, err
	}
	pmed := CostCalculator(currentStock, oldPmed, quantity, unit)
	if pmed.IsNegative() {
		return decimal.Zero, nil
	}
	return pmed, nil
}
