package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mov(productID, typ, qty string) *entity.StockMovement {
	return &entity.StockMovement{ProductID: productID, Type: typ, Quantity: d(qty), MovementDate: time.Now()}
}

// Entrada con saldo cero: el PMED es el costo unitario de la entrada.
func TestNextPmed_SaldoCero(t *testing.T) {
	pmed, err := inventory.NextPmed(decimal.Zero, decimal.Zero, d("10"), d("100"))
	require.NoError(t, err)
	assert.True(t, pmed.Equal(d("10")), "pmed=%s", pmed)
}

// (10·10 + 10·14) / 20 = 12
func TestNextPmed_PromedioPonderado(t *testing.T) {
	pmed, err := inventory.NextPmed(d("10"), d("10"), d("10"), d("140"))
	require.NoError(t, err)
	assert.True(t, pmed.Equal(d("12")), "pmed=%s", pmed)
}

func TestNextPmed_SaldoNegativoHeredadoUsaCostoUnitario(t *testing.T) {
	pmed, err := inventory.NextPmed(d("-3"), d("50"), d("4"), d("20"))
	require.NoError(t, err)
	assert.True(t, pmed.Equal(d("5")))
}

func TestNextPmed_CantidadCeroEsInvalida(t *testing.T) {
	_, err := inventory.NextPmed(d("1"), d("1"), decimal.Zero, d("10"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFoldBalance(t *testing.T) {
	movs := []*entity.StockMovement{
		mov("p1", entity.MovementTypeIN, "10"),
		mov("p1", entity.MovementTypeOUT, "3"),
		mov("p1", entity.MovementTypeIN, "5.5"),
		mov("p1", entity.MovementTypeOUT, "2.5"),
	}
	assert.True(t, inventory.FoldBalance(movs).Equal(d("10")))
	// recomputar es idempotente
	assert.True(t, inventory.FoldBalance(movs).Equal(inventory.FoldBalance(movs)))
	assert.True(t, inventory.FoldBalance(nil).IsZero())
}

func TestFoldBalances_AgrupaPorProducto(t *testing.T) {
	movs := []*entity.StockMovement{
		mov("p1", entity.MovementTypeIN, "10"),
		mov("p2", entity.MovementTypeIN, "4"),
		mov("p1", entity.MovementTypeOUT, "10"),
		mov("p2", entity.MovementTypeOUT, "1"),
	}
	got := inventory.FoldBalances(movs)
	assert.True(t, got["p1"].IsZero())
	assert.True(t, got["p2"].Equal(d("3")))
}

func TestReconcile(t *testing.T) {
	materialized := map[string]decimal.Decimal{"p1": d("5"), "p2": d("7")}
	ledger := map[string]decimal.Decimal{"p1": d("5"), "p2": d("6"), "p3": d("2"), "p4": decimal.Zero}

	diffs := inventory.Reconcile(materialized, ledger)
	require.Len(t, diffs, 2)
	byID := map[string]inventory.Discrepancy{}
	for _, x := range diffs {
		byID[x.ProductID] = x
	}
	assert.True(t, byID["p2"].Ledger.Equal(d("6")))
	assert.True(t, byID["p3"].Materialized.IsZero())
}

func TestCheckOutflow(t *testing.T) {
	assert.NoError(t, inventory.CheckOutflow("p1", d("5"), d("5")))

	err := inventory.CheckOutflow("p1", d("5"), d("5.01"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Available.Equal(d("5")))
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "PARAFUSO-ACO 10", inventory.NormalizeCode("  parafuso-açõ   10 "))
	assert.Equal(t, "LUVA", inventory.NormalizeCode("luva"))
}
