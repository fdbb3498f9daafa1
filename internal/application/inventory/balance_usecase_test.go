package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	appinv "github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

func TestGetBalance_SinMovimientosEsCero(t *testing.T) {
	e := newEnv(t)
	bal, err := e.query.GetBalance(context.Background(), companyID, productID)
	require.NoError(t, err)
	assert.True(t, bal.Quantity.IsZero())
	assert.True(t, bal.BelowMin)

	_, err = e.query.GetBalance(context.Background(), "c2", productID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGetAllBalances_OmiteSaldoCero(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.store.Products().Create(ctx, &entity.Product{
		ID: "p2", CompanyID: companyID, Code: "PAPEL-A4", Description: "Papel", Unit: "RESMA", Active: true,
	}))
	e.in(t, "4", "40")
	_, err := e.uc.RegisterMovement(ctx, appinv.MovementInputDTO{
		CompanyID: companyID, ProductID: "p2", Type: "IN", Quantity: d("2"), TotalValue: ptr(d("50")),
	})
	require.NoError(t, err)
	_, err = e.uc.RegisterMovement(ctx, appinv.MovementInputDTO{
		CompanyID: companyID, ProductID: "p2", Type: "OUT", Quantity: d("2"),
	})
	require.NoError(t, err)

	all, err := e.query.GetAllBalances(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, productID, all[0].ProductID)
	assert.True(t, all[0].TotalValue.Equal(d("40")))
}

func TestReconcile_DetectaDivergencia(t *testing.T) {
	e := newEnv(t)
	e.in(t, "10", "100")
	_, err := e.out("4")
	require.NoError(t, err)

	report, err := e.query.Reconcile(context.Background(), companyID)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, 1, report.CheckedProducts)

	e.store.SetBalance(companyID, productID, d("7"))
	report, err = e.query.Reconcile(context.Background(), companyID)
	require.NoError(t, err)
	assert.False(t, report.Consistent)
	require.Len(t, report.Discrepancies, 1)
	assert.True(t, report.Discrepancies[0].Ledger.Equal(d("6")))
	assert.True(t, report.Discrepancies[0].Materialized.Equal(d("7")))
}

func TestListMovements_Filtros(t *testing.T) {
	e := newEnv(t)
	e.in(t, "10", "100")
	_, err := e.out("1")
	require.NoError(t, err)

	res, err := e.query.ListMovements(context.Background(), companyID, dto.MovementListRequest{Type: "OUT"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "OUT", res.Items[0].Type)
	assert.Equal(t, 20, res.Page.Limit)

	_, err = e.query.ListMovements(context.Background(), companyID, dto.MovementListRequest{From: "10/03/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReplenishment_SugiereProductosEnMinimo(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.in(t, "30", "300")
	_, err := e.out("26") // saldo 4 <= mínimo 5; consumo 26 en 30 días
	require.NoError(t, err)

	uc := appinv.NewReplenishmentUseCase(e.store.Products(), e.store.Stock(), e.store.Analytics(), e.clock)
	list, err := uc.GenerateReplenishmentList(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	s := list[0]
	assert.Equal(t, 1, s.Priority)
	// ideal = max(5·1.5, 26) = 26 → sugerido 22
	assert.True(t, s.IdealStock.Equal(d("26")), "ideal=%s", s.IdealStock)
	assert.True(t, s.SuggestedOrderQty.Equal(d("22")))
	assert.True(t, s.EstimatedOrderCost.Equal(d("220")))
	require.NotNil(t, s.DaysToRupture)
}
