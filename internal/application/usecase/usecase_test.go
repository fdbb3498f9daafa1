package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/application/usecase"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/memory"
	"github.com/jhoicas/almoxarifado-api/pkg/clock"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func str(s string) *string { return &s }

type env struct {
	store    *memory.Store
	clock    *clock.Fake
	products *usecase.ProductUseCase
	company  *usecase.CompanyUseCase
	catalog  *usecase.CatalogUseCase
	audit    *usecase.AuditUseCase
}

func newEnv(t *testing.T) (*env, string) {
	t.Helper()
	s := memory.New()
	clk := clock.NewFake(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	e := &env{
		store:    s,
		clock:    clk,
		products: usecase.NewProductUseCase(s.Products(), s.Categories(), s.Suppliers(), s.AuditLogs(), memory.NewTxRunner(s), clk),
		company:  usecase.NewCompanyUseCase(s.Companies(), s.Sectors(), s.AuditLogs(), clk),
		catalog:  usecase.NewCatalogUseCase(s.Sectors(), s.Suppliers(), s.Categories(), clk),
		audit:    usecase.NewAuditUseCase(s.AuditLogs()),
	}
	c, err := e.company.Create(context.Background(), dto.CreateCompanyRequest{
		Name: "Prefeitura de Itu", CNPJ: "12.345.678/0001-90", Email: "almox@itu.sp.gov.br",
	})
	require.NoError(t, err)
	return e, c.ID
}

func TestCompany_CreateNormalizaCNPJYAlertasPorDefecto(t *testing.T) {
	e, companyID := newEnv(t)
	ctx := context.Background()

	c, err := e.company.GetByID(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, "12345678000190", c.CNPJ)
	assert.Equal(t, entity.CompanyStatusActive, c.Status)
	assert.True(t, c.AlertSettings.MinStock)
	assert.True(t, c.AlertSettings.ConsumptionThreshold.Equal(d("25")))

	_, err = e.company.Create(ctx, dto.CreateCompanyRequest{Name: "Outra", CNPJ: "12345678000190"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = e.company.Create(ctx, dto.CreateCompanyRequest{Name: "Curta", CNPJ: "123"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCompany_UpdateAlertSettings(t *testing.T) {
	e, companyID := newEnv(t)
	ctx := context.Background()
	sector, err := e.catalog.CreateSector(ctx, companyID, dto.CreateSectorRequest{Name: "Compras", Email: "compras@itu.sp.gov.br"})
	require.NoError(t, err)

	out, err := e.company.UpdateAlertSettings(ctx, companyID, "u1", dto.AlertSettingsDTO{
		MinStock:             true,
		ConsumptionThreshold: d("40"),
		AlertEmails:          " a@x.com; b@x.com , A@X.com ",
		AlertSectorID:        sector.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com,b@x.com", out.AlertEmails)
	assert.False(t, out.UnusualConsumption)

	got, err := e.company.GetAlertSettings(ctx, companyID)
	require.NoError(t, err)
	assert.True(t, got.ConsumptionThreshold.Equal(d("40")))
	assert.Equal(t, sector.ID, got.AlertSectorID)

	logs, err := e.store.AuditLogs().Find(ctx, repository.AuditFilter{CompanyID: companyID, EntityName: entity.AuditEntityCompany, Action: entity.AuditActionUpdate})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "u1", logs[0].Actor)
}

func TestCompany_UpdateAlertSettingsRechazaEntradaInvalida(t *testing.T) {
	e, companyID := newEnv(t)
	ctx := context.Background()

	cases := map[string]dto.AlertSettingsDTO{
		"umbral cero":       {ConsumptionThreshold: d("0")},
		"umbral excesivo":   {ConsumptionThreshold: d("1001")},
		"email inválido":    {ConsumptionThreshold: d("25"), AlertEmails: "ok@x.com, sem-arroba"},
		"setor inexistente": {ConsumptionThreshold: d("25"), AlertSectorID: "nope"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.company.UpdateAlertSettings(ctx, companyID, "u1", in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestProduct_CreateNormalizaCodigoYRechazaDuplicado(t *testing.T) {
	e, companyID := newEnv(t)
	ctx := context.Background()

	p, err := e.products.Create(ctx, companyID, "u1", dto.CreateProductRequest{
		Code: " parafuso-açõ 10 ", Description: "Parafuso", Unit: "un", MinStock: d("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, "PARAFUSO-ACO 10", p.Code)
	assert.Equal(t, "UN", p.Unit)
	assert.True(t, p.Active)

	_, err = e.products.Create(ctx, companyID, "u1", dto.CreateProductRequest{
		Code: "Parafuso-Aco 10", Description: "Outro", Unit: "UN",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = e.products.Create(ctx, companyID, "u1", dto.CreateProductRequest{
		Code: "X", Description: "X", Unit: "UN", CategoryID: "inexistente",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProduct_UpdatePmedQuedaAuditado(t *testing.T) {
	e, companyID := newEnv(t)
	ctx := context.Background()
	p, err := e.products.Create(ctx, companyID, "u1", dto.CreateProductRequest{
		Code: "LUVA-01", Description: "Luva", Unit: "CX", Pmed: d("10"),
	})
	require.NoError(t, err)

	newPmed := d("12.3456789")
	updated, err := e.products.Update(ctx, companyID, "u2", p.ID, dto.UpdateProductRequest{Pmed: &newPmed})
	require.NoError(t, err)
	assert.True(t, updated.Pmed.Equal(d("12.345679")))

	list, err := e.audit.List(ctx, companyID, dto.AuditListRequest{EntityName: entity.AuditEntityProduct, EntityID: p.ID})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	last := list.Items[0]
	assert.Equal(t, entity.AuditActionUpdate, last.Action)
	assert.Equal(t, "u2", last.Actor)

	var before, after dto.ProductResponse
	require.NoError(t, json.Unmarshal(last.Before, &before))
	require.NoError(t, json.Unmarshal(last.After, &after))
	assert.True(t, before.Pmed.Equal(d("10")))
	assert.True(t, after.Pmed.Equal(d("12.345679")))
}

func TestProduct_OtraEmpresaEsForbidden(t *testing.T) {
	e, companyID := newEnv(t)
	ctx := context.Background()
	p, err := e.products.Create(ctx, companyID, "u1", dto.CreateProductRequest{Code: "A", Description: "A", Unit: "UN"})
	require.NoError(t, err)

	_, err = e.products.GetByID(ctx, "outra", p.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.products.GetByID(ctx, companyID, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProduct_DeactivateYListado(t *testing.T) {
	e, companyID := newEnv(t)
	ctx := context.Background()
	a, err := e.products.Create(ctx, companyID, "u1", dto.CreateProductRequest{Code: "A-1", Description: "Caneta azul", Unit: "UN"})
	require.NoError(t, err)
	_, err = e.products.Create(ctx, companyID, "u1", dto.CreateProductRequest{Code: "B-1", Description: "Caneta preta", Unit: "UN"})
	require.NoError(t, err)

	require.NoError(t, e.products.Deactivate(ctx, companyID, "u1", a.ID))
	// segunda vez no genera otra entrada
	require.NoError(t, e.products.Deactivate(ctx, companyID, "u1", a.ID))

	active, err := e.products.List(ctx, companyID, dto.ProductListRequest{Search: "caneta"})
	require.NoError(t, err)
	require.Len(t, active.Items, 1)
	assert.Equal(t, "B-1", active.Items[0].Code)
	assert.Equal(t, 20, active.Page.Limit)

	all, err := e.products.List(ctx, companyID, dto.ProductListRequest{All: true})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	logs, err := e.audit.List(ctx, companyID, dto.AuditListRequest{Action: entity.AuditActionDeactivate})
	require.NoError(t, err)
	assert.Len(t, logs.Items, 1)
}

func TestCatalog_Setores(t *testing.T) {
	e, companyID := newEnv(t)
	ctx := context.Background()

	s, err := e.catalog.CreateSector(ctx, companyID, dto.CreateSectorRequest{Name: "Saúde", Responsible: "Ana"})
	require.NoError(t, err)
	_, err = e.catalog.CreateSector(ctx, companyID, dto.CreateSectorRequest{Name: "saúde"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	inactive := false
	updated, err := e.catalog.UpdateSector(ctx, companyID, s.ID, dto.UpdateSectorRequest{Email: str("saude@itu.sp.gov.br"), Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, "saude@itu.sp.gov.br", updated.Email)

	_, err = e.catalog.UpdateSector(ctx, companyID, s.ID, dto.UpdateSectorRequest{Email: str("invalido")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.catalog.GetSector(ctx, "outra", s.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	list, err := e.catalog.ListSectors(ctx, companyID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCatalog_FornecedoresYCategorias(t *testing.T) {
	e, companyID := newEnv(t)
	ctx := context.Background()

	sup, err := e.catalog.CreateSupplier(ctx, companyID, dto.CreateSupplierRequest{Name: "Papelaria Central", CNPJ: "11.222.333/0001-44"})
	require.NoError(t, err)
	assert.Equal(t, "11222333000144", sup.CNPJ)
	_, err = e.catalog.CreateSupplier(ctx, companyID, dto.CreateSupplierRequest{Name: "Outra", CNPJ: "11222333000144"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	cat, err := e.catalog.CreateCategory(ctx, companyID, dto.CreateCategoryRequest{Name: "Escritório"})
	require.NoError(t, err)

	// las referencias creadas sirven para el producto
	p, err := e.products.Create(ctx, companyID, "u1", dto.CreateProductRequest{
		Code: "CLIPS", Description: "Clips", Unit: "CX", CategoryID: cat.ID, SupplierID: sup.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, cat.ID, p.CategoryID)

	cats, err := e.catalog.ListCategories(ctx, companyID)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
	sups, err := e.catalog.ListSuppliers(ctx, companyID)
	require.NoError(t, err)
	assert.Len(t, sups, 1)
}
