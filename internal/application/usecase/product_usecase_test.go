package usecase_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	appinventory "github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/application/usecase"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/memory"
)

// productReadHook ejecuta afterRead una sola vez, justo después de la primera lectura del producto.
type productReadHook struct {
	repository.ProductRepository
	afterRead func()
}

func (r *productReadHook) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := r.ProductRepository.GetByID(ctx, id)
	if hook := r.afterRead; hook != nil {
		r.afterRead = nil
		hook()
	}
	return p, err
}

// entradaEntreLecturaYEscritura prepara un producto con IN(10, 100) → pmed 10 y devuelve un
// ProductUseCase cuya lectura inicial dispara IN(10, 140) → pmed 12 antes de escribir.
func entradaEntreLecturaYEscritura(t *testing.T) (*env, *usecase.ProductUseCase, string, string) {
	t.Helper()
	e, companyID := newEnv(t)
	ctx := context.Background()
	p, err := e.products.Create(ctx, companyID, "u1", dto.CreateProductRequest{
		Code: "LUVA-01", Description: "Luva", Unit: "CX",
	})
	require.NoError(t, err)

	movements := appinventory.NewRegisterMovementUseCase(
		memory.NewTxRunner(e.store), e.store.Products(), e.store.Sectors(), e.store.Suppliers(),
		nil, e.clock, nil, zerolog.Nop(),
	)
	entrada := func(total string) {
		v := d(total)
		_, err := movements.RegisterMovement(ctx, appinventory.MovementInputDTO{
			CompanyID: companyID, UserID: "u1", ProductID: p.ID,
			Type: entity.MovementTypeIN, Quantity: d("10"), TotalValue: &v,
		})
		require.NoError(t, err)
	}
	entrada("100")

	hooked := &productReadHook{ProductRepository: e.store.Products(), afterRead: func() { entrada("140") }}
	uc := usecase.NewProductUseCase(hooked, e.store.Categories(), e.store.Suppliers(), e.store.AuditLogs(),
		memory.NewTxRunner(e.store), e.clock)
	return e, uc, companyID, p.ID
}

func TestProduct_EdicionSinPmedConservaElCostoDeEntradaConcurrente(t *testing.T) {
	e, uc, companyID, productID := entradaEntreLecturaYEscritura(t)
	ctx := context.Background()

	out, err := uc.Update(ctx, companyID, "u2", productID, dto.UpdateProductRequest{Description: str("Luva nitrílica")})
	require.NoError(t, err)
	assert.Equal(t, "Luva nitrílica", out.Description)
	assert.True(t, out.Pmed.Equal(d("12")), "pmed devuelto %s", out.Pmed)

	stored, err := e.store.Products().GetByID(ctx, productID)
	require.NoError(t, err)
	assert.True(t, stored.Pmed.Equal(d("12")), "pmed persistido %s", stored.Pmed)
	assert.Equal(t, "Luva nitrílica", stored.Description)
}

func TestProduct_DeactivateConservaElCostoDeEntradaConcurrente(t *testing.T) {
	e, uc, companyID, productID := entradaEntreLecturaYEscritura(t)
	ctx := context.Background()

	require.NoError(t, uc.Deactivate(ctx, companyID, "u2", productID))

	stored, err := e.store.Products().GetByID(ctx, productID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.True(t, stored.Pmed.Equal(d("12")), "pmed persistido %s", stored.Pmed)
}

func TestProductRepository_UpdateNoEscribePmed(t *testing.T) {
	e, companyID := newEnv(t)
	ctx := context.Background()
	p, err := e.products.Create(ctx, companyID, "u1", dto.CreateProductRequest{
		Code: "PAP-A4", Description: "Papel", Unit: "CX", Pmed: d("10"),
	})
	require.NoError(t, err)

	repo := e.store.Products()
	stale, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, repo.UpdatePmed(ctx, p.ID, d("15")))

	stale.Description = "Papel A4"
	require.NoError(t, repo.Update(ctx, stale))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Papel A4", got.Description)
	assert.True(t, got.Pmed.Equal(d("15")))
}
