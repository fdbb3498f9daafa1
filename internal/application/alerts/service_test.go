package alerts_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/application/alerts"
	appinv "github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain/alert"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/memory"
)

func (f *fixture) movementUseCase() *appinv.RegisterMovementUseCase {
	svc := alerts.NewService(
		f.store.Companies(), f.store.Movements(),
		alert.NewEvaluator(alert.Config{}), f.dispatcher, f.clock,
	)
	return appinv.NewRegisterMovementUseCase(
		memory.NewTxRunner(f.store), f.store.Products(), f.store.Sectors(), f.store.Suppliers(),
		svc, f.clock, nil, zerolog.Nop(),
	)
}

func post(t *testing.T, uc *appinv.RegisterMovementUseCase, typ, qty string, total *decimal.Decimal) {
	t.Helper()
	_, err := uc.RegisterMovement(context.Background(), appinv.MovementInputDTO{
		CompanyID: companyID, UserID: "u1", ProductID: productID,
		Type: typ, Quantity: d(qty), TotalValue: total,
	})
	require.NoError(t, err)
}

func TestService_SalidaBajoMinimoEnviaCritica(t *testing.T) {
	f := newFixture(t)
	uc := f.movementUseCase()
	total := d("200")

	post(t, uc, entity.MovementTypeIN, "20", &total) // saldo 20 > 5: sin alerta
	assert.Empty(t, f.notifier.critical)

	f.clock.Advance(time.Hour)
	post(t, uc, entity.MovementTypeOUT, "16", nil) // saldo 4 <= 5
	require.Len(t, f.notifier.critical, 1)
	ev := f.notifier.critical[0].event
	assert.Equal(t, entity.AlertTypeMinStock, ev.Type)
	assert.True(t, ev.Metrics.Balance.Equal(d("4")))

	// segunda salida dentro del cooldown: suprimida
	post(t, uc, entity.MovementTypeOUT, "1", nil)
	assert.Len(t, f.notifier.critical, 1)
}

func TestService_ConsumoAtipicoDeBajoImpactoVaAlDigest(t *testing.T) {
	f := newFixture(t)
	uc := f.movementUseCase()
	total := d("1000") // 100 unidades a 10

	post(t, uc, entity.MovementTypeIN, "100", &total)
	post(t, uc, entity.MovementTypeOUT, "10", nil)
	post(t, uc, entity.MovementTypeOUT, "10", nil)
	post(t, uc, entity.MovementTypeOUT, "13", nil) // +30% sobre media 10, impacto 130 < 500

	items, err := f.store.Digests().ListItemsSince(context.Background(), companyID, f.clock.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, entity.AlertTypeUnusualConsumption, items[0].AlertType)
	assert.Equal(t, entity.SeverityWarning, items[0].Severity)
	assert.Empty(t, f.notifier.critical)
}

func TestService_AlertasDeshabilitadas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Companies().UpdateAlertSettings(ctx, companyID, entity.AlertSettings{}))
	uc := f.movementUseCase()
	total := d("10")

	post(t, uc, entity.MovementTypeIN, "1", &total)
	post(t, uc, entity.MovementTypeOUT, "1", nil)
	assert.Empty(t, f.notifier.critical)
}
