package alert_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/domain/alert"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

var now = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func product(minStock, pmed string) *entity.Product {
	return &entity.Product{ID: "p1", Code: "LUVA-01", Description: "Luva nitrílica", Unit: "CX", MinStock: d(minStock), Pmed: d(pmed), Active: true}
}

func out(id, qty string, at time.Time) *entity.StockMovement {
	return &entity.StockMovement{ID: id, ProductID: "p1", Type: entity.MovementTypeOUT, Quantity: d(qty), MovementDate: at}
}

// historial de dos salidas de 100 → media 100 (fuera de la ventana de 30 días)
func historyAvg100() []*entity.StockMovement {
	old := now.AddDate(0, -3, 0)
	return []*entity.StockMovement{out("h1", "80", old), out("h2", "120", old)}
}

func onlyUnusual() entity.AlertSettings {
	return entity.AlertSettings{UnusualConsumption: true, ConsumptionThreshold: d("25")}
}

func evaluate(t *testing.T, qty, pmed string, settings entity.AlertSettings) []alert.Event {
	t.Helper()
	ev := alert.NewEvaluator(alert.Config{})
	m := out("m1", qty, now)
	history := append(historyAvg100(), m)
	return ev.Evaluate(alert.Input{
		Product:          product("0", pmed),
		Movement:         m,
		ResultingBalance: d("1000"),
		History:          history,
		Settings:         settings,
		Now:              now,
	})
}

func TestEvaluate_DesvioDe24NoDispara(t *testing.T) {
	events := evaluate(t, "124", "1", onlyUnusual())
	assert.Empty(t, events)
}

func TestEvaluate_DesvioDe25DisparaWarningBajoImpacto(t *testing.T) {
	events := evaluate(t, "125", "3.99", onlyUnusual()) // 125·3.99 = 498.75
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, entity.AlertTypeUnusualConsumption, ev.Type)
	assert.Equal(t, entity.SeverityWarning, ev.Severity)
	assert.True(t, ev.Metrics.DeviationPercent.Equal(d("25")))
	assert.True(t, ev.Metrics.AvgExitQuantity.Equal(d("100")))
	assert.True(t, ev.Metrics.FinancialImpact.Equal(d("498.75")))
	assert.NotEmpty(t, ev.Suggestion)
}

func TestEvaluate_ImpactoIgualA500EsCritico(t *testing.T) {
	events := evaluate(t, "125", "4", onlyUnusual()) // 125·4 = 500
	require.Len(t, events, 1)
	assert.Equal(t, entity.SeverityCritical, events[0].Severity)
	assert.True(t, events[0].Critical())
}

func TestEvaluate_UmbralPersonalizado(t *testing.T) {
	s := onlyUnusual()
	s.ConsumptionThreshold = d("50")
	assert.Empty(t, evaluate(t, "149", "1", s))
	assert.Len(t, evaluate(t, "150", "1", s), 1)
}

func TestEvaluate_SinHistorialNoHayConsumoAtipico(t *testing.T) {
	ev := alert.NewEvaluator(alert.Config{})
	m := out("m1", "500", now)
	events := ev.Evaluate(alert.Input{
		Product: product("0", "10"), Movement: m, ResultingBalance: d("10"),
		History: []*entity.StockMovement{m}, Settings: onlyUnusual(), Now: now,
	})
	assert.Empty(t, events)
}

func TestEvaluate_EntradaNuncaEsConsumoAtipico(t *testing.T) {
	ev := alert.NewEvaluator(alert.Config{})
	in := &entity.StockMovement{ID: "m1", ProductID: "p1", Type: entity.MovementTypeIN, Quantity: d("900"), MovementDate: now}
	events := ev.Evaluate(alert.Input{
		Product: product("0", "10"), Movement: in, ResultingBalance: d("900"),
		History: historyAvg100(), Settings: onlyUnusual(), Now: now,
	})
	assert.Empty(t, events)
}

func TestEvaluate_EstoqueMinimo(t *testing.T) {
	ev := alert.NewEvaluator(alert.Config{})
	m := out("m1", "10", now)
	history := []*entity.StockMovement{out("h1", "20", now.AddDate(0, 0, -5)), m}
	events := ev.Evaluate(alert.Input{
		Product: product("15", "2"), Movement: m, ResultingBalance: d("15"),
		History: history, Settings: entity.AlertSettings{MinStock: true}, Now: now,
	})
	require.Len(t, events, 1)
	ev0 := events[0]
	assert.Equal(t, entity.AlertTypeMinStock, ev0.Type)
	assert.Equal(t, entity.SeverityCritical, ev0.Severity)
	// (20 + 10) / 30 = 1 por día → 15 días de cobertura
	assert.True(t, ev0.Metrics.AvgDailyConsumption.Equal(d("1")))
	require.NotNil(t, ev0.Metrics.DaysToRupture)
	assert.True(t, ev0.Metrics.DaysToRupture.Equal(d("15")))
	assert.Contains(t, ev0.Suggestion, "Ruptura estimada em 15 dias")
}

func TestEvaluate_EstoqueMinimoDeshabilitado(t *testing.T) {
	ev := alert.NewEvaluator(alert.Config{})
	m := out("m1", "10", now)
	events := ev.Evaluate(alert.Input{
		Product: product("100", "2"), Movement: m, ResultingBalance: d("5"),
		History: []*entity.StockMovement{m}, Settings: entity.AlertSettings{}, Now: now,
	})
	assert.Empty(t, events)
}

func TestEvaluate_SinConsumoEnVentanaNoHayRuptura(t *testing.T) {
	ev := alert.NewEvaluator(alert.Config{})
	in := &entity.StockMovement{ID: "m1", ProductID: "p1", Type: entity.MovementTypeIN, Quantity: d("1"), MovementDate: now}
	events := ev.Evaluate(alert.Input{
		Product: product("10", "2"), Movement: in, ResultingBalance: d("1"),
		Settings: entity.AlertSettings{MinStock: true}, Now: now,
	})
	require.Len(t, events, 1)
	assert.Nil(t, events[0].Metrics.DaysToRupture)
	assert.True(t, events[0].Metrics.AvgDailyConsumption.IsZero())
}

func TestAvgExitQuantity_ExcluyeMovimientoActual(t *testing.T) {
	h := append(historyAvg100(), out("m1", "400", now))
	avg, ok := alert.AvgExitQuantity(h, "m1")
	require.True(t, ok)
	assert.True(t, avg.Equal(d("100")))

	_, ok = alert.AvgExitQuantity(nil, "")
	assert.False(t, ok)
}
