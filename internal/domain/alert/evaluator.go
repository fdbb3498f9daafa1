// Package alert clasifica el efecto de un movimiento sobre el estoque en eventos de alerta.
// Es dominio puro: no envía nada ni consulta repositorios.
package alert

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// Metrics valores calculados que acompañan a cada evento (se serializan en el digest).
type Metrics struct {
	Quantity            decimal.Decimal  `json:"quantity"`
	Balance             decimal.Decimal  `json:"balance"`
	MinStock            decimal.Decimal  `json:"min_stock"`
	Pmed                decimal.Decimal  `json:"pmed"`
	AvgExitQuantity     decimal.Decimal  `json:"avg_exit_quantity"`
	DeviationPercent    decimal.Decimal  `json:"deviation_percent"`
	ThresholdPercent    decimal.Decimal  `json:"threshold_percent"`
	FinancialImpact     decimal.Decimal  `json:"financial_impact"`
	AvgDailyConsumption decimal.Decimal  `json:"avg_daily_consumption"`
	DaysToRupture       *decimal.Decimal `json:"days_to_rupture,omitempty"` // nil: sin consumo en la ventana
}

// Event alerta clasificada.
type Event struct {
	Type        string
	Severity    string
	ProductID   string
	ProductCode string
	ProductName string
	Metrics     Metrics
	Suggestion  string
}

// Critical informa si el evento debe notificarse de inmediato.
func (e Event) Critical() bool { return e.Severity == entity.SeverityCritical }

// Config parámetros del evaluador.
type Config struct {
	CriticalImpact    decimal.Decimal // default 500
	ConsumptionWindow int             // días, default 30
}

// Input contexto de un movimiento ya registrado.
type Input struct {
	Product          *entity.Product
	Movement         *entity.StockMovement
	ResultingBalance decimal.Decimal
	// History movimientos del producto; puede incluir Movement (se detecta por ID).
	History  []*entity.StockMovement
	Settings entity.AlertSettings
	Now      time.Time
}

// Evaluator clasifica movimientos en cero o más eventos.
type Evaluator struct {
	criticalImpact decimal.Decimal
	windowDays     int
}

// NewEvaluator construye el evaluador con defaults 500 / 30 días.
func NewEvaluator(cfg Config) *Evaluator {
	e := &Evaluator{criticalImpact: cfg.CriticalImpact, windowDays: cfg.ConsumptionWindow}
	if !e.criticalImpact.GreaterThan(decimal.Zero) {
		e.criticalImpact = decimal.NewFromInt(500)
	}
	if e.windowDays <= 0 {
		e.windowDays = 30
	}
	return e
}

// Evaluate devuelve los eventos disparados por in.Movement.
func (e *Evaluator) Evaluate(in Input) []Event {
	if in.Product == nil || in.Movement == nil {
		return nil
	}
	base := e.baseMetrics(in)

	var events []Event
	if in.Settings.MinStock && in.ResultingBalance.LessThanOrEqual(in.Product.MinStock) {
		events = append(events, Event{
			Type:        entity.AlertTypeMinStock,
			Severity:    entity.SeverityCritical,
			ProductID:   in.Product.ID,
			ProductCode: in.Product.Code,
			ProductName: in.Product.Description,
			Metrics:     base,
			Suggestion:  minStockSuggestion(in.Product, base),
		})
	}

	if in.Settings.UnusualConsumption && in.Movement.Type == entity.MovementTypeOUT {
		if ev, ok := e.unusualConsumption(in, base); ok {
			events = append(events, ev)
		}
	}
	return events
}

func (e *Evaluator) baseMetrics(in Input) Metrics {
	avgDaily := e.avgDailyConsumption(in)
	m := Metrics{
		Quantity:            in.Movement.Quantity,
		Balance:             in.ResultingBalance,
		MinStock:            in.Product.MinStock,
		Pmed:                in.Product.Pmed,
		AvgDailyConsumption: avgDaily.Round(4),
	}
	if avgDaily.GreaterThan(decimal.Zero) {
		days := in.ResultingBalance.Div(avgDaily).Round(1)
		m.DaysToRupture = &days
	}
	return m
}

// avgDailyConsumption Σ salidas de la ventana (incluye el movimiento actual) / días de la ventana.
func (e *Evaluator) avgDailyConsumption(in Input) decimal.Decimal {
	since := in.Now.AddDate(0, 0, -e.windowDays)
	total := decimal.Zero
	for _, m := range in.History {
		if m.ID == in.Movement.ID || m.Type != entity.MovementTypeOUT {
			continue
		}
		if !m.MovementDate.Before(since) {
			total = total.Add(m.Quantity)
		}
	}
	if in.Movement.Type == entity.MovementTypeOUT && !in.Movement.MovementDate.Before(since) {
		total = total.Add(in.Movement.Quantity)
	}
	return total.Div(decimal.NewFromInt(int64(e.windowDays)))
}

func (e *Evaluator) unusualConsumption(in Input, base Metrics) (Event, bool) {
	avg, ok := AvgExitQuantity(in.History, in.Movement.ID)
	if !ok {
		return Event{}, false
	}
	threshold := in.Settings.Threshold()
	qty := in.Movement.Quantity
	deviation := qty.Sub(avg).Mul(hundred).Div(avg)
	if deviation.LessThan(threshold) {
		return Event{}, false
	}

	impact := qty.Mul(in.Product.Pmed)
	severity := entity.SeverityWarning
	if impact.GreaterThanOrEqual(e.criticalImpact) {
		severity = entity.SeverityCritical
	}

	m := base
	m.AvgExitQuantity = avg.Round(4)
	m.DeviationPercent = deviation.Round(2)
	m.ThresholdPercent = threshold
	m.FinancialImpact = impact.Round(2)

	return Event{
		Type:        entity.AlertTypeUnusualConsumption,
		Severity:    severity,
		ProductID:   in.Product.ID,
		ProductCode: in.Product.Code,
		ProductName: in.Product.Description,
		Metrics:     m,
		Suggestion:  unusualSuggestion(in.Product, m),
	}, true
}

// AvgExitQuantity media de las salidas históricas, excluyendo excludeID.
// ok=false cuando no hay salidas previas.
func AvgExitQuantity(history []*entity.StockMovement, excludeID string) (decimal.Decimal, bool) {
	total := decimal.Zero
	n := int64(0)
	for _, m := range history {
		if m.Type != entity.MovementTypeOUT || (excludeID != "" && m.ID == excludeID) {
			continue
		}
		total = total.Add(m.Quantity)
		n++
	}
	if n == 0 || total.IsZero() {
		return decimal.Zero, false
	}
	return total.Div(decimal.NewFromInt(n)), true
}

func minStockSuggestion(p *entity.Product, m Metrics) string {
	s := fmt.Sprintf("Estoque de %s em %s %s (mínimo %s). Programe a reposição.",
		p.Description, m.Balance.String(), p.Unit, p.MinStock.String())
	if m.DaysToRupture != nil {
		s += fmt.Sprintf(" Ruptura estimada em %s dias.", m.DaysToRupture.String())
	}
	return s
}

func unusualSuggestion(p *entity.Product, m Metrics) string {
	return fmt.Sprintf("Saída de %s %s de %s está %s%% acima da média (%s). Impacto de R$ %s; confirme a requisição com o setor.",
		m.Quantity.String(), p.Unit, p.Description, m.DeviationPercent.String(),
		m.AvgExitQuantity.String(), m.FinancialImpact.StringFixed(2))
}
