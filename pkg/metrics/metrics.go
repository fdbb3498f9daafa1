// Package metrics expone contadores Prometheus del almoxarifado.
// Todos los métodos aceptan receptor nil (métricas deshabilitadas).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Resultados de una alerta despachada.
const (
	OutcomeSent       = "sent"
	OutcomeQueued     = "queued"
	OutcomeSilenced   = "silenced"
	OutcomeCooldown   = "cooldown"
	OutcomeNoEmail    = "no_recipients"
	OutcomeFailed     = "failed"
	OutcomeSkipped    = "skipped"
	OutcomeAlreadyRun = "already_run"
	OutcomeLocked     = "locked"
)

// Metrics contadores de negocio.
type Metrics struct {
	movements         *prometheus.CounterVec
	movementsRejected *prometheus.CounterVec
	alerts            *prometheus.CounterVec
	digests           *prometheus.CounterVec
}

// New registra los contadores en registerer (prometheus.DefaultRegisterer si es nil).
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "almoxarifado",
			Name:      "stock_movements_total",
			Help:      "Movimentos de estoque registrados, por tipo.",
		}, []string{"type"}),
		movementsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "almoxarifado",
			Name:      "stock_movements_rejected_total",
			Help:      "Movimentos rejeitados, por motivo.",
		}, []string{"reason"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "almoxarifado",
			Name:      "alerts_total",
			Help:      "Alertas avaliados, por tipo, severidade e resultado.",
		}, []string{"type", "severity", "outcome"}),
		digests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "almoxarifado",
			Name:      "daily_digests_total",
			Help:      "Execuções do resumo diário, por resultado.",
		}, []string{"outcome"}),
	}
	registerer.MustRegister(m.movements, m.movementsRejected, m.alerts, m.digests)
	return m
}

func (m *Metrics) MovementRecorded(movementType string) {
	if m == nil {
		return
	}
	m.movements.WithLabelValues(movementType).Inc()
}

func (m *Metrics) MovementRejected(reason string) {
	if m == nil {
		return
	}
	m.movementsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) Alert(alertType, severity, outcome string) {
	if m == nil {
		return
	}
	m.alerts.WithLabelValues(alertType, severity, outcome).Inc()
}

func (m *Metrics) Digest(outcome string) {
	if m == nil {
		return
	}
	m.digests.WithLabelValues(outcome).Inc()
}
