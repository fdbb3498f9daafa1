package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/alert"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/pkg/clock"
	"github.com/jhoicas/almoxarifado-api/pkg/metrics"
)

// Decision resultado de la política de envío.
type Decision string

const (
	DecisionEligible Decision = "eligible"
	DecisionSilenced Decision = "silenced"
	DecisionCooldown Decision = "cooldown"
)

// Config ventanas de la política de envío.
type Config struct {
	Cooldown      time.Duration // default 24h
	SilenceWindow time.Duration // default 7 días
}

func (c Config) withDefaults() Config {
	if c.Cooldown <= 0 {
		c.Cooldown = 24 * time.Hour
	}
	if c.SilenceWindow <= 0 {
		c.SilenceWindow = 7 * 24 * time.Hour
	}
	return c
}

// Dispatcher aplica silencio y cooldown, envía críticas y encola advertencias.
type Dispatcher struct {
	states     repository.AlertStateRepository
	digests    repository.DigestRepository
	audit      repository.AuditLogRepository
	products   repository.ProductRepository
	recipients *RecipientResolver
	notifier   Notifier
	clock      clock.Clock
	cfg        Config
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

// NewDispatcher construye el dispatcher.
func NewDispatcher(
	states repository.AlertStateRepository,
	digests repository.DigestRepository,
	audit repository.AuditLogRepository,
	products repository.ProductRepository,
	recipients *RecipientResolver,
	notifier Notifier,
	clk clock.Clock,
	cfg Config,
	m *metrics.Metrics,
	log zerolog.Logger,
) *Dispatcher {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Dispatcher{
		states:     states,
		digests:    digests,
		audit:      audit,
		products:   products,
		recipients: recipients,
		notifier:   notifier,
		clock:      clk,
		cfg:        cfg.withDefaults(),
		metrics:    m,
		log:        log,
	}
}

// ShouldSend evalúa si una alerta crítica puede enviarse ahora.
func (d *Dispatcher) ShouldSend(ctx context.Context, companyID, alertType, productID string) (Decision, error) {
	st, err := d.states.Get(ctx, companyID, alertType, productID)
	if err != nil {
		return "", err
	}
	if st == nil {
		return DecisionEligible, nil
	}
	now := d.clock.Now()
	if st.SilencedUntil != nil && st.SilencedUntil.After(now) {
		return DecisionSilenced, nil
	}
	if st.LastSentAt != nil && now.Sub(*st.LastSentAt) < d.cfg.Cooldown {
		return DecisionCooldown, nil
	}
	return DecisionEligible, nil
}

// Dispatch procesa un evento: crítico → envío inmediato (si la política lo permite), advertencia → cola del digest.
func (d *Dispatcher) Dispatch(ctx context.Context, company *entity.Company, ev alert.Event) error {
	if ev.Critical() {
		return d.dispatchCritical(ctx, company, ev)
	}
	return d.enqueueWarning(ctx, company, ev)
}

func (d *Dispatcher) dispatchCritical(ctx context.Context, company *entity.Company, ev alert.Event) error {
	decision, err := d.ShouldSend(ctx, company.ID, ev.Type, ev.ProductID)
	if err != nil {
		return err
	}
	if decision != DecisionEligible {
		d.metrics.Alert(ev.Type, ev.Severity, string(decision))
		d.log.Debug().Str("company_id", company.ID).Str("product_id", ev.ProductID).
			Str("alert_type", ev.Type).Str("reason", string(decision)).Msg("alerta crítica suprimida")
		return d.appendAudit(ctx, company.ID, ev, entity.AuditActionSuppressAlert, map[string]any{
			"severity": ev.Severity,
			"reason":   string(decision),
			"metrics":  ev.Metrics,
		})
	}

	to, err := d.recipients.Resolve(ctx, company)
	if err != nil {
		return err
	}
	if len(to) == 0 {
		d.metrics.Alert(ev.Type, ev.Severity, metrics.OutcomeNoEmail)
		d.log.Warn().Str("company_id", company.ID).Str("alert_type", ev.Type).
			Msg("alerta crítica sin destinatarios configurados")
		// no se marca como enviada: no abre cooldown
		return d.appendAudit(ctx, company.ID, ev, entity.AuditActionSuppressAlert, map[string]any{
			"severity": ev.Severity,
			"reason":   "no_recipients",
			"metrics":  ev.Metrics,
		})
	}

	if err := d.notifier.SendCriticalAlert(ctx, to, company, ev); err != nil {
		d.metrics.Alert(ev.Type, ev.Severity, metrics.OutcomeFailed)
		return fmt.Errorf("enviar alerta %s: %w", ev.Type, err)
	}
	if err := d.states.MarkSent(ctx, company.ID, ev.Type, ev.ProductID, d.clock.Now()); err != nil {
		return err
	}
	d.metrics.Alert(ev.Type, ev.Severity, metrics.OutcomeSent)
	return d.appendAudit(ctx, company.ID, ev, entity.AuditActionSendEmail, map[string]any{
		"severity":   ev.Severity,
		"recipients": to,
		"metrics":    ev.Metrics,
		"suggestion": ev.Suggestion,
	})
}

// enqueueWarning las advertencias siempre se encolan; el digest diario decide el envío.
func (d *Dispatcher) enqueueWarning(ctx context.Context, company *entity.Company, ev alert.Event) error {
	raw, err := json.Marshal(ev.Metrics)
	if err != nil {
		return err
	}
	item := &entity.DigestItem{
		ID:          uuid.New().String(),
		CompanyID:   company.ID,
		AlertType:   ev.Type,
		ProductID:   ev.ProductID,
		ProductName: ev.ProductName,
		Severity:    ev.Severity,
		Metrics:     raw,
		Suggestion:  ev.Suggestion,
		QueuedAt:    d.clock.Now(),
	}
	if err := d.digests.Enqueue(ctx, item); err != nil {
		return err
	}
	d.metrics.Alert(ev.Type, ev.Severity, metrics.OutcomeQueued)
	return d.appendAudit(ctx, company.ID, ev, entity.AuditActionQueueDigest, map[string]any{
		"severity":       ev.Severity,
		"digest_item_id": item.ID,
		"product_name":   ev.ProductName,
		"metrics":        ev.Metrics,
	})
}

// IgnoreAlert silencia (tipo, producto) durante la ventana de silencio. Devuelve el fin del silencio.
func (d *Dispatcher) IgnoreAlert(ctx context.Context, companyID, userID, alertType, productID string) (time.Time, error) {
	if !entity.ValidAlertType(alertType) {
		return time.Time{}, domain.Invalid("alert_type", "debe ser MIN_STOCK o UNUSUAL_CONSUMPTION")
	}
	if productID == "" {
		return time.Time{}, domain.Invalid("product_id", "es obligatorio")
	}
	p, err := d.products.GetByID(ctx, productID)
	if err != nil {
		return time.Time{}, err
	}
	if p == nil {
		return time.Time{}, domain.ErrNotFound
	}
	if p.CompanyID != companyID {
		return time.Time{}, domain.ErrForbidden
	}

	now := d.clock.Now()
	until := now.Add(d.cfg.SilenceWindow)
	if err := d.states.Silence(ctx, companyID, alertType, productID, until); err != nil {
		return time.Time{}, err
	}
	after, _ := json.Marshal(map[string]any{"silenced_until": until, "product_code": p.Code})
	err = d.audit.Append(ctx, &entity.AuditLog{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		EntityName: alertType,
		EntityID:   productID,
		Action:     entity.AuditActionIgnoreAlert,
		After:      after,
		Actor:      userID,
		CreatedAt:  now,
	})
	return until, err
}

func (d *Dispatcher) appendAudit(ctx context.Context, companyID string, ev alert.Event, action string, payload map[string]any) error {
	after, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return d.audit.Append(ctx, &entity.AuditLog{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		EntityName: ev.Type,
		EntityID:   ev.ProductID,
		Action:     action,
		After:      after,
		Actor:      "system",
		CreatedAt:  d.clock.Now(),
	})
}
