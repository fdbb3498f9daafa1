package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/pkg/clock"
	"github.com/jhoicas/almoxarifado-api/pkg/metrics"
)

// Estados de una ejecución del digest.
const (
	DigestSent         = "sent"
	DigestAlreadySent  = "already_sent"
	DigestNoItems      = "no_items"
	DigestNoRecipients = "no_recipients"
	DigestLocked       = "locked"
)

const (
	digestLookback = 24 * time.Hour
	digestLockTTL  = 5 * time.Minute
)

// DigestResult resultado de Run para una empresa.
type DigestResult struct {
	CompanyID   string
	Status      string
	DigestDate  string
	Recipients  []string
	ItemCount   int
	AtRiskCount int
}

// DigestAggregator envía como máximo un resumen por empresa y día calendario.
type DigestAggregator struct {
	companies  repository.CompanyRepository
	digests    repository.DigestRepository
	products   repository.ProductRepository
	stock      repository.StockRepository
	audit      repository.AuditLogRepository
	recipients *RecipientResolver
	notifier   Notifier
	locker     Locker // nil: sin lock distribuido
	clock      clock.Clock
	loc        *time.Location
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

// NewDigestAggregator construye el agregador. loc define el día calendario (default UTC).
func NewDigestAggregator(
	companies repository.CompanyRepository,
	digests repository.DigestRepository,
	products repository.ProductRepository,
	stock repository.StockRepository,
	audit repository.AuditLogRepository,
	recipients *RecipientResolver,
	notifier Notifier,
	locker Locker,
	clk clock.Clock,
	loc *time.Location,
	m *metrics.Metrics,
	log zerolog.Logger,
) *DigestAggregator {
	if clk == nil {
		clk = clock.Real{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DigestAggregator{
		companies:  companies,
		digests:    digests,
		products:   products,
		stock:      stock,
		audit:      audit,
		recipients: recipients,
		notifier:   notifier,
		locker:     locker,
		clock:      clk,
		loc:        loc,
		metrics:    m,
		log:        log,
	}
}

// Run ejecuta el resumen diario de la empresa. Idempotente dentro del mismo día.
func (a *DigestAggregator) Run(ctx context.Context, companyID string) (*DigestResult, error) {
	now := a.clock.Now()
	date := now.In(a.loc).Format("2006-01-02")
	res := &DigestResult{CompanyID: companyID, DigestDate: date}

	done, err := a.alreadySent(ctx, companyID, date)
	if err != nil {
		return nil, err
	}
	if done {
		res.Status = DigestAlreadySent
		a.metrics.Digest(metrics.OutcomeAlreadyRun)
		return res, nil
	}

	if a.locker != nil {
		release, acquired, err := a.locker.Acquire(ctx, fmt.Sprintf("digest:%s:%s", companyID, date), digestLockTTL)
		if err != nil {
			return nil, fmt.Errorf("digest lock: %w", err)
		}
		if !acquired {
			res.Status = DigestLocked
			a.metrics.Digest(metrics.OutcomeLocked)
			return res, nil
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				a.log.Warn().Err(err).Str("company_id", companyID).Msg("liberar lock del digest")
			}
		}()
		// otro proceso pudo terminar entre la primera consulta y el lock
		done, err = a.alreadySent(ctx, companyID, date)
		if err != nil {
			return nil, err
		}
		if done {
			res.Status = DigestAlreadySent
			a.metrics.Digest(metrics.OutcomeAlreadyRun)
			return res, nil
		}
	}

	items, err := a.digests.ListItemsSince(ctx, companyID, now.Add(-digestLookback))
	if err != nil {
		return nil, err
	}
	sortDigestItems(items)
	if len(items) == 0 {
		res.Status = DigestNoItems
		a.metrics.Digest(metrics.OutcomeSkipped)
		return res, nil
	}
	res.ItemCount = len(items)

	company, err := a.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	to, err := a.recipients.Resolve(ctx, company)
	if err != nil {
		return nil, err
	}
	if len(to) == 0 {
		res.Status = DigestNoRecipients
		a.metrics.Digest(metrics.OutcomeNoEmail)
		a.log.Warn().Str("company_id", companyID).Msg("digest sin destinatarios configurados")
		return res, nil
	}
	res.Recipients = to

	atRisk, err := a.atRisk(ctx, companyID)
	if err != nil {
		return nil, err
	}
	res.AtRiskCount = len(atRisk)

	digest := Digest{Company: company, Date: date, Items: items, AtRisk: atRisk}
	if err := a.notifier.SendDigest(ctx, to, digest); err != nil {
		a.metrics.Digest(metrics.OutcomeFailed)
		return nil, fmt.Errorf("enviar digest: %w", err)
	}

	run := &entity.DigestRun{
		CompanyID:   companyID,
		DigestDate:  date,
		SentAt:      now,
		Recipients:  to,
		ItemCount:   len(items),
		AtRiskCount: len(atRisk),
	}
	if err := a.digests.CreateRun(ctx, run); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// carrera sin lock: el otro proceso ya registró el día
			a.log.Warn().Str("company_id", companyID).Str("date", date).Msg("digest duplicado detectado al registrar")
			res.Status = DigestAlreadySent
			return res, nil
		}
		return nil, err
	}

	after, _ := json.Marshal(map[string]any{
		"digest_date":   date,
		"recipients":    to,
		"item_count":    len(items),
		"at_risk_count": len(atRisk),
	})
	if err := a.audit.Append(ctx, &entity.AuditLog{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		EntityName: entity.AuditEntityDailyDigest,
		EntityID:   date,
		Action:     entity.AuditActionSendEmail,
		After:      after,
		Actor:      "system",
		CreatedAt:  now,
	}); err != nil {
		return nil, err
	}

	res.Status = DigestSent
	a.metrics.Digest(metrics.OutcomeSent)
	a.log.Info().Str("company_id", companyID).Str("date", date).
		Int("items", len(items)).Int("at_risk", len(atRisk)).Msg("digest diario enviado")
	return res, nil
}

// RunAll ejecuta el digest de todas las empresas activas. Un fallo no detiene a las demás.
func (a *DigestAggregator) RunAll(ctx context.Context) ([]*DigestResult, error) {
	companies, err := a.companies.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]*DigestResult, 0, len(companies))
	var errs []error
	for _, c := range companies {
		res, err := a.Run(ctx, c.ID)
		if err != nil {
			a.log.Error().Err(err).Str("company_id", c.ID).Msg("digest diario falló")
			errs = append(errs, fmt.Errorf("empresa %s: %w", c.ID, err))
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func (a *DigestAggregator) alreadySent(ctx context.Context, companyID, date string) (bool, error) {
	run, err := a.digests.GetRun(ctx, companyID, date)
	if err != nil {
		return false, err
	}
	return run != nil, nil
}

// atRisk productos activos con saldo <= mínimo, ordenados por código.
func (a *DigestAggregator) atRisk(ctx context.Context, companyID string) ([]entity.AtRiskProduct, error) {
	products, err := a.products.ListByCompany(ctx, companyID, repository.ProductFilter{OnlyActive: true})
	if err != nil {
		return nil, err
	}
	balances, err := a.stock.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	qty := make(map[string]decimal.Decimal, len(balances))
	for _, b := range balances {
		qty[b.ProductID] = b.Quantity
	}
	var out []entity.AtRiskProduct
	for _, p := range products {
		bal := qty[p.ID]
		if bal.LessThanOrEqual(p.MinStock) {
			out = append(out, entity.AtRiskProduct{
				ProductID:   p.ID,
				Code:        p.Code,
				Description: p.Description,
				Unit:        p.Unit,
				Balance:     bal,
				MinStock:    p.MinStock,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// sortDigestItems ordena por tipo, producto y llegada. Cada advertencia encolada se envía:
// dos salidas del mismo producto en el día son dos líneas del digest.
func sortDigestItems(items []*entity.DigestItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.AlertType != b.AlertType {
			return a.AlertType < b.AlertType
		}
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		return a.QueuedAt.Before(b.QueuedAt)
	})
}
