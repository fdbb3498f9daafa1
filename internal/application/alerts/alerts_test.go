package alerts_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/application/alerts"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/alert"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/memory"
	"github.com/jhoicas/almoxarifado-api/pkg/clock"
)

const (
	companyID = "c1"
	productID = "p1"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type sentAlert struct {
	to    []string
	event alert.Event
}

type fakeNotifier struct {
	mu       sync.Mutex
	critical []sentAlert
	digests  []alerts.Digest
	err      error
}

func (n *fakeNotifier) SendCriticalAlert(_ context.Context, to []string, _ *entity.Company, ev alert.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.critical = append(n.critical, sentAlert{to: to, event: ev})
	return nil
}

func (n *fakeNotifier) SendDigest(_ context.Context, _ []string, dg alerts.Digest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.digests = append(n.digests, dg)
	return nil
}

type fixture struct {
	store      *memory.Store
	clock      *clock.Fake
	notifier   *fakeNotifier
	dispatcher *alerts.Dispatcher
	company    *entity.Company
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	clk := clock.NewFake(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	settings := entity.DefaultAlertSettings()
	settings.AlertEmails = "compras@pref.gov.br, almox@pref.gov.br"
	company := &entity.Company{
		ID: companyID, Name: "Prefeitura", Email: "contato@pref.gov.br",
		Status: entity.CompanyStatusActive, AlertSettings: settings,
	}
	require.NoError(t, s.Companies().Create(ctx, company))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{
		ID: productID, CompanyID: companyID, Code: "LUVA-01", Description: "Luva", Unit: "CX",
		MinStock: d("5"), Pmed: d("10"), Active: true,
	}))

	n := &fakeNotifier{}
	disp := alerts.NewDispatcher(
		s.AlertStates(), s.Digests(), s.AuditLogs(), s.Products(),
		alerts.NewRecipientResolver(s.Sectors()), n, clk,
		alerts.Config{}, nil, zerolog.Nop(),
	)
	return &fixture{store: s, clock: clk, notifier: n, dispatcher: disp, company: company}
}

func critical() alert.Event {
	return alert.Event{
		Type: entity.AlertTypeMinStock, Severity: entity.SeverityCritical,
		ProductID: productID, ProductName: "Luva", Suggestion: "repor",
	}
}

func warning() alert.Event {
	return alert.Event{
		Type: entity.AlertTypeUnusualConsumption, Severity: entity.SeverityWarning,
		ProductID: productID, ProductName: "Luva",
		Metrics: alert.Metrics{DeviationPercent: d("30"), FinancialImpact: d("120")},
	}
}

func (f *fixture) auditActions(t *testing.T, action string) []*entity.AuditLog {
	t.Helper()
	logs, err := f.store.AuditLogs().Find(context.Background(), repository.AuditFilter{CompanyID: companyID, Action: action})
	require.NoError(t, err)
	return logs
}

func TestDispatch_CriticaSeEnviaYRespetaCooldown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.dispatcher.Dispatch(ctx, f.company, critical()))
	require.Len(t, f.notifier.critical, 1)
	assert.Equal(t, []string{"compras@pref.gov.br", "almox@pref.gov.br"}, f.notifier.critical[0].to)
	assert.Len(t, f.auditActions(t, entity.AuditActionSendEmail), 1)

	// 23h después sigue en cooldown
	f.clock.Advance(23 * time.Hour)
	dec, err := f.dispatcher.ShouldSend(ctx, companyID, entity.AlertTypeMinStock, productID)
	require.NoError(t, err)
	assert.Equal(t, alerts.DecisionCooldown, dec)
	require.NoError(t, f.dispatcher.Dispatch(ctx, f.company, critical()))
	assert.Len(t, f.notifier.critical, 1)
	suppressed := f.auditActions(t, entity.AuditActionSuppressAlert)
	require.Len(t, suppressed, 1)
	assert.Contains(t, string(suppressed[0].After), `"reason":"cooldown"`)

	// 24h después del envío vuelve a ser elegible
	f.clock.Advance(time.Hour)
	require.NoError(t, f.dispatcher.Dispatch(ctx, f.company, critical()))
	assert.Len(t, f.notifier.critical, 2)
}

func TestDispatch_CooldownEsPorTipoYProducto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.dispatcher.Dispatch(ctx, f.company, critical()))

	other := critical()
	other.Type = entity.AlertTypeUnusualConsumption
	require.NoError(t, f.dispatcher.Dispatch(ctx, f.company, other))
	assert.Len(t, f.notifier.critical, 2)
}

func TestIgnoreAlert_SilenciaSieteDias(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	until, err := f.dispatcher.IgnoreAlert(ctx, companyID, "u1", entity.AlertTypeMinStock, productID)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(7*24*time.Hour), until)
	ignored := f.auditActions(t, entity.AuditActionIgnoreAlert)
	require.Len(t, ignored, 1)
	assert.Equal(t, "u1", ignored[0].Actor)

	require.NoError(t, f.dispatcher.Dispatch(ctx, f.company, critical()))
	assert.Empty(t, f.notifier.critical)
	suppressed := f.auditActions(t, entity.AuditActionSuppressAlert)
	require.Len(t, suppressed, 1)
	assert.Contains(t, string(suppressed[0].After), `"reason":"silenced"`)

	f.clock.Advance(7*24*time.Hour + time.Second)
	require.NoError(t, f.dispatcher.Dispatch(ctx, f.company, critical()))
	assert.Len(t, f.notifier.critical, 1)
}

func TestIgnoreAlert_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.dispatcher.IgnoreAlert(ctx, companyID, "u1", "OTHER", productID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.dispatcher.IgnoreAlert(ctx, companyID, "u1", entity.AlertTypeMinStock, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.dispatcher.IgnoreAlert(ctx, "c2", "u1", entity.AlertTypeMinStock, productID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDispatch_AdvertenciasSiempreSeEncolan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.dispatcher.IgnoreAlert(ctx, companyID, "u1", entity.AlertTypeUnusualConsumption, productID)
	require.NoError(t, err)

	require.NoError(t, f.dispatcher.Dispatch(ctx, f.company, warning()))
	require.NoError(t, f.dispatcher.Dispatch(ctx, f.company, warning()))

	items, err := f.store.Digests().ListItemsSince(ctx, companyID, f.clock.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "Luva", items[0].ProductName)
	assert.Contains(t, string(items[0].Metrics), `"deviation_percent":"30"`)
	assert.Empty(t, f.notifier.critical)
	queued := f.auditActions(t, entity.AuditActionQueueDigest)
	require.Len(t, queued, 2)
	assert.Contains(t, string(queued[0].After), `"product_name":"Luva"`)
}

func TestDispatch_SinDestinatariosNoEnviaNiMarca(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.company.AlertSettings.AlertEmails = ""
	f.company.Email = ""

	require.NoError(t, f.dispatcher.Dispatch(ctx, f.company, critical()))
	assert.Empty(t, f.notifier.critical)
	st, err := f.store.AlertStates().Get(ctx, companyID, entity.AlertTypeMinStock, productID)
	require.NoError(t, err)
	assert.Nil(t, st)

	suppressed := f.auditActions(t, entity.AuditActionSuppressAlert)
	require.Len(t, suppressed, 1)
	assert.Equal(t, entity.AlertTypeMinStock, suppressed[0].EntityName)
	assert.Equal(t, productID, suppressed[0].EntityID)
	assert.Contains(t, string(suppressed[0].After), `"reason":"no_recipients"`)
	assert.Empty(t, f.auditActions(t, entity.AuditActionSendEmail))
}

func TestDispatch_FalloDeEnvioNoMarcaEnviado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.notifier.err = errors.New("smtp")

	err := f.dispatcher.Dispatch(ctx, f.company, critical())
	require.Error(t, err)
	dec, err := f.dispatcher.ShouldSend(ctx, companyID, entity.AlertTypeMinStock, productID)
	require.NoError(t, err)
	assert.Equal(t, alerts.DecisionEligible, dec)
}

func TestParseEmailList(t *testing.T) {
	got := alerts.ParseEmailList(" a@x.com, b@y.com;A@X.com , sem-arroba, ,c@z.com")
	assert.Equal(t, []string{"a@x.com", "b@y.com", "c@z.com"}, got)
	assert.Empty(t, alerts.ParseEmailList(""))
}

func TestRecipientResolver_Prioridad(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.Sectors().Create(ctx, &entity.Sector{ID: "s1", CompanyID: companyID, Name: "Compras", Email: "setor@x.com"}))
	require.NoError(t, s.Sectors().Create(ctx, &entity.Sector{ID: "s2", CompanyID: "c2", Name: "Outro", Email: "outro@x.com"}))
	r := alerts.NewRecipientResolver(s.Sectors())

	c := &entity.Company{ID: companyID, Email: "empresa@x.com"}
	c.AlertSettings.AlertEmails = "lista@x.com"
	c.AlertSettings.AlertSectorID = "s1"
	got, err := r.Resolve(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, []string{"lista@x.com"}, got)

	c.AlertSettings.AlertEmails = ""
	got, _ = r.Resolve(ctx, c)
	assert.Equal(t, []string{"setor@x.com"}, got)

	c.AlertSettings.AlertSectorID = "s2" // setor de otra empresa
	got, _ = r.Resolve(ctx, c)
	assert.Equal(t, []string{"empresa@x.com"}, got)

	c.Email = ""
	got, _ = r.Resolve(ctx, c)
	assert.Empty(t, got)
}
