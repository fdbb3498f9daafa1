package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/application/alerts"
	appanalytics "github.com/jhoicas/almoxarifado-api/internal/application/analytics"
	"github.com/jhoicas/almoxarifado-api/internal/application/auth"
	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/application/usecase"
	"github.com/jhoicas/almoxarifado-api/internal/domain/alert"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/almoxarifado-api/internal/interfaces/http"
	"github.com/jhoicas/almoxarifado-api/pkg/clock"
	"github.com/jhoicas/almoxarifado-api/pkg/metrics"
)

type nopNotifier struct{}

func (nopNotifier) SendCriticalAlert(context.Context, []string, *entity.Company, alert.Event) error {
	return nil
}
func (nopNotifier) SendDigest(context.Context, []string, alerts.Digest) error { return nil }

type stubPDF struct{}

func (stubPDF) GenerateStockPosition(dto.StockPositionReportDTO) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

type apiEnv struct {
	app   *fiber.App
	store *memory.Store
	token string
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	s := memory.New()
	clk := clock.NewFake(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	log := zerolog.Nop()

	companyUC := usecase.NewCompanyUseCase(s.Companies(), s.Sectors(), s.AuditLogs(), clk)
	authUC := auth.NewAuthUseCase(s.Users(), s.Companies(), companyUC,
		auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: testIssuer}, clk)

	recipients := alerts.NewRecipientResolver(s.Sectors())
	dispatcher := alerts.NewDispatcher(s.AlertStates(), s.Digests(), s.AuditLogs(), s.Products(),
		recipients, nopNotifier{}, clk, alerts.Config{}, m, log)
	alertSvc := alerts.NewService(s.Companies(), s.Movements(), alert.NewEvaluator(alert.Config{}), dispatcher, clk)
	digest := alerts.NewDigestAggregator(s.Companies(), s.Digests(), s.Products(), s.Stock(), s.AuditLogs(),
		recipients, nopNotifier{}, memory.NewLocker(clk.Now), clk, time.UTC, m, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:           authUC,
		CompanyUC:        companyUC,
		UserUC:           usecase.NewUserUseCase(s.Users()),
		ProductUC:        usecase.NewProductUseCase(s.Products(), s.Categories(), s.Suppliers(), s.AuditLogs(), memory.NewTxRunner(s), clk),
		CatalogUC:        usecase.NewCatalogUseCase(s.Sectors(), s.Suppliers(), s.Categories(), clk),
		AuditUC:          usecase.NewAuditUseCase(s.AuditLogs()),
		RegisterMovement: inventory.NewRegisterMovementUseCase(memory.NewTxRunner(s), s.Products(), s.Sectors(), s.Suppliers(), alertSvc, clk, m, log),
		StockQuery:       inventory.NewStockQueryUseCase(s.Stock(), s.Movements(), s.Products()),
		Replenishment:    inventory.NewReplenishmentUseCase(s.Products(), s.Stock(), s.Analytics(), clk),
		DashboardUC:      appanalytics.NewDashboardUseCase(s.Analytics(), s.Products(), s.Stock(), clk, time.UTC),
		ReportUC:         appanalytics.NewReportUseCase(s.Companies(), s.Analytics(), s.Products(), s.Stock(), nil, stubPDF{}, clk, time.UTC),
		Dispatcher:       dispatcher,
		Digest:           digest,
		Gatherer:         reg,
		JWTSecret:        testJWTSecret,
	})

	env := &apiEnv{app: app, store: s}
	var signup dto.SignupResponse
	resp := env.do(t, http.MethodPost, "/api/auth/signup", "", dto.SignupRequest{
		Company:  dto.CreateCompanyRequest{Name: "Prefeitura", CNPJ: "12345678000190"},
		Email:    "admin@pref.gov.br",
		Password: "segredo123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decode(t, resp, &signup)
	env.token = "Bearer " + signup.Token
	return env
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func (e *apiEnv) createProduct(t *testing.T, code string) dto.ProductResponse {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/products", e.token, map[string]any{
		"code": code, "description": "Luva nitrílica", "unit": "cx", "min_stock": "5",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var p dto.ProductResponse
	decode(t, resp, &p)
	return p
}

func TestAPI_EntradaSalidaYSaldo(t *testing.T) {
	e := newAPI(t)
	p := e.createProduct(t, "luva-01")

	resp := e.do(t, http.MethodPost, "/api/movements", e.token, map[string]any{
		"product_id": p.ID, "type": "IN", "quantity": "10", "total_value": "100",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var in dto.MovementResponse
	decode(t, resp, &in)
	assert.Equal(t, "10", in.ResultBalance.String())
	assert.Equal(t, "10", in.ProductPmed.String())

	resp = e.do(t, http.MethodPost, "/api/movements", e.token, map[string]any{
		"product_id": p.ID, "type": "OUT", "quantity": "11",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var rejected map[string]string
	decode(t, resp, &rejected)
	assert.Equal(t, "INSUFFICIENT_STOCK", rejected["code"])
	assert.Equal(t, "10", rejected["available"])

	resp = e.do(t, http.MethodGet, "/api/stock/balances/"+p.ID, e.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bal dto.BalanceDTO
	decode(t, resp, &bal)
	assert.Equal(t, "10", bal.Quantity.String())

	resp = e.do(t, http.MethodGet, "/api/stock/reconcile", e.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec dto.ReconcileReportDTO
	decode(t, resp, &rec)
	assert.True(t, rec.Consistent)

	resp = e.do(t, http.MethodGet, "/api/movements?product_id="+p.ID, e.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.MovementListResponse
	decode(t, resp, &list)
	assert.Len(t, list.Items, 1)
}

func TestAPI_ProductoDuplicadoEs409(t *testing.T) {
	e := newAPI(t)
	e.createProduct(t, "LUVA-01")
	resp := e.do(t, http.MethodPost, "/api/products", e.token, map[string]any{
		"code": " luva-01 ", "description": "Outra", "unit": "UN",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_SinTokenEs401(t *testing.T) {
	e := newAPI(t)
	resp := e.do(t, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_SolicitanteNoConfiguraAlertas(t *testing.T) {
	e := newAPI(t)
	resp := e.do(t, http.MethodPost, "/api/users", e.token, dto.RegisterRequest{
		Email: "joao@pref.gov.br", Password: "segredo123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "joao@pref.gov.br", Password: "segredo123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login dto.LoginResponse
	decode(t, resp, &login)
	assert.Equal(t, entity.RoleSolicitante, login.User.Role)
	token := "Bearer " + login.Token

	resp = e.do(t, http.MethodPut, "/api/company/alert-settings", token, dto.AlertSettingsDTO{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = e.do(t, http.MethodPost, "/api/movements", token, map[string]any{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	// lectura permitida
	resp = e.do(t, http.MethodGet, "/api/stock/balances", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_LoginInvalidoEs401(t *testing.T) {
	e := newAPI(t)
	resp := e.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "admin@pref.gov.br", Password: "errada"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_AlertSettingsInvalidoEs400(t *testing.T) {
	e := newAPI(t)
	resp := e.do(t, http.MethodPut, "/api/company/alert-settings", e.token, map[string]any{
		"min_stock": true, "consumption_threshold": "0",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, http.MethodPut, "/api/company/alert-settings", e.token, map[string]any{
		"min_stock": true, "consumption_threshold": "30", "alert_emails": "compras@pref.gov.br",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.AlertSettingsDTO
	decode(t, resp, &out)
	assert.Equal(t, "compras@pref.gov.br", out.AlertEmails)
}

func TestAPI_IgnorarAlertaYDigest(t *testing.T) {
	e := newAPI(t)
	p := e.createProduct(t, "LUVA-01")

	resp := e.do(t, http.MethodPost, "/api/alerts/ignore", e.token, dto.IgnoreAlertRequest{
		AlertType: entity.AlertTypeMinStock, ProductID: p.ID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ign dto.IgnoreAlertResponse
	decode(t, resp, &ign)
	assert.True(t, ign.SilencedUntil.Equal(time.Date(2026, 3, 17, 12, 0, 0, 0, time.UTC)))

	resp = e.do(t, http.MethodPost, "/api/alerts/ignore", e.token, dto.IgnoreAlertRequest{AlertType: "OTRO", ProductID: p.ID})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/alerts/digest/run", e.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var run dto.DigestRunResponse
	decode(t, resp, &run)
	assert.Equal(t, alerts.DigestNoItems, run.Status)
	assert.Equal(t, "2026-03-10", run.DigestDate)

	resp = e.do(t, http.MethodGet, "/api/audit?action="+entity.AuditActionIgnoreAlert, e.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var audit dto.AuditListResponse
	decode(t, resp, &audit)
	require.Len(t, audit.Items, 1)
	assert.Equal(t, p.ID, audit.Items[0].EntityID)
}

func TestAPI_Relatorios(t *testing.T) {
	e := newAPI(t)

	resp := e.do(t, http.MethodGet, "/api/reports/narrative", e.token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/reports/monthly?month=2026-13", e.token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/reports/stock.pdf", e.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	resp = e.do(t, http.MethodGet, "/api/dashboard/summary", e.token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_Metrics(t *testing.T) {
	e := newAPI(t)
	p := e.createProduct(t, "LUVA-01")
	e.do(t, http.MethodPost, "/api/movements", e.token, map[string]any{
		"product_id": p.ID, "type": "IN", "quantity": "1", "unit_cost": "2",
	})

	resp := e.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "almoxarifado_")
}
