package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/pkg/clock"
)

const dashboardTopProducts = 5 // productos en el widget de consumo del dashboard

// DashboardUseCase genera el resumen del almoxarifado: estoque actual y movimientos del mes.
//
// Fuente de datos: AnalyticsRepository (read-only) más catálogo y saldos materializados.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	productRepo   repository.ProductRepository
	stockRepo     repository.StockRepository
	clock         clock.Clock
	loc           *time.Location
}

// NewDashboardUseCase construye el caso de uso. loc define el "mes en curso".
func NewDashboardUseCase(
	analyticsRepo repository.AnalyticsRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	clk clock.Clock,
	loc *time.Location,
) *DashboardUseCase {
	if clk == nil {
		clk = clock.Real{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardUseCase{
		analyticsRepo: analyticsRepo,
		productRepo:   productRepo,
		stockRepo:     stockRepo,
		clock:         clk,
		loc:           loc,
	}
}

// GetSummary construye el DashboardSummaryDTO para la empresa indicada.
//
// Tres consultas en paralelo:
//  1. posición actual       → StockValue, ActiveProducts, AtRiskProducts
//  2. totales del mes       → MonthIn/Out
//  3. top consumo del mes   → TopConsumption
func (uc *DashboardUseCase) GetSummary(ctx context.Context, companyID string) (*dto.DashboardSummaryDTO, error) {
	now := uc.clock.Now().In(uc.loc)
	monthStart, _ := monthRange(now.Year(), now.Month(), uc.loc)

	type positionResult struct {
		pos *position
		err error
	}
	type totalsResult struct {
		totals repository.MovementTotals
		err    error
	}
	type topResult struct {
		rows []repository.ProductConsumption
		err  error
	}

	posCh := make(chan positionResult, 1)
	totalsCh := make(chan totalsResult, 1)
	topCh := make(chan topResult, 1)

	go func() {
		pos, err := loadPosition(ctx, uc.productRepo, uc.stockRepo, companyID)
		posCh <- positionResult{pos, err}
	}()
	go func() {
		t, err := uc.analyticsRepo.GetMovementTotals(ctx, companyID, monthStart, now)
		totalsCh <- totalsResult{t, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.GetConsumptionByProduct(ctx, companyID, monthStart, now, dashboardTopProducts)
		topCh <- topResult{rows, err}
	}()

	pos := <-posCh
	totals := <-totalsCh
	top := <-topCh

	if pos.err != nil {
		return nil, fmt.Errorf("dashboard: %w", pos.err)
	}
	if totals.err != nil {
		return nil, fmt.Errorf("dashboard: totales del mes: %w", totals.err)
	}
	if top.err != nil {
		return nil, fmt.Errorf("dashboard: top consumo: %w", top.err)
	}

	return &dto.DashboardSummaryDTO{
		StockValue:     pos.pos.totalValue.Round(2),
		ActiveProducts: len(pos.pos.items),
		AtRiskProducts: pos.pos.atRiskCount,
		MonthInValue:   totals.totals.InValue.Round(2),
		MonthOutValue:  totals.totals.OutValue.Round(2),
		MonthInCount:   totals.totals.InCount,
		MonthOutCount:  totals.totals.OutCount,
		TopConsumption: toTopConsumed(top.rows),
		DateLabel:      monthLabel(now),
	}, nil
}
