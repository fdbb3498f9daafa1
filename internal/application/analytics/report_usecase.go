package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/application/ports"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/pkg/clock"
)

// narrativeTimeout tope de la llamada al LLM.
const narrativeTimeout = 30 * time.Second

const reportTopProducts = 10

// ErrNarrativeUnavailable no hay LLM configurado.
var ErrNarrativeUnavailable = errors.New("relatório narrativo indisponível: IA não configurada")

// ReportUseCase relatório mensal (datos + texto del LLM) y PDF de posição de estoque.
type ReportUseCase struct {
	companyRepo   repository.CompanyRepository
	analyticsRepo repository.AnalyticsRepository
	productRepo   repository.ProductRepository
	stockRepo     repository.StockRepository
	llm           ports.LLMService // nil: sin relatório narrativo
	pdf           ports.PDFGenerator
	clock         clock.Clock
	loc           *time.Location
}

// NewReportUseCase construye el caso de uso de relatórios.
func NewReportUseCase(
	companyRepo repository.CompanyRepository,
	analyticsRepo repository.AnalyticsRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	llm ports.LLMService,
	pdf ports.PDFGenerator,
	clk clock.Clock,
	loc *time.Location,
) *ReportUseCase {
	if clk == nil {
		clk = clock.Real{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReportUseCase{
		companyRepo:   companyRepo,
		analyticsRepo: analyticsRepo,
		productRepo:   productRepo,
		stockRepo:     stockRepo,
		llm:           llm,
		pdf:           pdf,
		clock:         clk,
		loc:           loc,
	}
}

// MonthlyData consolida el mes pedido (YYYY-MM; vacío = mes actual).
func (uc *ReportUseCase) MonthlyData(ctx context.Context, companyID, month string) (*dto.MonthlyReportDataDTO, error) {
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}

	ref := uc.clock.Now().In(uc.loc)
	if month != "" {
		ref, err = time.ParseInLocation("2006-01", month, uc.loc)
		if err != nil {
			return nil, domain.Invalid("month", "formato esperado YYYY-MM")
		}
	}
	start, end := monthRange(ref.Year(), ref.Month(), uc.loc)

	totals, err := uc.analyticsRepo.GetMovementTotals(ctx, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("relatório: totales: %w", err)
	}
	top, err := uc.analyticsRepo.GetConsumptionByProduct(ctx, companyID, start, end, reportTopProducts)
	if err != nil {
		return nil, fmt.Errorf("relatório: consumo por producto: %w", err)
	}
	sectors, err := uc.analyticsRepo.GetConsumptionBySector(ctx, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("relatório: consumo por setor: %w", err)
	}
	pos, err := loadPosition(ctx, uc.productRepo, uc.stockRepo, companyID)
	if err != nil {
		return nil, err
	}

	data := &dto.MonthlyReportDataDTO{
		CompanyName:    company.Name,
		Period:         dto.PeriodDTO{StartDate: start.Format("2006-01-02"), EndDate: end.Format("2006-01-02")},
		InValue:        totals.InValue.Round(2),
		OutValue:       totals.OutValue.Round(2),
		StockValue:     pos.totalValue.Round(2),
		AtRiskProducts: pos.atRiskCount,
		TopProducts:    toTopConsumed(top),
		Sectors:        make([]dto.SectorConsumptionDTO, 0, len(sectors)),
	}
	for _, s := range sectors {
		data.Sectors = append(data.Sectors, dto.SectorConsumptionDTO{
			SectorID:   s.SectorID,
			SectorName: s.SectorName,
			Quantity:   s.Quantity,
			Value:      s.Value.Round(2),
		})
	}
	return data, nil
}

// NarrativeReport consolida el mes y pide al LLM el análisis en texto.
func (uc *ReportUseCase) NarrativeReport(ctx context.Context, companyID, month string) (*dto.NarrativeReportDTO, error) {
	if uc.llm == nil {
		return nil, ErrNarrativeUnavailable
	}
	data, err := uc.MonthlyData(ctx, companyID, month)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, narrativeTimeout)
	defer cancel()

	text, err := uc.llm.WriteMonthlyReport(ctx, *data)
	if err != nil {
		return nil, fmt.Errorf("relatório IA: %w", err)
	}
	return &dto.NarrativeReportDTO{Data: *data, Narrative: text, Model: uc.llm.Model()}, nil
}

// StockPositionPDF genera el PDF de posição de estoque actual.
func (uc *ReportUseCase) StockPositionPDF(ctx context.Context, companyID string) ([]byte, error) {
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	pos, err := loadPosition(ctx, uc.productRepo, uc.stockRepo, companyID)
	if err != nil {
		return nil, err
	}
	report := dto.StockPositionReportDTO{
		CompanyName: company.Name,
		CompanyCNPJ: company.CNPJ,
		GeneratedAt: uc.clock.Now().In(uc.loc).Format("02/01/2006 15:04"),
		Items:       pos.items,
		TotalValue:  pos.totalValue.Round(2),
		AtRiskCount: pos.atRiskCount,
	}
	return uc.pdf.GenerateStockPosition(report)
}
