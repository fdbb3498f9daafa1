package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/almoxarifado-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del dashboard y relatórios.
type DashboardHandler struct {
	uc      *appanalytics.DashboardUseCase
	reports *appanalytics.ReportUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase, reports *appanalytics.ReportUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc, reports: reports}
}

// GetSummary devuelve valor del estoque, productos activos, en riesgo y movimiento del mes.
// GET /api/dashboard/summary
//
// No requiere parámetros; el mes se calcula en el servidor con la zona horaria configurada.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

// GetMonthlyData GET /api/reports/monthly?month=YYYY-MM
func (h *DashboardHandler) GetMonthlyData(c *fiber.Ctx) error {
	out, err := h.reports.MonthlyData(c.UserContext(), GetCompanyID(c), c.Query("month"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetNarrative godoc
// @Summary      Relatório mensal narrativo (IA)
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        month  query  string  false  "YYYY-MM (padrão: mês atual)"
// @Success      200  {object}  dto.NarrativeReportDTO
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/reports/narrative [get]
func (h *DashboardHandler) GetNarrative(c *fiber.Ctx) error {
	out, err := h.reports.NarrativeReport(c.UserContext(), GetCompanyID(c), c.Query("month"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetStockPositionPDF GET /api/reports/stock.pdf
func (h *DashboardHandler) GetStockPositionPDF(c *fiber.Ctx) error {
	pdf, err := h.reports.StockPositionPDF(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="posicao-estoque.pdf"`)
	return c.Send(pdf)
}
