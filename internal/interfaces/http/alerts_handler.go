package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almoxarifado-api/internal/application/alerts"
	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/application/usecase"
)

// AlertsHandler silencio de alertas, digest manual y trilha de auditoría.
type AlertsHandler struct {
	dispatcher *alerts.Dispatcher
	digest     *alerts.DigestAggregator
	audit      *usecase.AuditUseCase
}

// NewAlertsHandler construye el handler.
func NewAlertsHandler(dispatcher *alerts.Dispatcher, digest *alerts.DigestAggregator, audit *usecase.AuditUseCase) *AlertsHandler {
	return &AlertsHandler{dispatcher: dispatcher, digest: digest, audit: audit}
}

// Ignore godoc
// @Summary      Silenciar alerta por 7 dias (admin)
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IgnoreAlertRequest  true  "alert_type, product_id"
// @Success      200   {object}  dto.IgnoreAlertResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/alerts/ignore [post]
func (h *AlertsHandler) Ignore(c *fiber.Ctx) error {
	var in dto.IgnoreAlertRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	until, err := h.dispatcher.IgnoreAlert(c.UserContext(), GetCompanyID(c), GetUserID(c), in.AlertType, in.ProductID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.IgnoreAlertResponse{AlertType: in.AlertType, ProductID: in.ProductID, SilencedUntil: until})
}

// RunDigest godoc
// @Summary      Executar o resumo diário da empresa (admin)
// @Description  Idempotente: no máximo um envio por empresa e dia.
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DigestRunResponse
// @Router       /api/alerts/digest/run [post]
func (h *AlertsHandler) RunDigest(c *fiber.Ctx) error {
	res, err := h.digest.Run(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.DigestRunResponse{
		Status:      res.Status,
		DigestDate:  res.DigestDate,
		Recipients:  res.Recipients,
		ItemCount:   res.ItemCount,
		AtRiskCount: res.AtRiskCount,
	})
}

// ListAudit GET /api/audit?entity_name&entity_id&action
func (h *AlertsHandler) ListAudit(c *fiber.Ctx) error {
	var in dto.AuditListRequest
	if err := c.QueryParser(&in); err != nil {
		return badQuery(c)
	}
	out, err := h.audit.List(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
