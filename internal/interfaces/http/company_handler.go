package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/application/usecase"
)

// CompanyHandler empresa del usuario autenticado y su configuración de alertas.
type CompanyHandler struct {
	uc    *usecase.CompanyUseCase
	users *usecase.UserUseCase
}

// NewCompanyHandler construye el handler inyectando los casos de uso.
func NewCompanyHandler(uc *usecase.CompanyUseCase, users *usecase.UserUseCase) *CompanyHandler {
	return &CompanyHandler{uc: uc, users: users}
}

// Get godoc
// @Summary      Dados da empresa
// @Tags         company
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CompanyResponse
// @Router       /api/company [get]
func (h *CompanyHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Atualizar dados da empresa (admin)
// @Tags         company
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateCompanyRequest  true  "Campos a atualizar"
// @Success      200   {object}  dto.CompanyResponse
// @Router       /api/company [put]
func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCompanyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetAlertSettings GET /api/company/alert-settings
func (h *CompanyHandler) GetAlertSettings(c *fiber.Ctx) error {
	out, err := h.uc.GetAlertSettings(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateAlertSettings godoc
// @Summary      Configurar alertas (admin)
// @Tags         company
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AlertSettingsDTO  true  "min_stock, unusual_consumption, consumption_threshold, alert_emails, alert_sector_id"
// @Success      200   {object}  dto.AlertSettingsDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/company/alert-settings [put]
func (h *CompanyHandler) UpdateAlertSettings(c *fiber.Ctx) error {
	var in dto.AlertSettingsDTO
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateAlertSettings(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListUsers GET /api/users
func (h *CompanyHandler) ListUsers(c *fiber.Ctx) error {
	out, err := h.users.List(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Me GET /api/users/me
func (h *CompanyHandler) Me(c *fiber.Ctx) error {
	out, err := h.users.GetByID(c.UserContext(), GetCompanyID(c), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
