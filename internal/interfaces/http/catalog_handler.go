package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/application/usecase"
)

// CatalogHandler setores, fornecedores y categorias.
type CatalogHandler struct {
	uc *usecase.CatalogUseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *usecase.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// CreateSector godoc
// @Summary      Criar setor
// @Tags         sectors
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSectorRequest  true  "Dados do setor"
// @Success      201   {object}  dto.SectorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sectors [post]
func (h *CatalogHandler) CreateSector(c *fiber.Ctx) error {
	var in dto.CreateSectorRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateSector(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *CatalogHandler) GetSector(c *fiber.Ctx) error {
	out, err := h.uc.GetSector(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) UpdateSector(c *fiber.Ctx) error {
	var in dto.UpdateSectorRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateSector(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) ListSectors(c *fiber.Ctx) error {
	out, err := h.uc.ListSectors(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) CreateSupplier(c *fiber.Ctx) error {
	var in dto.CreateSupplierRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateSupplier(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *CatalogHandler) ListSuppliers(c *fiber.Ctx) error {
	out, err := h.uc.ListSuppliers(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var in dto.CreateCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateCategory(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	out, err := h.uc.ListCategories(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
