package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
)

// InventoryHandler maneja las peticiones HTTP de movimientos y saldos (protegido).
type InventoryHandler struct {
	uc            *inventory.RegisterMovementUseCase
	query         *inventory.StockQueryUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	uc *inventory.RegisterMovementUseCase,
	query *inventory.StockQueryUseCase,
	replenishment *inventory.ReplenishmentUseCase,
) *InventoryHandler {
	return &InventoryHandler{uc: uc, query: query, replenishment: replenishment}
}

// RegisterMovement godoc
// @Summary      Registrar entrada ou saída
// @Description  IN exige total_value ou unit_cost; OUT é valorizada ao custo médio vigente.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, type, quantity, total_value/unit_cost (IN), sector_id (OUT)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.RegisterMovementFromRequest(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Consultar o ledger
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Produto"
// @Param        type        query  string  false  "IN ou OUT"
// @Param        sector_id   query  string  false  "Setor"
// @Param        from        query  string  false  "YYYY-MM-DD"
// @Param        to          query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var in dto.MovementListRequest
	if err := c.QueryParser(&in); err != nil {
		return badQuery(c)
	}
	out, err := h.query.ListMovements(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetBalances GET /api/stock/balances
func (h *InventoryHandler) GetBalances(c *fiber.Ctx) error {
	out, err := h.query.GetAllBalances(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetBalance GET /api/stock/balances/:product_id
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	out, err := h.query.GetBalance(c.UserContext(), GetCompanyID(c), c.Params("product_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliar saldo materializado com o ledger
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconcileReportDTO
// @Router       /api/stock/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.query.Reconcile(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetReplenishmentList godoc
// @Summary      Sugestão de compras
// @Description  Produtos em ou abaixo do mínimo com quantidade sugerida,
//
//	ordenados por dias até a ruptura.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/stock/replenishment [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	out, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
