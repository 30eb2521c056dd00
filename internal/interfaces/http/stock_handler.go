package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fieldstock-api/internal/application/dto"
	"github.com/jhoicas/fieldstock-api/internal/application/inventory"
	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
	"github.com/jhoicas/fieldstock-api/pkg/logger"
)

// StockHandler consultas del ledger e inicialización manual de stock.
type StockHandler struct {
	uc  *inventory.StockUseCase
	log *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockUseCase, log *logger.Logger) *StockHandler {
	return &StockHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Stock de una tienda
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la asignación de tienda"
// @Success      200  {object}  dto.LedgerListResponse
// @Router       /api/store-assignments/{id}/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListByStoreAssignment(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetEntry godoc
// @Summary      Entrada del ledger por marca y sku
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id          path   string  true  "ID de la asignación de tienda"
// @Param        brand_name  query  string  true  "Marca"
// @Param        sku         query  string  true  "SKU"
// @Success      200  {object}  dto.LedgerEntryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/store-assignments/{id}/stock/entry [get]
func (h *StockHandler) GetEntry(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), entity.LedgerKey{
		StoreAssignmentID: c.Params("id"),
		BrandName:         c.Query("brand_name"),
		SKU:               c.Query("sku"),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Initialize godoc
// @Summary      Inicializar stock
// @Description  Crea la entrada del ledger con una cantidad inicial. Solo admin o supervisor.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la asignación de tienda"
// @Param        body  body  dto.InitializeStockRequest  true  "brand_name, sku, available_stock_qty"
// @Success      201   {object}  dto.LedgerEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/store-assignments/{id}/stock [post]
func (h *StockHandler) Initialize(c *fiber.Ctx) error {
	var in dto.InitializeStockRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Initialize(c.UserContext(), GetActor(c), inventory.InitializeStockInput{
		StoreAssignmentID: c.Params("id"),
		BrandName:         in.BrandName,
		SKU:               in.SKU,
		AvailableStockQty: in.AvailableStockQty,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
