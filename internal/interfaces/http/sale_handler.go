package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fieldstock-api/internal/application/dto"
	"github.com/jhoicas/fieldstock-api/internal/application/inventory"
	"github.com/jhoicas/fieldstock-api/pkg/logger"
)

// SaleHandler maneja las peticiones HTTP de ventas (protegido).
type SaleHandler struct {
	uc  *inventory.SaleUseCase
	log *logger.Logger
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *inventory.SaleUseCase, log *logger.Logger) *SaleHandler {
	return &SaleHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Inserta la venta y descuenta las unidades del ledger de la tienda en una sola transacción.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la asignación de tienda"
// @Param        body  body  dto.CreateSaleRequest  true  "brand_name, sku, units_sold, date (YYYY-MM-DD)"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/store-assignments/{id}/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	date, err := parseDay("date", in.Date)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), inventory.CreateSaleInput{
		StoreAssignmentID: c.Params("id"),
		BrandName:         in.BrandName,
		SKU:               in.SKU,
		UnitsSold:         in.UnitsSold,
		Date:              date,
		Comment:           in.Comment,
		State:             in.State,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar ventas de una tienda
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la asignación de tienda"
// @Param        from    query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to      query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.SaleListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/store-assignments/{id}/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	p := pageQuery(c)
	out, err := h.uc.ListByStoreAssignment(c.UserContext(), c.Params("id"), from, to, p.Limit, p.Offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener venta por ID
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar comentario o estado de una venta
// @Description  No modifica unidades, fecha, marca ni sku.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la venta"
// @Param        body  body  dto.UpdateSaleRequest  true  "comment, state"
// @Success      200   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [patch]
func (h *SaleHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSaleRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), c.Params("id"),
		inventory.UpdateSaleInput{Comment: in.Comment, State: in.State})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar venta
// @Description  Elimina la venta y devuelve sus unidades al ledger con el empaque y precio vigentes.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.DeletedEventResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [delete]
func (h *SaleHandler) Delete(c *fiber.Ctx) error {
	out, err := h.uc.Delete(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
