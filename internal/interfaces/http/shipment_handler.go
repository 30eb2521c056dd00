package http

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fieldstock-api/internal/application/dto"
	"github.com/jhoicas/fieldstock-api/internal/application/inventory"
	"github.com/jhoicas/fieldstock-api/pkg/logger"
)

// ShipmentHandler maneja las peticiones HTTP de envíos, incluida la carga masiva (protegido).
type ShipmentHandler struct {
	uc           *inventory.ShipmentUseCase
	bulk         *inventory.BulkShipmentUseCase
	maxFileBytes int64
	log          *logger.Logger
}

// NewShipmentHandler construye el handler. maxFileBytes acota el archivo de la carga masiva.
func NewShipmentHandler(uc *inventory.ShipmentUseCase, bulk *inventory.BulkShipmentUseCase, maxFileBytes int64, log *logger.Logger) *ShipmentHandler {
	return &ShipmentHandler{uc: uc, bulk: bulk, maxFileBytes: maxFileBytes, log: log}
}

// Create godoc
// @Summary      Registrar envío
// @Description  Inserta el envío (en cajas) y suma las unidades al ledger; crea la entrada si no existe.
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la asignación de tienda"
// @Param        body  body  dto.CreateShipmentRequest  true  "brand_name, sku, total_case, date (YYYY-MM-DD)"
// @Success      201   {object}  dto.ShipmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/store-assignments/{id}/shipments [post]
func (h *ShipmentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateShipmentRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	date, err := parseDay("date", in.Date)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), inventory.CreateShipmentInput{
		StoreAssignmentID: c.Params("id"),
		BrandName:         in.BrandName,
		SKU:               in.SKU,
		TotalCase:         in.TotalCase,
		Date:              date,
		Comment:           in.Comment,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Bulk godoc
// @Summary      Carga masiva de envíos
// @Description  Archivo tabular (CSV) con columnas brandName, sku, caseUnitsNumber, pricePerCase, totalCase, date.
// @Description  Cada fila se registra de forma independiente; el reporte indica el resultado por línea.
// @Tags         shipments
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "ID de la asignación de tienda"
// @Param        file  formData  file    true  "Archivo CSV"
// @Success      200   {object}  dto.BulkShipmentReport
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/store-assignments/{id}/shipments/bulk [post]
func (h *ShipmentHandler) Bulk(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "MISSING_FILE", "se requiere el campo multipart 'file'")
	}
	if h.maxFileBytes > 0 && fh.Size > h.maxFileBytes {
		return badRequest(c, "FILE_TOO_LARGE", fmt.Sprintf("el archivo supera %d bytes", h.maxFileBytes))
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, h.log, fmt.Errorf("abrir archivo: %w", err))
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return respondError(c, h.log, fmt.Errorf("leer archivo: %w", err))
	}

	report, err := h.bulk.Ingest(c.UserContext(), GetActor(c), inventory.BulkShipmentInput{
		StoreAssignmentID: c.Params("id"),
		FileName:          fh.Filename,
		ContentType:       fh.Header.Get("Content-Type"),
		Data:              data,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(report)
}

// List godoc
// @Summary      Listar envíos de una tienda
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la asignación de tienda"
// @Param        from    query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to      query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.ShipmentListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/store-assignments/{id}/shipments [get]
func (h *ShipmentHandler) List(c *fiber.Ctx) error {
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
// @Summary      Obtener envío por ID
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del envío"
// @Success      200  {object}  dto.ShipmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id} [get]
func (h *ShipmentHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar comentario de un envío
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del envío"
// @Param        body  body  dto.UpdateShipmentRequest  true  "comment"
// @Success      200   {object}  dto.ShipmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/shipments/{id} [patch]
func (h *ShipmentHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateShipmentRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), c.Params("id"), inventory.UpdateShipmentInput{Comment: in.Comment})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar envío
// @Description  Elimina el envío y resta sus unidades del ledger con el empaque y precio vigentes.
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del envío"
// @Success      200  {object}  dto.DeletedEventResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id} [delete]
func (h *ShipmentHandler) Delete(c *fiber.Ctx) error {
	out, err := h.uc.Delete(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
