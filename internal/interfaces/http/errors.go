package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fieldstock-api/internal/application/dto"
	"github.com/jhoicas/fieldstock-api/internal/domain"
	"github.com/jhoicas/fieldstock-api/pkg/logger"
)

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrDuplicate, fiber.StatusBadRequest, "DUPLICATE"},
	{domain.ErrUnknownBrand, fiber.StatusBadRequest, "UNKNOWN_BRAND"},
	{domain.ErrInsufficientStock, fiber.StatusBadRequest, "INSUFFICIENT_STOCK"},
	{domain.ErrUnsupportedFile, fiber.StatusBadRequest, "UNSUPPORTED_FILE"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrBrandUnresolvable, fiber.StatusUnprocessableEntity, "BRAND_UNRESOLVABLE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
}

// respondError traduce errores de dominio a dto.ErrorResponse. Los errores no reconocidos se
// registran y se responden como 500 sin exponer el detalle.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return badRequest(c, reqErr.code, reqErr.message)
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	log.Ctx(c.UserContext()).Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}
