package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/fieldstock-api/internal/application/dto"
	"github.com/jhoicas/fieldstock-api/pkg/logger"
)

var httpTracer = otel.Tracer("github.com/jhoicas/fieldstock-api/internal/interfaces/http")

// RequestLogger abre un span por petición y registra método, ruta, estado, latencia y request id.
// Debe ir después de requestid.New().
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		ctx, span := httpTracer.Start(c.UserContext(), c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.SetUserContext(ctx)

		chainErr := c.Next()
		if chainErr != nil {
			// se resuelve aquí para registrar el estado final de la respuesta.
			_ = c.App().ErrorHandler(c, chainErr)
		}

		status := c.Response().StatusCode()
		route := c.Route().Path
		span.SetName(c.Method() + " " + route)
		span.SetAttributes(
			attribute.String("http.request.method", c.Method()),
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", status),
		)
		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, fiber.ErrInternalServerError.Message)
		}

		requestID, _ := c.Locals("requestid").(string)
		reqLog := log.Ctx(ctx)
		ev := reqLog.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = reqLog.Error()
		case status >= fiber.StatusBadRequest:
			ev = reqLog.Warn()
		}
		ev.Str("request_id", requestID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("http request")
		return nil
	}
}

// UploadLimiter limita las cargas masivas por usuario. storage nil = memoria local del proceso;
// con Redis el límite se comparte entre réplicas. Debe ir después de AuthMiddleware.
func UploadLimiter(perMinute int, storage fiber.Storage) fiber.Handler {
	if perMinute < 1 {
		perMinute = 1
	}
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			if id := GetUserID(c); id != "" {
				return "bulk:" + id
			}
			return "bulk-ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: "demasiadas cargas masivas, intente en un minuto",
			})
		},
	})
}
