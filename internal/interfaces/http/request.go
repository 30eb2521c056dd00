package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fieldstock-api/internal/application/dto"
	"github.com/jhoicas/fieldstock-api/internal/domain/stock"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// requestError error de forma de la petición (cuerpo, query o path); se responde como 400.
type requestError struct {
	code    string
	message string
}

func (e *requestError) Error() string { return e.message }

func invalid(message string) error {
	return &requestError{code: "VALIDATION", message: message}
}

// parseBody decodifica el JSON y valida los tags `validate`.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return &requestError{code: "INVALID_BODY", message: "cuerpo inválido"}
	}
	if err := validate.Struct(out); err != nil {
		return invalid(validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+": "+fe.Tag())
	}
	return strings.Join(parts, "; ")
}

// parseDay convierte un campo de fecha "YYYY-MM-DD".
func parseDay(field, value string) (time.Time, error) {
	d, err := stock.ParseDay(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, invalid(fmt.Sprintf("%s: formato inválido, se espera YYYY-MM-DD", field))
	}
	return d, nil
}

// dateRange lee los filtros opcionales ?from= y ?to=.
func dateRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &from}, {"to", &to}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		d, err := parseDay(p.name, raw)
		if err != nil {
			return nil, nil, err
		}
		*p.dst = &d
	}
	return from, to, nil
}

// pageQuery lee ?limit= y ?offset= normalizados.
func pageQuery(c *fiber.Ctx) dto.PageRequest {
	return dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}.Normalize()
}
