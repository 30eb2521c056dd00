package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/fieldstock-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isRetryable indica si la transacción puede reintentarse completa:
// serialization_failure (40001), deadlock_detected (40P01) o lock_not_available (55P03).
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}

// asConflict envuelve los errores reintentables en domain.ErrConflict; el resto se devuelve igual.
func asConflict(op string, err error) error {
	if err != nil && isRetryable(err) {
		return fmt.Errorf("%w: %s: %v", domain.ErrConflict, op, err)
	}
	return err
}

// validID evita consultar columnas UUID con identificadores mal formados (que Postgres rechaza con 22P02).
func validID(id string) bool {
	return uuid.Validate(id) == nil
}
