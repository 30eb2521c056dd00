package repository

import (
	"context"

	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
)

// StoreAssignmentRepository puerto de lectura de asignaciones de tienda (el CRUD vive fuera del ledger).
type StoreAssignmentRepository interface {
	// GetByID devuelve la asignación (incluidas las eliminadas lógicamente) o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.StoreAssignment, error)
}
