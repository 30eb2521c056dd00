package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
	"github.com/jhoicas/fieldstock-api/internal/domain/repository"
)

var _ repository.StoreAssignmentRepository = (*StoreAssignmentRepo)(nil)

// StoreAssignmentRepo lectura de asignaciones de tienda.
type StoreAssignmentRepo struct {
	q Querier
}

// NewStoreAssignmentRepository construye el adaptador.
func NewStoreAssignmentRepository(q Querier) *StoreAssignmentRepo {
	return &StoreAssignmentRepo{q: q}
}

// GetByID obtiene la asignación (incluidas las eliminadas); nil si no existe.
func (r *StoreAssignmentRepo) GetByID(ctx context.Context, id string) (*entity.StoreAssignment, error) {
	query := `
		SELECT id, initiative_id, store_id, store_name, staff_id, created_at, deleted_at
		FROM store_assignments WHERE id = $1`
	var a entity.StoreAssignment
	err := r.q.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.InitiativeID, &a.StoreID, &a.StoreName, &a.StaffID, &a.CreatedAt, &a.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get store assignment: %w", err)
	}
	return &a, nil
}
