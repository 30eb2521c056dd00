package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/fieldstock-api/internal/domain"
	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
	"github.com/jhoicas/fieldstock-api/internal/domain/repository"
)

var _ repository.ShipmentRepository = (*ShipmentRepo)(nil)

const shipmentColumns = `id, initiative_id, store_assignment_id, brand_name, sku, total_case, units_shipped, total_value, date,
	comment, source, created_by, created_at, updated_at`

// ShipmentRepo implementación de ShipmentRepository sobre PostgreSQL.
type ShipmentRepo struct {
	q Querier
}

// NewShipmentRepository construye el adaptador de envíos. Pasar pool o tx (Querier).
func NewShipmentRepository(q Querier) *ShipmentRepo {
	return &ShipmentRepo{q: q}
}

func scanShipment(row pgx.Row) (*entity.Shipment, error) {
	var s entity.Shipment
	err := row.Scan(&s.ID, &s.InitiativeID, &s.StoreAssignmentID, &s.BrandName, &s.SKU, &s.TotalCase, &s.UnitsShipped,
		&s.TotalValue, &s.Date, &s.Comment, &s.Source, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste el envío.
func (r *ShipmentRepo) Create(ctx context.Context, s *entity.Shipment) error {
	query := `INSERT INTO shipments (` + shipmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query, s.ID, s.InitiativeID, s.StoreAssignmentID, s.BrandName, s.SKU, s.TotalCase, s.UnitsShipped,
		s.TotalValue, s.Date, s.Comment, s.Source, s.CreatedBy, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create shipment: %w", err)
	}
	return nil
}

// GetByID obtiene un envío; nil si no existe.
func (r *ShipmentRepo) GetByID(ctx context.Context, id string) (*entity.Shipment, error) {
	if !validID(id) {
		return nil, nil
	}
	s, err := scanShipment(r.q.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	return s, nil
}

// ExistsForDate indica si ya hay un envío para (clave, fecha).
func (r *ShipmentRepo) ExistsForDate(ctx context.Context, key entity.LedgerKey, date time.Time) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM shipments
		WHERE store_assignment_id = $1 AND brand_name = $2 AND sku = $3 AND date = $4)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, key.StoreAssignmentID, key.BrandName, key.SKU, date).Scan(&exists); err != nil {
		return false, fmt.Errorf("shipment exists for date: %w", err)
	}
	return exists, nil
}

// UpdateDetails actualiza el comentario.
func (r *ShipmentRepo) UpdateDetails(ctx context.Context, s *entity.Shipment) error {
	tag, err := r.q.Exec(ctx, `UPDATE shipments SET comment = $2, updated_at = $3 WHERE id = $1`,
		s.ID, s.Comment, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update shipment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el envío; ErrNotFound si ya no existía.
func (r *ShipmentRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM shipments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete shipment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByStoreAssignment lista envíos de la asignación, más recientes primero.
func (r *ShipmentRepo) ListByStoreAssignment(ctx context.Context, storeAssignmentID string, from, to *time.Time, limit, offset int) ([]*entity.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments
		WHERE store_assignment_id = $1
		  AND ($2::date IS NULL OR date >= $2::date)
		  AND ($3::date IS NULL OR date <= $3::date)
		ORDER BY date DESC, created_at DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, storeAssignmentID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()

	var list []*entity.Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
