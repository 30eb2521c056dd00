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

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, initiative_id, store_assignment_id, brand_name, sku, units_sold, date, total_case, total_value,
	comment, state, created_by, created_at, updated_at`

// SaleRepo implementación de SaleRepository sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(&s.ID, &s.InitiativeID, &s.StoreAssignmentID, &s.BrandName, &s.SKU, &s.UnitsSold, &s.Date,
		&s.TotalCase, &s.TotalValue, &s.Comment, &s.State, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste la venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query, s.ID, s.InitiativeID, s.StoreAssignmentID, s.BrandName, s.SKU, s.UnitsSold, s.Date,
		s.TotalCase, s.TotalValue, s.Comment, s.State, s.CreatedBy, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create sale: %w", err)
	}
	return nil
}

// GetByID obtiene una venta; nil si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	if !validID(id) {
		return nil, nil
	}
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

// ExistsForDate indica si ya hay una venta para (clave, fecha).
func (r *SaleRepo) ExistsForDate(ctx context.Context, key entity.LedgerKey, date time.Time) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM sales
		WHERE store_assignment_id = $1 AND brand_name = $2 AND sku = $3 AND date = $4)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, key.StoreAssignmentID, key.BrandName, key.SKU, date).Scan(&exists); err != nil {
		return false, fmt.Errorf("sale exists for date: %w", err)
	}
	return exists, nil
}

// UpdateDetails actualiza comentario y estado.
func (r *SaleRepo) UpdateDetails(ctx context.Context, s *entity.Sale) error {
	tag, err := r.q.Exec(ctx, `UPDATE sales SET comment = $2, state = $3, updated_at = $4 WHERE id = $1`,
		s.ID, s.Comment, s.State, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la venta; ErrNotFound si ya no existía.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByStoreAssignment lista ventas de la asignación, más recientes primero.
func (r *SaleRepo) ListByStoreAssignment(ctx context.Context, storeAssignmentID string, from, to *time.Time, limit, offset int) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales
		WHERE store_assignment_id = $1
		  AND ($2::date IS NULL OR date >= $2::date)
		  AND ($3::date IS NULL OR date <= $3::date)
		ORDER BY date DESC, created_at DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, storeAssignmentID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
