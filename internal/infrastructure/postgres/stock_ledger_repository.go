package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldstock-api/internal/domain"
	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
	"github.com/jhoicas/fieldstock-api/internal/domain/repository"
)

var _ repository.StockLedgerRepository = (*StockLedgerRepo)(nil)

const ledgerColumns = `id, store_assignment_id, brand_name, sku, available_stock_qty, total_case, total_value, created_at, updated_at`

// applyDeltaSQL suma el delta en la misma sentencia que recalcula cajas y valor: no hay
// lectura previa que pueda quedar obsoleta.
const applyDeltaSQL = `
	UPDATE stock_ledger
	SET available_stock_qty = available_stock_qty + $4::numeric,
	    total_case          = (available_stock_qty + $4::numeric) / $5::integer,
	    total_value         = ((available_stock_qty + $4::numeric) / $5::integer) * $6::numeric,
	    updated_at          = now()
	WHERE store_assignment_id = $1 AND brand_name = $2 AND sku = $3
	RETURNING ` + ledgerColumns

const upsertDeltaSQL = `
	INSERT INTO stock_ledger (` + ledgerColumns + `)
	VALUES ($1, $2, $3, $4, $5::numeric, $5::numeric / $6::integer, ($5::numeric / $6::integer) * $7::numeric, now(), now())
	ON CONFLICT (store_assignment_id, brand_name, sku) DO UPDATE
	SET available_stock_qty = stock_ledger.available_stock_qty + EXCLUDED.available_stock_qty,
	    total_case          = (stock_ledger.available_stock_qty + EXCLUDED.available_stock_qty) / $6::integer,
	    total_value         = ((stock_ledger.available_stock_qty + EXCLUDED.available_stock_qty) / $6::integer) * $7::numeric,
	    updated_at          = now()
	RETURNING ` + ledgerColumns

// StockLedgerRepo implementación de StockLedgerRepository sobre PostgreSQL (usable con pool o tx).
type StockLedgerRepo struct {
	q Querier
}

// NewStockLedgerRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewStockLedgerRepository(q Querier) *StockLedgerRepo {
	return &StockLedgerRepo{q: q}
}

func scanLedger(row pgx.Row) (*entity.StockLedgerEntry, error) {
	var e entity.StockLedgerEntry
	err := row.Scan(&e.ID, &e.StoreAssignmentID, &e.BrandName, &e.SKU,
		&e.AvailableStockQty, &e.TotalCase, &e.TotalValue, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Get obtiene la entrada del ledger; nil si no existe.
func (r *StockLedgerRepo) Get(ctx context.Context, key entity.LedgerKey) (*entity.StockLedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM stock_ledger
		WHERE store_assignment_id = $1 AND brand_name = $2 AND sku = $3`
	e, err := scanLedger(r.q.QueryRow(ctx, query, key.StoreAssignmentID, key.BrandName, key.SKU))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock ledger: %w", err)
	}
	return e, nil
}

// GetForUpdate obtiene la entrada y bloquea la fila (SELECT FOR UPDATE).
func (r *StockLedgerRepo) GetForUpdate(ctx context.Context, key entity.LedgerKey) (*entity.StockLedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM stock_ledger
		WHERE store_assignment_id = $1 AND brand_name = $2 AND sku = $3
		FOR UPDATE`
	e, err := scanLedger(r.q.QueryRow(ctx, query, key.StoreAssignmentID, key.BrandName, key.SKU))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock ledger for update: %w", err)
	}
	return e, nil
}

// ApplyDelta incrementa (o decrementa) la cantidad disponible en una sola sentencia y devuelve la fila resultante.
func (r *StockLedgerRepo) ApplyDelta(ctx context.Context, key entity.LedgerKey, delta decimal.Decimal, caseUnitsNumber int, pricePerCase decimal.Decimal, createIfAbsent bool) (*entity.StockLedgerEntry, error) {
	if caseUnitsNumber < 1 {
		return nil, fmt.Errorf("%w: case_units_number debe ser >= 1", domain.ErrInvalidInput)
	}
	var row pgx.Row
	if createIfAbsent {
		row = r.q.QueryRow(ctx, upsertDeltaSQL, uuid.New().String(), key.StoreAssignmentID, key.BrandName, key.SKU,
			delta, caseUnitsNumber, pricePerCase)
	} else {
		row = r.q.QueryRow(ctx, applyDeltaSQL, key.StoreAssignmentID, key.BrandName, key.SKU,
			delta, caseUnitsNumber, pricePerCase)
	}
	e, err := scanLedger(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: entrada del ledger %s", domain.ErrNotFound, key)
		}
		return nil, fmt.Errorf("apply stock delta: %w", err)
	}
	return e, nil
}

// Create inserta una entrada nueva (inicialización manual).
func (r *StockLedgerRepo) Create(ctx context.Context, e *entity.StockLedgerEntry) error {
	query := `INSERT INTO stock_ledger (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, e.ID, e.StoreAssignmentID, e.BrandName, e.SKU,
		e.AvailableStockQty, e.TotalCase, e.TotalValue, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create stock ledger: %w", err)
	}
	return nil
}

// ListByStoreAssignment lista las entradas de una asignación ordenadas por marca y sku.
func (r *StockLedgerRepo) ListByStoreAssignment(ctx context.Context, storeAssignmentID string) ([]*entity.StockLedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM stock_ledger
		WHERE store_assignment_id = $1
		ORDER BY brand_name, sku`
	rows, err := r.q.Query(ctx, query, storeAssignmentID)
	if err != nil {
		return nil, fmt.Errorf("list stock ledger: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockLedgerEntry
	for rows.Next() {
		e, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock ledger: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
