package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fieldstock-api/internal/application/inventory"
	"github.com/jhoicas/fieldstock-api/internal/domain"
	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
	"github.com/jhoicas/fieldstock-api/internal/domain/repository"
	"github.com/jhoicas/fieldstock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/fieldstock-api/pkg/config"
)

var (
	ledgerCols = []string{"id", "store_assignment_id", "brand_name", "sku", "available_stock_qty",
		"total_case", "total_value", "created_at", "updated_at"}
	colaKey = entity.LedgerKey{StoreAssignmentID: "sa-1", BrandName: "Cola", SKU: "500ml"}
)

// decimalArg compara decimales por valor y no por representación interna.
type decimalArg struct{ want decimal.Decimal }

func (d decimalArg) Match(v interface{}) bool {
	got, ok := v.(decimal.Decimal)
	return ok && got.Equal(d.want)
}

func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func ledgerRow(mock pgxmock.PgxPoolIface, qty, cases, value string) *pgxmock.Rows {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	return mock.NewRows(ledgerCols).AddRow("8b7a4c1e-0000-4000-8000-000000000001", "sa-1", "Cola", "500ml",
		dec(qty), dec(cases), dec(value), now, now)
}

// ── StockLedgerRepo ──

func TestStockLedgerRepo_ApplyDelta_UpdatesExistingEntry(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewStockLedgerRepository(mock)

	mock.ExpectQuery(`UPDATE stock_ledger`).
		WithArgs("sa-1", "Cola", "500ml", decimalArg{dec("-50")}, 24, decimalArg{dec("1000")}).
		WillReturnRows(ledgerRow(mock, "190", "7.9166666666666667", "7916.6666666666667"))

	e, err := repo.ApplyDelta(context.Background(), colaKey, dec("-50"), 24, dec("1000"), false)
	require.NoError(t, err)
	assert.True(t, e.AvailableStockQty.Equal(dec("190")))
	assert.Equal(t, "Cola", e.BrandName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockLedgerRepo_ApplyDelta_UpsertsWhenCreating(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewStockLedgerRepository(mock)

	mock.ExpectQuery(`INSERT INTO stock_ledger .* ON CONFLICT \(store_assignment_id, brand_name, sku\) DO UPDATE`).
		WithArgs(pgxmock.AnyArg(), "sa-1", "Cola", "500ml", decimalArg{dec("240")}, 24, decimalArg{dec("1000")}).
		WillReturnRows(ledgerRow(mock, "240", "10", "10000"))

	e, err := repo.ApplyDelta(context.Background(), colaKey, dec("240"), 24, dec("1000"), true)
	require.NoError(t, err)
	assert.True(t, e.TotalCase.Equal(dec("10")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockLedgerRepo_ApplyDelta_MissingEntryIsNotFound(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewStockLedgerRepository(mock)

	mock.ExpectQuery(`UPDATE stock_ledger`).
		WithArgs("sa-1", "Cola", "500ml", pgxmock.AnyArg(), 24, pgxmock.AnyArg()).
		WillReturnRows(mock.NewRows(ledgerCols))

	_, err := repo.ApplyDelta(context.Background(), colaKey, dec("-1"), 24, dec("1000"), false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockLedgerRepo_ApplyDelta_RejectsInvalidCaseUnits(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewStockLedgerRepository(mock)

	_, err := repo.ApplyDelta(context.Background(), colaKey, dec("1"), 0, dec("1000"), true)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet(), "no debe tocar la base")
}

func TestStockLedgerRepo_Get_ReturnsNilWhenAbsent(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewStockLedgerRepository(mock)

	mock.ExpectQuery(`SELECT .* FROM stock_ledger`).
		WithArgs("sa-1", "Cola", "500ml").
		WillReturnRows(mock.NewRows(ledgerCols))

	e, err := repo.Get(context.Background(), colaKey)
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestStockLedgerRepo_Create_DuplicateKey(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewStockLedgerRepository(mock)

	mock.ExpectExec(`INSERT INTO stock_ledger`).
		WithArgs(anyArgs(9)...).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &entity.StockLedgerEntry{
		ID: "8b7a4c1e-0000-4000-8000-000000000001", StoreAssignmentID: "sa-1", BrandName: "Cola", SKU: "500ml",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestStockLedgerRepo_ListByStoreAssignment(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewStockLedgerRepository(mock)

	mock.ExpectQuery(`SELECT .* FROM stock_ledger\s+WHERE store_assignment_id = \$1\s+ORDER BY brand_name, sku`).
		WithArgs("sa-1").
		WillReturnRows(ledgerRow(mock, "240", "10", "10000"))

	list, err := repo.ListByStoreAssignment(context.Background(), "sa-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, colaKey, list[0].Key())
}

// ── SaleRepo / ShipmentRepo ──

func TestSaleRepo_Delete(t *testing.T) {
	const id = "5f0c2a9e-0000-4000-8000-0000000000aa"

	t.Run("elimina una vez", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`DELETE FROM sales WHERE id = \$1`).WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		assert.NoError(t, postgres.NewSaleRepository(mock).Delete(context.Background(), id))
	})

	t.Run("segunda eliminación es NotFound", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`DELETE FROM sales WHERE id = \$1`).WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		assert.ErrorIs(t, postgres.NewSaleRepository(mock).Delete(context.Background(), id), domain.ErrNotFound)
	})

	t.Run("id mal formado no consulta", func(t *testing.T) {
		mock := newMock(t)
		assert.ErrorIs(t, postgres.NewSaleRepository(mock).Delete(context.Background(), "no-uuid"), domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSaleRepo_ExistsForDate(t *testing.T) {
	mock := newMock(t)
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("sa-1", "Cola", "500ml", day).
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := postgres.NewSaleRepository(mock).ExistsForDate(context.Background(), colaKey, day)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestShipmentRepo_CreateDuplicate(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`INSERT INTO shipments`).WithArgs(anyArgs(14)...).WillReturnError(&pgconn.PgError{Code: "23505"})

	err := postgres.NewShipmentRepository(mock).Create(context.Background(), &entity.Shipment{ID: "x"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestShipmentRepo_GetByID_Missing(t *testing.T) {
	mock := newMock(t)
	const id = "5f0c2a9e-0000-4000-8000-0000000000bb"
	mock.ExpectQuery(`SELECT .* FROM shipments WHERE id = \$1`).WithArgs(id).
		WillReturnRows(mock.NewRows([]string{"id"}))

	s, err := postgres.NewShipmentRepository(mock).GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, s)
}

// ── BrandCatalogRepo / StoreAssignmentRepo ──

func TestBrandCatalogRepo_ListByInitiative(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewBrandCatalogRepository(mock)

	mock.ExpectQuery(`SELECT .* FROM initiative_brands WHERE initiative_id = \$1`).
		WithArgs("ini-1").
		WillReturnRows(mock.NewRows([]string{"initiative_id", "brand_name", "sku", "case_units_number", "price_per_case"}).
			AddRow("ini-1", "Agua", "1L", 12, dec("500")).
			AddRow("ini-1", "Cola", "500ml", 24, dec("1000")))

	list, err := repo.ListByInitiative(context.Background(), "ini-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	b, ok := entity.FindBrand(list, "cola", "500ML")
	require.True(t, ok, "la búsqueda ignora mayúsculas")
	assert.Equal(t, 24, b.CaseUnitsNumber)
	assert.True(t, b.PricePerCase.Equal(dec("1000")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreAssignmentRepo_GetByID(t *testing.T) {
	cols := []string{"id", "initiative_id", "store_id", "store_name", "staff_id", "created_at", "deleted_at"}
	created := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	deleted := created.AddDate(0, 2, 0)

	t.Run("activa", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM store_assignments WHERE id = \$1`).
			WithArgs("sa-1").
			WillReturnRows(mock.NewRows(cols).AddRow("sa-1", "ini-1", "store-1", "Tienda Centro", "staff-1", created, (*time.Time)(nil)))

		sa, err := postgres.NewStoreAssignmentRepository(mock).GetByID(context.Background(), "sa-1")
		require.NoError(t, err)
		require.NotNil(t, sa)
		assert.Equal(t, "staff-1", sa.StaffID)
		assert.True(t, sa.IsActive())
	})

	t.Run("eliminada", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM store_assignments`).
			WithArgs("sa-2").
			WillReturnRows(mock.NewRows(cols).AddRow("sa-2", "ini-1", "store-2", "Tienda Norte", "staff-1", created, &deleted))

		sa, err := postgres.NewStoreAssignmentRepository(mock).GetByID(context.Background(), "sa-2")
		require.NoError(t, err)
		require.NotNil(t, sa)
		assert.False(t, sa.IsActive())
	})

	t.Run("inexistente", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM store_assignments`).
			WithArgs("sa-9").
			WillReturnRows(mock.NewRows(cols))

		sa, err := postgres.NewStoreAssignmentRepository(mock).GetByID(context.Background(), "sa-9")
		require.NoError(t, err)
		assert.Nil(t, sa)
	})
}

// ── TxRunner ──

func noopTx(repository.StockLedgerRepository, repository.SaleRepository, repository.ShipmentRepository) error {
	return nil
}

func TestTxRunner_Commits(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := postgres.NewTxRunner(mock).Run(context.Background(), noopTx)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunner_RollsBackOnError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := postgres.NewTxRunner(mock).Run(context.Background(),
		func(repository.StockLedgerRepository, repository.SaleRepository, repository.ShipmentRepository) error {
			return boom
		})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunner_SerializationFailureIsConflict(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03"} {
		t.Run(code, func(t *testing.T) {
			mock := newMock(t)
			mock.ExpectBegin()
			mock.ExpectQuery(`UPDATE stock_ledger`).WithArgs(anyArgs(6)...).WillReturnError(&pgconn.PgError{Code: code})
			mock.ExpectRollback()

			err := postgres.NewTxRunner(mock).Run(context.Background(),
				func(ledger repository.StockLedgerRepository, _ repository.SaleRepository, _ repository.ShipmentRepository) error {
					_, err := ledger.ApplyDelta(context.Background(), colaKey, dec("-1"), 24, dec("1000"), false)
					return err
				})
			assert.ErrorIs(t, err, domain.ErrConflict)
		})
	}
}

func TestTxRunner_CommitFailureIsConflict(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: "40001"})

	err := postgres.NewTxRunner(mock).Run(context.Background(), noopTx)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ── Schema ──

func TestEnsureSchema_AppliesScriptsInOrder(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS stock_ledger`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	applied, err := postgres.EnsureSchema(context.Background(), mock)
	require.NoError(t, err)
	assert.Equal(t, []string{"schema/001_stock_ledger.sql"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWire_FillsRepositories(t *testing.T) {
	mock := newMock(t)
	d := postgres.Wire(mock, inventory.Deps{})
	assert.NotNil(t, d.TxRunner)
	assert.NotNil(t, d.Ledger)
	assert.NotNil(t, d.Sales)
	assert.NotNil(t, d.Shipments)
	assert.NotNil(t, d.Stores)
	assert.NotNil(t, d.Catalog)
}

// ── Pool ──

func TestApplyRuntimeParams(t *testing.T) {
	params := map[string]string{}
	postgres.ApplyRuntimeParams(params, config.DBConfig{ApplicationName: "fieldstock-api", LockTimeout: 1500 * time.Millisecond})
	assert.Equal(t, map[string]string{"application_name": "fieldstock-api", "lock_timeout": "1500"}, params)

	params = map[string]string{}
	postgres.ApplyRuntimeParams(params, config.DBConfig{})
	assert.Empty(t, params, "sin valores no se fijan parámetros")
}
