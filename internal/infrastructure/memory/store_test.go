package memory_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fieldstock-api/internal/domain"
	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
	"github.com/jhoicas/fieldstock-api/internal/domain/repository"
	"github.com/jhoicas/fieldstock-api/internal/infrastructure/memory"
)

var key = entity.LedgerKey{StoreAssignmentID: "sa-1", BrandName: "Cola", SKU: "500ml"}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

// ── ApplyDelta ──

func TestApplyDelta_CreaYRecalculaTotales(t *testing.T) {
	s := memory.NewStore()
	repo := memory.NewLedgerRepository(s)
	ctx := context.Background()

	_, err := repo.ApplyDelta(ctx, key, decimal.NewFromInt(10), 24, decimal.NewFromInt(1000), false)
	assert.ErrorIs(t, err, domain.ErrNotFound, "sin createIfAbsent no debe crear la entrada")

	e, err := repo.ApplyDelta(ctx, key, decimal.NewFromInt(240), 24, decimal.NewFromInt(1000), true)
	require.NoError(t, err)
	assert.True(t, e.AvailableStockQty.Equal(decimal.NewFromInt(240)))
	assert.True(t, e.TotalCase.Equal(decimal.NewFromInt(10)))
	assert.True(t, e.TotalValue.Equal(decimal.NewFromInt(10000)))

	e, err = repo.ApplyDelta(ctx, key, decimal.NewFromInt(-48), 24, decimal.NewFromInt(1000), false)
	require.NoError(t, err)
	assert.True(t, e.AvailableStockQty.Equal(decimal.NewFromInt(192)))
	assert.True(t, e.TotalCase.Equal(decimal.NewFromInt(8)))
}

// ── Transacciones ──

func TestTxRunner_RollbackDeshaceTodosLosCambios(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	ledger := memory.NewLedgerRepository(s)
	_, err := ledger.ApplyDelta(ctx, key, decimal.NewFromInt(100), 10, decimal.NewFromInt(5), true)
	require.NoError(t, err)

	boom := errors.New("fallo simulado")
	err = memory.NewTxRunner(s).Run(ctx, func(lr repository.StockLedgerRepository, sr repository.SaleRepository, _ repository.ShipmentRepository) error {
		require.NoError(t, sr.Create(ctx, &entity.Sale{ID: "s-1", StoreAssignmentID: key.StoreAssignmentID, BrandName: key.BrandName, SKU: key.SKU, Date: day("2024-03-01")}))
		_, err := lr.ApplyDelta(ctx, key, decimal.NewFromInt(-30), 10, decimal.NewFromInt(5), false)
		require.NoError(t, err)
		_, err = lr.ApplyDelta(ctx, entity.LedgerKey{StoreAssignmentID: "sa-1", BrandName: "Nueva", SKU: "1L"}, decimal.NewFromInt(5), 1, decimal.Zero, true)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	sale, err := memory.NewSaleRepository(s).GetByID(ctx, "s-1")
	require.NoError(t, err)
	assert.Nil(t, sale, "la venta no debe persistir tras el rollback")

	e, err := ledger.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, e.AvailableStockQty.Equal(decimal.NewFromInt(100)), "el ledger debe volver a su valor previo")

	list, err := ledger.ListByStoreAssignment(ctx, "sa-1")
	require.NoError(t, err)
	assert.Len(t, list, 1, "la entrada creada dentro de la tx debe desaparecer")
}

func TestTxRunner_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := memory.NewTxRunner(memory.NewStore()).Run(ctx, func(repository.StockLedgerRepository, repository.SaleRepository, repository.ShipmentRepository) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

// ── Ventas y envíos ──

func TestSaleRepository_DuplicadoYDeleteDoble(t *testing.T) {
	s := memory.NewStore()
	repo := memory.NewSaleRepository(s)
	ctx := context.Background()
	sale := &entity.Sale{ID: "s-1", StoreAssignmentID: key.StoreAssignmentID, BrandName: key.BrandName, SKU: key.SKU, Date: day("2024-03-01")}
	require.NoError(t, repo.Create(ctx, sale))

	dup := *sale
	dup.ID = "s-2"
	assert.ErrorIs(t, repo.Create(ctx, &dup), domain.ErrDuplicate)

	exists, err := repo.ExistsForDate(ctx, key, day("2024-03-01"))
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Delete(ctx, "s-1"))
	assert.ErrorIs(t, repo.Delete(ctx, "s-1"), domain.ErrNotFound, "el segundo delete no debe encontrar la venta")
}

func TestShipmentRepository_ListadoPorRangoYPagina(t *testing.T) {
	s := memory.NewStore()
	repo := memory.NewShipmentRepository(s)
	ctx := context.Background()
	for i, d := range []string{"2024-03-01", "2024-03-02", "2024-03-03", "2024-04-01"} {
		require.NoError(t, repo.Create(ctx, &entity.Shipment{
			ID: string(rune('a' + i)), StoreAssignmentID: "sa-1", BrandName: "Cola", SKU: "500ml", Date: day(d),
		}))
	}
	from, to := day("2024-03-01"), day("2024-03-31")
	list, err := repo.ListByStoreAssignment(ctx, "sa-1", &from, &to, 2, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID, "orden descendente por fecha")
	assert.Equal(t, "b", list[1].ID)

	list, err = repo.ListByStoreAssignment(ctx, "sa-1", &from, &to, 2, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)
}

// ── Catálogo ──

func TestCatalog_PutYRemove(t *testing.T) {
	s := memory.NewStore()
	s.PutBrand(entity.BrandConfig{InitiativeID: "ini-1", Name: "Cola", SKU: "500ml", CaseUnitsNumber: 24, PricePerCase: decimal.NewFromInt(1000)})
	s.PutBrand(entity.BrandConfig{InitiativeID: "ini-1", Name: "cola", SKU: "500ML", CaseUnitsNumber: 12, PricePerCase: decimal.NewFromInt(600)})

	catalog, err := memory.NewCatalogRepository(s).ListByInitiative(context.Background(), "ini-1")
	require.NoError(t, err)
	require.Len(t, catalog, 1, "misma marca/sku reemplaza la configuración")
	assert.Equal(t, 12, catalog[0].CaseUnitsNumber)

	s.RemoveBrand("ini-1", "Cola", "500ml")
	catalog, err = memory.NewCatalogRepository(s).ListByInitiative(context.Background(), "ini-1")
	require.NoError(t, err)
	assert.Empty(t, catalog)
}

func TestLoadSeed(t *testing.T) {
	s := memory.NewStore()
	assignments, brands, err := memory.LoadSeed(s, strings.NewReader(`{
		"store_assignments": [{"id": "sa-1", "initiative_id": "ini-1", "store_name": "Tienda Centro", "staff_id": "staff-1"}],
		"brands": [
			{"initiative_id": "ini-1", "brand_name": "Cola", "sku": "500ml", "case_units_number": 24, "price_per_case": "1000"},
			{"initiative_id": "ini-1", "brand_name": "Agua", "sku": "1L", "case_units_number": 12, "price_per_case": 500.5}
		]
	}`))
	require.NoError(t, err)
	assert.Equal(t, 1, assignments)
	assert.Equal(t, 2, brands)

	sa, err := memory.NewStoreAssignmentRepository(s).GetByID(context.Background(), "sa-1")
	require.NoError(t, err)
	require.NotNil(t, sa)
	assert.True(t, sa.IsActive())

	catalog, err := memory.NewCatalogRepository(s).ListByInitiative(context.Background(), "ini-1")
	require.NoError(t, err)
	b, ok := entity.FindBrand(catalog, "agua", "1l")
	require.True(t, ok)
	assert.True(t, b.PricePerCase.Equal(decimal.RequireFromString("500.5")))
}

func TestLoadSeed_Invalido(t *testing.T) {
	cases := map[string]string{
		"json roto":         `{"brands": [`,
		"campo desconocido": `{"stores": []}`,
		"falta staff_id":    `{"store_assignments": [{"id": "sa-1", "initiative_id": "ini-1"}]}`,
		"empaque cero":      `{"brands": [{"initiative_id": "ini-1", "brand_name": "Cola", "sku": "500ml", "case_units_number": 0, "price_per_case": "1"}]}`,
		"precio negativo":   `{"brands": [{"initiative_id": "ini-1", "brand_name": "Cola", "sku": "500ml", "case_units_number": 6, "price_per_case": "-1"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := memory.LoadSeed(memory.NewStore(), strings.NewReader(body))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
