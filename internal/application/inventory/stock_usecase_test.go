package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fieldstock-api/internal/application/inventory"
	"github.com/jhoicas/fieldstock-api/internal/domain"
	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
)

func TestStockInitialize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := inventory.InitializeStockInput{StoreAssignmentID: storeID, BrandName: "cola", SKU: "500ml", AvailableStockQty: dec("48")}

	_, err := f.stock.Initialize(ctx, owner, in)
	assert.ErrorIs(t, err, domain.ErrForbidden, "un promotor no puede inicializar stock")

	resp, err := f.stock.Initialize(ctx, admin, in)
	require.NoError(t, err)
	assert.Equal(t, "Cola", resp.BrandName)
	assert.True(t, resp.TotalCase.Equal(dec("2")))
	assert.True(t, resp.TotalValue.Equal(dec("2000")))
	assert.Equal(t, []string{inventory.EventStockInitialized}, f.pub.types())

	_, err = f.stock.Initialize(ctx, admin, in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.sell("48", "2024-03-01")
	assert.NoError(t, err, "una venta puede consumir el stock inicial")

	in.AvailableStockQty = dec("-1")
	in.SKU = "1L"
	_, err = f.stock.Initialize(ctx, admin, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockGetYList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.stock.Get(ctx, colaKey)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.ship(t, "1", "2024-03-01")
	got, err := f.stock.Get(ctx, entity.LedgerKey{StoreAssignmentID: storeID, BrandName: " Cola ", SKU: "500ml"})
	require.NoError(t, err)
	assert.True(t, got.AvailableStockQty.Equal(dec("24")))

	list, err := f.stock.ListByStoreAssignment(ctx, storeID)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	_, err = f.stock.Get(ctx, entity.LedgerKey{StoreAssignmentID: storeID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockGet_UsaEscrituraDelCatalogo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.ship(t, "2", "2024-03-01")

	got, err := f.stock.Get(ctx, entity.LedgerKey{StoreAssignmentID: storeID, BrandName: "COLA", SKU: "500ML"})
	require.NoError(t, err)
	assert.Equal(t, "Cola", got.BrandName)
	assert.Equal(t, "500ml", got.SKU)
	assert.True(t, got.AvailableStockQty.Equal(dec("48")))

	_, err = f.stock.Get(ctx, entity.LedgerKey{StoreAssignmentID: "sa-9", BrandName: "Cola", SKU: "500ml"})
	assert.ErrorIs(t, err, domain.ErrNotFound, "asignación inexistente")
}
