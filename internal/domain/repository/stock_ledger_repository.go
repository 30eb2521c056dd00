package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
)

// StockLedgerRepository define el puerto del ledger de stock por (asignación, marca, sku).
// Toda mutación de cantidad pasa por ApplyDelta.
type StockLedgerRepository interface {
	// Get devuelve la entrada o nil si no existe.
	Get(ctx context.Context, key entity.LedgerKey) (*entity.StockLedgerEntry, error)
	// GetForUpdate igual que Get pero bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, key entity.LedgerKey) (*entity.StockLedgerEntry, error)
	// ApplyDelta suma delta a la cantidad disponible de forma atómica y recalcula cajas y valor con los
	// datos de empaque/precio recibidos. Si la entrada no existe y createIfAbsent es false devuelve domain.ErrNotFound.
	ApplyDelta(ctx context.Context, key entity.LedgerKey, delta decimal.Decimal, caseUnitsNumber int, pricePerCase decimal.Decimal, createIfAbsent bool) (*entity.StockLedgerEntry, error)
	// Create inserta una entrada nueva (inicialización manual). domain.ErrDuplicate si ya existe.
	Create(ctx context.Context, entry *entity.StockLedgerEntry) error
	ListByStoreAssignment(ctx context.Context, storeAssignmentID string) ([]*entity.StockLedgerEntry, error)
}
