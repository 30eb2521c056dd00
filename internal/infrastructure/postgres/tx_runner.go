package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/fieldstock-api/internal/application/inventory"
	"github.com/jhoicas/fieldstock-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	db TxBeginner
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(db TxBeginner) *TxRunner {
	return &TxRunner{db: db}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los fallos de serialización o deadlock se devuelven como domain.ErrConflict.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ledgerRepo repository.StockLedgerRepository,
	saleRepo repository.SaleRepository,
	shipmentRepo repository.ShipmentRepository,
) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewStockLedgerRepository(tx), NewSaleRepository(tx), NewShipmentRepository(tx)); err != nil {
		return asConflict("transaction", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return asConflict("commit", fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}
