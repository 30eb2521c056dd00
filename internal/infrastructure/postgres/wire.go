package postgres

import "github.com/jhoicas/fieldstock-api/internal/application/inventory"

// DB es lo que necesita Wire: consultas fuera de transacción y apertura de transacciones.
type DB interface {
	Querier
	TxBeginner
}

// Wire completa d con el TxRunner y los repositorios PostgreSQL sobre db (normalmente el pool).
func Wire(db DB, d inventory.Deps) inventory.Deps {
	d.TxRunner = NewTxRunner(db)
	d.Ledger = NewStockLedgerRepository(db)
	d.Sales = NewSaleRepository(db)
	d.Shipments = NewShipmentRepository(db)
	d.Stores = NewStoreAssignmentRepository(db)
	d.Catalog = NewBrandCatalogRepository(db)
	return d
}
