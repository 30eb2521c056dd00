package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerKey identifica una entrada del ledger: (asignación de tienda, marca, sku).
type LedgerKey struct {
	StoreAssignmentID string
	BrandName         string
	SKU               string
}

// Normalize quita espacios externos de marca y sku.
func (k LedgerKey) Normalize() LedgerKey {
	return LedgerKey{
		StoreAssignmentID: strings.TrimSpace(k.StoreAssignmentID),
		BrandName:         strings.TrimSpace(k.BrandName),
		SKU:               strings.TrimSpace(k.SKU),
	}
}

// String devuelve una representación estable usada como clave de partición y en logs.
func (k LedgerKey) String() string {
	return k.StoreAssignmentID + "/" + k.BrandName + "/" + k.SKU
}

// StockLedgerEntry es la cantidad disponible autoritativa de una marca/SKU en una asignación de tienda.
// TotalCase y TotalValue se recalculan en cada escritura a partir de AvailableStockQty.
type StockLedgerEntry struct {
	ID                string
	StoreAssignmentID string
	BrandName         string
	SKU               string
	AvailableStockQty decimal.Decimal
	TotalCase         decimal.Decimal
	TotalValue        decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Key devuelve la clave del ledger de la entrada.
func (e *StockLedgerEntry) Key() LedgerKey {
	return LedgerKey{StoreAssignmentID: e.StoreAssignmentID, BrandName: e.BrandName, SKU: e.SKU}
}
