package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale registra unidades vendidas en un día para una marca/SKU de una tienda.
// TotalCase y TotalValue se calculan una sola vez al crear, con el catálogo vigente en ese instante.
type Sale struct {
	ID                string
	InitiativeID      string
	StoreAssignmentID string
	BrandName         string
	SKU               string
	UnitsSold         decimal.Decimal
	Date              time.Time // día calendario (UTC, sin hora)
	TotalCase         decimal.Decimal
	TotalValue        decimal.Decimal
	Comment           string
	State             string
	CreatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Key devuelve la clave del ledger afectada por la venta.
func (s *Sale) Key() LedgerKey {
	return LedgerKey{StoreAssignmentID: s.StoreAssignmentID, BrandName: s.BrandName, SKU: s.SKU}
}
