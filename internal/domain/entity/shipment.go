package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Origen del envío.
const (
	ShipmentSourceSingle = "single"
	ShipmentSourceBulk   = "bulk"
)

// Shipment registra la reposición de stock (en cajas) de una marca/SKU en una tienda para un día.
type Shipment struct {
	ID                string
	InitiativeID      string
	StoreAssignmentID string
	BrandName         string
	SKU               string
	TotalCase         decimal.Decimal // entrada
	UnitsShipped      decimal.Decimal // TotalCase * CaseUnitsNumber
	TotalValue        decimal.Decimal // TotalCase * PricePerCase
	Date              time.Time
	Comment           string
	Source            string
	CreatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Key devuelve la clave del ledger afectada por el envío.
func (s *Shipment) Key() LedgerKey {
	return LedgerKey{StoreAssignmentID: s.StoreAssignmentID, BrandName: s.BrandName, SKU: s.SKU}
}
