package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntryResponse salida de una entrada del ledger de stock.
type LedgerEntryResponse struct {
	ID                string          `json:"id"`
	StoreAssignmentID string          `json:"store_assignment_id"`
	BrandName         string          `json:"brand_name"`
	SKU               string          `json:"sku"`
	AvailableStockQty decimal.Decimal `json:"available_stock_qty"`
	TotalCase         decimal.Decimal `json:"total_case"`  // AvailableStockQty / unidades por caja
	TotalValue        decimal.Decimal `json:"total_value"` // TotalCase * precio por caja
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// LedgerListResponse stock de una asignación de tienda.
type LedgerListResponse struct {
	Items []LedgerEntryResponse `json:"items"`
}

// InitializeStockRequest body para POST /api/store-assignments/:id/stock (carga manual de stock inicial).
type InitializeStockRequest struct {
	BrandName         string          `json:"brand_name" validate:"required,max=200"`
	SKU               string          `json:"sku" validate:"required,max=100"`
	AvailableStockQty decimal.Decimal `json:"available_stock_qty"`
}

// DeletedEventResponse salida de DELETE de una venta o envío: id eliminado y ledger resultante.
type DeletedEventResponse struct {
	ID     string               `json:"id"`
	Ledger *LedgerEntryResponse `json:"ledger,omitempty"`
}
