package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateShipmentRequest body para POST /api/store-assignments/:id/shipments.
type CreateShipmentRequest struct {
	BrandName string          `json:"brand_name" validate:"required,max=200"`
	SKU       string          `json:"sku" validate:"required,max=100"`
	TotalCase decimal.Decimal `json:"total_case"`
	Date      string          `json:"date" validate:"required"` // YYYY-MM-DD
	Comment   string          `json:"comment" validate:"max=500"`
}

// UpdateShipmentRequest body para PATCH /api/shipments/:id.
type UpdateShipmentRequest struct {
	Comment *string `json:"comment" validate:"omitempty,max=500"`
}

// ShipmentResponse salida de un envío.
type ShipmentResponse struct {
	ID                string               `json:"id"`
	InitiativeID      string               `json:"initiative_id"`
	StoreAssignmentID string               `json:"store_assignment_id"`
	BrandName         string               `json:"brand_name"`
	SKU               string               `json:"sku"`
	TotalCase         decimal.Decimal      `json:"total_case"`
	UnitsShipped      decimal.Decimal      `json:"units_shipped"`
	TotalValue        decimal.Decimal      `json:"total_value"`
	Date              string               `json:"date"`
	Comment           string               `json:"comment"`
	Source            string               `json:"source"`
	CreatedBy         string               `json:"created_by"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
	Ledger            *LedgerEntryResponse `json:"ledger,omitempty"`
}

// ShipmentListResponse lista paginada de envíos.
type ShipmentListResponse struct {
	Items []ShipmentResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// Estados de una fila de la carga masiva.
const (
	BulkRowAccepted = "accepted"
	BulkRowSkipped  = "skipped" // validación o regla de negocio
	BulkRowFailed   = "failed"  // error de infraestructura
)

// BulkRowOutcome resultado de una fila del archivo.
type BulkRowOutcome struct {
	Line       int    `json:"line"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	BrandName  string `json:"brand_name,omitempty"`
	SKU        string `json:"sku,omitempty"`
	ShipmentID string `json:"shipment_id,omitempty"`
}

// BulkShipmentReport salida de POST /api/store-assignments/:id/shipments/bulk.
type BulkShipmentReport struct {
	Total    int              `json:"total"`
	Accepted int              `json:"accepted"`
	Skipped  int              `json:"skipped"`
	Failed   int              `json:"failed"`
	Archived string           `json:"archived,omitempty"` // ubicación del archivo original, si se archivó
	Rows     []BulkRowOutcome `json:"rows"`
}
