package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleRequest body para POST /api/store-assignments/:id/sales.
type CreateSaleRequest struct {
	BrandName string          `json:"brand_name" validate:"required,max=200"`
	SKU       string          `json:"sku" validate:"required,max=100"`
	UnitsSold decimal.Decimal `json:"units_sold"`
	Date      string          `json:"date" validate:"required"` // YYYY-MM-DD
	Comment   string          `json:"comment" validate:"max=500"`
	State     string          `json:"state" validate:"max=50"`
}

// UpdateSaleRequest body para PATCH /api/sales/:id. Solo campos sin impacto en el stock.
type UpdateSaleRequest struct {
	Comment *string `json:"comment" validate:"omitempty,max=500"`
	State   *string `json:"state" validate:"omitempty,max=50"`
}

// SaleResponse salida de una venta. Ledger viene informado en create.
type SaleResponse struct {
	ID                string               `json:"id"`
	InitiativeID      string               `json:"initiative_id"`
	StoreAssignmentID string               `json:"store_assignment_id"`
	BrandName         string               `json:"brand_name"`
	SKU               string               `json:"sku"`
	UnitsSold         decimal.Decimal      `json:"units_sold"`
	Date              string               `json:"date"`
	TotalCase         decimal.Decimal      `json:"total_case"`
	TotalValue        decimal.Decimal      `json:"total_value"`
	Comment           string               `json:"comment"`
	State             string               `json:"state"`
	CreatedBy         string               `json:"created_by"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
	Ledger            *LedgerEntryResponse `json:"ledger,omitempty"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
