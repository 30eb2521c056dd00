package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
	"github.com/jhoicas/fieldstock-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Los errores de serialización o deadlock se
// devuelven envueltos en domain.ErrConflict para que RetryPolicy pueda reintentar.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ledgerRepo repository.StockLedgerRepository,
		saleRepo repository.SaleRepository,
		shipmentRepo repository.ShipmentRepository,
	) error) error
}

// Authorizer decide si un actor puede modificar recursos (implementado por access.RolePolicy).
type Authorizer interface {
	CanMutate(actor entity.Actor, ownerID string) bool
	IsPrivileged(actor entity.Actor) bool
}

// Tipos de evento del ledger.
const (
	EventSaleCreated      = "stock.sale.created"
	EventSaleDeleted      = "stock.sale.deleted"
	EventShipmentCreated  = "stock.shipment.created"
	EventShipmentDeleted  = "stock.shipment.deleted"
	EventStockInitialized = "stock.initialized"
)

// LedgerEvent cambio confirmado sobre una entrada del ledger.
type LedgerEvent struct {
	ID                string          `json:"id"`
	Type              string          `json:"type"`
	OccurredAt        time.Time       `json:"occurred_at"`
	ActorID           string          `json:"actor_id"`
	SourceID          string          `json:"source_id"` // venta o envío que originó el cambio
	StoreAssignmentID string          `json:"store_assignment_id"`
	BrandName         string          `json:"brand_name"`
	SKU               string          `json:"sku"`
	Delta             decimal.Decimal `json:"delta"`
	AvailableStockQty decimal.Decimal `json:"available_stock_qty"`
	TotalCase         decimal.Decimal `json:"total_case"`
	TotalValue        decimal.Decimal `json:"total_value"`
}

// Key devuelve la clave del ledger afectada.
func (e LedgerEvent) Key() entity.LedgerKey {
	return entity.LedgerKey{StoreAssignmentID: e.StoreAssignmentID, BrandName: e.BrandName, SKU: e.SKU}
}

// LedgerEventPublisher publica eventos del ledger después del commit. Un error de publicación
// no revierte la operación.
type LedgerEventPublisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
}

// NopPublisher descarta los eventos.
type NopPublisher struct{}

// Publish no hace nada.
func (NopPublisher) Publish(context.Context, LedgerEvent) error { return nil }

// UploadArchive guarda el archivo original de una carga masiva y devuelve su ubicación.
type UploadArchive interface {
	Store(ctx context.Context, key, contentType string, data []byte) (string, error)
}
