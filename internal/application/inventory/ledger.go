package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/fieldstock-api/internal/application/dto"
	"github.com/jhoicas/fieldstock-api/internal/domain"
	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
	"github.com/jhoicas/fieldstock-api/internal/domain/repository"
	"github.com/jhoicas/fieldstock-api/internal/domain/stock"
	"github.com/jhoicas/fieldstock-api/pkg/logger"
)

const instrumentationName = "github.com/jhoicas/fieldstock-api/internal/application/inventory"

var tracer = otel.Tracer(instrumentationName)

// Deps colaboradores comunes de los casos de uso del ledger. Los repositorios se usan para lecturas
// fuera de transacción; las escrituras pasan siempre por TxRunner.
type Deps struct {
	TxRunner   TxRunner
	Ledger     repository.StockLedgerRepository
	Sales      repository.SaleRepository
	Shipments  repository.ShipmentRepository
	Stores     repository.StoreAssignmentRepository
	Catalog    repository.BrandCatalogRepository
	Authorizer Authorizer
	Publisher  LedgerEventPublisher // nil = NopPublisher
	Retry      RetryPolicy          // cero = DefaultRetryPolicy
	Log        *logger.Logger       // nil = logger.Nop
	Now        func() time.Time     // nil = time.Now
}

// ledgerCore comportamiento compartido por ventas, envíos y stock.
type ledgerCore struct {
	Deps
	mutations metric.Int64Counter
}

func newLedgerCore(d Deps, component string) *ledgerCore {
	if d.Publisher == nil {
		d.Publisher = NopPublisher{}
	}
	if d.Retry.MaxAttempts == 0 {
		d.Retry = DefaultRetryPolicy()
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	d.Log = d.Log.Component(component)
	if d.Now == nil {
		d.Now = time.Now
	}
	mutations, _ := otel.Meter(instrumentationName).Int64Counter(
		"fieldstock.ledger.mutations",
		metric.WithDescription("Cambios confirmados en el ledger de stock por tipo de evento"),
	)
	return &ledgerCore{Deps: d, mutations: mutations}
}

// runTx ejecuta fn en una transacción, reintentando ante conflictos de concurrencia.
func (c *ledgerCore) runTx(ctx context.Context, fn func(
	ledgerRepo repository.StockLedgerRepository,
	saleRepo repository.SaleRepository,
	shipmentRepo repository.ShipmentRepository,
) error) error {
	return c.Retry.Do(ctx, func() error {
		return c.TxRunner.Run(ctx, fn)
	})
}

// activeAssignment carga la asignación de tienda; NotFound si no existe o fue eliminada.
func (c *ledgerCore) activeAssignment(ctx context.Context, id string) (*entity.StoreAssignment, error) {
	sa, err := c.Stores.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sa.IsActive() {
		return nil, fmt.Errorf("%w: asignación de tienda %s", domain.ErrNotFound, id)
	}
	return sa, nil
}

// brand resuelve (marca, sku) en el catálogo de la iniciativa.
func (c *ledgerCore) brand(ctx context.Context, initiativeID, name, sku string) (entity.BrandConfig, bool, error) {
	catalog, err := c.Catalog.ListByInitiative(ctx, initiativeID)
	if err != nil {
		return entity.BrandConfig{}, false, err
	}
	b, ok := entity.FindBrand(catalog, name, sku)
	if ok && !b.Valid() {
		return entity.BrandConfig{}, false, nil
	}
	return b, ok, nil
}

// publish emite el evento después del commit. Los errores se registran y no se propagan.
func (c *ledgerCore) publish(ctx context.Context, eventType string, actor entity.Actor, sourceID string, delta decimal.Decimal, entry *entity.StockLedgerEntry) {
	if entry == nil {
		return
	}
	c.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("event", eventType)))
	ev := LedgerEvent{
		ID:                uuid.New().String(),
		Type:              eventType,
		OccurredAt:        c.Now().UTC(),
		ActorID:           actor.UserID,
		SourceID:          sourceID,
		StoreAssignmentID: entry.StoreAssignmentID,
		BrandName:         entry.BrandName,
		SKU:               entry.SKU,
		Delta:             delta,
		AvailableStockQty: entry.AvailableStockQty,
		TotalCase:         entry.TotalCase,
		TotalValue:        entry.TotalValue,
	}
	if err := c.Publisher.Publish(ctx, ev); err != nil {
		c.Log.Ctx(ctx).Error().Err(err).
			Str("event", eventType).
			Str("key", ev.Key().String()).
			Msg("no se pudo publicar el evento del ledger")
	}
}

// startSpan abre un span con la asignación de tienda como atributo.
func startSpan(ctx context.Context, name, storeAssignmentID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.String("store_assignment.id", storeAssignmentID)))
}

// endSpan registra el error (si hay) y cierra el span.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// validKey verifica que la clave tenga sus tres componentes.
func validKey(key entity.LedgerKey) bool {
	return key.StoreAssignmentID != "" && key.BrandName != "" && key.SKU != ""
}

func toLedgerResponse(e *entity.StockLedgerEntry) *dto.LedgerEntryResponse {
	if e == nil {
		return nil
	}
	return &dto.LedgerEntryResponse{
		ID:                e.ID,
		StoreAssignmentID: e.StoreAssignmentID,
		BrandName:         e.BrandName,
		SKU:               e.SKU,
		AvailableStockQty: e.AvailableStockQty,
		TotalCase:         e.TotalCase,
		TotalValue:        e.TotalValue,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func formatDay(t time.Time) string {
	return t.UTC().Format(stock.DateLayout)
}

// page normaliza limit/offset de los listados.
func page(limit, offset int) (int, int) {
	p := dto.PageRequest{Limit: limit, Offset: offset}.Normalize()
	return p.Limit, p.Offset
}
