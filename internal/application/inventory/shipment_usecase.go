package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldstock-api/internal/application/dto"
	"github.com/jhoicas/fieldstock-api/internal/domain"
	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
	"github.com/jhoicas/fieldstock-api/internal/domain/repository"
	"github.com/jhoicas/fieldstock-api/internal/domain/stock"
)

// ShipmentUseCase registra y revierte envíos. El primer envío de una marca/SKU crea la entrada del ledger.
type ShipmentUseCase struct {
	*ledgerCore
	blockNegativeStock bool
}

// NewShipmentUseCase construye el caso de uso. Con blockNegativeStock=true, eliminar un envío cuyas
// unidades ya se vendieron falla con ErrInsufficientStock; si no, el ledger queda negativo y se registra.
func NewShipmentUseCase(deps Deps, blockNegativeStock bool) *ShipmentUseCase {
	return &ShipmentUseCase{
		ledgerCore:         newLedgerCore(deps, "shipments"),
		blockNegativeStock: blockNegativeStock,
	}
}

// CreateShipmentInput entrada para registrar un envío (en cajas).
type CreateShipmentInput struct {
	StoreAssignmentID string
	BrandName         string
	SKU               string
	TotalCase         decimal.Decimal
	Date              time.Time
	Comment           string
}

// ShipmentRow fila ya validada de una carga masiva. Trae sus propios datos de empaque y precio.
type ShipmentRow struct {
	BrandName       string
	SKU             string
	CaseUnitsNumber int
	PricePerCase    decimal.Decimal
	TotalCase       decimal.Decimal
	Date            time.Time
}

// UpdateShipmentInput campos editables de un envío.
type UpdateShipmentInput struct {
	Comment *string
}

// Create resuelve la marca en el catálogo y registra el envío sumando sus unidades al ledger.
func (uc *ShipmentUseCase) Create(ctx context.Context, actor entity.Actor, in CreateShipmentInput) (resp *dto.ShipmentResponse, err error) {
	ctx, span := startSpan(ctx, "inventory.CreateShipment", in.StoreAssignmentID)
	defer func() { endSpan(span, err) }()

	key := entity.LedgerKey{StoreAssignmentID: in.StoreAssignmentID, BrandName: in.BrandName, SKU: in.SKU}.Normalize()
	if !validKey(key) || in.Date.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if !in.TotalCase.IsPositive() {
		return nil, fmt.Errorf("%w: total_case debe ser mayor que cero", domain.ErrInvalidInput)
	}

	assignment, err := uc.activeAssignment(ctx, key.StoreAssignmentID)
	if err != nil {
		return nil, err
	}
	if !uc.Authorizer.CanMutate(actor, assignment.StaffID) {
		return nil, domain.ErrForbidden
	}
	brand, ok, err := uc.brand(ctx, assignment.InitiativeID, key.BrandName, key.SKU)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrUnknownBrand, key.BrandName, key.SKU)
	}

	return uc.create(ctx, actor, assignment, brand, in.TotalCase, in.Date, in.Comment, entity.ShipmentSourceSingle)
}

// CreateFromRow registra un envío de la carga masiva. La asignación ya fue validada por el llamador y
// los datos de empaque y precio son los de la fila, no los del catálogo. Si la marca existe en el
// catálogo, el envío y el ledger usan su escritura canónica.
func (uc *ShipmentUseCase) CreateFromRow(ctx context.Context, actor entity.Actor, assignment *entity.StoreAssignment, row ShipmentRow) (*dto.ShipmentResponse, error) {
	brand := entity.BrandConfig{
		InitiativeID:    assignment.InitiativeID,
		Name:            strings.TrimSpace(row.BrandName),
		SKU:             strings.TrimSpace(row.SKU),
		CaseUnitsNumber: row.CaseUnitsNumber,
		PricePerCase:    row.PricePerCase,
	}
	if brand.Name == "" || brand.SKU == "" || !brand.Valid() || !row.TotalCase.IsPositive() || row.Date.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	canonical, ok, err := uc.brand(ctx, assignment.InitiativeID, brand.Name, brand.SKU)
	if err != nil {
		return nil, err
	}
	if ok {
		brand.Name, brand.SKU = canonical.Name, canonical.SKU
	}
	return uc.create(ctx, actor, assignment, brand, row.TotalCase, row.Date, "", entity.ShipmentSourceBulk)
}

func (uc *ShipmentUseCase) create(
	ctx context.Context,
	actor entity.Actor,
	assignment *entity.StoreAssignment,
	brand entity.BrandConfig,
	totalCase decimal.Decimal,
	date time.Time,
	comment, source string,
) (*dto.ShipmentResponse, error) {
	key := entity.LedgerKey{StoreAssignmentID: assignment.ID, BrandName: brand.Name, SKU: brand.SKU}
	day := stock.Day(date)
	units, value := stock.ShipmentUnits(totalCase, brand.CaseUnitsNumber, brand.PricePerCase)

	var shipment *entity.Shipment
	var ledger *entity.StockLedgerEntry
	err := uc.runTx(ctx, func(
		ledgerRepo repository.StockLedgerRepository,
		_ repository.SaleRepository,
		shipmentRepo repository.ShipmentRepository,
	) error {
		exists, err := shipmentRepo.ExistsForDate(ctx, key, day)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: envío del %s", domain.ErrDuplicate, formatDay(day))
		}
		now := uc.Now().UTC()
		shipment = &entity.Shipment{
			ID:                uuid.New().String(),
			InitiativeID:      assignment.InitiativeID,
			StoreAssignmentID: key.StoreAssignmentID,
			BrandName:         key.BrandName,
			SKU:               key.SKU,
			TotalCase:         totalCase,
			UnitsShipped:      units,
			TotalValue:        value,
			Date:              day,
			Comment:           strings.TrimSpace(comment),
			Source:            source,
			CreatedBy:         actor.UserID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := shipmentRepo.Create(ctx, shipment); err != nil {
			return err
		}
		ledger, err = ledgerRepo.ApplyDelta(ctx, key, units, brand.CaseUnitsNumber, brand.PricePerCase, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, EventShipmentCreated, actor, shipment.ID, units, ledger)
	resp := toShipmentResponse(shipment)
	resp.Ledger = toLedgerResponse(ledger)
	return resp, nil
}

// Delete elimina el envío y descuenta sus unidades del ledger con la configuración vigente de la marca.
func (uc *ShipmentUseCase) Delete(ctx context.Context, actor entity.Actor, id string) (resp *dto.DeletedEventResponse, err error) {
	shipment, err := uc.Shipments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, domain.ErrNotFound
	}
	ctx, span := startSpan(ctx, "inventory.DeleteShipment", shipment.StoreAssignmentID)
	defer func() { endSpan(span, err) }()

	if !uc.Authorizer.CanMutate(actor, shipment.CreatedBy) {
		return nil, domain.ErrForbidden
	}
	brand, ok, err := uc.brand(ctx, shipment.InitiativeID, shipment.BrandName, shipment.SKU)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrBrandUnresolvable, shipment.BrandName, shipment.SKU)
	}

	delta := shipment.UnitsShipped.Neg()
	var ledger *entity.StockLedgerEntry
	err = uc.runTx(ctx, func(
		ledgerRepo repository.StockLedgerRepository,
		_ repository.SaleRepository,
		shipmentRepo repository.ShipmentRepository,
	) error {
		if err := shipmentRepo.Delete(ctx, shipment.ID); err != nil {
			return err
		}
		var err error
		ledger, err = ledgerRepo.ApplyDelta(ctx, shipment.Key(), delta, brand.CaseUnitsNumber, brand.PricePerCase, false)
		if err != nil {
			return err
		}
		if uc.blockNegativeStock && ledger.AvailableStockQty.IsNegative() {
			return fmt.Errorf("%w: las unidades del envío ya fueron vendidas (quedaría %s)",
				domain.ErrInsufficientStock, ledger.AvailableStockQty)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if ledger.AvailableStockQty.IsNegative() {
		uc.Log.Ctx(ctx).Warn().
			Str("key", shipment.Key().String()).
			Str("shipment_id", shipment.ID).
			Str("available_stock_qty", ledger.AvailableStockQty.String()).
			Msg("stock negativo tras eliminar envío")
	}
	uc.publish(ctx, EventShipmentDeleted, actor, shipment.ID, delta, ledger)
	return &dto.DeletedEventResponse{ID: shipment.ID, Ledger: toLedgerResponse(ledger)}, nil
}

// Update modifica el comentario del envío.
func (uc *ShipmentUseCase) Update(ctx context.Context, actor entity.Actor, id string, in UpdateShipmentInput) (*dto.ShipmentResponse, error) {
	shipment, err := uc.Shipments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, domain.ErrNotFound
	}
	if !uc.Authorizer.CanMutate(actor, shipment.CreatedBy) {
		return nil, domain.ErrForbidden
	}
	if in.Comment != nil {
		shipment.Comment = strings.TrimSpace(*in.Comment)
	}
	shipment.UpdatedAt = uc.Now().UTC()
	if err := uc.Shipments.UpdateDetails(ctx, shipment); err != nil {
		return nil, err
	}
	return toShipmentResponse(shipment), nil
}

// GetByID devuelve el envío.
func (uc *ShipmentUseCase) GetByID(ctx context.Context, id string) (*dto.ShipmentResponse, error) {
	shipment, err := uc.Shipments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, domain.ErrNotFound
	}
	return toShipmentResponse(shipment), nil
}

// ListByStoreAssignment lista los envíos de una asignación.
func (uc *ShipmentUseCase) ListByStoreAssignment(ctx context.Context, storeAssignmentID string, from, to *time.Time, limit, offset int) (*dto.ShipmentListResponse, error) {
	limit, offset = page(limit, offset)
	list, err := uc.Shipments.ListByStoreAssignment(ctx, storeAssignmentID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ShipmentResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toShipmentResponse(s))
	}
	return &dto.ShipmentListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset, Count: len(items)}}, nil
}

func toShipmentResponse(s *entity.Shipment) *dto.ShipmentResponse {
	return &dto.ShipmentResponse{
		ID:                s.ID,
		InitiativeID:      s.InitiativeID,
		StoreAssignmentID: s.StoreAssignmentID,
		BrandName:         s.BrandName,
		SKU:               s.SKU,
		TotalCase:         s.TotalCase,
		UnitsShipped:      s.UnitsShipped,
		TotalValue:        s.TotalValue,
		Date:              formatDay(s.Date),
		Comment:           s.Comment,
		Source:            s.Source,
		CreatedBy:         s.CreatedBy,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}
