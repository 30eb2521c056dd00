package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldstock-api/internal/application/dto"
	"github.com/jhoicas/fieldstock-api/internal/domain"
	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
	"github.com/jhoicas/fieldstock-api/internal/domain/repository"
	"github.com/jhoicas/fieldstock-api/internal/domain/stock"
)

// StockUseCase consultas del ledger e inicialización manual de stock.
type StockUseCase struct {
	*ledgerCore
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(deps Deps) *StockUseCase {
	return &StockUseCase{ledgerCore: newLedgerCore(deps, "stock")}
}

// InitializeStockInput carga manual de la cantidad disponible de una marca/SKU.
type InitializeStockInput struct {
	StoreAssignmentID string
	BrandName         string
	SKU               string
	AvailableStockQty decimal.Decimal
}

// Get devuelve la entrada del ledger para (asignación, marca, sku). Si la marca está en el catálogo
// se busca con su escritura canónica; si ya no está, con la recibida.
func (uc *StockUseCase) Get(ctx context.Context, key entity.LedgerKey) (*dto.LedgerEntryResponse, error) {
	key = key.Normalize()
	if !validKey(key) {
		return nil, domain.ErrInvalidInput
	}
	assignment, err := uc.Stores.GetByID(ctx, key.StoreAssignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, fmt.Errorf("%w: asignación de tienda %s", domain.ErrNotFound, key.StoreAssignmentID)
	}
	if brand, ok, err := uc.brand(ctx, assignment.InitiativeID, key.BrandName, key.SKU); err != nil {
		return nil, err
	} else if ok {
		key.BrandName, key.SKU = brand.Name, brand.SKU
	}
	entry, err := uc.Ledger.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}
	return toLedgerResponse(entry), nil
}

// ListByStoreAssignment devuelve todas las entradas del ledger de una asignación.
func (uc *StockUseCase) ListByStoreAssignment(ctx context.Context, storeAssignmentID string) (*dto.LedgerListResponse, error) {
	list, err := uc.Ledger.ListByStoreAssignment(ctx, storeAssignmentID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LedgerEntryResponse, 0, len(list))
	for _, e := range list {
		items = append(items, *toLedgerResponse(e))
	}
	return &dto.LedgerListResponse{Items: items}, nil
}

// Initialize crea la entrada del ledger con una cantidad inicial. Solo roles privilegiados.
// Si la entrada ya existe devuelve ErrDuplicate: los ajustes posteriores pasan por ventas y envíos.
func (uc *StockUseCase) Initialize(ctx context.Context, actor entity.Actor, in InitializeStockInput) (resp *dto.LedgerEntryResponse, err error) {
	ctx, span := startSpan(ctx, "inventory.InitializeStock", in.StoreAssignmentID)
	defer func() { endSpan(span, err) }()

	if !uc.Authorizer.IsPrivileged(actor) {
		return nil, domain.ErrForbidden
	}
	key := entity.LedgerKey{StoreAssignmentID: in.StoreAssignmentID, BrandName: in.BrandName, SKU: in.SKU}.Normalize()
	if !validKey(key) || in.AvailableStockQty.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	assignment, err := uc.activeAssignment(ctx, key.StoreAssignmentID)
	if err != nil {
		return nil, err
	}
	brand, ok, err := uc.brand(ctx, assignment.InitiativeID, key.BrandName, key.SKU)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrUnknownBrand, key.BrandName, key.SKU)
	}

	totalCase, totalValue := stock.Totals(in.AvailableStockQty, brand.CaseUnitsNumber, brand.PricePerCase)
	now := uc.Now().UTC()
	entry := &entity.StockLedgerEntry{
		ID:                uuid.New().String(),
		StoreAssignmentID: key.StoreAssignmentID,
		BrandName:         brand.Name,
		SKU:               brand.SKU,
		AvailableStockQty: in.AvailableStockQty,
		TotalCase:         totalCase,
		TotalValue:        totalValue,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	err = uc.runTx(ctx, func(
		ledgerRepo repository.StockLedgerRepository,
		_ repository.SaleRepository,
		_ repository.ShipmentRepository,
	) error {
		return ledgerRepo.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, EventStockInitialized, actor, entry.ID, in.AvailableStockQty, entry)
	return toLedgerResponse(entry), nil
}
