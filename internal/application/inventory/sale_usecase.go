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

// SaleUseCase registra y revierte ventas. Cada creación o eliminación modifica la venta y el ledger
// en una misma transacción con bloqueo de fila (SELECT FOR UPDATE).
type SaleUseCase struct {
	*ledgerCore
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(deps Deps) *SaleUseCase {
	return &SaleUseCase{ledgerCore: newLedgerCore(deps, "sales")}
}

// CreateSaleInput entrada para registrar una venta.
type CreateSaleInput struct {
	StoreAssignmentID string
	BrandName         string
	SKU               string
	UnitsSold         decimal.Decimal
	Date              time.Time
	Comment           string
	State             string
}

// UpdateSaleInput campos editables de una venta (nil = sin cambio).
type UpdateSaleInput struct {
	Comment *string
	State   *string
}

// Create valida la entrada, resuelve la marca en el catálogo y, dentro de una transacción, inserta
// la venta y descuenta las unidades del ledger.
func (uc *SaleUseCase) Create(ctx context.Context, actor entity.Actor, in CreateSaleInput) (resp *dto.SaleResponse, err error) {
	ctx, span := startSpan(ctx, "inventory.CreateSale", in.StoreAssignmentID)
	defer func() { endSpan(span, err) }()

	key := entity.LedgerKey{StoreAssignmentID: in.StoreAssignmentID, BrandName: in.BrandName, SKU: in.SKU}.Normalize()
	if !validKey(key) || in.Date.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if !in.UnitsSold.IsPositive() {
		return nil, fmt.Errorf("%w: units_sold debe ser mayor que cero", domain.ErrInvalidInput)
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
	key.BrandName, key.SKU = brand.Name, brand.SKU

	day := stock.Day(in.Date)
	totalCase, totalValue := stock.Totals(in.UnitsSold, brand.CaseUnitsNumber, brand.PricePerCase)

	var sale *entity.Sale
	var ledger *entity.StockLedgerEntry
	err = uc.runTx(ctx, func(
		ledgerRepo repository.StockLedgerRepository,
		saleRepo repository.SaleRepository,
		_ repository.ShipmentRepository,
	) error {
		exists, err := saleRepo.ExistsForDate(ctx, key, day)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: venta del %s", domain.ErrDuplicate, formatDay(day))
		}

		// Bloquea la fila del ledger para validar disponibilidad sin carreras
		current, err := ledgerRepo.GetForUpdate(ctx, key)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: no hay stock registrado para %s", domain.ErrNotFound, key)
		}
		if current.AvailableStockQty.LessThan(in.UnitsSold) {
			return fmt.Errorf("%w: disponible %s, solicitado %s",
				domain.ErrInsufficientStock, current.AvailableStockQty, in.UnitsSold)
		}

		now := uc.Now().UTC()
		sale = &entity.Sale{
			ID:                uuid.New().String(),
			InitiativeID:      assignment.InitiativeID,
			StoreAssignmentID: key.StoreAssignmentID,
			BrandName:         key.BrandName,
			SKU:               key.SKU,
			UnitsSold:         in.UnitsSold,
			Date:              day,
			TotalCase:         totalCase,
			TotalValue:        totalValue,
			Comment:           strings.TrimSpace(in.Comment),
			State:             strings.TrimSpace(in.State),
			CreatedBy:         actor.UserID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := saleRepo.Create(ctx, sale); err != nil {
			return err
		}
		ledger, err = ledgerRepo.ApplyDelta(ctx, key, in.UnitsSold.Neg(), brand.CaseUnitsNumber, brand.PricePerCase, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, EventSaleCreated, actor, sale.ID, in.UnitsSold.Neg(), ledger)
	resp = toSaleResponse(sale)
	resp.Ledger = toLedgerResponse(ledger)
	return resp, nil
}

// Delete elimina la venta y devuelve sus unidades al ledger. Los totales del ledger se recalculan con
// la configuración vigente de la marca; si ya no existe en el catálogo se rechaza con ErrBrandUnresolvable.
func (uc *SaleUseCase) Delete(ctx context.Context, actor entity.Actor, id string) (resp *dto.DeletedEventResponse, err error) {
	sale, err := uc.Sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	ctx, span := startSpan(ctx, "inventory.DeleteSale", sale.StoreAssignmentID)
	defer func() { endSpan(span, err) }()

	if !uc.Authorizer.CanMutate(actor, sale.CreatedBy) {
		return nil, domain.ErrForbidden
	}
	brand, ok, err := uc.brand(ctx, sale.InitiativeID, sale.BrandName, sale.SKU)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrBrandUnresolvable, sale.BrandName, sale.SKU)
	}

	var ledger *entity.StockLedgerEntry
	err = uc.runTx(ctx, func(
		ledgerRepo repository.StockLedgerRepository,
		saleRepo repository.SaleRepository,
		_ repository.ShipmentRepository,
	) error {
		// Si otra petición ya la eliminó, Delete devuelve NotFound y no se revierte dos veces
		if err := saleRepo.Delete(ctx, sale.ID); err != nil {
			return err
		}
		var err error
		ledger, err = ledgerRepo.ApplyDelta(ctx, sale.Key(), sale.UnitsSold, brand.CaseUnitsNumber, brand.PricePerCase, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, EventSaleDeleted, actor, sale.ID, sale.UnitsSold, ledger)
	return &dto.DeletedEventResponse{ID: sale.ID, Ledger: toLedgerResponse(ledger)}, nil
}

// Update modifica comentario y estado. No toca el ledger.
func (uc *SaleUseCase) Update(ctx context.Context, actor entity.Actor, id string, in UpdateSaleInput) (*dto.SaleResponse, error) {
	sale, err := uc.Sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if !uc.Authorizer.CanMutate(actor, sale.CreatedBy) {
		return nil, domain.ErrForbidden
	}
	if in.Comment != nil {
		sale.Comment = strings.TrimSpace(*in.Comment)
	}
	if in.State != nil {
		sale.State = strings.TrimSpace(*in.State)
	}
	sale.UpdatedAt = uc.Now().UTC()
	if err := uc.Sales.UpdateDetails(ctx, sale); err != nil {
		return nil, err
	}
	return toSaleResponse(sale), nil
}

// GetByID devuelve la venta.
func (uc *SaleUseCase) GetByID(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.Sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return toSaleResponse(sale), nil
}

// ListByStoreAssignment lista las ventas de una asignación, opcionalmente filtradas por rango de fechas.
func (uc *SaleUseCase) ListByStoreAssignment(ctx context.Context, storeAssignmentID string, from, to *time.Time, limit, offset int) (*dto.SaleListResponse, error) {
	limit, offset = page(limit, offset)
	list, err := uc.Sales.ListByStoreAssignment(ctx, storeAssignmentID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSaleResponse(s))
	}
	return &dto.SaleListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset, Count: len(items)}}, nil
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	return &dto.SaleResponse{
		ID:                s.ID,
		InitiativeID:      s.InitiativeID,
		StoreAssignmentID: s.StoreAssignmentID,
		BrandName:         s.BrandName,
		SKU:               s.SKU,
		UnitsSold:         s.UnitsSold,
		Date:              formatDay(s.Date),
		TotalCase:         s.TotalCase,
		TotalValue:        s.TotalValue,
		Comment:           s.Comment,
		State:             s.State,
		CreatedBy:         s.CreatedBy,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}
