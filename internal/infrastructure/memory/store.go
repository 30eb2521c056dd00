// Package memory implementa los repositorios del ledger en memoria. Se usa en tests y con
// STORAGE_DRIVER=memory. Las transacciones se serializan con un mutex global y se revierten
// reproduciendo un registro de deshacer.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldstock-api/internal/application/inventory"
	"github.com/jhoicas/fieldstock-api/internal/domain"
	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
	"github.com/jhoicas/fieldstock-api/internal/domain/repository"
	"github.com/jhoicas/fieldstock-api/internal/domain/stock"
)

// Store contiene todos los datos. El valor cero no es utilizable: usar NewStore.
type Store struct {
	mu          sync.Mutex
	assignments map[string]entity.StoreAssignment
	brands      map[string][]entity.BrandConfig // por iniciativa
	ledger      map[entity.LedgerKey]entity.StockLedgerEntry
	sales       map[string]entity.Sale
	shipments   map[string]entity.Shipment
	now         func() time.Time
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		assignments: make(map[string]entity.StoreAssignment),
		brands:      make(map[string][]entity.BrandConfig),
		ledger:      make(map[entity.LedgerKey]entity.StockLedgerEntry),
		sales:       make(map[string]entity.Sale),
		shipments:   make(map[string]entity.Shipment),
		now:         time.Now,
	}
}

// PutStoreAssignment agrega o reemplaza una asignación de tienda.
func (s *Store) PutStoreAssignment(a entity.StoreAssignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[a.ID] = a
}

// PutBrand agrega o reemplaza una marca del catálogo de su iniciativa.
func (s *Store) PutBrand(b entity.BrandConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.brands[b.InitiativeID]
	for i := range list {
		if strings.EqualFold(list[i].Name, b.Name) && strings.EqualFold(list[i].SKU, b.SKU) {
			list[i] = b
			return
		}
	}
	s.brands[b.InitiativeID] = append(list, b)
}

// RemoveBrand elimina una marca del catálogo.
func (s *Store) RemoveBrand(initiativeID, name, sku string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.brands[initiativeID]
	out := list[:0]
	for _, b := range list {
		if !(strings.EqualFold(b.Name, name) && strings.EqualFold(b.SKU, sku)) {
			out = append(out, b)
		}
	}
	s.brands[initiativeID] = out
}

// tx registro de deshacer de una transacción en curso. nil = operación fuera de transacción.
type tx struct {
	undo []func()
}

func (t *tx) record(fn func()) {
	if t != nil {
		t.undo = append(t.undo, fn)
	}
}

// lock toma el mutex solo fuera de transacción (dentro, TxRunner.Run ya lo tiene).
func (s *Store) lock(t *tx) func() {
	if t != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// TxRunner implementa inventory.TxRunner sobre el Store.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

var _ inventory.TxRunner = (*TxRunner)(nil)

// Run ejecuta fn con el store bloqueado. Si fn devuelve error se deshacen sus cambios en orden inverso.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ledgerRepo repository.StockLedgerRepository,
	saleRepo repository.SaleRepository,
	shipmentRepo repository.ShipmentRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t := &tx{}
	err := fn(&LedgerRepository{s: r.s, tx: t}, &SaleRepository{s: r.s, tx: t}, &ShipmentRepository{s: r.s, tx: t})
	if err != nil {
		for i := len(t.undo) - 1; i >= 0; i-- {
			t.undo[i]()
		}
	}
	return err
}

// ── Ledger ──

// LedgerRepository implementa repository.StockLedgerRepository.
type LedgerRepository struct {
	s  *Store
	tx *tx
}

// NewLedgerRepository repositorio para lecturas fuera de transacción.
func NewLedgerRepository(s *Store) *LedgerRepository {
	return &LedgerRepository{s: s}
}

var _ repository.StockLedgerRepository = (*LedgerRepository)(nil)

func (r *LedgerRepository) Get(_ context.Context, key entity.LedgerKey) (*entity.StockLedgerEntry, error) {
	defer r.s.lock(r.tx)()
	e, ok := r.s.ledger[key]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

// GetForUpdate equivale a Get: dentro de Run el store completo está bloqueado.
func (r *LedgerRepository) GetForUpdate(ctx context.Context, key entity.LedgerKey) (*entity.StockLedgerEntry, error) {
	return r.Get(ctx, key)
}

func (r *LedgerRepository) ApplyDelta(_ context.Context, key entity.LedgerKey, delta decimal.Decimal, caseUnitsNumber int, pricePerCase decimal.Decimal, createIfAbsent bool) (*entity.StockLedgerEntry, error) {
	defer r.s.lock(r.tx)()
	prev, ok := r.s.ledger[key]
	if !ok && !createIfAbsent {
		return nil, domain.ErrNotFound
	}
	now := r.s.now().UTC()
	e := prev
	if !ok {
		e = entity.StockLedgerEntry{
			ID:                uuid.New().String(),
			StoreAssignmentID: key.StoreAssignmentID,
			BrandName:         key.BrandName,
			SKU:               key.SKU,
			CreatedAt:         now,
		}
	}
	e.AvailableStockQty = e.AvailableStockQty.Add(delta)
	e.TotalCase, e.TotalValue = stock.Totals(e.AvailableStockQty, caseUnitsNumber, pricePerCase)
	e.UpdatedAt = now
	r.s.ledger[key] = e
	r.tx.record(func() {
		if ok {
			r.s.ledger[key] = prev
		} else {
			delete(r.s.ledger, key)
		}
	})
	return &e, nil
}

func (r *LedgerRepository) Create(_ context.Context, entry *entity.StockLedgerEntry) error {
	defer r.s.lock(r.tx)()
	key := entry.Key()
	if _, ok := r.s.ledger[key]; ok {
		return domain.ErrDuplicate
	}
	r.s.ledger[key] = *entry
	r.tx.record(func() { delete(r.s.ledger, key) })
	return nil
}

func (r *LedgerRepository) ListByStoreAssignment(_ context.Context, storeAssignmentID string) ([]*entity.StockLedgerEntry, error) {
	defer r.s.lock(r.tx)()
	var out []*entity.StockLedgerEntry
	for _, e := range r.s.ledger {
		if e.StoreAssignmentID == storeAssignmentID {
			e := e
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BrandName != out[j].BrandName {
			return out[i].BrandName < out[j].BrandName
		}
		return out[i].SKU < out[j].SKU
	})
	return out, nil
}

// ── Ventas ──

// SaleRepository implementa repository.SaleRepository.
type SaleRepository struct {
	s  *Store
	tx *tx
}

// NewSaleRepository repositorio para operaciones fuera de transacción.
func NewSaleRepository(s *Store) *SaleRepository {
	return &SaleRepository{s: s}
}

var _ repository.SaleRepository = (*SaleRepository)(nil)

func (r *SaleRepository) Create(_ context.Context, sale *entity.Sale) error {
	defer r.s.lock(r.tx)()
	for _, existing := range r.s.sales {
		if existing.Key() == sale.Key() && existing.Date.Equal(sale.Date) {
			return domain.ErrDuplicate
		}
	}
	r.s.sales[sale.ID] = *sale
	id := sale.ID
	r.tx.record(func() { delete(r.s.sales, id) })
	return nil
}

func (r *SaleRepository) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	defer r.s.lock(r.tx)()
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	return &sale, nil
}

func (r *SaleRepository) ExistsForDate(_ context.Context, key entity.LedgerKey, date time.Time) (bool, error) {
	defer r.s.lock(r.tx)()
	for _, sale := range r.s.sales {
		if sale.Key() == key && sale.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (r *SaleRepository) UpdateDetails(_ context.Context, sale *entity.Sale) error {
	defer r.s.lock(r.tx)()
	prev, ok := r.s.sales[sale.ID]
	if !ok {
		return domain.ErrNotFound
	}
	next := prev
	next.Comment, next.State, next.UpdatedAt = sale.Comment, sale.State, sale.UpdatedAt
	r.s.sales[sale.ID] = next
	r.tx.record(func() { r.s.sales[prev.ID] = prev })
	return nil
}

func (r *SaleRepository) Delete(_ context.Context, id string) error {
	defer r.s.lock(r.tx)()
	prev, ok := r.s.sales[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.s.sales, id)
	r.tx.record(func() { r.s.sales[id] = prev })
	return nil
}

func (r *SaleRepository) ListByStoreAssignment(_ context.Context, storeAssignmentID string, from, to *time.Time, limit, offset int) ([]*entity.Sale, error) {
	defer r.s.lock(r.tx)()
	var out []*entity.Sale
	for _, sale := range r.s.sales {
		if sale.StoreAssignmentID == storeAssignmentID && inRange(sale.Date, from, to) {
			sale := sale
			out = append(out, &sale)
		}
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].Date, out[i].CreatedAt, out[j].Date, out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

// ── Envíos ──

// ShipmentRepository implementa repository.ShipmentRepository.
type ShipmentRepository struct {
	s  *Store
	tx *tx
}

// NewShipmentRepository repositorio para operaciones fuera de transacción.
func NewShipmentRepository(s *Store) *ShipmentRepository {
	return &ShipmentRepository{s: s}
}

var _ repository.ShipmentRepository = (*ShipmentRepository)(nil)

func (r *ShipmentRepository) Create(_ context.Context, shipment *entity.Shipment) error {
	defer r.s.lock(r.tx)()
	for _, existing := range r.s.shipments {
		if existing.Key() == shipment.Key() && existing.Date.Equal(shipment.Date) {
			return domain.ErrDuplicate
		}
	}
	r.s.shipments[shipment.ID] = *shipment
	id := shipment.ID
	r.tx.record(func() { delete(r.s.shipments, id) })
	return nil
}

func (r *ShipmentRepository) GetByID(_ context.Context, id string) (*entity.Shipment, error) {
	defer r.s.lock(r.tx)()
	shipment, ok := r.s.shipments[id]
	if !ok {
		return nil, nil
	}
	return &shipment, nil
}

func (r *ShipmentRepository) ExistsForDate(_ context.Context, key entity.LedgerKey, date time.Time) (bool, error) {
	defer r.s.lock(r.tx)()
	for _, shipment := range r.s.shipments {
		if shipment.Key() == key && shipment.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (r *ShipmentRepository) UpdateDetails(_ context.Context, shipment *entity.Shipment) error {
	defer r.s.lock(r.tx)()
	prev, ok := r.s.shipments[shipment.ID]
	if !ok {
		return domain.ErrNotFound
	}
	next := prev
	next.Comment, next.UpdatedAt = shipment.Comment, shipment.UpdatedAt
	r.s.shipments[shipment.ID] = next
	r.tx.record(func() { r.s.shipments[prev.ID] = prev })
	return nil
}

func (r *ShipmentRepository) Delete(_ context.Context, id string) error {
	defer r.s.lock(r.tx)()
	prev, ok := r.s.shipments[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.s.shipments, id)
	r.tx.record(func() { r.s.shipments[id] = prev })
	return nil
}

func (r *ShipmentRepository) ListByStoreAssignment(_ context.Context, storeAssignmentID string, from, to *time.Time, limit, offset int) ([]*entity.Shipment, error) {
	defer r.s.lock(r.tx)()
	var out []*entity.Shipment
	for _, shipment := range r.s.shipments {
		if shipment.StoreAssignmentID == storeAssignmentID && inRange(shipment.Date, from, to) {
			shipment := shipment
			out = append(out, &shipment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].Date, out[i].CreatedAt, out[j].Date, out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

// ── Catálogo y asignaciones ──

// CatalogRepository implementa repository.BrandCatalogRepository.
type CatalogRepository struct {
	s *Store
}

// NewCatalogRepository construye el repositorio.
func NewCatalogRepository(s *Store) *CatalogRepository {
	return &CatalogRepository{s: s}
}

var _ repository.BrandCatalogRepository = (*CatalogRepository)(nil)

func (r *CatalogRepository) ListByInitiative(_ context.Context, initiativeID string) ([]entity.BrandConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]entity.BrandConfig(nil), r.s.brands[initiativeID]...), nil
}

// StoreAssignmentRepository implementa repository.StoreAssignmentRepository.
type StoreAssignmentRepository struct {
	s *Store
}

// NewStoreAssignmentRepository construye el repositorio.
func NewStoreAssignmentRepository(s *Store) *StoreAssignmentRepository {
	return &StoreAssignmentRepository{s: s}
}

var _ repository.StoreAssignmentRepository = (*StoreAssignmentRepository)(nil)

func (r *StoreAssignmentRepository) GetByID(_ context.Context, id string) (*entity.StoreAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func inRange(date time.Time, from, to *time.Time) bool {
	if from != nil && date.Before(*from) {
		return false
	}
	if to != nil && date.After(*to) {
		return false
	}
	return true
}

func newerFirst(dateA, createdA, dateB, createdB time.Time) bool {
	if !dateA.Equal(dateB) {
		return dateA.After(dateB)
	}
	return createdA.After(createdB)
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// Wire completa d con el runner y los repositorios del store.
func Wire(s *Store, d inventory.Deps) inventory.Deps {
	d.TxRunner = NewTxRunner(s)
	d.Ledger = NewLedgerRepository(s)
	d.Sales = NewSaleRepository(s)
	d.Shipments = NewShipmentRepository(s)
	d.Stores = NewStoreAssignmentRepository(s)
	d.Catalog = NewCatalogRepository(s)
	return d
}
