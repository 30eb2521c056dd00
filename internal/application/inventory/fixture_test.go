package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldstock-api/internal/application/inventory"
	"github.com/jhoicas/fieldstock-api/internal/domain"
	"github.com/jhoicas/fieldstock-api/internal/domain/access"
	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
	"github.com/jhoicas/fieldstock-api/internal/domain/repository"
	"github.com/jhoicas/fieldstock-api/internal/infrastructure/memory"
)

const (
	initiativeID = "ini-1"
	storeID      = "sa-1"
)

var (
	owner    = entity.Actor{UserID: "staff-1", ClientID: "client-1", Role: entity.RolePromoter}
	stranger = entity.Actor{UserID: "staff-2", ClientID: "client-1", Role: entity.RolePromoter}
	admin    = entity.Actor{UserID: "admin-1", ClientID: "client-1", Role: entity.RoleAdmin}

	colaKey = entity.LedgerKey{StoreAssignmentID: storeID, BrandName: "Cola", SKU: "500ml"}
)

// recordingPublisher guarda los eventos publicados; err simula fallo del broker.
type recordingPublisher struct {
	mu     sync.Mutex
	events []inventory.LedgerEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev inventory.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// conflictRunner falla con ErrConflict las primeras n ejecuciones y luego delega.
type conflictRunner struct {
	next     inventory.TxRunner
	failures int
	calls    int
}

func (r *conflictRunner) Run(ctx context.Context, fn func(repository.StockLedgerRepository, repository.SaleRepository, repository.ShipmentRepository) error) error {
	r.calls++
	if r.calls <= r.failures {
		return errors.Join(domain.ErrConflict, errors.New("could not serialize access"))
	}
	return r.next.Run(ctx, fn)
}

type fixture struct {
	store     *memory.Store
	pub       *recordingPublisher
	deps      inventory.Deps
	sales     *inventory.SaleUseCase
	shipments *inventory.ShipmentUseCase
	stock     *inventory.StockUseCase
}

type fixtureOption func(*inventory.Deps, *bool)

func withRunner(wrap func(inventory.TxRunner) inventory.TxRunner) fixtureOption {
	return func(d *inventory.Deps, _ *bool) { d.TxRunner = wrap(d.TxRunner) }
}

func withRetry(p inventory.RetryPolicy) fixtureOption {
	return func(d *inventory.Deps, _ *bool) { d.Retry = p }
}

func blockingNegative() fixtureOption {
	return func(_ *inventory.Deps, block *bool) { *block = true }
}

// newFixture arma los casos de uso sobre el store en memoria con la tienda sa-1 (de staff-1)
// y la marca Cola/500ml (24 unidades por caja, 1000 por caja).
func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	s := memory.NewStore()
	s.PutStoreAssignment(entity.StoreAssignment{ID: storeID, InitiativeID: initiativeID, StoreID: "store-1", StoreName: "Tienda Centro", StaffID: owner.UserID})
	s.PutBrand(entity.BrandConfig{InitiativeID: initiativeID, Name: "Cola", SKU: "500ml", CaseUnitsNumber: 24, PricePerCase: decimal.NewFromInt(1000)})

	pub := &recordingPublisher{}
	deps := inventory.Deps{
		TxRunner:   memory.NewTxRunner(s),
		Ledger:     memory.NewLedgerRepository(s),
		Sales:      memory.NewSaleRepository(s),
		Shipments:  memory.NewShipmentRepository(s),
		Stores:     memory.NewStoreAssignmentRepository(s),
		Catalog:    memory.NewCatalogRepository(s),
		Authorizer: access.NewRolePolicy(),
		Publisher:  pub,
		Retry:      inventory.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond},
	}
	block := false
	for _, o := range opts {
		o(&deps, &block)
	}
	return &fixture{
		store:     s,
		pub:       pub,
		deps:      deps,
		sales:     inventory.NewSaleUseCase(deps),
		shipments: inventory.NewShipmentUseCase(deps, block),
		stock:     inventory.NewStockUseCase(deps),
	}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ship registra un envío de Cola/500ml como staff-1.
func (f *fixture) ship(t *testing.T, cases, date string) string {
	t.Helper()
	resp, err := f.shipments.Create(context.Background(), owner, inventory.CreateShipmentInput{
		StoreAssignmentID: storeID, BrandName: "Cola", SKU: "500ml", TotalCase: dec(cases), Date: day(date),
	})
	if err != nil {
		t.Fatalf("envío %s: %v", date, err)
	}
	return resp.ID
}

// sell registra una venta de Cola/500ml como staff-1.
func (f *fixture) sell(units, date string) (string, error) {
	resp, err := f.sales.Create(context.Background(), owner, inventory.CreateSaleInput{
		StoreAssignmentID: storeID, BrandName: "Cola", SKU: "500ml", UnitsSold: dec(units), Date: day(date),
	})
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// qty devuelve la cantidad disponible de Cola/500ml (cero si no hay entrada).
func (f *fixture) qty(t *testing.T) decimal.Decimal {
	t.Helper()
	e, err := memory.NewLedgerRepository(f.store).Get(context.Background(), colaKey)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if e == nil {
		return decimal.Zero
	}
	return e.AvailableStockQty
}

// failingRunner siempre falla con err (error de infraestructura).
type failingRunner struct {
	err error
}

func (r failingRunner) Run(context.Context, func(repository.StockLedgerRepository, repository.SaleRepository, repository.ShipmentRepository) error) error {
	return r.err
}
