package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldstock-api/internal/domain"
	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
)

// Seed datos iniciales para STORAGE_DRIVER=memory (MEMORY_SEED_FILE).
type Seed struct {
	StoreAssignments []SeedAssignment `json:"store_assignments" validate:"dive"`
	Brands           []SeedBrand      `json:"brands" validate:"dive"`
}

// SeedAssignment asignación de tienda del seed.
type SeedAssignment struct {
	ID           string `json:"id" validate:"required"`
	InitiativeID string `json:"initiative_id" validate:"required"`
	StoreID      string `json:"store_id"`
	StoreName    string `json:"store_name"`
	StaffID      string `json:"staff_id" validate:"required"`
}

// SeedBrand marca del catálogo del seed.
type SeedBrand struct {
	InitiativeID    string          `json:"initiative_id" validate:"required"`
	Name            string          `json:"brand_name" validate:"required"`
	SKU             string          `json:"sku" validate:"required"`
	CaseUnitsNumber int             `json:"case_units_number" validate:"min=1"`
	PricePerCase    decimal.Decimal `json:"price_per_case"`
}

// LoadSeed lee un Seed en JSON y lo carga en el store. Devuelve cuántas asignaciones y marcas cargó.
func LoadSeed(s *Store, r io.Reader) (assignments, brands int, err error) {
	var seed Seed
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&seed); err != nil {
		return 0, 0, fmt.Errorf("%w: seed: %v", domain.ErrInvalidInput, err)
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(seed); err != nil {
		return 0, 0, fmt.Errorf("%w: seed: %v", domain.ErrInvalidInput, err)
	}

	now := s.now().UTC()
	for _, a := range seed.StoreAssignments {
		s.PutStoreAssignment(entity.StoreAssignment{
			ID: a.ID, InitiativeID: a.InitiativeID, StoreID: a.StoreID, StoreName: a.StoreName,
			StaffID: a.StaffID, CreatedAt: now.Truncate(time.Second),
		})
	}
	for _, b := range seed.Brands {
		brand := entity.BrandConfig{
			InitiativeID: b.InitiativeID, Name: b.Name, SKU: b.SKU,
			CaseUnitsNumber: b.CaseUnitsNumber, PricePerCase: b.PricePerCase,
		}
		if !brand.Valid() {
			return 0, 0, fmt.Errorf("%w: seed: marca %s/%s con precio negativo", domain.ErrInvalidInput, b.Name, b.SKU)
		}
		s.PutBrand(brand)
	}
	return len(seed.StoreAssignments), len(seed.Brands), nil
}
