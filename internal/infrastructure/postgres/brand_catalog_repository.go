package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
	"github.com/jhoicas/fieldstock-api/internal/domain/repository"
)

var _ repository.BrandCatalogRepository = (*BrandCatalogRepo)(nil)

// BrandCatalogRepo lectura del catálogo de marcas por iniciativa.
type BrandCatalogRepo struct {
	q Querier
}

// NewBrandCatalogRepository construye el adaptador.
func NewBrandCatalogRepository(q Querier) *BrandCatalogRepo {
	return &BrandCatalogRepo{q: q}
}

// ListByInitiative devuelve las marcas configuradas para la iniciativa.
func (r *BrandCatalogRepo) ListByInitiative(ctx context.Context, initiativeID string) ([]entity.BrandConfig, error) {
	query := `
		SELECT initiative_id, brand_name, sku, case_units_number, price_per_case
		FROM initiative_brands
		WHERE initiative_id = $1
		ORDER BY brand_name, sku`
	rows, err := r.q.Query(ctx, query, initiativeID)
	if err != nil {
		return nil, fmt.Errorf("list brand catalog: %w", err)
	}
	defer rows.Close()

	var list []entity.BrandConfig
	for rows.Next() {
		var b entity.BrandConfig
		if err := rows.Scan(&b.InitiativeID, &b.Name, &b.SKU, &b.CaseUnitsNumber, &b.PricePerCase); err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}
