package repository

import (
	"context"

	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
)

// BrandCatalogRepository puerto de lectura del catálogo de marcas de una iniciativa.
type BrandCatalogRepository interface {
	// ListByInitiative devuelve un snapshot de las marcas configuradas para la iniciativa.
	ListByInitiative(ctx context.Context, initiativeID string) ([]entity.BrandConfig, error)
}
