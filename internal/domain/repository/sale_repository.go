package repository

import (
	"context"
	"time"

	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas.
type SaleRepository interface {
	// Create persiste la venta. domain.ErrDuplicate si ya hay una para (clave, fecha).
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	ExistsForDate(ctx context.Context, key entity.LedgerKey, date time.Time) (bool, error)
	// UpdateDetails actualiza solo campos sin impacto en el ledger (comentario, estado).
	UpdateDetails(ctx context.Context, sale *entity.Sale) error
	// Delete elimina la venta y devuelve domain.ErrNotFound si ya no existía.
	Delete(ctx context.Context, id string) error
	ListByStoreAssignment(ctx context.Context, storeAssignmentID string, from, to *time.Time, limit, offset int) ([]*entity.Sale, error)
}
