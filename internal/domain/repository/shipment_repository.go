package repository

import (
	"context"
	"time"

	"github.com/jhoicas/fieldstock-api/internal/domain/entity"
)

// ShipmentRepository define el puerto de persistencia para envíos.
type ShipmentRepository interface {
	// Create persiste el envío. domain.ErrDuplicate si ya hay uno para (clave, fecha).
	Create(ctx context.Context, shipment *entity.Shipment) error
	GetByID(ctx context.Context, id string) (*entity.Shipment, error)
	ExistsForDate(ctx context.Context, key entity.LedgerKey, date time.Time) (bool, error)
	UpdateDetails(ctx context.Context, shipment *entity.Shipment) error
	Delete(ctx context.Context, id string) error
	ListByStoreAssignment(ctx context.Context, storeAssignmentID string, from, to *time.Time, limit, offset int) ([]*entity.Shipment, error)
}
