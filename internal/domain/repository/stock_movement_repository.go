package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// MovementFilter filtros de consulta del ledger. Limit 0 = sin límite.
type MovementFilter struct {
	CompanyID string
	ProductID string
	Type      string
	SectorID  string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// StockMovementRepository define el puerto de persistencia del ledger.
// Solo inserción y lectura: un movimiento registrado nunca se modifica.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	// ListByProduct historial completo del producto en orden cronológico.
	ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.StockMovement, error)
	// List aplica el filtro; orden movement_date DESC, created_at DESC.
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
}
