package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// AlertStateRepository estado de cooldown y silencio por (empresa, tipo, producto).
type AlertStateRepository interface {
	// Get devuelve (nil, nil) si la alerta nunca fue enviada ni silenciada.
	Get(ctx context.Context, companyID, alertType, productID string) (*entity.AlertState, error)
	MarkSent(ctx context.Context, companyID, alertType, productID string, at time.Time) error
	Silence(ctx context.Context, companyID, alertType, productID string, until time.Time) error
}

// DigestRepository cola de advertencias y registro de resúmenes diarios enviados.
type DigestRepository interface {
	Enqueue(ctx context.Context, item *entity.DigestItem) error
	ListItemsSince(ctx context.Context, companyID string, since time.Time) ([]*entity.DigestItem, error)
	GetRun(ctx context.Context, companyID, digestDate string) (*entity.DigestRun, error)
	// CreateRun devuelve domain.ErrDuplicate si ya existe un resumen para (empresa, fecha).
	CreateRun(ctx context.Context, run *entity.DigestRun) error
}
