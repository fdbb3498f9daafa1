package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// AuditFilter criterios de búsqueda en la trilha de auditoría. Limit 0 = sin límite.
type AuditFilter struct {
	CompanyID  string
	EntityName string
	EntityID   string
	Action     string
	Since      *time.Time
	Limit      int
	Offset     int
}

// AuditLogRepository trilha append-only.
type AuditLogRepository interface {
	Append(ctx context.Context, log *entity.AuditLog) error
	// Find devuelve las entradas más recientes primero.
	Find(ctx context.Context, filter AuditFilter) ([]*entity.AuditLog, error)
}
