package repository

import (
	"context"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Category, error)
}

// SectorRepository define el puerto de persistencia para Sector.
type SectorRepository interface {
	Create(ctx context.Context, sector *entity.Sector) error
	GetByID(ctx context.Context, id string) (*entity.Sector, error)
	Update(ctx context.Context, sector *entity.Sector) error
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Sector, error)
}

// SupplierRepository define el puerto de persistencia para Supplier.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Supplier, error)
}
