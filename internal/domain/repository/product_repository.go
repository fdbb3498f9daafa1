package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// ProductFilter filtros del listado de catálogo. Limit 0 = sin límite.
type ProductFilter struct {
	Search     string // código o descripción (ILIKE)
	CategoryID string
	OnlyActive bool
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetByCompanyAndCode devuelven (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCompanyAndCode(ctx context.Context, companyID, code string) (*entity.Product, error)
	// Update escribe los datos de catálogo; nunca el pmed.
	Update(ctx context.Context, product *entity.Product) error
	// UpdatePmed persiste el costo medio: motor de costo o edición explícita, siempre con el saldo bloqueado.
	UpdatePmed(ctx context.Context, productID string, pmed decimal.Decimal) error
	ListByCompany(ctx context.Context, companyID string, filter ProductFilter) ([]*entity.Product, error)
}
