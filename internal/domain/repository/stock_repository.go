package repository

import (
	"context"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// StockRepository define el puerto para el saldo materializado por producto.
// Usado dentro de transacciones para garantizar consistencia con el ledger.
type StockRepository interface {
	// Get devuelve (nil, nil) si el producto nunca tuvo movimientos.
	Get(ctx context.Context, companyID, productID string) (*entity.StockBalance, error)
	// GetForUpdate bloquea la fila del saldo (SELECT FOR UPDATE), creándola en cero si no existe.
	GetForUpdate(ctx context.Context, companyID, productID string) (*entity.StockBalance, error)
	Upsert(ctx context.Context, balance *entity.StockBalance) error
	ListByCompany(ctx context.Context, companyID string) ([]*entity.StockBalance, error)
}
