package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: guard, ledger, costo y saldo confirman juntos o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		auditRepo repository.AuditLogRepository,
	) error) error
}

// MovementObserver recibe cada movimiento ya confirmado.
// Se invoca fuera de la transacción; un error no revierte el movimiento.
type MovementObserver interface {
	OnMovementRecorded(ctx context.Context, product *entity.Product, movement *entity.StockMovement, resultingBalance decimal.Decimal) error
}
