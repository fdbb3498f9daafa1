package inventory

import (
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/shopspring/decimal"
)

// CheckOutflow valida una salida contra el saldo disponible.
// Devuelve *domain.InsufficientStockError cuando requested > available.
func CheckOutflow(productID string, available, requested decimal.Decimal) error {
	if requested.GreaterThan(available) {
		return &domain.InsufficientStockError{
			ProductID: productID,
			Available: available,
			Requested: requested,
		}
	}
	return nil
}
