package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInactiveProduct    = errors.New("producto inactivo")
)

// InsufficientStockError rechazo de una salida mayor que el saldo disponible.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	ProductID string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %s, solicitado %s",
		e.ProductID, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ValidationError error de entrada con el campo afectado; envuelve ErrInvalidInput.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid atajo para construir un ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
