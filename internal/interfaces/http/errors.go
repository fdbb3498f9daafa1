package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/almoxarifado-api/internal/application/analytics"
	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
)

// insufficientStockResponse 409 de una salida rechazada, con el saldo disponible.
type insufficientStockResponse struct {
	dto.ErrorResponse
	Available string `json:"available"`
	Requested string `json:"requested"`
}

// writeError traduce errores de dominio a status HTTP y dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.Status(fiber.StatusConflict).JSON(insufficientStockResponse{
			ErrorResponse: dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "saldo insuficiente"},
			Available:     stockErr.Available.String(),
			Requested:     stockErr.Requested.String(),
		})
	}
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: vErr.Error()})
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "dados inválidos"})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso não encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acesso negado ao recurso"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciais inválidas"})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: "email já cadastrado"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "registro duplicado"})
	case errors.Is(err, domain.ErrInactiveProduct):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INACTIVE_PRODUCT", Message: "produto inativo"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, analytics.ErrNarrativeUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "AI_UNAVAILABLE", Message: err.Error()})
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("erro interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "erro interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
}

func badQuery(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parâmetros inválidos"})
}
