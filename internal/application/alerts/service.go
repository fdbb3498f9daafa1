package alerts

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/alert"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/pkg/clock"
)

// Service evalúa cada movimiento confirmado y despacha los eventos resultantes.
// Implementa inventory.MovementObserver.
type Service struct {
	companies  repository.CompanyRepository
	movements  repository.StockMovementRepository
	evaluator  *alert.Evaluator
	dispatcher *Dispatcher
	clock      clock.Clock
}

// NewService construye el servicio de alertas.
func NewService(
	companies repository.CompanyRepository,
	movements repository.StockMovementRepository,
	evaluator *alert.Evaluator,
	dispatcher *Dispatcher,
	clk clock.Clock,
) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{
		companies:  companies,
		movements:  movements,
		evaluator:  evaluator,
		dispatcher: dispatcher,
		clock:      clk,
	}
}

// OnMovementRecorded evalúa el movimiento y despacha cada evento.
// Un evento que falla no impide despachar los demás; los errores se devuelven unidos.
func (s *Service) OnMovementRecorded(ctx context.Context, product *entity.Product, movement *entity.StockMovement, resultingBalance decimal.Decimal) error {
	company, err := s.companies.GetByID(ctx, movement.CompanyID)
	if err != nil {
		return err
	}
	if company == nil {
		return domain.ErrNotFound
	}
	settings := company.AlertSettings
	if !settings.MinStock && !settings.UnusualConsumption {
		return nil
	}

	history, err := s.movements.ListByProduct(ctx, movement.CompanyID, movement.ProductID)
	if err != nil {
		return err
	}
	events := s.evaluator.Evaluate(alert.Input{
		Product:          product,
		Movement:         movement,
		ResultingBalance: resultingBalance,
		History:          history,
		Settings:         settings,
		Now:              s.clock.Now(),
	})

	var errs []error
	for _, ev := range events {
		if err := s.dispatcher.Dispatch(ctx, company, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
