package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/pkg/clock"
)

// consumptionWindowDays ventana de consumo para la sugerencia de compra.
const consumptionWindowDays = 30

// ReplenishmentUseCase genera la lista de compras sugeridas.
// Combina saldo, mínimo y consumo reciente para priorizar los productos próximos a ruptura.
type ReplenishmentUseCase struct {
	productRepo   repository.ProductRepository
	stockRepo     repository.StockRepository
	analyticsRepo repository.AnalyticsRepository
	clock         clock.Clock
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	analyticsRepo repository.AnalyticsRepository,
	clk clock.Clock,
) *ReplenishmentUseCase {
	if clk == nil {
		clk = clock.Real{}
	}
	return &ReplenishmentUseCase{
		productRepo:   productRepo,
		stockRepo:     stockRepo,
		analyticsRepo: analyticsRepo,
		clock:         clk,
	}
}

// GenerateReplenishmentList devuelve los productos activos con saldo <= mínimo, con la cantidad
// sugerida de compra y prioridad por días hasta la ruptura.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, companyID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	products, err := uc.productRepo.ListByCompany(ctx, companyID, repository.ProductFilter{OnlyActive: true})
	if err != nil {
		return nil, err
	}
	balances, err := uc.stockRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	qtyByID := make(map[string]decimal.Decimal, len(balances))
	for _, b := range balances {
		qtyByID[b.ProductID] = b.Quantity
	}

	// Consumo de los últimos 30 días por producto
	end := uc.clock.Now()
	start := end.AddDate(0, 0, -consumptionWindowDays)
	consumption, err := uc.analyticsRepo.GetConsumptionByProduct(ctx, companyID, start, end, 0)
	if err != nil {
		return nil, err
	}
	outByID := make(map[string]decimal.Decimal, len(consumption))
	for _, c := range consumption {
		outByID[c.ProductID] = c.Quantity
	}

	window := decimal.NewFromInt(consumptionWindowDays)
	factor := decimal.NewFromFloat(1.5)

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0)
	for _, p := range products {
		current := qtyByID[p.ID]
		if current.GreaterThan(p.MinStock) {
			continue
		}
		consumed := outByID[p.ID]
		avgDaily := consumed.Div(window)

		idealStock := p.MinStock.Mul(factor)
		if consumed.GreaterThan(idealStock) {
			idealStock = consumed
		}
		suggestedQty := idealStock.Sub(current)
		if suggestedQty.LessThanOrEqual(decimal.Zero) {
			suggestedQty = decimal.Zero
		}

		s := dto.ReplenishmentSuggestionDTO{
			ProductID:           p.ID,
			Code:                p.Code,
			Description:         p.Description,
			Unit:                p.Unit,
			CurrentStock:        current,
			MinStock:            p.MinStock,
			IdealStock:          idealStock,
			SuggestedOrderQty:   suggestedQty,
			Pmed:                p.Pmed,
			EstimatedOrderCost:  suggestedQty.Mul(p.Pmed).Round(2),
			AvgDailyConsumption: avgDaily.Round(4),
		}
		if avgDaily.GreaterThan(decimal.Zero) {
			days := decimal.Max(current, decimal.Zero).Div(avgDaily).Round(1)
			s.DaysToRupture = &days
		}
		suggestions = append(suggestions, s)
	}

	// Ordenar: primero menos días hasta la ruptura; sin consumo al final, por mayor déficit.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		switch {
		case a.DaysToRupture != nil && b.DaysToRupture != nil:
			if !a.DaysToRupture.Equal(*b.DaysToRupture) {
				return a.DaysToRupture.LessThan(*b.DaysToRupture)
			}
		case a.DaysToRupture != nil:
			return true
		case b.DaysToRupture != nil:
			return false
		}
		defA := a.MinStock.Sub(a.CurrentStock)
		defB := b.MinStock.Sub(b.CurrentStock)
		return defA.GreaterThan(defB)
	})

	// Asignar prioridad (1 = más urgente)
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
