// Package analytics contiene los casos de uso de lectura: dashboard, relatório mensal
// (narrativo por IA) y posição de estoque en PDF.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// position foto del estoque actual: productos activos con saldo, valor y riesgo.
type position struct {
	items       []dto.StockPositionItemDTO
	totalValue  decimal.Decimal
	atRiskCount int
}

func loadPosition(ctx context.Context, products repository.ProductRepository, stock repository.StockRepository, companyID string) (*position, error) {
	list, err := products.ListByCompany(ctx, companyID, repository.ProductFilter{OnlyActive: true})
	if err != nil {
		return nil, fmt.Errorf("posição: productos: %w", err)
	}
	balances, err := stock.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("posição: saldos: %w", err)
	}
	qty := make(map[string]decimal.Decimal, len(balances))
	for _, b := range balances {
		qty[b.ProductID] = b.Quantity
	}

	pos := &position{totalValue: decimal.Zero}
	for _, p := range list {
		bal := qty[p.ID]
		value := bal.Mul(p.Pmed).Round(2)
		atRisk := bal.LessThanOrEqual(p.MinStock)
		if atRisk {
			pos.atRiskCount++
		}
		pos.totalValue = pos.totalValue.Add(value)
		pos.items = append(pos.items, dto.StockPositionItemDTO{
			Code:        p.Code,
			Description: p.Description,
			Unit:        p.Unit,
			Balance:     bal,
			MinStock:    p.MinStock,
			Pmed:        p.Pmed,
			Value:       value,
			AtRisk:      atRisk,
		})
	}
	sort.Slice(pos.items, func(i, j int) bool { return pos.items[i].Code < pos.items[j].Code })
	return pos, nil
}

// monthRange [día 1 00:00, último instante del mes] en loc.
func monthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Março 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
		"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}

func toTopConsumed(rows []repository.ProductConsumption) []dto.TopConsumedDTO {
	out := make([]dto.TopConsumedDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TopConsumedDTO{
			ProductID:   r.ProductID,
			Code:        r.Code,
			Description: r.Description,
			Quantity:    r.Quantity,
			Value:       r.Value.Round(2),
		})
	}
	return out
}
