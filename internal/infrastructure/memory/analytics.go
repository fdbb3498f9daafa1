package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

type analyticsRepo struct{ s *Store }

func (r analyticsRepo) inRange(m *entity.StockMovement, companyID string, start, end time.Time) bool {
	return m.CompanyID == companyID && !m.MovementDate.Before(start) && !m.MovementDate.After(end)
}

func (r analyticsRepo) GetMovementTotals(_ context.Context, companyID string, start, end time.Time) (repository.MovementTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t := repository.MovementTotals{InValue: decimal.Zero, OutValue: decimal.Zero, OutQuantity: decimal.Zero}
	for _, m := range r.s.movements {
		if !r.inRange(m, companyID, start, end) {
			continue
		}
		if m.Type == entity.MovementTypeIN {
			t.InValue = t.InValue.Add(m.TotalValue)
			t.InCount++
		} else {
			t.OutValue = t.OutValue.Add(m.TotalValue)
			t.OutQuantity = t.OutQuantity.Add(m.Quantity)
			t.OutCount++
		}
	}
	return t, nil
}

func (r analyticsRepo) GetConsumptionByProduct(_ context.Context, companyID string, start, end time.Time, limit int) ([]repository.ProductConsumption, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	agg := make(map[string]*repository.ProductConsumption)
	for _, m := range r.s.movements {
		if m.Type != entity.MovementTypeOUT || !r.inRange(m, companyID, start, end) {
			continue
		}
		pc, ok := agg[m.ProductID]
		if !ok {
			pc = &repository.ProductConsumption{ProductID: m.ProductID}
			if p, found := r.s.products[m.ProductID]; found {
				pc.Code, pc.Description = p.Code, p.Description
			}
			agg[m.ProductID] = pc
		}
		pc.Quantity = pc.Quantity.Add(m.Quantity)
		pc.Value = pc.Value.Add(m.TotalValue)
	}
	out := make([]repository.ProductConsumption, 0, len(agg))
	for _, pc := range agg {
		out = append(out, *pc)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Value.Equal(out[j].Value) {
			return out[i].Value.GreaterThan(out[j].Value)
		}
		return out[i].Code < out[j].Code
	})
	return paginate(out, limit, 0), nil
}

func (r analyticsRepo) GetConsumptionBySector(_ context.Context, companyID string, start, end time.Time) ([]repository.SectorConsumption, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	agg := make(map[string]*repository.SectorConsumption)
	for _, m := range r.s.movements {
		if m.Type != entity.MovementTypeOUT || !r.inRange(m, companyID, start, end) {
			continue
		}
		sc, ok := agg[m.SectorID]
		if !ok {
			sc = &repository.SectorConsumption{SectorID: m.SectorID, SectorName: "Sem setor"}
			if sec, found := r.s.sectors[m.SectorID]; found {
				sc.SectorName = sec.Name
			}
			agg[m.SectorID] = sc
		}
		sc.Quantity = sc.Quantity.Add(m.Quantity)
		sc.Value = sc.Value.Add(m.TotalValue)
	}
	out := make([]repository.SectorConsumption, 0, len(agg))
	for _, sc := range agg {
		out = append(out, *sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value.GreaterThan(out[j].Value) })
	return out, nil
}
