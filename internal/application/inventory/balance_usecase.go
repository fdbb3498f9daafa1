package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// StockQueryUseCase consultas de saldo y del ledger.
type StockQueryUseCase struct {
	stockRepo   repository.StockRepository
	movRepo     repository.StockMovementRepository
	productRepo repository.ProductRepository
}

// NewStockQueryUseCase construye el caso de uso.
func NewStockQueryUseCase(
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
) *StockQueryUseCase {
	return &StockQueryUseCase{stockRepo: stockRepo, movRepo: movRepo, productRepo: productRepo}
}

// GetBalance saldo actual de un producto; cero si nunca tuvo movimientos.
func (uc *StockQueryUseCase) GetBalance(ctx context.Context, companyID, productID string) (*dto.BalanceDTO, error) {
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if p.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	b, err := uc.stockRepo.Get(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	qty := decimal.Zero
	if b != nil {
		qty = b.Quantity
	}
	out := toBalanceDTO(p, qty)
	return &out, nil
}

// GetAllBalances saldos de la empresa; omite productos con saldo cero.
func (uc *StockQueryUseCase) GetAllBalances(ctx context.Context, companyID string) ([]dto.BalanceDTO, error) {
	balances, err := uc.stockRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	products, err := uc.productsByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BalanceDTO, 0, len(balances))
	for _, b := range balances {
		if b.Quantity.IsZero() {
			continue
		}
		p, ok := products[b.ProductID]
		if !ok {
			p = &entity.Product{ID: b.ProductID}
		}
		out = append(out, toBalanceDTO(p, b.Quantity))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// Reconcile recalcula Σ IN − Σ OUT sobre todo el ledger y lo compara con los saldos materializados.
func (uc *StockQueryUseCase) Reconcile(ctx context.Context, companyID string) (*dto.ReconcileReportDTO, error) {
	movs, err := uc.movRepo.List(ctx, repository.MovementFilter{CompanyID: companyID})
	if err != nil {
		return nil, err
	}
	balances, err := uc.stockRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	materialized := make(map[string]decimal.Decimal, len(balances))
	for _, b := range balances {
		materialized[b.ProductID] = b.Quantity
	}
	ledger := inventory.FoldBalances(movs)

	diffs := inventory.Reconcile(materialized, ledger)
	sort.Slice(diffs, func(i, j int) bool { return diffs[i].ProductID < diffs[j].ProductID })

	checked := len(materialized)
	for id := range ledger {
		if _, ok := materialized[id]; !ok {
			checked++
		}
	}
	report := &dto.ReconcileReportDTO{
		CheckedProducts: checked,
		Consistent:      len(diffs) == 0,
		Discrepancies:   make([]dto.DiscrepancyDTO, 0, len(diffs)),
	}
	for _, d := range diffs {
		report.Discrepancies = append(report.Discrepancies, dto.DiscrepancyDTO{
			ProductID:    d.ProductID,
			Materialized: d.Materialized,
			Ledger:       d.Ledger,
		})
	}
	return report, nil
}

// ListMovements consulta el ledger con filtros. Fechas YYYY-MM-DD, "to" inclusivo.
func (uc *StockQueryUseCase) ListMovements(ctx context.Context, companyID string, req dto.MovementListRequest) (*dto.MovementListResponse, error) {
	req.DefaultPage()
	f := repository.MovementFilter{
		CompanyID: companyID,
		ProductID: req.ProductID,
		Type:      req.Type,
		SectorID:  req.SectorID,
		Limit:     req.Limit,
		Offset:    req.Offset,
	}
	if f.Type != "" && f.Type != entity.MovementTypeIN && f.Type != entity.MovementTypeOUT {
		return nil, domain.Invalid("type", "debe ser IN u OUT")
	}
	if req.From != "" {
		from, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			return nil, domain.Invalid("from", "formato esperado YYYY-MM-DD")
		}
		f.From = &from
	}
	if req.To != "" {
		to, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			return nil, domain.Invalid("to", "formato esperado YYYY-MM-DD")
		}
		to = to.Add(24*time.Hour - time.Nanosecond)
		f.To = &to
	}
	movs, err := uc.movRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementDTO, 0, len(movs))
	for _, m := range movs {
		items = append(items, dto.ToMovementDTO(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  req.PageRequest.Response(),
	}, nil
}

func (uc *StockQueryUseCase) productsByID(ctx context.Context, companyID string) (map[string]*entity.Product, error) {
	products, err := uc.productRepo.ListByCompany(ctx, companyID, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	out := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func toBalanceDTO(p *entity.Product, qty decimal.Decimal) dto.BalanceDTO {
	return dto.BalanceDTO{
		ProductID:   p.ID,
		Code:        p.Code,
		Description: p.Description,
		Unit:        p.Unit,
		Quantity:    qty,
		MinStock:    p.MinStock,
		Pmed:        p.Pmed,
		TotalValue:  qty.Mul(p.Pmed).Round(2),
		BelowMin:    qty.LessThanOrEqual(p.MinStock),
	}
}
