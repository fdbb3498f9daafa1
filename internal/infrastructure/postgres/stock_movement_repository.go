package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo ledger append-only sobre PostgreSQL: sin UPDATE ni DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Columnas con alias snake_case para que pgxscan mapee directo a entity.StockMovement.
var movementColumns = []string{
	"id", "company_id", "product_id", "type", "quantity", "total_value",
	"movement_date", "month_ref",
	"COALESCE(supplier_id::text, '') AS supplier_id",
	"COALESCE(sector_id::text, '') AS sector_id",
	"person", "destination", "invoice_number", "notes",
	"pmed_at_time", "created_by", "created_at",
}

// Create inserta un movimiento del ledger.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, company_id, product_id, type, quantity, total_value, movement_date, month_ref,
			supplier_id, sector_id, person, destination, invoice_number, notes, pmed_at_time, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.ProductID, m.Type, m.Quantity, m.TotalValue, m.MovementDate, m.MonthRef,
		nullIfEmpty(m.SupplierID), nullIfEmpty(m.SectorID), m.Person, m.Destination, m.InvoiceNumber, m.Notes,
		m.PmedAtTime, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID; (nil, nil) si no existe.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	query, args, err := psql.Select(movementColumns...).From("stock_movements").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var m entity.StockMovement
	if err := pgxscan.Get(ctx, r.q, &m, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return &m, nil
}

// ListByProduct historial completo del producto en orden cronológico.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.StockMovement, error) {
	query, args, err := psql.Select(movementColumns...).From("stock_movements").
		Where(squirrel.Eq{"company_id": companyID, "product_id": productID}).
		OrderBy("movement_date ASC", "created_at ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var list []*entity.StockMovement
	if err := pgxscan.Select(ctx, r.q, &list, query, args...); err != nil {
		return nil, fmt.Errorf("list movements by product: %w", err)
	}
	return list, nil
}

// List aplica el filtro, más recientes primero.
func (r *StockMovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	q := psql.Select(movementColumns...).From("stock_movements").Where(squirrel.Eq{"company_id": filter.CompanyID})
	if filter.ProductID != "" {
		q = q.Where(squirrel.Eq{"product_id": filter.ProductID})
	}
	if filter.Type != "" {
		q = q.Where(squirrel.Eq{"type": filter.Type})
	}
	if filter.SectorID != "" {
		q = q.Where(squirrel.Eq{"sector_id": filter.SectorID})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"movement_date": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"movement_date": *filter.To})
	}
	q = paginate(q.OrderBy("movement_date DESC", "created_at DESC"), filter.Limit, filter.Offset)

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var list []*entity.StockMovement
	if err := pgxscan.Select(ctx, r.q, &list, query, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return list, nil
}
