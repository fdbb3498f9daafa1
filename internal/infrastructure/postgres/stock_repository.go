package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo saldo materializado (tabla stock_balances) sobre PostgreSQL, usable con pool o tx.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de saldo. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `company_id, product_id, quantity, updated_at`

// Get obtiene el saldo actual; (nil, nil) si el producto nunca tuvo movimientos.
func (r *StockRepo) Get(ctx context.Context, companyID, productID string) (*entity.StockBalance, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_balances WHERE company_id = $1 AND product_id = $2`
	var s entity.StockBalance
	err := r.q.QueryRow(ctx, query, companyID, productID).Scan(&s.CompanyID, &s.ProductID, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// GetForUpdate bloquea la fila del saldo (SELECT FOR UPDATE).
// Si no existe la inserta en cero primero: sin fila no hay nada que bloquear y dos
// primeras salidas concurrentes pasarían el guard a la vez.
func (r *StockRepo) GetForUpdate(ctx context.Context, companyID, productID string) (*entity.StockBalance, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_balances (company_id, product_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (company_id, product_id) DO NOTHING`, companyID, productID)
	if err != nil {
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}

	query := `SELECT ` + stockColumns + ` FROM stock_balances
		WHERE company_id = $1 AND product_id = $2
		FOR UPDATE`
	var s entity.StockBalance
	if err := r.q.QueryRow(ctx, query, companyID, productID).Scan(&s.CompanyID, &s.ProductID, &s.Quantity, &s.UpdatedAt); err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza el saldo del producto.
func (r *StockRepo) Upsert(ctx context.Context, balance *entity.StockBalance) error {
	query := `
		INSERT INTO stock_balances (company_id, product_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, balance.CompanyID, balance.ProductID, balance.Quantity, balance.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// ListByCompany todos los saldos de la empresa.
func (r *StockRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.StockBalance, error) {
	rows, err := r.q.Query(ctx, `SELECT `+stockColumns+` FROM stock_balances WHERE company_id = $1 ORDER BY product_id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockBalance
	for rows.Next() {
		var s entity.StockBalance
		if err := rows.Scan(&s.CompanyID, &s.ProductID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
