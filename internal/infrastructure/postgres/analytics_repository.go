package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura sobre el ledger para dashboard, reposición y relatorios.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// GetMovementTotals suma valores y cantidades de entradas y salidas en [start, end].
func (r *AnalyticsRepo) GetMovementTotals(ctx context.Context, companyID string, start, end time.Time) (repository.MovementTotals, error) {
	const query = `
	SELECT
	    COALESCE(SUM(total_value) FILTER (WHERE type = 'IN'),  0) AS in_value,
	    COALESCE(SUM(total_value) FILTER (WHERE type = 'OUT'), 0) AS out_value,
	    COUNT(*) FILTER (WHERE type = 'IN')                       AS in_count,
	    COUNT(*) FILTER (WHERE type = 'OUT')                      AS out_count,
	    COALESCE(SUM(quantity) FILTER (WHERE type = 'OUT'), 0)    AS out_quantity
	FROM stock_movements
	WHERE company_id = $1
	  AND movement_date BETWEEN $2 AND $3`

	var t repository.MovementTotals
	err := r.pool.QueryRow(ctx, query, companyID, start, end).Scan(
		&t.InValue, &t.OutValue, &t.InCount, &t.OutCount, &t.OutQuantity,
	)
	if err != nil {
		return t, fmt.Errorf("analytics.GetMovementTotals: %w", err)
	}
	return t, nil
}

// GetConsumptionByProduct salidas por producto, mayor valor primero. limit 0 = todos.
func (r *AnalyticsRepo) GetConsumptionByProduct(ctx context.Context, companyID string, start, end time.Time, limit int) ([]repository.ProductConsumption, error) {
	query := `
	SELECT
	    p.id::TEXT,
	    p.code,
	    p.description,
	    SUM(m.quantity)    AS quantity,
	    SUM(m.total_value) AS value
	FROM stock_movements m
	JOIN products p ON p.id = m.product_id
	WHERE m.company_id = $1
	  AND m.type = 'OUT'
	  AND m.movement_date BETWEEN $2 AND $3
	GROUP BY p.id, p.code, p.description
	ORDER BY value DESC, p.code`
	args := []any{companyID, start, end}
	if limit > 0 {
		query += ` LIMIT $4`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetConsumptionByProduct: %w", err)
	}
	defer rows.Close()

	var results []repository.ProductConsumption
	for rows.Next() {
		var row repository.ProductConsumption
		if err := rows.Scan(&row.ProductID, &row.Code, &row.Description, &row.Quantity, &row.Value); err != nil {
			return nil, fmt.Errorf("analytics.GetConsumptionByProduct scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetConsumptionBySector salidas por setor de destino; las salidas sin setor van a "Sem setor".
func (r *AnalyticsRepo) GetConsumptionBySector(ctx context.Context, companyID string, start, end time.Time) ([]repository.SectorConsumption, error) {
	const query = `
	SELECT
	    COALESCE(s.id::TEXT, '')     AS sector_id,
	    COALESCE(s.name, 'Sem setor') AS sector_name,
	    SUM(m.quantity)              AS quantity,
	    SUM(m.total_value)           AS value
	FROM stock_movements m
	LEFT JOIN sectors s ON s.id = m.sector_id
	WHERE m.company_id = $1
	  AND m.type = 'OUT'
	  AND m.movement_date BETWEEN $2 AND $3
	GROUP BY s.id, s.name
	ORDER BY value DESC`

	rows, err := r.pool.Query(ctx, query, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetConsumptionBySector: %w", err)
	}
	defer rows.Close()

	var results []repository.SectorConsumption
	for rows.Next() {
		var row repository.SectorConsumption
		if err := rows.Scan(&row.SectorID, &row.SectorName, &row.Quantity, &row.Value); err != nil {
			return nil, fmt.Errorf("analytics.GetConsumptionBySector scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
