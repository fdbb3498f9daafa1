package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var (
	_ repository.AlertStateRepository = (*AlertStateRepo)(nil)
	_ repository.DigestRepository     = (*DigestRepo)(nil)
)

// AlertStateRepo una fila por (empresa, tipo, producto) con último envío y silencio.
type AlertStateRepo struct {
	pool *pgxpool.Pool
}

// NewAlertStateRepository construye el adaptador de estado de alertas.
func NewAlertStateRepository(pool *pgxpool.Pool) *AlertStateRepo {
	return &AlertStateRepo{pool: pool}
}

// Get devuelve (nil, nil) si la alerta nunca fue enviada ni silenciada.
func (r *AlertStateRepo) Get(ctx context.Context, companyID, alertType, productID string) (*entity.AlertState, error) {
	query := `
		SELECT company_id, alert_type, product_id, last_sent_at, silenced_until, updated_at
		FROM alert_states WHERE company_id = $1 AND alert_type = $2 AND product_id = $3`
	var s entity.AlertState
	err := r.pool.QueryRow(ctx, query, companyID, alertType, productID).Scan(
		&s.CompanyID, &s.AlertType, &s.ProductID, &s.LastSentAt, &s.SilencedUntil, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alert state: %w", err)
	}
	return &s, nil
}

// MarkSent registra el envío; inicia el cooldown.
func (r *AlertStateRepo) MarkSent(ctx context.Context, companyID, alertType, productID string, at time.Time) error {
	query := `
		INSERT INTO alert_states (company_id, alert_type, product_id, last_sent_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (company_id, alert_type, product_id)
		DO UPDATE SET last_sent_at = EXCLUDED.last_sent_at, updated_at = EXCLUDED.updated_at`
	if _, err := r.pool.Exec(ctx, query, companyID, alertType, productID, at); err != nil {
		return fmt.Errorf("mark alert sent: %w", err)
	}
	return nil
}

// Silence suprime la alerta hasta until sin tocar last_sent_at.
func (r *AlertStateRepo) Silence(ctx context.Context, companyID, alertType, productID string, until time.Time) error {
	query := `
		INSERT INTO alert_states (company_id, alert_type, product_id, silenced_until, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (company_id, alert_type, product_id)
		DO UPDATE SET silenced_until = EXCLUDED.silenced_until, updated_at = now()`
	if _, err := r.pool.Exec(ctx, query, companyID, alertType, productID, until); err != nil {
		return fmt.Errorf("silence alert: %w", err)
	}
	return nil
}

// DigestRepo cola de advertencias (digest_items) y envíos diarios (digest_runs).
type DigestRepo struct {
	pool *pgxpool.Pool
}

// NewDigestRepository construye el adaptador del digest.
func NewDigestRepository(pool *pgxpool.Pool) *DigestRepo {
	return &DigestRepo{pool: pool}
}

// Enqueue agrega una advertencia a la cola.
func (r *DigestRepo) Enqueue(ctx context.Context, item *entity.DigestItem) error {
	query := `
		INSERT INTO digest_items (id, company_id, alert_type, product_id, product_name, severity, metrics, suggestion, queued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, query,
		item.ID, item.CompanyID, item.AlertType, item.ProductID, item.ProductName,
		item.Severity, nullJSON(item.Metrics), item.Suggestion, item.QueuedAt,
	)
	if err != nil {
		return fmt.Errorf("enqueue digest item: %w", err)
	}
	return nil
}

// ListItemsSince advertencias encoladas desde since, en orden de llegada.
func (r *DigestRepo) ListItemsSince(ctx context.Context, companyID string, since time.Time) ([]*entity.DigestItem, error) {
	query := `
		SELECT id, company_id, alert_type, product_id, product_name, severity, COALESCE(metrics, 'null'::jsonb), suggestion, queued_at
		FROM digest_items WHERE company_id = $1 AND queued_at >= $2
		ORDER BY queued_at`
	rows, err := r.pool.Query(ctx, query, companyID, since)
	if err != nil {
		return nil, fmt.Errorf("list digest items: %w", err)
	}
	defer rows.Close()
	var list []*entity.DigestItem
	for rows.Next() {
		var (
			it      entity.DigestItem
			metrics []byte
		)
		if err := rows.Scan(&it.ID, &it.CompanyID, &it.AlertType, &it.ProductID, &it.ProductName,
			&it.Severity, &metrics, &it.Suggestion, &it.QueuedAt); err != nil {
			return nil, fmt.Errorf("scan digest item: %w", err)
		}
		it.Metrics = metrics
		list = append(list, &it)
	}
	return list, rows.Err()
}

// GetRun devuelve el envío del día o (nil, nil).
func (r *DigestRepo) GetRun(ctx context.Context, companyID, digestDate string) (*entity.DigestRun, error) {
	query := `
		SELECT company_id, digest_date::text, sent_at, recipients, item_count, at_risk_count
		FROM digest_runs WHERE company_id = $1 AND digest_date = $2`
	var run entity.DigestRun
	err := r.pool.QueryRow(ctx, query, companyID, digestDate).Scan(
		&run.CompanyID, &run.DigestDate, &run.SentAt, &run.Recipients, &run.ItemCount, &run.AtRiskCount,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get digest run: %w", err)
	}
	return &run, nil
}

// CreateRun registra el envío; la PK (company_id, digest_date) lo hace idempotente.
func (r *DigestRepo) CreateRun(ctx context.Context, run *entity.DigestRun) error {
	query := `
		INSERT INTO digest_runs (company_id, digest_date, sent_at, recipients, item_count, at_risk_count)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		run.CompanyID, run.DigestDate, run.SentAt, run.Recipients, run.ItemCount, run.AtRiskCount,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert digest run: %w", err)
	}
	return nil
}
