package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
// alert_settings es una columna JSONB serializada desde entity.AlertSettings.
type CompanyRepo struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepo {
	return &CompanyRepo{pool: pool}
}

const companyColumns = `id, name, cnpj, address, phone, email, status, alert_settings, created_at, updated_at`

func scanCompany(row rowScanner) (*entity.Company, error) {
	var c entity.Company
	err := row.Scan(&c.ID, &c.Name, &c.CNPJ, &c.Address, &c.Phone, &c.Email, &c.Status,
		&c.AlertSettings, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste una nueva empresa. CNPJ repetido → domain.ErrDuplicate.
func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	query := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.pool.Exec(ctx, query,
		company.ID, company.Name, company.CNPJ, company.Address,
		company.Phone, company.Email, company.Status, company.AlertSettings,
		company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtiene una empresa por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	c, err := scanCompany(r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

// GetByCNPJ obtiene una empresa por CNPJ (solo dígitos).
func (r *CompanyRepo) GetByCNPJ(ctx context.Context, cnpj string) (*entity.Company, error) {
	c, err := scanCompany(r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE cnpj = $1`, cnpj))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company by CNPJ: %w", err)
	}
	return c, nil
}

// Update actualiza los datos cadastrais; alert_settings tiene su propio método.
func (r *CompanyRepo) Update(ctx context.Context, company *entity.Company) error {
	query := `
		UPDATE companies SET name = $2, cnpj = $3, address = $4, phone = $5, email = $6, status = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query,
		company.ID, company.Name, company.CNPJ, company.Address,
		company.Phone, company.Email, company.Status, company.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update company: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateAlertSettings reemplaza la configuración de alertas de la empresa.
func (r *CompanyRepo) UpdateAlertSettings(ctx context.Context, companyID string, settings entity.AlertSettings) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE companies SET alert_settings = $2, updated_at = now() WHERE id = $1`,
		companyID, settings,
	)
	if err != nil {
		return fmt.Errorf("update alert settings: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListActive devuelve las empresas operativas (recorridas por el digest diario).
func (r *CompanyRepo) ListActive(ctx context.Context) ([]*entity.Company, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE status = $1 ORDER BY created_at`,
		entity.CompanyStatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var list []*entity.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
