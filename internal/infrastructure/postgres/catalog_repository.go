package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var (
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.SectorRepository   = (*SectorRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
)

// CategoryRepo categorías del catálogo.
type CategoryRepo struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepo {
	return &CategoryRepo{pool: pool}
}

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO categories (id, company_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.CompanyID, c.Name, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	var c entity.Category
	err := pgxscan.Get(ctx, r.pool, &c, `SELECT id, company_id, name, created_at FROM categories WHERE id = $1`, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Category, error) {
	var list []*entity.Category
	err := pgxscan.Select(ctx, r.pool, &list,
		`SELECT id, company_id, name, created_at FROM categories WHERE company_id = $1 ORDER BY name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return list, nil
}

// SectorRepo setores consumidores; el email opcional recibe alertas.
type SectorRepo struct {
	pool *pgxpool.Pool
}

func NewSectorRepository(pool *pgxpool.Pool) *SectorRepo {
	return &SectorRepo{pool: pool}
}

const sectorColumns = `id, company_id, name, responsible, email, active, created_at, updated_at`

func (r *SectorRepo) Create(ctx context.Context, s *entity.Sector) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sectors (`+sectorColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.CompanyID, s.Name, s.Responsible, s.Email, s.Active, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sector: %w", err)
	}
	return nil
}

func (r *SectorRepo) GetByID(ctx context.Context, id string) (*entity.Sector, error) {
	var s entity.Sector
	if err := pgxscan.Get(ctx, r.pool, &s, `SELECT `+sectorColumns+` FROM sectors WHERE id = $1`, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sector: %w", err)
	}
	return &s, nil
}

func (r *SectorRepo) Update(ctx context.Context, s *entity.Sector) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE sectors SET name = $2, responsible = $3, email = $4, active = $5, updated_at = $6 WHERE id = $1`,
		s.ID, s.Name, s.Responsible, s.Email, s.Active, s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update sector: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SectorRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Sector, error) {
	var list []*entity.Sector
	err := pgxscan.Select(ctx, r.pool, &list,
		`SELECT `+sectorColumns+` FROM sectors WHERE company_id = $1 ORDER BY name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	return list, nil
}

// SupplierRepo fornecedores por CNPJ.
type SupplierRepo struct {
	pool *pgxpool.Pool
}

func NewSupplierRepository(pool *pgxpool.Pool) *SupplierRepo {
	return &SupplierRepo{pool: pool}
}

const supplierColumns = `id, company_id, name, cnpj, email, phone, created_at`

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO suppliers (`+supplierColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.CompanyID, s.Name, s.CNPJ, s.Email, s.Phone, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	var s entity.Supplier
	if err := pgxscan.Get(ctx, r.pool, &s, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return &s, nil
}

func (r *SupplierRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Supplier, error) {
	var list []*entity.Supplier
	err := pgxscan.Select(ctx, r.pool, &list,
		`SELECT `+supplierColumns+` FROM suppliers WHERE company_id = $1 ORDER BY name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return list, nil
}
