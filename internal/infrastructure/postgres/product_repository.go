package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

var productColumns = []string{
	"id", "company_id", "code", "description", "unit",
	"COALESCE(category_id::text, '')", "COALESCE(supplier_id::text, '')",
	"min_stock", "pmed", "active", "created_at", "updated_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.CompanyID, &p.Code, &p.Description, &p.Unit, &p.CategoryID, &p.SupplierID,
		&p.MinStock, &p.Pmed, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto. Código repetido en la empresa → domain.ErrDuplicate.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, company_id, code, description, unit, category_id, supplier_id, min_stock, pmed, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.CompanyID, product.Code, product.Description, product.Unit,
		nullIfEmpty(product.CategoryID), nullIfEmpty(product.SupplierID),
		product.MinStock, product.Pmed, product.Active, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query, args, err := psql.Select(productColumns...).From("products").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByCompanyAndCode obtiene un producto por empresa y código normalizado.
func (r *ProductRepo) GetByCompanyAndCode(ctx context.Context, companyID, code string) (*entity.Product, error) {
	query, args, err := psql.Select(productColumns...).From("products").
		Where(squirrel.Eq{"company_id": companyID, "code": code}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by code: %w", err)
	}
	return p, nil
}

// Update actualiza los datos de catálogo. pmed no se toca: solo UpdatePmed lo escribe.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET code = $2, description = $3, unit = $4, category_id = $5, supplier_id = $6,
			min_stock = $7, active = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		product.ID, product.Code, product.Description, product.Unit,
		nullIfEmpty(product.CategoryID), nullIfEmpty(product.SupplierID),
		product.MinStock, product.Active, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdatePmed actualiza solo el costo medio (motor de costo, dentro de la tx del movimiento).
func (r *ProductRepo) UpdatePmed(ctx context.Context, productID string, pmed decimal.Decimal) error {
	_, err := r.q.Exec(ctx, `UPDATE products SET pmed = $2, updated_at = now() WHERE id = $1`, productID, pmed)
	if err != nil {
		return fmt.Errorf("update product pmed: %w", err)
	}
	return nil
}

// ListByCompany lista productos por empresa con búsqueda, categoría y paginación.
func (r *ProductRepo) ListByCompany(ctx context.Context, companyID string, filter repository.ProductFilter) ([]*entity.Product, error) {
	q := psql.Select(productColumns...).From("products").Where(squirrel.Eq{"company_id": companyID})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{squirrel.ILike{"code": like}, squirrel.ILike{"description": like}})
	}
	if filter.CategoryID != "" {
		q = q.Where(squirrel.Eq{"category_id": filter.CategoryID})
	}
	if filter.OnlyActive {
		q = q.Where(squirrel.Eq{"active": true})
	}
	q = paginate(q.OrderBy("code"), filter.Limit, filter.Offset)

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
