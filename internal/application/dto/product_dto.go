package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Code        string          `json:"code" validate:"required,min=1,max=60"`
	Description string          `json:"description" validate:"required,min=1,max=200"`
	Unit        string          `json:"unit" validate:"required"`
	CategoryID  string          `json:"category_id"`
	SupplierID  string          `json:"supplier_id"`
	MinStock    decimal.Decimal `json:"min_stock"`
	Pmed        decimal.Decimal `json:"pmed"` // costo inicial opcional
}

// UpdateProductRequest entrada para actualizar un producto. Pmed explícito queda auditado.
type UpdateProductRequest struct {
	Code        *string          `json:"code"`
	Description *string          `json:"description"`
	Unit        *string          `json:"unit"`
	CategoryID  *string          `json:"category_id"`
	SupplierID  *string          `json:"supplier_id"`
	MinStock    *decimal.Decimal `json:"min_stock"`
	Pmed        *decimal.Decimal `json:"pmed"`
}

// ProductListRequest query de GET /api/products.
type ProductListRequest struct {
	Search     string `query:"search"`
	CategoryID string `query:"category_id"`
	All        bool   `query:"all"` // incluir inactivos
	PageRequest
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	CompanyID   string          `json:"company_id"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	CategoryID  string          `json:"category_id,omitempty"`
	SupplierID  string          `json:"supplier_id,omitempty"`
	MinStock    decimal.Decimal `json:"min_stock"`
	Pmed        decimal.Decimal `json:"pmed"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToProductResponse convierte la entidad.
func ToProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		CompanyID:   p.CompanyID,
		Code:        p.Code,
		Description: p.Description,
		Unit:        p.Unit,
		CategoryID:  p.CategoryID,
		SupplierID:  p.SupplierID,
		MinStock:    p.MinStock,
		Pmed:        p.Pmed,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
