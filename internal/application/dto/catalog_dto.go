package dto

import "time"

// CreateSectorRequest entrada para crear un setor.
type CreateSectorRequest struct {
	Name        string `json:"name" validate:"required"`
	Responsible string `json:"responsible"`
	Email       string `json:"email" validate:"omitempty,email"`
}

// UpdateSectorRequest campos opcionales de un setor.
type UpdateSectorRequest struct {
	Name        *string `json:"name"`
	Responsible *string `json:"responsible"`
	Email       *string `json:"email"`
	Active      *bool   `json:"active"`
}

// SectorResponse salida de un setor.
type SectorResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Responsible string    `json:"responsible,omitempty"`
	Email       string    `json:"email,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateSupplierRequest entrada para crear un fornecedor.
type CreateSupplierRequest struct {
	Name  string `json:"name" validate:"required"`
	CNPJ  string `json:"cnpj"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// SupplierResponse salida de un fornecedor.
type SupplierResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CNPJ      string    `json:"cnpj,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCategoryRequest entrada para crear una categoria.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// CategoryResponse salida de una categoria.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
