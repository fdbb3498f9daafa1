package entity

import "time"

// Datos de referencia del almoxarifado; todos pertenecen a una Company.

// Sector departamento consumidor (destino de las salidas). Email opcional para alertas.
type Sector struct {
	ID          string
	CompanyID   string
	Name        string
	Responsible string
	Email       string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Supplier fornecedor identificado por CNPJ (solo dígitos).
type Supplier struct {
	ID        string
	CompanyID string
	Name      string
	CNPJ      string
	Email     string
	Phone     string
	CreatedAt time.Time
}

// Category nombre único por empresa.
type Category struct {
	ID        string
	CompanyID string
	Name      string
	CreatedAt time.Time
}
