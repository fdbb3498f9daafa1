package dto

import "time"

// RegisterRequest entrada para registro (auth): email, password, company_id.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	CompanyID string `json:"company_id" validate:"required,uuid"`
	Name      string `json:"name" validate:"omitempty,max=200"`
	Role      string `json:"role" validate:"omitempty,oneof=admin almoxarife solicitante"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// SignupRequest alta de una empresa nueva con su primer administrador.
type SignupRequest struct {
	Company  CreateCompanyRequest `json:"company"`
	Name     string               `json:"name" validate:"omitempty,max=200"`
	Email    string               `json:"email" validate:"required,email"`
	Password string               `json:"password" validate:"required,min=8"`
}

// SignupResponse empresa creada y token del administrador.
type SignupResponse struct {
	Company CompanyResponse `json:"company"`
	Token   string          `json:"token"`
	User    UserResponse    `json:"user"`
}
