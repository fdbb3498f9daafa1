package entity

import "time"

const (
	RoleAdmin       = "admin"       // configura la empresa y las alertas
	RoleAlmoxarife  = "almoxarife"  // registra movimientos y mantiene el catálogo
	RoleSolicitante = "solicitante" // solo consulta
)

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User usuario de una Company. El email es único en todo el sistema (login sin empresa).
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt
	Name         string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive informa si el usuario puede iniciar sesión.
func (u *User) IsActive() bool { return u.Status == UserStatusActive }

// ValidRole valida un rol recibido por la API.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAlmoxarife, RoleSolicitante:
		return true
	}
	return false
}
