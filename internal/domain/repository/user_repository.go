package repository

import (
	"context"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.User, error)
}
