package usecase

import (
	"context"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// UserUseCase consultas de usuarios de la empresa.
type UserUseCase struct {
	repo repository.UserRepository
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// GetByID obtiene un usuario de la empresa.
func (uc *UserUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || user.CompanyID != companyID {
		return nil, domain.ErrUserNotFound
	}
	out := ToUserResponse(user)
	return &out, nil
}

// List usuarios de la empresa ordenados por email.
func (uc *UserUseCase) List(ctx context.Context, companyID string) ([]dto.UserResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, ToUserResponse(u))
	}
	return out, nil
}

// ToUserResponse convierte la entidad sin exponer el hash.
func ToUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
