package repository

import (
	"context"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	GetByCNPJ(ctx context.Context, cnpj string) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
	UpdateAlertSettings(ctx context.Context, companyID string, settings entity.AlertSettings) error
	// ListActive empresas con status active (usado por el digest diario).
	ListActive(ctx context.Context) ([]*entity.Company, error)
}
