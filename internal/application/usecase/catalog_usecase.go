package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/pkg/clock"
)

// CatalogUseCase datos de referencia de la empresa: setores, fornecedores y categorias.
type CatalogUseCase struct {
	sectors    repository.SectorRepository
	suppliers  repository.SupplierRepository
	categories repository.CategoryRepository
	clock      clock.Clock
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(
	sectors repository.SectorRepository,
	suppliers repository.SupplierRepository,
	categories repository.CategoryRepository,
	clk clock.Clock,
) *CatalogUseCase {
	if clk == nil {
		clk = clock.Real{}
	}
	return &CatalogUseCase{sectors: sectors, suppliers: suppliers, categories: categories, clock: clk}
}

// CreateSector crea un setor activo. Nombre repetido en la empresa → domain.ErrDuplicate.
func (uc *CatalogUseCase) CreateSector(ctx context.Context, companyID string, in dto.CreateSectorRequest) (*dto.SectorResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "obrigatório")
	}
	email := strings.TrimSpace(in.Email)
	if email != "" && !strings.Contains(email, "@") {
		return nil, domain.Invalid("email", "email inválido")
	}
	now := uc.clock.Now()
	sector := &entity.Sector{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		Name:        name,
		Responsible: strings.TrimSpace(in.Responsible),
		Email:       email,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.sectors.Create(ctx, sector); err != nil {
		return nil, err
	}
	out := toSectorResponse(sector)
	return &out, nil
}

// GetSector obtiene un setor de la empresa.
func (uc *CatalogUseCase) GetSector(ctx context.Context, companyID, id string) (*dto.SectorResponse, error) {
	sector, err := uc.loadSector(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	out := toSectorResponse(sector)
	return &out, nil
}

// UpdateSector aplica los campos presentes.
func (uc *CatalogUseCase) UpdateSector(ctx context.Context, companyID, id string, in dto.UpdateSectorRequest) (*dto.SectorResponse, error) {
	sector, err := uc.loadSector(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name", "obrigatório")
		}
		sector.Name = name
	}
	if in.Responsible != nil {
		sector.Responsible = strings.TrimSpace(*in.Responsible)
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != "" && !strings.Contains(email, "@") {
			return nil, domain.Invalid("email", "email inválido")
		}
		sector.Email = email
	}
	if in.Active != nil {
		sector.Active = *in.Active
	}
	sector.UpdatedAt = uc.clock.Now()
	if err := uc.sectors.Update(ctx, sector); err != nil {
		return nil, err
	}
	out := toSectorResponse(sector)
	return &out, nil
}

// ListSectors setores de la empresa ordenados por nombre.
func (uc *CatalogUseCase) ListSectors(ctx context.Context, companyID string) ([]dto.SectorResponse, error) {
	list, err := uc.sectors.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SectorResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSectorResponse(s))
	}
	return out, nil
}

// CreateSupplier crea un fornecedor. CNPJ repetido en la empresa → domain.ErrDuplicate.
func (uc *CatalogUseCase) CreateSupplier(ctx context.Context, companyID string, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "obrigatório")
	}
	cnpj := digitsOnly(in.CNPJ)
	if in.CNPJ != "" && len(cnpj) != 14 {
		return nil, domain.Invalid("cnpj", "deve ter 14 dígitos")
	}
	supplier := &entity.Supplier{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      name,
		CNPJ:      cnpj,
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		CreatedAt: uc.clock.Now(),
	}
	if err := uc.suppliers.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return &dto.SupplierResponse{
		ID: supplier.ID, Name: supplier.Name, CNPJ: supplier.CNPJ,
		Email: supplier.Email, Phone: supplier.Phone, CreatedAt: supplier.CreatedAt,
	}, nil
}

// ListSuppliers fornecedores de la empresa.
func (uc *CatalogUseCase) ListSuppliers(ctx context.Context, companyID string) ([]dto.SupplierResponse, error) {
	list, err := uc.suppliers.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.SupplierResponse{
			ID: s.ID, Name: s.Name, CNPJ: s.CNPJ, Email: s.Email, Phone: s.Phone, CreatedAt: s.CreatedAt,
		})
	}
	return out, nil
}

// CreateCategory crea una categoria. Nombre repetido → domain.ErrDuplicate.
func (uc *CatalogUseCase) CreateCategory(ctx context.Context, companyID string, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "obrigatório")
	}
	c := &entity.Category{ID: uuid.New().String(), CompanyID: companyID, Name: name, CreatedAt: uc.clock.Now()}
	if err := uc.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return &dto.CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}, nil
}

// ListCategories categorias de la empresa.
func (uc *CatalogUseCase) ListCategories(ctx context.Context, companyID string) ([]dto.CategoryResponse, error) {
	list, err := uc.categories.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt})
	}
	return out, nil
}

func (uc *CatalogUseCase) loadSector(ctx context.Context, companyID, id string) (*entity.Sector, error) {
	sector, err := uc.sectors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sector == nil {
		return nil, domain.ErrNotFound
	}
	if sector.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return sector, nil
}

func toSectorResponse(s *entity.Sector) dto.SectorResponse {
	return dto.SectorResponse{
		ID:          s.ID,
		Name:        s.Name,
		Responsible: s.Responsible,
		Email:       s.Email,
		Active:      s.Active,
		CreatedAt:   s.CreatedAt,
	}
}
