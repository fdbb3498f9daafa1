package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	appinventory "github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/pkg/clock"
)

// ProductUseCase aplica reglas de negocio del catálogo de productos.
type ProductUseCase struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
	auditRepo    repository.AuditLogRepository
	txRunner     appinventory.TxRunner
	clock        clock.Clock
}

// NewProductUseCase construye el caso de uso con los puertos de persistencia.
func NewProductUseCase(
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
	auditRepo repository.AuditLogRepository,
	txRunner appinventory.TxRunner,
	clk clock.Clock,
) *ProductUseCase {
	if clk == nil {
		clk = clock.Real{}
	}
	return &ProductUseCase{
		repo:         repo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		auditRepo:    auditRepo,
		txRunner:     txRunner,
		clock:        clk,
	}
}

// Create crea un producto en la empresa. El código se normaliza; si ya existe devuelve domain.ErrDuplicate.
func (uc *ProductUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	code := inventory.NormalizeCode(in.Code)
	if code == "" {
		return nil, domain.Invalid("code", "obrigatório")
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, domain.Invalid("description", "obrigatório")
	}
	unit := strings.ToUpper(strings.TrimSpace(in.Unit))
	if unit == "" {
		return nil, domain.Invalid("unit", "obrigatório")
	}
	if in.MinStock.IsNegative() {
		return nil, domain.Invalid("min_stock", "não pode ser negativo")
	}
	if in.Pmed.IsNegative() {
		return nil, domain.Invalid("pmed", "não pode ser negativo")
	}
	if err := uc.checkReferences(ctx, companyID, in.CategoryID, in.SupplierID); err != nil {
		return nil, err
	}

	existing, err := uc.repo.GetByCompanyAndCode(ctx, companyID, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := uc.clock.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		Code:        code,
		Description: description,
		Unit:        unit,
		CategoryID:  in.CategoryID,
		SupplierID:  in.SupplierID,
		MinStock:    in.MinStock,
		Pmed:        in.Pmed.Round(6),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	out := dto.ToProductResponse(product)
	if err := appendAudit(ctx, uc.auditRepo, auditEntry{
		companyID: companyID, entityName: entity.AuditEntityProduct, entityID: product.ID,
		action: entity.AuditActionCreate, after: out, actor: userID, at: now,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByID obtiene un producto de la empresa.
func (uc *ProductUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ProductResponse, error) {
	product, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	out := dto.ToProductResponse(product)
	return &out, nil
}

// Update aplica los campos presentes. Toda edición queda en la auditoría con antes y después;
// un cambio explícito de pmed es la única vía fuera del motor de costo.
//
// La escritura corre en la misma transacción que los movimientos y con la fila del saldo
// bloqueada: el producto se relee bajo el lock, así una entrada confirmada entre la lectura
// inicial y la escritura no pierde su pmed.
func (uc *ProductUseCase) Update(ctx context.Context, companyID, userID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	current, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	var code, description, unit string
	if in.Code != nil {
		code = inventory.NormalizeCode(*in.Code)
		if code == "" {
			return nil, domain.Invalid("code", "obrigatório")
		}
		if code != current.Code {
			other, err := uc.repo.GetByCompanyAndCode(ctx, companyID, code)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, domain.ErrDuplicate
			}
		}
	}
	if in.Description != nil {
		description = strings.TrimSpace(*in.Description)
		if description == "" {
			return nil, domain.Invalid("description", "obrigatório")
		}
	}
	if in.Unit != nil {
		unit = strings.ToUpper(strings.TrimSpace(*in.Unit))
		if unit == "" {
			return nil, domain.Invalid("unit", "obrigatório")
		}
	}
	if in.MinStock != nil && in.MinStock.IsNegative() {
		return nil, domain.Invalid("min_stock", "não pode ser negativo")
	}
	if in.Pmed != nil && in.Pmed.IsNegative() {
		return nil, domain.Invalid("pmed", "não pode ser negativo")
	}
	categoryID, supplierID := current.CategoryID, current.SupplierID
	if in.CategoryID != nil {
		categoryID = *in.CategoryID
	}
	if in.SupplierID != nil {
		supplierID = *in.SupplierID
	}
	if err := uc.checkReferences(ctx, companyID, categoryID, supplierID); err != nil {
		return nil, err
	}

	var after dto.ProductResponse
	err = uc.withLockedProduct(ctx, companyID, id, func(product *entity.Product, productRepo repository.ProductRepository, auditRepo repository.AuditLogRepository) error {
		before := dto.ToProductResponse(product)
		if in.Code != nil {
			product.Code = code
		}
		if in.Description != nil {
			product.Description = description
		}
		if in.Unit != nil {
			product.Unit = unit
		}
		product.CategoryID, product.SupplierID = categoryID, supplierID
		if in.MinStock != nil {
			product.MinStock = *in.MinStock
		}
		now := uc.clock.Now()
		product.UpdatedAt = now
		if err := productRepo.Update(ctx, product); err != nil {
			return err
		}
		if in.Pmed != nil {
			product.Pmed = in.Pmed.Round(6)
			if err := productRepo.UpdatePmed(ctx, product.ID, product.Pmed); err != nil {
				return err
			}
		}
		after = dto.ToProductResponse(product)
		return appendAudit(ctx, auditRepo, auditEntry{
			companyID: companyID, entityName: entity.AuditEntityProduct, entityID: product.ID,
			action: entity.AuditActionUpdate, before: before, after: after, actor: userID, at: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return &after, nil
}

// Deactivate marca el producto como inactivo. El ledger se conserva; nuevas salidas y entradas se rechazan.
func (uc *ProductUseCase) Deactivate(ctx context.Context, companyID, userID, id string) error {
	if _, err := uc.load(ctx, companyID, id); err != nil {
		return err
	}
	return uc.withLockedProduct(ctx, companyID, id, func(product *entity.Product, productRepo repository.ProductRepository, auditRepo repository.AuditLogRepository) error {
		if !product.Active {
			return nil
		}
		before := dto.ToProductResponse(product)
		now := uc.clock.Now()
		product.Active = false
		product.UpdatedAt = now
		if err := productRepo.Update(ctx, product); err != nil {
			return err
		}
		return appendAudit(ctx, auditRepo, auditEntry{
			companyID: companyID, entityName: entity.AuditEntityProduct, entityID: product.ID,
			action: entity.AuditActionDeactivate, before: before, after: dto.ToProductResponse(product),
			actor: userID, at: now,
		})
	})
}

// withLockedProduct bloquea el saldo del producto (mismo lock que RegisterMovement) y
// pasa a fn el producto releído dentro de la transacción.
func (uc *ProductUseCase) withLockedProduct(
	ctx context.Context, companyID, id string,
	fn func(product *entity.Product, productRepo repository.ProductRepository, auditRepo repository.AuditLogRepository) error,
) error {
	return uc.txRunner.Run(ctx, func(
		_ repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		auditRepo repository.AuditLogRepository,
	) error {
		if _, err := stockRepo.GetForUpdate(ctx, companyID, id); err != nil {
			return err
		}
		product, err := productRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		return fn(product, productRepo, auditRepo)
	})
}

// List lista productos de la empresa con búsqueda y paginación. Por defecto solo activos.
func (uc *ProductUseCase) List(ctx context.Context, companyID string, in dto.ProductListRequest) (*dto.ProductListResponse, error) {
	in.DefaultPage()
	list, err := uc.repo.ListByCompany(ctx, companyID, repository.ProductFilter{
		Search:     in.Search,
		CategoryID: in.CategoryID,
		OnlyActive: !in.All,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  in.PageRequest.Response(),
	}, nil
}

func (uc *ProductUseCase) load(ctx context.Context, companyID, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return product, nil
}

func (uc *ProductUseCase) checkReferences(ctx context.Context, companyID, categoryID, supplierID string) error {
	if categoryID != "" {
		c, err := uc.categoryRepo.GetByID(ctx, categoryID)
		if err != nil {
			return err
		}
		if c == nil || c.CompanyID != companyID {
			return domain.Invalid("category_id", "categoria inexistente")
		}
	}
	if supplierID != "" {
		s, err := uc.supplierRepo.GetByID(ctx, supplierID)
		if err != nil {
			return err
		}
		if s == nil || s.CompanyID != companyID {
			return domain.Invalid("supplier_id", "fornecedor inexistente")
		}
	}
	return nil
}
