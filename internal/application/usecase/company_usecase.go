package usecase

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/application/alerts"
	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/pkg/clock"
)

// maxConsumptionThreshold tope del umbral de consumo atípico (%).
var maxConsumptionThreshold = decimal.NewFromInt(1000)

// CompanyUseCase aplica reglas de negocio para empresas y su configuración de alertas.
type CompanyUseCase struct {
	repo       repository.CompanyRepository
	sectorRepo repository.SectorRepository
	auditRepo  repository.AuditLogRepository
	clock      clock.Clock
}

// NewCompanyUseCase construye el caso de uso con los puertos de persistencia.
func NewCompanyUseCase(
	repo repository.CompanyRepository,
	sectorRepo repository.SectorRepository,
	auditRepo repository.AuditLogRepository,
	clk clock.Clock,
) *CompanyUseCase {
	if clk == nil {
		clk = clock.Real{}
	}
	return &CompanyUseCase{repo: repo, sectorRepo: sectorRepo, auditRepo: auditRepo, clock: clk}
}

// Create crea una nueva empresa con alertas por defecto. Devuelve domain.ErrDuplicate si el CNPJ ya existe.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "obrigatório")
	}
	cnpj := digitsOnly(in.CNPJ)
	if len(cnpj) != 14 {
		return nil, domain.Invalid("cnpj", "deve ter 14 dígitos")
	}
	existing, err := uc.repo.GetByCNPJ(ctx, cnpj)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := uc.clock.Now()
	company := &entity.Company{
		ID:            uuid.New().String(),
		Name:          name,
		CNPJ:          cnpj,
		Address:       in.Address,
		Phone:         in.Phone,
		Email:         strings.TrimSpace(in.Email),
		Status:        entity.CompanyStatusActive,
		AlertSettings: entity.DefaultAlertSettings(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	out := toCompanyResponse(company)
	if err := appendAudit(ctx, uc.auditRepo, auditEntry{
		companyID: company.ID, entityName: entity.AuditEntityCompany, entityID: company.ID,
		action: entity.AuditActionCreate, after: out, actor: "system", at: now,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByID obtiene una empresa por ID.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	company, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toCompanyResponse(company)
	return &out, nil
}

// Update modifica los datos cadastrales. El CNPJ no se edita.
func (uc *CompanyUseCase) Update(ctx context.Context, id, userID string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	company, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	before := toCompanyResponse(company)
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name", "obrigatório")
		}
		company.Name = name
	}
	if in.Address != nil {
		company.Address = *in.Address
	}
	if in.Phone != nil {
		company.Phone = *in.Phone
	}
	if in.Email != nil {
		company.Email = strings.TrimSpace(*in.Email)
	}
	if in.Status != nil {
		switch *in.Status {
		case "active", "suspended", "inactive":
			company.Status = *in.Status
		default:
			return nil, domain.Invalid("status", "valor inválido")
		}
	}
	now := uc.clock.Now()
	company.UpdatedAt = now
	if err := uc.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	after := toCompanyResponse(company)
	if err := appendAudit(ctx, uc.auditRepo, auditEntry{
		companyID: id, entityName: entity.AuditEntityCompany, entityID: id,
		action: entity.AuditActionUpdate, before: before, after: after, actor: userID, at: now,
	}); err != nil {
		return nil, err
	}
	return &after, nil
}

// GetAlertSettings devuelve la configuración de alertas vigente.
func (uc *CompanyUseCase) GetAlertSettings(ctx context.Context, companyID string) (*dto.AlertSettingsDTO, error) {
	company, err := uc.load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := toAlertSettingsDTO(company.AlertSettings)
	return &out, nil
}

// UpdateAlertSettings valida y reemplaza la configuración de alertas.
// Los emails se normalizan a una lista separada por comas sin duplicados.
func (uc *CompanyUseCase) UpdateAlertSettings(ctx context.Context, companyID, userID string, in dto.AlertSettingsDTO) (*dto.AlertSettingsDTO, error) {
	company, err := uc.load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if !in.ConsumptionThreshold.IsPositive() || in.ConsumptionThreshold.GreaterThan(maxConsumptionThreshold) {
		return nil, domain.Invalid("consumption_threshold", "deve estar entre 0 e 1000")
	}
	emails, err := validateEmailList(in.AlertEmails)
	if err != nil {
		return nil, err
	}
	if in.AlertSectorID != "" {
		sector, err := uc.sectorRepo.GetByID(ctx, in.AlertSectorID)
		if err != nil {
			return nil, err
		}
		if sector == nil || sector.CompanyID != companyID {
			return nil, domain.Invalid("alert_sector_id", "setor inexistente")
		}
	}

	settings := entity.AlertSettings{
		MinStock:             in.MinStock,
		UnusualConsumption:   in.UnusualConsumption,
		ConsumptionThreshold: in.ConsumptionThreshold,
		AlertEmails:          strings.Join(emails, ","),
		AlertSectorID:        in.AlertSectorID,
	}
	if err := uc.repo.UpdateAlertSettings(ctx, companyID, settings); err != nil {
		return nil, err
	}
	out := toAlertSettingsDTO(settings)
	if err := appendAudit(ctx, uc.auditRepo, auditEntry{
		companyID: companyID, entityName: entity.AuditEntityCompany, entityID: companyID,
		action: entity.AuditActionUpdate,
		before: map[string]any{"alert_settings": toAlertSettingsDTO(company.AlertSettings)},
		after:  map[string]any{"alert_settings": out},
		actor:  userID, at: uc.clock.Now(),
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (uc *CompanyUseCase) load(ctx context.Context, id string) (*entity.Company, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return company, nil
}

// validateEmailList rechaza entradas sin "@"; una lista vacía es válida.
func validateEmailList(raw string) ([]string, error) {
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' }) {
		p := strings.TrimSpace(part)
		if p != "" && !strings.Contains(p, "@") {
			return nil, domain.Invalid("alert_emails", "email inválido: "+p)
		}
	}
	return alerts.ParseEmailList(raw), nil
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

func toAlertSettingsDTO(s entity.AlertSettings) dto.AlertSettingsDTO {
	return dto.AlertSettingsDTO{
		MinStock:             s.MinStock,
		UnusualConsumption:   s.UnusualConsumption,
		ConsumptionThreshold: s.ConsumptionThreshold,
		AlertEmails:          s.AlertEmails,
		AlertSectorID:        s.AlertSectorID,
	}
}

func toCompanyResponse(c *entity.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:            c.ID,
		Name:          c.Name,
		CNPJ:          c.CNPJ,
		Address:       c.Address,
		Phone:         c.Phone,
		Email:         c.Email,
		Status:        c.Status,
		AlertSettings: toAlertSettingsDTO(c.AlertSettings),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
