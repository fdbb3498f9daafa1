package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

type auditEntry struct {
	companyID  string
	entityName string
	entityID   string
	action     string
	before     any // nil = sin snapshot
	after      any
	actor      string
	at         time.Time
}

func appendAudit(ctx context.Context, repo repository.AuditLogRepository, e auditEntry) error {
	log := &entity.AuditLog{
		ID:         uuid.New().String(),
		CompanyID:  e.companyID,
		EntityName: e.entityName,
		EntityID:   e.entityID,
		Action:     e.action,
		Actor:      e.actor,
		CreatedAt:  e.at,
	}
	var err error
	if e.before != nil {
		if log.Before, err = json.Marshal(e.before); err != nil {
			return err
		}
	}
	if e.after != nil {
		if log.After, err = json.Marshal(e.after); err != nil {
			return err
		}
	}
	return repo.Append(ctx, log)
}

// AuditUseCase consulta la trilha de auditoría de la empresa.
type AuditUseCase struct {
	repo repository.AuditLogRepository
}

// NewAuditUseCase construye el caso de uso.
func NewAuditUseCase(repo repository.AuditLogRepository) *AuditUseCase {
	return &AuditUseCase{repo: repo}
}

// List devuelve las entradas más recientes primero.
func (uc *AuditUseCase) List(ctx context.Context, companyID string, in dto.AuditListRequest) (*dto.AuditListResponse, error) {
	in.DefaultPage()
	logs, err := uc.repo.Find(ctx, repository.AuditFilter{
		CompanyID:  companyID,
		EntityName: in.EntityName,
		EntityID:   in.EntityID,
		Action:     in.Action,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.AuditLogDTO, 0, len(logs))
	for _, l := range logs {
		items = append(items, dto.AuditLogDTO{
			ID:         l.ID,
			EntityName: l.EntityName,
			EntityID:   l.EntityID,
			Action:     l.Action,
			Before:     l.Before,
			After:      l.After,
			Actor:      l.Actor,
			CreatedAt:  l.CreatedAt,
		})
	}
	return &dto.AuditListResponse{
		Items: items,
		Page:  in.PageRequest.Response(),
	}, nil
}
