package alerts

import (
	"context"
	"strings"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// ParseEmailList separa por coma o punto y coma, recorta, descarta entradas sin "@"
// y elimina duplicados (sin distinguir mayúsculas) preservando el orden.
func ParseEmailList(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' })
	seen := make(map[string]struct{}, len(parts))
	var out []string
	for _, p := range parts {
		email := strings.TrimSpace(p)
		if !strings.Contains(email, "@") {
			continue
		}
		k := strings.ToLower(email)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, email)
	}
	return out
}

// RecipientResolver decide a quién se envían las alertas de una empresa:
// alert_emails, si no el email del setor de alertas, si no el email de la empresa.
type RecipientResolver struct {
	sectors repository.SectorRepository
}

// NewRecipientResolver construye el resolver.
func NewRecipientResolver(sectors repository.SectorRepository) *RecipientResolver {
	return &RecipientResolver{sectors: sectors}
}

// Resolve devuelve la lista de destinatarios; vacía si no hay ninguno configurado.
func (r *RecipientResolver) Resolve(ctx context.Context, company *entity.Company) ([]string, error) {
	if list := ParseEmailList(company.AlertSettings.AlertEmails); len(list) > 0 {
		return list, nil
	}
	if id := company.AlertSettings.AlertSectorID; id != "" && r.sectors != nil {
		sector, err := r.sectors.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if sector != nil && sector.CompanyID == company.ID {
			if list := ParseEmailList(sector.Email); len(list) > 0 {
				return list, nil
			}
		}
	}
	return ParseEmailList(company.Email), nil
}
