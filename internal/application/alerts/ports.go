// Package alerts despacha las alertas de estoque: envío inmediato de críticas,
// cola de advertencias, silencio manual y resumen diario.
package alerts

import (
	"context"
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/domain/alert"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// Notifier puerto de salida para los emails de alerta.
type Notifier interface {
	SendCriticalAlert(ctx context.Context, recipients []string, company *entity.Company, event alert.Event) error
	SendDigest(ctx context.Context, recipients []string, digest Digest) error
}

// Locker lock distribuido de corta duración (Redis en producción).
// acquired=false sin error significa que otro proceso tiene el lock.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}

// Digest contenido del resumen diario de una empresa.
type Digest struct {
	Company *entity.Company
	Date    string // YYYY-MM-DD
	Items   []*entity.DigestItem
	AtRisk  []entity.AtRiskProduct
}
