// Package redislock lock distribuido sobre Redis (SET NX PX + liberación con token).
package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/almoxarifado-api/internal/application/alerts"
	"github.com/jhoicas/almoxarifado-api/pkg/config"
)

var _ alerts.Locker = (*Locker)(nil)

// Solo borra la clave si el token sigue siendo el nuestro (el TTL pudo expirar y otro tomarla).
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker implementa alerts.Locker.
type Locker struct {
	client *redis.Client
	script *redis.Script
	prefix string
}

// NewClient abre el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// New construye el locker; las claves se guardan como "almoxarifado:lock:<key>".
func New(client *redis.Client) *Locker {
	return &Locker{
		client: client,
		script: redis.NewScript(releaseScript),
		prefix: "almoxarifado:lock:",
	}
}

// Acquire intenta tomar key por ttl. acquired=false sin error: otro proceso lo tiene.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	if key == "" {
		return nil, false, errors.New("lock key is empty")
	}
	if ttl <= 0 {
		return nil, false, errors.New("lock ttl must be positive")
	}

	fullKey := l.prefix + key
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func(ctx context.Context) error {
		return l.script.Run(ctx, l.client, []string{fullKey}, token).Err()
	}
	return release, true, nil
}
