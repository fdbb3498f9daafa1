package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.False(t, cfg.Redis.Enabled())
	assert.True(t, cfg.Alerts.CriticalImpact.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 24*time.Hour, cfg.Alerts.Cooldown)
	assert.Equal(t, 7*24*time.Hour, cfg.Alerts.SilenceWindow)
	assert.Equal(t, 30, cfg.Alerts.ConsumptionWindow)
	assert.Equal(t, "America/Sao_Paulo", cfg.Alerts.Location().String())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("HTTP_PORT", "9090")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("ALERTS_CRITICAL_IMPACT", "750.50")
	v.Set("ALERTS_COOLDOWN_HOURS", "12")
	v.Set("DB_PORT", "no-numero")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "750.5", cfg.Alerts.CriticalImpact.String())
	assert.Equal(t, 12*time.Hour, cfg.Alerts.Cooldown)
	assert.Equal(t, 5432, cfg.DB.Port, "un entero inválido cae al valor por defecto")
}

func TestFromViper_ImpactoInvalido(t *testing.T) {
	v := viper.New()
	v.Set("ALERTS_CRITICAL_IMPACT", "quinientos")
	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestAlertsConfig_LocationInvalida(t *testing.T) {
	c := AlertsConfig{Timezone: "Marte/Olympus"}
	assert.Equal(t, time.UTC, c.Location())
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w", DBName: "almox", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw@db:5432/almox?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgresql://x"
	assert.Equal(t, "postgresql://x", c.ConnectionString())
}
