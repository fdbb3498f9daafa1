package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App    AppConfig
	DB     DBConfig
	JWT    JWTConfig
	HTTP   HTTPConfig
	Redis  RedisConfig
	Mail   MailConfig
	AI     AIConfig
	Alerts AlertsConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo (ej. DATABASE_URL de Supabase).
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int32
	MinConns    int32
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig conexión a Redis. Addr vacío deshabilita el lock distribuido del digest.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled informa si hay un Redis configurado.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// MailConfig servidor SMTP para alertas y digest diario.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// AIConfig credenciales del LLM usado en los relatorios narrativos.
type AIConfig struct {
	AnthropicAPIKey string
	AnthropicModel  string
}

// AlertsConfig parámetros del motor de alertas.
type AlertsConfig struct {
	Timezone          string          // zona horaria para el "día calendario" del digest
	CriticalImpact    decimal.Decimal // impacto financiero a partir del cual un consumo atípico es CRITICAL
	Cooldown          time.Duration
	SilenceWindow     time.Duration
	ConsumptionWindow int // días para el consumo medio diario
}

// Location resuelve Timezone; cae a UTC si el nombre no es válido.
func (c AlertsConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, SMTP_HOST, REDIS_ADDR, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	impact, err := decimal.NewFromString(getString(v, "ALERTS_CRITICAL_IMPACT", "500"))
	if err != nil {
		return nil, fmt.Errorf("ALERTS_CRITICAL_IMPACT inválido: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "aura-almoxarifado"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "almoxarifado"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    int32(getInt(v, "DB_MAX_CONNS", 25)),
			MinConns:    int32(getInt(v, "DB_MIN_CONNS", 2)),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "aura-almoxarifado"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		Mail: MailConfig{
			Host:     getString(v, "SMTP_HOST", ""),
			Port:     getInt(v, "SMTP_PORT", 587),
			Username: getString(v, "SMTP_USERNAME", ""),
			Password: getString(v, "SMTP_PASSWORD", ""),
			From:     getString(v, "SMTP_FROM", "alertas@aura-almoxarifado.com.br"),
		},
		AI: AIConfig{
			AnthropicAPIKey: getString(v, "ANTHROPIC_API_KEY", ""),
			AnthropicModel:  getString(v, "ANTHROPIC_MODEL", "claude-3-5-haiku-20241022"),
		},
		Alerts: AlertsConfig{
			Timezone:          getString(v, "ALERTS_TIMEZONE", "America/Sao_Paulo"),
			CriticalImpact:    impact,
			Cooldown:          time.Duration(getInt(v, "ALERTS_COOLDOWN_HOURS", 24)) * time.Hour,
			SilenceWindow:     time.Duration(getInt(v, "ALERTS_SILENCE_DAYS", 7)) * 24 * time.Hour,
			ConsumptionWindow: getInt(v, "ALERTS_CONSUMPTION_WINDOW_DAYS", 30),
		},
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
