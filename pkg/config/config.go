package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // APP_TIMEZONE sin depender de la base de zonas del contenedor

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	DB      DBConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
	Redis   RedisConfig
	Sales   SalesConfig
	Metrics MetricsConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string // trace, debug, info, warn, error
	Storage  string // postgres | memory
	Timezone string // zona fiscal: corta los días y meses de libros y relaciones
	Location *time.Location
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL    string
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConns       int
	MigrateOnStart bool
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

// JWTConfig configuración del token de sesión emitido por el servicio de autenticación externo.
type JWTConfig struct {
	Secret string
	Issuer string
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

// RedisConfig caché de tasas de cambio. Addr vacío desactiva la caché.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	RateTTL  time.Duration
}

// Enabled indica si hay un servidor Redis configurado.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// SalesConfig políticas del motor de ventas.
type SalesConfig struct {
	HardCurrency   string          // moneda dura en la que se fijan los precios (USD)
	LocalCurrency  string          // moneda local (VES)
	DefaultRate    decimal.Decimal // tasa usada cuando no hay ninguna publicada
	TaxRatePercent decimal.Decimal // IVA por defecto si la empresa no define uno
	MaxRetries     int             // reintentos ante conflictos transitorios de la BD
	RetryBaseDelay time.Duration
}

// MetricsConfig exposición de métricas Prometheus.
type MetricsConfig struct {
	Enabled bool
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, SALES_DEFAULT_RATE, etc.
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
	defaultRate, err := getDecimal(v, "SALES_DEFAULT_RATE", "1")
	if err != nil {
		return nil, err
	}
	taxRate, err := getDecimal(v, "SALES_TAX_RATE_PERCENT", "16")
	if err != nil {
		return nil, err
	}
	if !defaultRate.IsPositive() {
		return nil, fmt.Errorf("config: SALES_DEFAULT_RATE debe ser mayor que cero")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("config: SALES_TAX_RATE_PERCENT fuera de rango")
	}

	timezone := getString(v, "APP_TIMEZONE", "America/Caracas")
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("config: APP_TIMEZONE inválido: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "ventas-fiscal"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
			Storage:  getString(v, "APP_STORAGE", "postgres"),
			Timezone: timezone,
			Location: loc,
		},
		DB: DBConfig{
			DatabaseURL:    getString(v, "DATABASE_URL", ""),
			Host:           getString(v, "DB_HOST", "localhost"),
			Port:           getInt(v, "DB_PORT", 5432),
			User:           getString(v, "DB_USER", "postgres"),
			Password:       getString(v, "DB_PASSWORD", ""),
			DBName:         getString(v, "DB_NAME", "ventas_fiscal"),
			SSLMode:        getString(v, "DB_SSLMODE", "disable"),
			MaxConns:       getInt(v, "DB_MAX_CONNS", 25),
			MigrateOnStart: getBool(v, "DB_MIGRATE_ON_START", false),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
			Issuer: getString(v, "JWT_ISSUER", "ventas-fiscal"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
			RateTTL:  getDuration(v, "REDIS_RATE_TTL", time.Minute),
		},
		Sales: SalesConfig{
			HardCurrency:   strings.ToUpper(getString(v, "SALES_HARD_CURRENCY", "USD")),
			LocalCurrency:  strings.ToUpper(getString(v, "SALES_LOCAL_CURRENCY", "VES")),
			DefaultRate:    defaultRate,
			TaxRatePercent: taxRate,
			MaxRetries:     getInt(v, "SALES_MAX_RETRIES", 3),
			RetryBaseDelay: getDuration(v, "SALES_RETRY_BASE_DELAY", 20*time.Millisecond),
		},
		Metrics: MetricsConfig{
			Enabled: getBool(v, "METRICS_ENABLED", true),
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
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
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

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}

func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if v.IsSet(key) {
		if d := v.GetDuration(key); d > 0 {
			return d
		}
	}
	return def
}

// getDecimal lee montos y tasas como texto para no perder precisión en float64.
func getDecimal(v *viper.Viper, key, def string) (decimal.Decimal, error) {
	raw := def
	if v.IsSet(key) {
		raw = strings.TrimSpace(v.GetString(key))
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("config: %s inválido: %w", key, err)
	}
	return d, nil
}
