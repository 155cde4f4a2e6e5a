package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "DELIVERA_DB_DSN"
	EnvDBHost = "DELIVERA_DB_HOST"
	EnvDBUser = "DELIVERA_DB_USER"
	EnvDBName = "DELIVERA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Partner      PartnerConfig
	Webhook      WebhookConfig
	Ops          OpsConfig
	Sync         SyncConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DELIVERA_APP_ENV" required:"true"`
	Port         string `envconfig:"DELIVERA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DELIVERA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DELIVERA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DELIVERA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"DELIVERA_DB_DSN"`
	Driver string `envconfig:"DELIVERA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DELIVERA_DB_HOST"`
	LegacyPort     int    `envconfig:"DELIVERA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DELIVERA_DB_USER"`
	LegacyPassword string `envconfig:"DELIVERA_DB_PASSWORD"`
	LegacyName     string `envconfig:"DELIVERA_DB_NAME"`
	LegacySSLMode  string `envconfig:"DELIVERA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DELIVERA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DELIVERA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DELIVERA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DELIVERA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DELIVERA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DELIVERA_REDIS_ADDR"`
	Password     string        `envconfig:"DELIVERA_REDIS_PASSWORD"`
	DB           int           `envconfig:"DELIVERA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DELIVERA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DELIVERA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DELIVERA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DELIVERA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DELIVERA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PartnerConfig carries credentials for the delivery partner proxies.
type PartnerConfig struct {
	FargoBaseURL string        `envconfig:"DELIVERA_PARTNER_FARGO_BASE_URL"`
	FargoToken   string        `envconfig:"DELIVERA_PARTNER_FARGO_TOKEN"`
	BTSBaseURL   string        `envconfig:"DELIVERA_PARTNER_BTS_BASE_URL"`
	BTSToken     string        `envconfig:"DELIVERA_PARTNER_BTS_TOKEN"`
	Timeout      time.Duration `envconfig:"DELIVERA_PARTNER_TIMEOUT" default:"15s"`
}

// WebhookConfig controls the partner-facing webhook endpoint. When Secret is
// empty the endpoint accepts unauthenticated calls (partner sandboxes do not
// sign requests).
type WebhookConfig struct {
	Secret         string        `envconfig:"DELIVERA_WEBHOOK_SECRET"`
	IdempotencyTTL time.Duration `envconfig:"DELIVERA_WEBHOOK_IDEMPOTENCY_TTL" default:"24h"`
}

// OpsConfig guards the operator endpoints.
type OpsConfig struct {
	Secret string `envconfig:"DELIVERA_OPS_SECRET"`
}

type SyncConfig struct {
	Interval  time.Duration `envconfig:"DELIVERA_SYNC_INTERVAL" default:"30m"`
	BatchSize int           `envconfig:"DELIVERA_SYNC_BATCH_SIZE" default:"200"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DELIVERA_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
