package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "medsupply"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "MEDSUPPLY_DB_DSN"
	EnvDBHost = "MEDSUPPLY_DB_HOST"
	EnvDBUser = "MEDSUPPLY_DB_USER"
	EnvDBName = "MEDSUPPLY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Pricing   PricingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MEDSUPPLY_APP_ENV" required:"true"`
	Port         string `envconfig:"MEDSUPPLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MEDSUPPLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEDSUPPLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MEDSUPPLY_DB_DSN"`
	Driver string `envconfig:"MEDSUPPLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MEDSUPPLY_DB_HOST"`
	LegacyPort     int    `envconfig:"MEDSUPPLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MEDSUPPLY_DB_USER"`
	LegacyPassword string `envconfig:"MEDSUPPLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"MEDSUPPLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"MEDSUPPLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEDSUPPLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEDSUPPLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEDSUPPLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEDSUPPLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"MEDSUPPLY_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEDSUPPLY_REDIS_URL"`
	Address      string        `envconfig:"MEDSUPPLY_REDIS_ADDR"`
	Password     string        `envconfig:"MEDSUPPLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEDSUPPLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEDSUPPLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEDSUPPLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEDSUPPLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEDSUPPLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEDSUPPLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MEDSUPPLY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MEDSUPPLY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MEDSUPPLY_JWT_EXPIRATION_MINUTES" required:"true"`
}

type RateLimitConfig struct {
	PricingWindow  time.Duration `envconfig:"MEDSUPPLY_RATE_LIMIT_PRICING_WINDOW" default:"1m"`
	PricingIPLimit int           `envconfig:"MEDSUPPLY_RATE_LIMIT_PRICING_IP_LIMIT" default:"120"`
	BulkWindow     time.Duration `envconfig:"MEDSUPPLY_RATE_LIMIT_BULK_WINDOW" default:"1m"`
	BulkIPLimit    int           `envconfig:"MEDSUPPLY_RATE_LIMIT_BULK_IP_LIMIT" default:"20"`
}

type PricingConfig struct {
	// DefaultMinimumMarginPercent applies when neither the price list item nor
	// the product carries a margin floor. Zero disables global protection.
	DefaultMinimumMarginPercent float64 `envconfig:"MEDSUPPLY_PRICING_DEFAULT_MIN_MARGIN_PERCENT" default:"0"`
	BulkMaxItems                int     `envconfig:"MEDSUPPLY_PRICING_BULK_MAX_ITEMS" default:"100"`
	Currency                    string  `envconfig:"MEDSUPPLY_PRICING_CURRENCY" default:"USD"`
}

func (p PricingConfig) validate() error {
	if p.DefaultMinimumMarginPercent < 0 || p.DefaultMinimumMarginPercent >= 100 {
		return fmt.Errorf("default minimum margin percent must be in [0, 100)")
	}
	if p.BulkMaxItems <= 0 {
		return fmt.Errorf("bulk max items must be positive")
	}
	return nil
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
