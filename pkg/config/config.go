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
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Admin    AdminConfig
	Stations StationsConfig
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
	Env          string `envconfig:"TOLLNET_APP_ENV" required:"true"`
	Port         string `envconfig:"TOLLNET_APP_PORT" default:"9115"`
	LogLevel     string `envconfig:"TOLLNET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TOLLNET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"TOLLNET_DB_DSN"`

	Host     string `envconfig:"TOLLNET_DB_HOST"`
	Port     int    `envconfig:"TOLLNET_DB_PORT" default:"5432"`
	User     string `envconfig:"TOLLNET_DB_USER"`
	Password string `envconfig:"TOLLNET_DB_PASSWORD"`
	Name     string `envconfig:"TOLLNET_DB_NAME"`
	SSLMode  string `envconfig:"TOLLNET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TOLLNET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TOLLNET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TOLLNET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TOLLNET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a postgres DSN from the discrete fields when one was not
// provided directly.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either TOLLNET_DB_DSN or host/user/name settings are required")
	}
	userInfo := url.UserPassword(d.User, d.Password)
	u := url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"TOLLNET_REDIS_URL"`
	Address      string        `envconfig:"TOLLNET_REDIS_ADDR"`
	Password     string        `envconfig:"TOLLNET_REDIS_PASSWORD"`
	DB           int           `envconfig:"TOLLNET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TOLLNET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TOLLNET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TOLLNET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TOLLNET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TOLLNET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TOLLNET_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TOLLNET_JWT_ISSUER" default:"tollnet-backoffice"`
	ExpirationMinutes int    `envconfig:"TOLLNET_JWT_EXPIRATION_MINUTES" default:"120"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type AdminConfig struct {
	Username string `envconfig:"TOLLNET_ADMIN_USERNAME" default:"admin"`
	Password string `envconfig:"TOLLNET_ADMIN_PASSWORD"`
}

type StationsConfig struct {
	// ManifestPath points at the station manifest loaded by the
	// resetstations operation when no upload accompanies the request.
	ManifestPath string `envconfig:"TOLLNET_STATION_MANIFEST" default:"files/tollstations.csv"`
}

type PasswordConfig struct {
	Memory      uint32 `envconfig:"TOLLNET_ARGON_MEMORY" default:"65536"`
	Time        uint32 `envconfig:"TOLLNET_ARGON_TIME" default:"3"`
	Parallelism uint8  `envconfig:"TOLLNET_ARGON_PARALLELISM" default:"2"`
	SaltLen     uint32 `envconfig:"TOLLNET_ARGON_SALT_LEN" default:"16"`
	KeyLen      uint32 `envconfig:"TOLLNET_ARGON_KEY_LEN" default:"32"`
}
