package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable read by the service.
	EnvPrefix = "MARIADOCE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "MARIADOCE_DB_DSN"
	EnvDBHost = "MARIADOCE_DB_HOST"
	EnvDBUser = "MARIADOCE_DB_USER"
	EnvDBName = "MARIADOCE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Admin        AdminConfig
	Mapbox       MapboxConfig
	Postal       PostalConfig
	Store        StoreConfig
	Delivery     DeliveryConfig
	Webhook      WebhookConfig
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
	Env          string `envconfig:"MARIADOCE_APP_ENV" required:"true"`
	Port         string `envconfig:"MARIADOCE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MARIADOCE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MARIADOCE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MARIADOCE_DB_DSN"`
	Driver string `envconfig:"MARIADOCE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MARIADOCE_DB_HOST"`
	LegacyPort     int    `envconfig:"MARIADOCE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MARIADOCE_DB_USER"`
	LegacyPassword string `envconfig:"MARIADOCE_DB_PASSWORD"`
	LegacyName     string `envconfig:"MARIADOCE_DB_NAME"`
	LegacySSLMode  string `envconfig:"MARIADOCE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MARIADOCE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MARIADOCE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MARIADOCE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MARIADOCE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MARIADOCE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MARIADOCE_REDIS_ADDR"`
	Password     string        `envconfig:"MARIADOCE_REDIS_PASSWORD"`
	DB           int           `envconfig:"MARIADOCE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MARIADOCE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MARIADOCE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MARIADOCE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MARIADOCE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MARIADOCE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MARIADOCE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MARIADOCE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MARIADOCE_JWT_EXPIRATION_MINUTES" default:"480"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MARIADOCE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MARIADOCE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MARIADOCE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MARIADOCE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MARIADOCE_ARGON_KEY_LEN" default:"32"`
}

// AdminConfig seeds the first back-office account when the admin table is
// empty. Both values are ignored afterwards.
type AdminConfig struct {
	BootstrapEmail    string `envconfig:"MARIADOCE_ADMIN_EMAIL"`
	BootstrapPassword string `envconfig:"MARIADOCE_ADMIN_PASSWORD"`
}

type MapboxConfig struct {
	APIKey  string        `envconfig:"MARIADOCE_MAPBOX_API_KEY"`
	Profile string        `envconfig:"MARIADOCE_MAPBOX_PROFILE" default:"mapbox/cycling"`
	Country string        `envconfig:"MARIADOCE_MAPBOX_COUNTRY" default:"BR"`
	Timeout time.Duration `envconfig:"MARIADOCE_MAPBOX_TIMEOUT" default:"10s"`
}

type PostalConfig struct {
	BaseURL string        `envconfig:"MARIADOCE_POSTAL_BASE_URL" default:"https://viacep.com.br/ws"`
	Timeout time.Duration `envconfig:"MARIADOCE_POSTAL_TIMEOUT" default:"8s"`
}

// StoreConfig carries the physical storefront identity used by delivery
// quotes and WhatsApp links.
type StoreConfig struct {
	Name           string  `envconfig:"MARIADOCE_STORE_NAME" default:"Maria Doce"`
	Lat            float64 `envconfig:"MARIADOCE_STORE_LAT"`
	Lng            float64 `envconfig:"MARIADOCE_STORE_LNG"`
	WhatsAppNumber string  `envconfig:"MARIADOCE_STORE_WHATSAPP"`
}

// DeliveryConfig holds the bootstrap defaults seeded into the settings store
// on first run; the admin panel owns the values afterwards.
type DeliveryConfig struct {
	FeePerKm         float64       `envconfig:"MARIADOCE_DELIVERY_FEE_PER_KM" default:"0"`
	FreeRadiusMeters float64       `envconfig:"MARIADOCE_DELIVERY_FREE_RADIUS_METERS" default:"3000"`
	MaxRadiusKm      float64       `envconfig:"MARIADOCE_DELIVERY_MAX_RADIUS_KM" default:"10"`
	RoundingPolicy   string        `envconfig:"MARIADOCE_DELIVERY_ROUNDING" default:"half_real"`
	SettingsCacheTTL time.Duration `envconfig:"MARIADOCE_SETTINGS_CACHE_TTL" default:"1m"`
}

type WebhookConfig struct {
	InboundSecret   string        `envconfig:"MARIADOCE_WEBHOOK_SECRET"`
	OrderCreatedURL string        `envconfig:"MARIADOCE_WEBHOOK_ORDER_CREATED_URL"`
	DispatchTimeout time.Duration `envconfig:"MARIADOCE_WEBHOOK_TIMEOUT" default:"10s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MARIADOCE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MARIADOCE_AUTO_MIGRATE" default:"false"`
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
