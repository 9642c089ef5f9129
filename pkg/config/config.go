package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Inventory     InventoryConfig
	Checkout      CheckoutConfig
	AuthRateLimit AuthRateLimitConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"FULLUPROAR_APP_ENV" required:"true"`
	Port         string `envconfig:"FULLUPROAR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FULLUPROAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FULLUPROAR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FULLUPROAR_DB_DSN"`
	Driver string `envconfig:"FULLUPROAR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FULLUPROAR_DB_HOST"`
	LegacyPort     int    `envconfig:"FULLUPROAR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FULLUPROAR_DB_USER"`
	LegacyPassword string `envconfig:"FULLUPROAR_DB_PASSWORD"`
	LegacyName     string `envconfig:"FULLUPROAR_DB_NAME"`
	LegacySSLMode  string `envconfig:"FULLUPROAR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FULLUPROAR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FULLUPROAR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FULLUPROAR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FULLUPROAR_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// Bounds applied to serializable transactions so a contended reservation
	// cannot hang a request indefinitely.
	TxLockTimeout      time.Duration `envconfig:"FULLUPROAR_DB_TX_LOCK_TIMEOUT" default:"2s"`
	TxStatementTimeout time.Duration `envconfig:"FULLUPROAR_DB_TX_STATEMENT_TIMEOUT" default:"5s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FULLUPROAR_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FULLUPROAR_REDIS_ADDR"`
	Password     string        `envconfig:"FULLUPROAR_REDIS_PASSWORD"`
	DB           int           `envconfig:"FULLUPROAR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FULLUPROAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FULLUPROAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FULLUPROAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FULLUPROAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FULLUPROAR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FULLUPROAR_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FULLUPROAR_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FULLUPROAR_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"FULLUPROAR_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the server-side session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FULLUPROAR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FULLUPROAR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FULLUPROAR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FULLUPROAR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FULLUPROAR_ARGON_KEY_LEN" default:"32"`
}

type InventoryConfig struct {
	LowStockThreshold int           `envconfig:"FULLUPROAR_INVENTORY_LOW_STOCK_THRESHOLD" default:"5"`
	StockCacheTTL     time.Duration `envconfig:"FULLUPROAR_INVENTORY_STOCK_CACHE_TTL" default:"10s"`
}

type CheckoutConfig struct {
	ReserveMaxAttempts  int           `envconfig:"FULLUPROAR_CHECKOUT_RESERVE_MAX_ATTEMPTS" default:"3"`
	ReserveRetryBackoff time.Duration `envconfig:"FULLUPROAR_CHECKOUT_RESERVE_RETRY_BACKOFF" default:"50ms"`
	TaxRatePercent      string        `envconfig:"FULLUPROAR_CHECKOUT_TAX_RATE_PERCENT" default:"0"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"FULLUPROAR_AUTH_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit    int           `envconfig:"FULLUPROAR_AUTH_LOGIN_IP_LIMIT" default:"10"`
	LoginEmailLimit int           `envconfig:"FULLUPROAR_AUTH_LOGIN_EMAIL_LIMIT" default:"5"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"FULLUPROAR_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"FULLUPROAR_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"FULLUPROAR_PUBSUB_ORDERS_TOPIC" default:"fu-order-events"`
	OrdersSubscription string `envconfig:"FULLUPROAR_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"FULLUPROAR_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"FULLUPROAR_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"FULLUPROAR_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FULLUPROAR_AUTO_MIGRATE" default:"false"`
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
