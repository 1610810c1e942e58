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
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Sales         SalesConfig
	Idempotency   IdempotencyConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"POS_APP_ENV" required:"true"`
	Port         string `envconfig:"POS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"POS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"POS_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"POS_CORS_ALLOWED_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"POS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"POS_DB_DSN"`
	Driver string `envconfig:"POS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"POS_DB_HOST"`
	LegacyPort     int    `envconfig:"POS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"POS_DB_USER"`
	LegacyPassword string `envconfig:"POS_DB_PASSWORD"`
	LegacyName     string `envconfig:"POS_DB_NAME"`
	LegacySSLMode  string `envconfig:"POS_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"POS_SQLITE_PATH" default:"pos.db"`

	MaxOpenConns    int           `envconfig:"POS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"POS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"POS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"POS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"POS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"POS_REDIS_ADDR"`
	Password     string        `envconfig:"POS_REDIS_PASSWORD"`
	DB           int           `envconfig:"POS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"POS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"POS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"POS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"POS_JWT_ISSUER" default:"pos-backend"`
	ExpirationMinutes      int    `envconfig:"POS_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"POS_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// AccessTokenTTL returns the access token TTL configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"POS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"POS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"POS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"POS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"POS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow           time.Duration `envconfig:"POS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit    int           `envconfig:"POS_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit          int           `envconfig:"POS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow        time.Duration `envconfig:"POS_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterUsernameLimit int           `envconfig:"POS_AUTH_RATE_LIMIT_REGISTER_USERNAME_LIMIT" default:"3"`
	RegisterIPLimit       int           `envconfig:"POS_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite        bool `envconfig:"POS_USE_SQLITE" default:"false"`
	AutoMigrate      bool `envconfig:"POS_AUTO_MIGRATE" default:"false"`
	AllowAdminSignup bool `envconfig:"POS_ALLOW_ADMIN_SIGNUP" default:"false"`
}

type SalesConfig struct {
	TxTimeout         time.Duration `envconfig:"POS_SALES_TX_TIMEOUT" default:"10s"`
	LegacyVisible     bool          `envconfig:"POS_SALES_LEGACY_VISIBLE" default:"false"`
	LowStockThreshold int           `envconfig:"POS_SALES_LOW_STOCK_THRESHOLD" default:"5"`
	MaxItems          int           `envconfig:"POS_SALES_MAX_ITEMS" default:"100"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"POS_IDEMPOTENCY_TTL" default:"24h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"POS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"POS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"POS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	SalesTopic     string `envconfig:"POS_PUBSUB_SALES_TOPIC" default:"pos-sales-events"`
	InventoryTopic string `envconfig:"POS_PUBSUB_INVENTORY_TOPIC" default:"pos-inventory-events"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"POS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"POS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"POS_OUTBOX_MAX_ATTEMPTS" default:"10"`
	Retention      time.Duration `envconfig:"POS_OUTBOX_RETENTION" default:"168h"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"POS_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"POS_CRON_LOCK_TTL" default:"30m"`
}

// IsSQLite reports whether the connection targets the embedded SQLite store.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" || db.IsSQLite() {
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
