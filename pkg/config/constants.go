package config

const (
	EnvPrefix = "POS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvAppEnv   = "POS_APP_ENV"
	EnvPort     = "POS_APP_PORT"
	EnvLogLevel = "POS_LOG_LEVEL"

	EnvDBDSN  = "POS_DB_DSN"
	EnvDBHost = "POS_DB_HOST"
	EnvDBPort = "POS_DB_PORT"
	EnvDBUser = "POS_DB_USER"
	EnvDBPass = "POS_DB_PASSWORD"
	EnvDBName = "POS_DB_NAME"

	EnvUseSQLite = "POS_USE_SQLITE"

	EnvRedisURL = "POS_REDIS_URL"

	EnvJWTSecret              = "POS_JWT_SECRET"
	EnvJWTIssuer              = "POS_JWT_ISSUER"
	EnvJWTExpMins             = "POS_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "POS_REFRESH_TOKEN_TTL_MINUTES"
	EnvSalesTxTimeout         = "POS_SALES_TX_TIMEOUT"
	EnvSalesLegacyVisible     = "POS_SALES_LEGACY_VISIBLE"
	EnvSalesLowStockThreshold = "POS_SALES_LOW_STOCK_THRESHOLD"
	EnvGCPProjectID           = "POS_GCP_PROJECT_ID"
	EnvPubSubSalesTopic       = "POS_PUBSUB_SALES_TOPIC"
	EnvPubSubInventoryTopic   = "POS_PUBSUB_INVENTORY_TOPIC"
	EnvOutboxRetention        = "POS_OUTBOX_RETENTION"
)

var legacyDBEnvVars = []string{
	EnvDBHost,
	EnvDBUser,
	EnvDBName,
}
