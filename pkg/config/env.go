package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StorageDriverMemory = "memory"
	StorageDriverRedis  = "redis"
	StorageDriverSQL    = "sql"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv        = "STOREFRONT_APP_ENV"
	EnvPort          = "STOREFRONT_APP_PORT"
	EnvStorageDriver = "STOREFRONT_STORAGE_DRIVER"
	EnvDBDSN         = "STOREFRONT_DB_DSN"
	EnvDBDriver      = "STOREFRONT_DB_DRIVER"
	EnvDBHost        = "STOREFRONT_DB_HOST"
	EnvDBUser        = "STOREFRONT_DB_USER"
	EnvDBName        = "STOREFRONT_DB_NAME"
	EnvDBPassword    = "STOREFRONT_DB_PASSWORD"
	EnvRedisURL      = "STOREFRONT_REDIS_URL"
	EnvRedisAddr     = "STOREFRONT_REDIS_ADDR"
	EnvProductLimit  = "STOREFRONT_CATALOG_PRODUCT_LIMIT"
	EnvSubmitTimeout = "STOREFRONT_CHECKOUT_SUBMIT_TIMEOUT"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
