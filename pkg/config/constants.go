package config

// EnvPrefix is intentionally empty; every variable carries the full
// MERCHANTRY_ prefix in its envconfig tag.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "MERCHANTRY_APP_ENV"
	EnvPort       = "MERCHANTRY_APP_PORT"
	EnvDBDSN      = "MERCHANTRY_DB_DSN"
	EnvDBHost     = "MERCHANTRY_DB_HOST"
	EnvDBUser     = "MERCHANTRY_DB_USER"
	EnvDBName     = "MERCHANTRY_DB_NAME"
	EnvRedisURL   = "MERCHANTRY_REDIS_URL"
	EnvJWTSecret  = "MERCHANTRY_JWT_SECRET"
	EnvJWTIssuer  = "MERCHANTRY_JWT_ISSUER"
	EnvJWTExpMins = "MERCHANTRY_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
