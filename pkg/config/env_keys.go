package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "PAWFINDERZ"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "PAWFINDERZ_APP_ENV"
	EnvPort         = "PAWFINDERZ_APP_PORT"
	EnvRedisURL     = "PAWFINDERZ_REDIS_URL"
	EnvJWTSecret    = "PAWFINDERZ_JWT_SECRET"
	EnvJWTIssuer    = "PAWFINDERZ_JWT_ISSUER"
	EnvJWTExpMins   = "PAWFINDERZ_JWT_EXPIRATION_MINUTES"
	EnvInferenceURL = "PAWFINDERZ_INFERENCE_URL"

	EnvDBDSN  = "PAWFINDERZ_DB_DSN"
	EnvDBHost = "PAWFINDERZ_DB_HOST"
	EnvDBUser = "PAWFINDERZ_DB_USER"
	EnvDBName = "PAWFINDERZ_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
