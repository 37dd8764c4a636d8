package config

// EnvPrefix is passed to envconfig; individual fields carry fully
// qualified envconfig tags so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "RETAILOPS_APP_ENV"
	EnvPort     = "RETAILOPS_APP_PORT"
	EnvDBDSN    = "RETAILOPS_DB_DSN"
	EnvDBHost   = "RETAILOPS_DB_HOST"
	EnvDBUser   = "RETAILOPS_DB_USER"
	EnvDBName   = "RETAILOPS_DB_NAME"
	EnvRedisURL = "RETAILOPS_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
