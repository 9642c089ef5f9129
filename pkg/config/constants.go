package config

// EnvPrefix is passed to envconfig; explicit envconfig tags carry the full
// variable names, so the prefix only matters for untagged fields.
const EnvPrefix = "fulluproar"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvDBDSN  = "FULLUPROAR_DB_DSN"
	EnvDBHost = "FULLUPROAR_DB_HOST"
	EnvDBUser = "FULLUPROAR_DB_USER"
	EnvDBName = "FULLUPROAR_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
