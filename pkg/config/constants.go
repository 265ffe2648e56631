package config

const (
	// EnvPrefix is the envconfig prefix shared by every CASEDESK_* variable.
	EnvPrefix = "casedesk"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CASEDESK_DB_DSN"
	EnvDBHost = "CASEDESK_DB_HOST"
	EnvDBUser = "CASEDESK_DB_USER"
	EnvDBName = "CASEDESK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
