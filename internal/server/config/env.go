package config

import "github.com/dmitrijs2005/passvault/internal/envx"

const envPrefix = "PASSVAULT_"

func parseEnv(c *Config, files ...string) error {
	if err := envx.Load(files...); err != nil {
		return err
	}

	envx.String(envPrefix+"HTTP_ADDR", &c.HTTPAddr)
	envx.String(envPrefix+"STORAGE", &c.Storage)
	envx.String(envPrefix+"DATABASE_DSN", &c.DatabaseDSN)
	envx.String(envPrefix+"COUCHDB_URL", &c.CouchDBURL)
	envx.String(envPrefix+"COUCHDB_NAME", &c.CouchDBName)
	envx.String(envPrefix+"SECRET_KEY", &c.SecretKey)
	envx.String(envPrefix+"S3_ROOT_USER", &c.S3RootUser)
	envx.String(envPrefix+"S3_ROOT_PASSWORD", &c.S3RootPassword)
	envx.String(envPrefix+"S3_BUCKET", &c.S3Bucket)
	envx.String(envPrefix+"S3_REGION", &c.S3Region)
	envx.String(envPrefix+"S3_BASE_ENDPOINT", &c.S3BaseEndpoint)
	envx.String(envPrefix+"LOG_LEVEL", &c.LogLevel)

	return envx.Duration(envPrefix+"SHUTDOWN_TIMEOUT", &c.ShutdownTimeout)
}
