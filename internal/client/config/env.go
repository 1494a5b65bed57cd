package config

import "github.com/dmitrijs2005/passvault/internal/envx"

const envPrefix = "PASSVAULT_"

func parseEnv(c *Config, files ...string) error {
	if err := envx.Load(files...); err != nil {
		return err
	}
	envx.String(envPrefix+"SERVER_URL", &c.ServerURL)
	envx.String(envPrefix+"TOKEN", &c.Token)
	envx.String(envPrefix+"BACKUP_DIR", &c.BackupDir)
	envx.String(envPrefix+"LOG_LEVEL", &c.LogLevel)
	return envx.Duration(envPrefix+"REQUEST_TIMEOUT", &c.RequestTimeout)
}
