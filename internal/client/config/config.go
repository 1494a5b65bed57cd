package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds runtime settings for the passvault CLI.
type Config struct {
	ServerURL      string
	Token          string
	RequestTimeout time.Duration
	BackupDir      string
	LogLevel       string
}

// LoadDefaults populates c with defaults for a local server.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
	c.BackupDir = "backups"
	c.LogLevel = "warn"
}

// Validate reports settings the client cannot run with. A missing token is
// not an error here; the CLI asks for one.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server url %q", c.ServerURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

// LoadConfig builds a Config from defaults, envFiles and the environment,
// the JSON file named in args, and the flags in args.
func LoadConfig(args []string, envFiles ...string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg, envFiles...); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
