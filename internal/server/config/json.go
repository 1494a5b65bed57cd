package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/passvault/internal/flagx"
	"github.com/dmitrijs2005/passvault/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept "10s" or
// integer nanoseconds. Fields left out of the file keep their prior value.
type JsonConfig struct {
	HTTPAddr        string         `json:"http_addr"`
	Storage         string         `json:"storage"`
	DatabaseDSN     string         `json:"database_dsn"`
	CouchDBURL      string         `json:"couchdb_url"`
	CouchDBName     string         `json:"couchdb_name"`
	SecretKey       string         `json:"secret_key"`
	S3RootUser      string         `json:"s3_root_user"`
	S3RootPassword  string         `json:"s3_root_password"`
	S3Bucket        string         `json:"s3_bucket"`
	S3Region        string         `json:"s3_region"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
	LogLevel        string         `json:"log_level"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func parseJson(config *Config, args []string) error {
	jsonConfigFile := flagx.ConfigFile(args)
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	overlay(&config.HTTPAddr, c.HTTPAddr)
	overlay(&config.Storage, c.Storage)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.CouchDBURL, c.CouchDBURL)
	overlay(&config.CouchDBName, c.CouchDBName)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.S3RootUser, c.S3RootUser)
	overlay(&config.S3RootPassword, c.S3RootPassword)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlay(&config.LogLevel, c.LogLevel)
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = time.Duration(c.ShutdownTimeout.Duration)
	}
	return nil
}
