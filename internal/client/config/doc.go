// Package config loads runtime configuration for the passvault client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. .env files and PASSVAULT_* environment variables.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags, which override everything above.
//
// Supported flags
//
//	-a string     base URL of the passvault server
//	-t string     bearer token issued by the identity provider
//	-i duration   per-request timeout
//	-o string     directory that downloaded backups are written to
//	-l string     log level: debug, info, warn or error
//
// # JSON schema
//
// Durations accept strings such as "10s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "token": "eyJhbGciOi...",
//	  "request_timeout": "10s",
//	  "backup_dir": "backups",
//	  "log_level": "warn"
//	}
//
// Environment variables: PASSVAULT_SERVER_URL, PASSVAULT_TOKEN,
// PASSVAULT_REQUEST_TIMEOUT, PASSVAULT_BACKUP_DIR, PASSVAULT_LOG_LEVEL.
package config
