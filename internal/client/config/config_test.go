package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	want := Config{ServerURL: "http://127.0.0.1:8080", RequestTimeout: 10 * time.Second, BackupDir: "backups", LogLevel: "warn"}
	assert.Empty(t, cmp.Diff(want, c))
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_Precedence(t *testing.T) {
	envFile := writeFile(t, ".env", "PASSVAULT_TOKEN=from-dotenv\n")
	jsonFile := writeFile(t, "client.json", `{"server_url": "https://vault.example", "request_timeout": "3s", "backup_dir": "json-dir"}`)

	t.Cleanup(func() { os.Unsetenv("PASSVAULT_TOKEN") })
	t.Setenv("PASSVAULT_BACKUP_DIR", "env-dir")

	cfg, err := LoadConfig([]string{"-config", jsonFile, "-i", "5s", "-s", "ignored"}, envFile)
	require.NoError(t, err)

	want := &Config{
		ServerURL:      "https://vault.example",
		Token:          "from-dotenv",
		RequestTimeout: 5 * time.Second,
		BackupDir:      "json-dir",
		LogLevel:       "warn",
	}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoadConfig_Flags(t *testing.T) {
	cfg, err := LoadConfig([]string{"-a", "http://10.0.0.1:9000", "-t", "tok", "-o", "/tmp/out", "-l", "debug"})
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.1:9000", cfg.ServerURL)
	assert.Equal(t, "tok", cfg.Token)
	assert.Equal(t, "/tmp/out", cfg.BackupDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing json", args: []string{"-c", filepath.Join(t.TempDir(), "nope.json")}, want: "read config file"},
		{name: "bad json", args: []string{"-c", writeFile(t, "bad.json", `{"token": 1}`)}, want: "parse config file"},
		{name: "bad url", args: []string{"-a", "localhost:8080"}, want: "invalid server url"},
		{name: "zero timeout", args: []string{"-i", "0s"}, want: "request timeout"},
		{name: "bad duration", args: []string{"-i", "soon"}, want: "invalid value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.args)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParseEnv_BadDuration(t *testing.T) {
	t.Setenv("PASSVAULT_REQUEST_TIMEOUT", "forever")
	_, err := LoadConfig(nil)
	assert.ErrorContains(t, err, "PASSVAULT_REQUEST_TIMEOUT")
}
