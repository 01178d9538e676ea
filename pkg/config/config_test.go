package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
addr: ":9000"
sheets:
  shipments_url: https://sheets.example.com/api/v1/ship
  assignments_url: https://sheets.example.com/api/v1/assign
  timeout: 5s
  rate_limit: 1.5
retry:
  max_attempts: 4
  backoff: 500ms
roles:
  admins: [admin]
  pickup_persons: [anish, sathish, ravi]
session:
  secret: s3cret
  ttl: 2h
users:
  - email: admin@example.com
    password_hash: "$2a$10$abcdefghijklmnopqrstuv"
    role: admin
    name: Admin
log:
  level: debug
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "courier.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesFileAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "/admin", cfg.BasePath)
	assert.Equal(t, 5*time.Second, cfg.Sheets.Timeout.Std())
	assert.Equal(t, 1.5, cfg.Sheets.RateLimit)
	assert.Equal(t, 4, cfg.Sheets.Burst)
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.Backoff.Std())
	assert.Equal(t, 10, cfg.Board.PageSize)
	assert.Equal(t, []string{"anish", "sathish", "ravi"}, cfg.RoleDirectory().PickupPersons)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL.Std())
	require.Len(t, cfg.Users, 1)
	assert.Equal(t, "admin", cfg.Users[0].Role)
	assert.Equal(t, "https://www.google.com/maps", cfg.Maps.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)

	client := cfg.SheetsClientConfig()
	assert.Equal(t, "https://sheets.example.com/api/v1/assign", client.AssignmentsURL)
	assert.Equal(t, 5*time.Second, client.Timeout)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvShipmentsURL, "https://env.example.com/ship")
	t.Setenv(EnvAssignmentsURL, "https://env.example.com/assign")
	t.Setenv(EnvSessionSecret, "from-env")
	t.Setenv(EnvAddr, ":7000")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com/ship", cfg.Sheets.ShipmentsURL)
	assert.Equal(t, "from-env", cfg.Session.Secret)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"admin", "deepak"}, cfg.Roles.Admins)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Retry.Backoff.Std())
}

func TestLoadRequiresEndpoints(t *testing.T) {
	t.Setenv(EnvShipmentsURL, "")
	t.Setenv(EnvAssignmentsURL, "")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheets.shipments_url")
}

func TestDecodeRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"unknown key":       "sheets:\n  shipment_url: https://x\n",
		"bad duration":      "retry:\n  backoff: soon\n",
		"bad url":           "sheets:\n  shipments_url: ftp://x\n",
		"zero page size":    "board:\n  page_size: 0\n",
		"user without role": "users:\n  - email: a@b.c\n    password_hash: x\n",
		"bad log level":     "log:\n  level: loud\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(body))
			assert.Error(t, err)
		})
	}
}

func TestDecodeEmptyDocument(t *testing.T) {
	cfg, err := Decode(strings.NewReader("  \n"))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Error(t, cfg.Validate())
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)
}
