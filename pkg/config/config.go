// Package config loads the courier dashboard configuration from YAML and the
// environment.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-courier-dashboard/components/shipments"
	"github.com/goliatone/go-courier-dashboard/pkg/identity"
	"github.com/goliatone/go-courier-dashboard/pkg/sheets"
)

//go:embed schema.json
var schemaJSON []byte

// Environment variables that override file values.
const (
	EnvShipmentsURL   = "COURIER_SHIPMENTS_URL"
	EnvAssignmentsURL = "COURIER_ASSIGNMENTS_URL"
	EnvSessionSecret  = "COURIER_SESSION_SECRET"
	EnvAddr           = "COURIER_ADDR"
	EnvLogLevel       = "COURIER_LOG_LEVEL"
)

// Duration decodes YAML strings such as "1s" or "250ms".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the time.Duration value.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full dashboard configuration.
type Config struct {
	Addr     string          `yaml:"addr"`
	BasePath string          `yaml:"base_path"`
	Sheets   SheetsConfig    `yaml:"sheets"`
	Retry    RetryConfig     `yaml:"retry"`
	Board    BoardConfig     `yaml:"board"`
	Roles    RolesConfig     `yaml:"roles"`
	Session  SessionConfig   `yaml:"session"`
	Users    []identity.User `yaml:"users"`
	Maps     MapsConfig      `yaml:"maps"`
	Chart    ChartConfig     `yaml:"chart"`
	Log      LogConfig       `yaml:"log"`
}

type SheetsConfig struct {
	ShipmentsURL   string   `yaml:"shipments_url"`
	AssignmentsURL string   `yaml:"assignments_url"`
	UpdateURL      string   `yaml:"update_url"`
	APIKey         string   `yaml:"api_key"`
	Timeout        Duration `yaml:"timeout"`
	RateLimit      float64  `yaml:"rate_limit"`
	Burst          int      `yaml:"burst"`
}

type RetryConfig struct {
	MaxAttempts int      `yaml:"max_attempts"`
	Backoff     Duration `yaml:"backoff"`
}

type BoardConfig struct {
	PageSize int `yaml:"page_size"`
}

type RolesConfig struct {
	Admins        []string `yaml:"admins"`
	PickupPersons []string `yaml:"pickup_persons"`
}

type SessionConfig struct {
	Secret       string   `yaml:"secret"`
	TTL          Duration `yaml:"ttl"`
	SecureCookie bool     `yaml:"secure_cookie"`
}

type MapsConfig struct {
	BaseURL string `yaml:"base_url"`
}

type ChartConfig struct {
	Disabled   bool   `yaml:"disabled"`
	Theme      string `yaml:"theme"`
	AssetsHost string `yaml:"assets_host"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration with every default applied and no endpoints.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

// Load reads path (when non-empty), validates it and overlays the environment.
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		f, err := os.Open(path) //nolint:gosec
		if err != nil {
			return Config{}, fmt.Errorf("config: open %s: %w", path, err)
		}
		defer f.Close()
		decoded, err := Decode(f)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
		cfg = decoded
	}
	cfg.applyEnv(os.LookupEnv)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode validates a YAML document against the schema and decodes it strictly.
func Decode(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("config: read: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Config{}, nil
	}
	if err := validateSchema(data); err != nil {
		return Config{}, err
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var cfg Config
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, nil
}

func validateSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("config: parse: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config: normalize: %w", err)
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("config: normalize: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.json", bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("config: load schema: %w", err)
	}
	schema, err := compiler.Compile("config.json")
	if err != nil {
		return fmt.Errorf("config: compile schema: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("config: failed validation: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, target *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*target = strings.TrimSpace(v)
		}
	}
	set(EnvShipmentsURL, &c.Sheets.ShipmentsURL)
	set(EnvAssignmentsURL, &c.Sheets.AssignmentsURL)
	set(EnvSessionSecret, &c.Session.Secret)
	set(EnvAddr, &c.Addr)
	set(EnvLogLevel, &c.Log.Level)
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.BasePath == "" {
		c.BasePath = "/admin"
	}
	if c.Sheets.Timeout <= 0 {
		c.Sheets.Timeout = Duration(sheets.DefaultTimeout)
	}
	if c.Sheets.RateLimit <= 0 {
		c.Sheets.RateLimit = sheets.DefaultRateLimit
	}
	if c.Sheets.Burst <= 0 {
		c.Sheets.Burst = sheets.DefaultBurst
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = shipments.DefaultMaxAttempts
	}
	if c.Retry.Backoff <= 0 {
		c.Retry.Backoff = Duration(shipments.DefaultBackoff)
	}
	if c.Board.PageSize <= 0 {
		c.Board.PageSize = shipments.DefaultPageSize
	}
	if len(c.Roles.Admins) == 0 && len(c.Roles.PickupPersons) == 0 {
		defaults := shipments.DefaultRoles()
		c.Roles.Admins = defaults.Admins
		c.Roles.PickupPersons = defaults.PickupPersons
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = Duration(identity.DefaultTokenTTL)
	}
	if c.Maps.BaseURL == "" {
		c.Maps.BaseURL = shipments.DefaultMapBaseURL
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate checks the values the server cannot start without.
func (c Config) Validate() error {
	var missing []string
	if c.Sheets.ShipmentsURL == "" {
		missing = append(missing, "sheets.shipments_url ("+EnvShipmentsURL+")")
	}
	if c.Sheets.AssignmentsURL == "" {
		missing = append(missing, "sheets.assignments_url ("+EnvAssignmentsURL+")")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing %s", strings.Join(missing, ", "))
	}
	if !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("config: base_path %q must start with /", c.BasePath)
	}
	return nil
}

// RoleDirectory converts the roles section.
func (c Config) RoleDirectory() shipments.RoleDirectory {
	return shipments.RoleDirectory{
		Admins:        append([]string(nil), c.Roles.Admins...),
		PickupPersons: append([]string(nil), c.Roles.PickupPersons...),
	}
}

// SheetsClientConfig converts the sheets section.
func (c Config) SheetsClientConfig() sheets.Config {
	return sheets.Config{
		ShipmentsURL:   c.Sheets.ShipmentsURL,
		AssignmentsURL: c.Sheets.AssignmentsURL,
		UpdateURL:      c.Sheets.UpdateURL,
		APIKey:         c.Sheets.APIKey,
		Timeout:        c.Sheets.Timeout.Std(),
		RateLimit:      c.Sheets.RateLimit,
		Burst:          c.Sheets.Burst,
	}
}
