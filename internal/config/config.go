package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	AllowAutoCreateTenants bool           `json:"allowAutoCreateTenants" yaml:"allowAutoCreateTenants"`
	DefaultTenantName      string         `json:"defaultTenantName" yaml:"defaultTenantName"`
	TenantNameRegex        string         `json:"tenantNameRegex" yaml:"tenantNameRegex"`
	TenantDefaults         TenantDefaults `json:"tenantDefaults" yaml:"tenantDefaults"`
	MaxTenants             int            `json:"maxTenants" yaml:"maxTenants"`
	AllowedTenants         []string       `json:"allowedTenants" yaml:"allowedTenants"`

	// RequireRegisteredSchemas rejects writes for entity types without a
	// registered payload schema instead of accepting them permissively.
	RequireRegisteredSchemas bool        `json:"requireRegisteredSchemas" yaml:"requireRegisteredSchemas"`
	Schemas                  []SchemaDef `json:"schemas" yaml:"schemas"`

	Audit      AuditConfig `json:"audit" yaml:"audit"`
	WriteRetry RetryConfig `json:"writeRetry" yaml:"writeRetry"`
}

// TenantDefaults captures per-tenant baseline limits.
type TenantDefaults struct {
	PayloadMaxBytes     int `json:"payloadMaxBytes" yaml:"payloadMaxBytes"`
	BusinessKeyMaxBytes int `json:"businessKeyMaxBytes" yaml:"businessKeyMaxBytes"`
}

// SchemaDef declares a payload schema for one entity type.
type SchemaDef struct {
	EntityType      string   `json:"entityType" yaml:"entityType"`
	RequiredFields  []string `json:"requiredFields" yaml:"requiredFields"`
	Constraint      string   `json:"constraint" yaml:"constraint"`
	MaxPayloadBytes int      `json:"maxPayloadBytes" yaml:"maxPayloadBytes"`
}

// AuditConfig selects and bounds the audit sink.
type AuditConfig struct {
	// Sink is one of "noop", "log", "store".
	Sink string `json:"sink" yaml:"sink"`
	// TimeoutMs bounds a single sink emit; the write path never waits longer.
	TimeoutMs int `json:"timeoutMs" yaml:"timeoutMs"`
}

// RetryConfig bounds internal retries on write-write conflicts.
type RetryConfig struct {
	MaxAttempts   int `json:"maxAttempts" yaml:"maxAttempts"`
	BackoffBaseMs int `json:"backoffBaseMs" yaml:"backoffBaseMs"`
	BackoffCapMs  int `json:"backoffCapMs" yaml:"backoffCapMs"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		AllowAutoCreateTenants: true,
		DefaultTenantName:      "default",
		TenantNameRegex:        "[a-z0-9-_]{1,64}",
		TenantDefaults: TenantDefaults{
			PayloadMaxBytes:     1 << 20, // 1 MiB
			BusinessKeyMaxBytes: 1 << 10, // 1 KiB
		},
		Audit:      AuditConfig{Sink: "store", TimeoutMs: 2000},
		WriteRetry: RetryConfig{MaxAttempts: 3, BackoffBaseMs: 25, BackoffCapMs: 500},
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path
// is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return cfg, nil
}
