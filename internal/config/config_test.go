package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.DefaultTenantName != "default" {
		t.Fatalf("default tenant name: %q", cfg.DefaultTenantName)
	}
	if cfg.TenantDefaults.PayloadMaxBytes != 1<<20 {
		t.Fatalf("payload max: %d", cfg.TenantDefaults.PayloadMaxBytes)
	}
	if cfg.WriteRetry.MaxAttempts != 3 {
		t.Fatalf("retry attempts: %d", cfg.WriteRetry.MaxAttempts)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "onevault.json")
	body := `{"defaultTenantName":"acme","maxTenants":5,"audit":{"sink":"log","timeoutMs":250}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultTenantName != "acme" || cfg.MaxTenants != 5 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.Audit.Sink != "log" || cfg.Audit.TimeoutMs != 250 {
		t.Fatalf("audit cfg not applied: %+v", cfg.Audit)
	}
	// untouched fields keep defaults
	if cfg.TenantDefaults.BusinessKeyMaxBytes != 1<<10 {
		t.Fatalf("defaults lost on load: %+v", cfg.TenantDefaults)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "onevault.yaml")
	body := "defaultTenantName: acme\nschemas:\n  - entityType: script_execution\n    requiredFields: [status]\n    constraint: 'has(json.status)'\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Schemas) != 1 || cfg.Schemas[0].EntityType != "script_execution" {
		t.Fatalf("schemas not parsed: %+v", cfg.Schemas)
	}
}

func TestFromEnvOverlay(t *testing.T) {
	t.Setenv("ONEVAULT_DEFAULT_TENANT_NAME", "env-tenant")
	t.Setenv("ONEVAULT_ALLOWED_TENANTS", "a, b ,c")
	t.Setenv("ONEVAULT_WRITE_RETRY_MAX_ATTEMPTS", "7")
	cfg := Default()
	FromEnv(&cfg)
	if cfg.DefaultTenantName != "env-tenant" {
		t.Fatalf("env overlay missed: %q", cfg.DefaultTenantName)
	}
	if len(cfg.AllowedTenants) != 3 || cfg.AllowedTenants[1] != "b" {
		t.Fatalf("allowed tenants: %v", cfg.AllowedTenants)
	}
	if cfg.WriteRetry.MaxAttempts != 7 {
		t.Fatalf("retry attempts: %d", cfg.WriteRetry.MaxAttempts)
	}
}

func TestDefaultDataDirNonEmpty(t *testing.T) {
	if DefaultDataDir() == "" {
		t.Fatalf("expected non-empty data dir")
	}
}
