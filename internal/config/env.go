package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv overlays ONEVAULT_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("ONEVAULT_ALLOW_AUTO_CREATE_TENANTS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AllowAutoCreateTenants = b
		}
	}
	if v := os.Getenv("ONEVAULT_DEFAULT_TENANT_NAME"); v != "" {
		cfg.DefaultTenantName = v
	}
	if v := os.Getenv("ONEVAULT_TENANT_NAME_REGEX"); v != "" {
		cfg.TenantNameRegex = v
	}
	if v := os.Getenv("ONEVAULT_TENANT_DEFAULTS_PAYLOAD_MAX_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TenantDefaults.PayloadMaxBytes = n
		}
	}
	if v := os.Getenv("ONEVAULT_TENANT_DEFAULTS_BUSINESS_KEY_MAX_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TenantDefaults.BusinessKeyMaxBytes = n
		}
	}
	if v := os.Getenv("ONEVAULT_MAX_TENANTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxTenants = n
		}
	}
	if v := os.Getenv("ONEVAULT_ALLOWED_TENANTS"); v != "" {
		parts := strings.Split(v, ",")
		cfg.AllowedTenants = nil
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cfg.AllowedTenants = append(cfg.AllowedTenants, p)
			}
		}
	}
	if v := os.Getenv("ONEVAULT_REQUIRE_REGISTERED_SCHEMAS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.RequireRegisteredSchemas = b
		}
	}
	if v := os.Getenv("ONEVAULT_AUDIT_SINK"); v != "" {
		cfg.Audit.Sink = v
	}
	if v := os.Getenv("ONEVAULT_AUDIT_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Audit.TimeoutMs = n
		}
	}
	if v := os.Getenv("ONEVAULT_WRITE_RETRY_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WriteRetry.MaxAttempts = n
		}
	}
	if v := os.Getenv("ONEVAULT_WRITE_RETRY_BACKOFF_BASE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WriteRetry.BackoffBaseMs = n
		}
	}
	if v := os.Getenv("ONEVAULT_WRITE_RETRY_BACKOFF_CAP_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WriteRetry.BackoffCapMs = n
		}
	}
}
