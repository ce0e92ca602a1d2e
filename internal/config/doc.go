// Package config provides loading and environment overlay for OneVault
// runtime configuration. It exposes a Default() baseline, file loading for
// JSON and YAML, and an ONEVAULT_* environment overlay.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/onevault.yaml"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	rt, _ := runtime.Open(runtime.Options{DataDir: config.DefaultDataDir(), Config: cfg})
//	defer rt.Close()
package config
