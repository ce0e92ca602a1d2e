package runtime

import (
	"context"
	"testing"
	"time"

	cfgpkg "github.com/travisdw72/onevault-api-sub007/internal/config"
	pebblestore "github.com/travisdw72/onevault-api-sub007/internal/storage/pebble"
)

func TestOpenCloseAndHealth(t *testing.T) {
	rt, err := Open(Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestOpenWithFsyncInterval(t *testing.T) {
	rt, err := Open(Options{
		DataDir:       t.TempDir(),
		Fsync:         pebblestore.FsyncModeInterval,
		FsyncInterval: 7 * time.Millisecond,
		Config:        cfgpkg.Default(),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })

	if _, err := rt.EnsureTenant("acme"); err != nil {
		t.Fatalf("write under interval fsync: %v", err)
	}
}

func TestEnsureTenantUsesConfiguredDefaults(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.TenantDefaults.PayloadMaxBytes = 2048
	rt, err := Open(Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways, Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })

	m, err := rt.EnsureTenant("acme")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if m.PayloadMaxBytes != 2048 {
		t.Fatalf("want configured payload limit, got %d", m.PayloadMaxBytes)
	}
}
