package runtime

import (
	"context"
	"errors"
	"time"

	cfgpkg "github.com/travisdw72/onevault-api-sub007/internal/config"
	pebblestore "github.com/travisdw72/onevault-api-sub007/internal/storage/pebble"
	"github.com/travisdw72/onevault-api-sub007/internal/tenant"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
}

// Runtime wires storage and config for a single-node instance.
type Runtime struct {
	db     *pebblestore.DB
	config cfgpkg.Config
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	db, err := pebblestore.Open(pebblestore.Options{DataDir: opts.DataDir, Fsync: opts.Fsync, FsyncInterval: opts.FsyncInterval})
	if err != nil {
		return nil, err
	}
	return &Runtime{db: db, config: opts.Config}, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	it.Close()
	return nil
}

// EnsureTenant creates a tenant record if absent, seeded with the configured
// defaults.
func (r *Runtime) EnsureTenant(name string) (tenant.Meta, error) {
	defaults := tenant.Defaults()
	if r.config.TenantDefaults.PayloadMaxBytes > 0 {
		defaults.PayloadMaxBytes = r.config.TenantDefaults.PayloadMaxBytes
	}
	if r.config.TenantDefaults.BusinessKeyMaxBytes > 0 {
		defaults.BusinessKeyMaxBytes = r.config.TenantDefaults.BusinessKeyMaxBytes
	}
	return tenant.EnsureTenant(r.db, name, defaults)
}

// DB exposes the underlying DB for store construction (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
