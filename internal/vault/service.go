package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/travisdw72/onevault-api-sub007/internal/audit"
	"github.com/travisdw72/onevault-api-sub007/internal/hub"
	"github.com/travisdw72/onevault-api-sub007/internal/runtime"
	"github.com/travisdw72/onevault-api-sub007/internal/satellite"
	"github.com/travisdw72/onevault-api-sub007/internal/schema"
	"github.com/travisdw72/onevault-api-sub007/internal/tenant"
	logpkg "github.com/travisdw72/onevault-api-sub007/pkg/log"
)

// Service is the engine facade: every public operation takes an explicit
// tenant and actor, validates the request, and drives the hub/satellite
// stores. Audit delivery is strictly after-commit and best-effort.
type Service struct {
	rt      *runtime.Runtime
	hub     *hub.Registry
	sat     *satellite.Store
	schemas *schema.Registry
	bridge  *audit.Bridge
	// auditLog is non-nil when the configured sink is the persistent store.
	auditLog *audit.LogStore
	logger   logpkg.Logger
	retry    retryPolicy
	tenantRe *regexp.Regexp

	// appendFn is the satellite append; a seam for conflict-injection tests.
	appendFn func(ctx context.Context, key hub.Key, payload []byte, actor, sourceTag string) (satellite.AppendResult, error)
}

// New wires a Service over the runtime's storage using its configuration.
func New(rt *runtime.Runtime, logger logpkg.Logger) (*Service, error) {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	logger = logger.With(logpkg.Component("vault"))
	cfg := rt.Config()

	sat, err := satellite.Open(rt.DB())
	if err != nil {
		return nil, err
	}

	schemas := schema.NewRegistry(cfg.RequireRegisteredSchemas, cfg.TenantDefaults.PayloadMaxBytes)
	for _, def := range cfg.Schemas {
		if err := schemas.Register(schema.Def{
			EntityType:      def.EntityType,
			RequiredFields:  def.RequiredFields,
			Constraint:      def.Constraint,
			MaxPayloadBytes: def.MaxPayloadBytes,
		}); err != nil {
			return nil, err
		}
	}

	var sink audit.Sink
	var auditLog *audit.LogStore
	switch cfg.Audit.Sink {
	case "", "noop":
		sink = audit.NoopSink{}
	case "log":
		sink = audit.LogSink{Logger: logger.With(logpkg.Component("audit"))}
	case "store":
		auditLog, err = audit.OpenLogStore(rt.DB())
		if err != nil {
			return nil, err
		}
		sink = auditLog
	default:
		return nil, fmt.Errorf("vault: unknown audit sink %q", cfg.Audit.Sink)
	}
	bridge := audit.NewBridge(sink, logger, time.Duration(cfg.Audit.TimeoutMs)*time.Millisecond)

	tenantRe, err := regexp.Compile("^" + cfg.TenantNameRegex + "$")
	if err != nil {
		return nil, fmt.Errorf("vault: tenant name regex: %w", err)
	}

	s := &Service{
		rt:       rt,
		hub:      hub.NewRegistry(rt.DB()),
		sat:      sat,
		schemas:  schemas,
		bridge:   bridge,
		auditLog: auditLog,
		logger:   logger,
		retry:    policyFrom(cfg.WriteRetry),
		tenantRe: tenantRe,
	}
	s.appendFn = s.sat.Append
	return s, nil
}

// WriteRequest is one write call against the store.
type WriteRequest struct {
	EntityType  string
	TenantID    string
	BusinessKey string
	Payload     json.RawMessage
	Actor       string
	SourceTag   string
}

// WriteResult reports the outcome of a Write.
type WriteResult struct {
	IdentityKey     hub.Key
	VersionSeq      uint64
	Changed         bool
	IdentityCreated bool
}

// Record pairs an identity with one of its versions.
type Record struct {
	Identity hub.Identity
	Version  satellite.Version
}

// Write records req.Payload as the current state of the entity. Identical
// payloads are detected by digest and produce no new version. The whole
// hub-ensure + close + insert sequence is atomic per identity; the audit
// notification runs after commit and cannot fail the call.
func (s *Service) Write(ctx context.Context, req WriteRequest) (WriteResult, error) {
	if err := s.checkRequest(req.EntityType, req.TenantID, req.BusinessKey, req.Actor); err != nil {
		return WriteResult{}, err
	}
	meta, err := s.checkTenant(req.TenantID, req.BusinessKey)
	if err != nil {
		return WriteResult{}, err
	}
	if len(req.Payload) > meta.PayloadMaxBytes {
		return WriteResult{}, &ValidationError{Field: "payload", Reason: fmt.Sprintf("exceeds tenant limit of %d bytes", meta.PayloadMaxBytes)}
	}
	if err := s.schemas.Validate(req.EntityType, req.Payload); err != nil {
		return WriteResult{}, err
	}

	ident, created, err := s.hub.Ensure(req.EntityType, req.TenantID, req.BusinessKey, req.SourceTag)
	if err != nil {
		return WriteResult{}, storageErr(err)
	}

	var res satellite.AppendResult
	err = s.retry.withRetry(ctx, func() error {
		var aerr error
		res, aerr = s.appendFn(ctx, ident.Key, req.Payload, req.Actor, req.SourceTag)
		return aerr
	})
	if err != nil {
		if IsValidation(err) || errors.Is(err, ErrConflict) {
			return WriteResult{}, err
		}
		return WriteResult{}, storageErr(err)
	}

	if res.Changed {
		s.bridge.Notify(ctx, audit.ChangeEvent{
			ID:          audit.NewEventID(),
			IdentityKey: ident.Key.String(),
			EntityType:  req.EntityType,
			TenantID:    req.TenantID,
			BusinessKey: req.BusinessKey,
			OldSeq:      res.PrevSeq,
			NewSeq:      res.Version.Seq,
			Payload:     append(json.RawMessage(nil), req.Payload...),
			Actor:       req.Actor,
			SourceTag:   req.SourceTag,
			TimestampMs: time.Now().UnixMilli(),
		})
	}

	return WriteResult{
		IdentityKey:     ident.Key,
		VersionSeq:      res.Version.Seq,
		Changed:         res.Changed,
		IdentityCreated: created,
	}, nil
}

// ReadCurrent returns the entity's current version.
func (s *Service) ReadCurrent(ctx context.Context, entityType, tenantID, businessKey string) (Record, error) {
	ident, err := s.lookup(entityType, tenantID, businessKey)
	if err != nil {
		return Record{}, err
	}
	v, err := s.sat.Current(ident.Key)
	if err != nil {
		if errors.Is(err, satellite.ErrNoVersions) {
			return Record{}, ErrNotFound
		}
		return Record{}, storageErr(err)
	}
	return Record{Identity: ident, Version: v}, nil
}

// ReadAsOf returns the version whose validity interval contains at.
func (s *Service) ReadAsOf(ctx context.Context, entityType, tenantID, businessKey string, at time.Time) (Record, error) {
	ident, err := s.lookup(entityType, tenantID, businessKey)
	if err != nil {
		return Record{}, err
	}
	v, err := s.sat.AsOf(ident.Key, at)
	if err != nil {
		if errors.Is(err, satellite.ErrNoVersions) {
			return Record{}, ErrNotFound
		}
		return Record{}, storageErr(err)
	}
	return Record{Identity: ident, Version: v}, nil
}

// History returns the entity's versions in sequence order.
func (s *Service) History(ctx context.Context, entityType, tenantID, businessKey string, opts satellite.HistoryOptions) ([]Record, error) {
	ident, err := s.lookup(entityType, tenantID, businessKey)
	if err != nil {
		return nil, err
	}
	versions, err := s.sat.History(ident.Key, opts)
	if err != nil {
		return nil, storageErr(err)
	}
	out := make([]Record, len(versions))
	for i, v := range versions {
		out[i] = Record{Identity: ident, Version: v}
	}
	return out, nil
}

// Deactivate marks the entity inactive by writing a new version whose payload
// carries "active": false. It reports whether the call changed state; an
// entity that was never written yields ErrNotFound.
func (s *Service) Deactivate(ctx context.Context, entityType, tenantID, businessKey, actor string) (bool, error) {
	cur, err := s.ReadCurrent(ctx, entityType, tenantID, businessKey)
	if err != nil {
		return false, err
	}
	var obj map[string]any
	if err := json.Unmarshal(cur.Version.Payload, &obj); err != nil {
		return false, storageErr(err)
	}
	obj["active"] = false
	payload, err := json.Marshal(obj)
	if err != nil {
		return false, storageErr(err)
	}
	res, err := s.Write(ctx, WriteRequest{
		EntityType:  entityType,
		TenantID:    tenantID,
		BusinessKey: businessKey,
		Payload:     payload,
		Actor:       actor,
		SourceTag:   cur.Version.SourceTag,
	})
	if err != nil {
		return false, err
	}
	return res.Changed, nil
}

// Lookup resolves the identity record for a business triple.
func (s *Service) Lookup(entityType, tenantID, businessKey string) (hub.Identity, error) {
	return s.lookup(entityType, tenantID, businessKey)
}

// RegisterSchema installs a payload schema at runtime.
func (s *Service) RegisterSchema(def schema.Def) error { return s.schemas.Register(def) }

// SchemaMode reports whether entityType has a registered schema.
func (s *Service) SchemaMode(entityType string) schema.Mode { return s.schemas.Mode(entityType) }

// Schemas lists registered entity types.
func (s *Service) Schemas() []string { return s.schemas.List() }

// AuditLog exposes the persistent audit trail, or nil when the configured
// sink is not the store.
func (s *Service) AuditLog() *audit.LogStore { return s.auditLog }

// AuditSink reports the configured audit sink name.
func (s *Service) AuditSink() string { return s.bridge.SinkName() }

// EnsureTenant creates the tenant record if absent.
func (s *Service) EnsureTenant(name string) (tenant.Meta, error) {
	if err := s.checkTenantName(name); err != nil {
		return tenant.Meta{}, err
	}
	return s.rt.EnsureTenant(name)
}

// ListTenants returns all known tenants.
func (s *Service) ListTenants() ([]string, error) {
	return tenant.ListTenants(s.rt.DB())
}

func (s *Service) lookup(entityType, tenantID, businessKey string) (hub.Identity, error) {
	if err := s.checkRequest(entityType, tenantID, businessKey, "-"); err != nil {
		return hub.Identity{}, err
	}
	ident, err := s.hub.Lookup(entityType, tenantID, businessKey)
	if err != nil {
		if errors.Is(err, hub.ErrNotFound) {
			return hub.Identity{}, ErrNotFound
		}
		return hub.Identity{}, storageErr(err)
	}
	// The key derivation already scopes by tenant; this re-check guards
	// against a corrupted or hand-written hub row leaking across tenants.
	if ident.TenantID != tenantID {
		return hub.Identity{}, ErrNotFound
	}
	return ident, nil
}

func (s *Service) checkRequest(entityType, tenantID, businessKey, actor string) error {
	if entityType == "" {
		return &ValidationError{Field: "entity_type", Reason: "required"}
	}
	if tenantID == "" {
		return &ValidationError{Field: "tenant_id", Reason: "required"}
	}
	if businessKey == "" {
		return &ValidationError{Field: "business_key", Reason: "required"}
	}
	if actor == "" {
		return &ValidationError{Field: "actor", Reason: "required"}
	}
	return nil
}

func (s *Service) checkTenantName(name string) error {
	if !s.tenantRe.MatchString(name) {
		return &ValidationError{Field: "tenant_id", Reason: "does not match tenant name policy"}
	}
	cfg := s.rt.Config()
	if len(cfg.AllowedTenants) > 0 {
		allowed := false
		for _, a := range cfg.AllowedTenants {
			if a == name {
				allowed = true
				break
			}
		}
		if !allowed {
			return &ValidationError{Field: "tenant_id", Reason: "not in allowed tenants"}
		}
	}
	return nil
}

func (s *Service) checkTenant(tenantID, businessKey string) (tenant.Meta, error) {
	if err := s.checkTenantName(tenantID); err != nil {
		return tenant.Meta{}, err
	}
	cfg := s.rt.Config()
	meta, found, err := tenant.GetTenant(s.rt.DB(), tenantID)
	if err != nil {
		return tenant.Meta{}, storageErr(err)
	}
	if !found {
		if !cfg.AllowAutoCreateTenants {
			return tenant.Meta{}, &ValidationError{Field: "tenant_id", Reason: "unknown tenant"}
		}
		if cfg.MaxTenants > 0 {
			names, err := tenant.ListTenants(s.rt.DB())
			if err != nil {
				return tenant.Meta{}, storageErr(err)
			}
			if len(names) >= cfg.MaxTenants {
				return tenant.Meta{}, &ValidationError{Field: "tenant_id", Reason: "tenant limit reached"}
			}
		}
		meta, err = s.rt.EnsureTenant(tenantID)
		if err != nil {
			return tenant.Meta{}, storageErr(err)
		}
	}
	if len(businessKey) > meta.BusinessKeyMaxBytes {
		return tenant.Meta{}, &ValidationError{Field: "business_key", Reason: fmt.Sprintf("exceeds tenant limit of %d bytes", meta.BusinessKeyMaxBytes)}
	}
	return meta, nil
}

func isSchemaValidation(err error) bool {
	var se *schema.ValidationError
	return errors.As(err, &se)
}

// storageErr classifies non-validation failures from the storage layer.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	if IsValidation(err) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
