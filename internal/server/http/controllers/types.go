package controllers

import (
	"encoding/json"

	"github.com/travisdw72/onevault-api-sub007/internal/hub"
	"github.com/travisdw72/onevault-api-sub007/internal/satellite"
	"github.com/travisdw72/onevault-api-sub007/internal/vault"
)

// Common request/response types for HTTP controllers

// tenantCreateReq represents a request to create a new tenant.
type tenantCreateReq struct {
	Tenant string `json:"tenant"`
}

// recordWriteReq represents a request to record a new entity state.
type recordWriteReq struct {
	EntityType  string          `json:"entity_type"`
	Tenant      string          `json:"tenant"`
	BusinessKey string          `json:"business_key"`
	Payload     json.RawMessage `json:"payload"`
	Actor       string          `json:"actor"`
	SourceTag   string          `json:"source_tag"`
}

// recordCloseReq represents a request to deactivate an entity.
type recordCloseReq struct {
	EntityType  string `json:"entity_type"`
	Tenant      string `json:"tenant"`
	BusinessKey string `json:"business_key"`
	Actor       string `json:"actor"`
}

// schemaRegisterReq represents a request to register a payload schema.
type schemaRegisterReq struct {
	EntityType      string   `json:"entity_type"`
	RequiredFields  []string `json:"required_fields"`
	Constraint      string   `json:"constraint"`
	MaxPayloadBytes int      `json:"max_payload_bytes"`
}

// identityJSON represents a resolved hub identity.
type identityJSON struct {
	Key         string `json:"key"`
	EntityType  string `json:"entity_type"`
	Tenant      string `json:"tenant"`
	BusinessKey string `json:"business_key"`
	CreatedAtMs int64  `json:"created_at_ms"`
	SourceTag   string `json:"source_tag,omitempty"`
}

// versionJSON represents one satellite version.
type versionJSON struct {
	Seq              uint64          `json:"seq"`
	EffectiveStartMs int64           `json:"effective_start_ms"`
	EffectiveEndMs   int64           `json:"effective_end_ms"`
	Current          bool            `json:"current"`
	Digest           string          `json:"digest"`
	Payload          json.RawMessage `json:"payload"`
	Actor            string          `json:"actor"`
	SourceTag        string          `json:"source_tag,omitempty"`
}

// recordJSON pairs an identity with one of its versions.
type recordJSON struct {
	Identity identityJSON `json:"identity"`
	Version  versionJSON  `json:"version"`
}

// writeResultJSON represents the outcome of a write.
type writeResultJSON struct {
	Key             string `json:"key"`
	VersionSeq      uint64 `json:"version_seq"`
	Changed         bool   `json:"changed"`
	IdentityCreated bool   `json:"identity_created"`
}

func identityToJSON(id hub.Identity) identityJSON {
	return identityJSON{
		Key:         id.Key.String(),
		EntityType:  id.EntityType,
		Tenant:      id.TenantID,
		BusinessKey: id.BusinessKey,
		CreatedAtMs: id.CreatedAtMs,
		SourceTag:   id.SourceTag,
	}
}

func versionToJSON(v satellite.Version) versionJSON {
	return versionJSON{
		Seq:              v.Seq,
		EffectiveStartMs: v.EffectiveStartMs,
		EffectiveEndMs:   v.EffectiveEndMs,
		Current:          v.Current(),
		Digest:           v.Digest,
		Payload:          v.Payload,
		Actor:            v.Actor,
		SourceTag:        v.SourceTag,
	}
}

func recordToJSON(rec vault.Record) recordJSON {
	return recordJSON{Identity: identityToJSON(rec.Identity), Version: versionToJSON(rec.Version)}
}
