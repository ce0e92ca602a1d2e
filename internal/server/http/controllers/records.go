package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/travisdw72/onevault-api-sub007/internal/satellite"
	"github.com/travisdw72/onevault-api-sub007/internal/vault"
)

// RecordsController handles entity record endpoints: writes, temporal reads,
// history, deactivation, and identity lookup.
type RecordsController struct {
	svc *vault.Service
}

// NewRecordsController creates a new records controller.
func NewRecordsController(svc *vault.Service) *RecordsController {
	return &RecordsController{svc: svc}
}

// RegisterRoutes registers record routes with the given mux.
func (c *RecordsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/records/write", c.handleWrite)
	mux.HandleFunc("/v1/records/current", c.handleCurrent)
	mux.HandleFunc("/v1/records/asof", c.handleAsOf)
	mux.HandleFunc("/v1/records/close", c.handleClose)
	mux.HandleFunc("/v1/records/history", c.handleHistory)
	mux.HandleFunc("/v1/identities/lookup", c.handleLookup)
}

// handleWrite records a new entity state.
//
// Identical payloads are reported with "changed": false and do not create a
// new version.
func (c *RecordsController) handleWrite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req recordWriteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	res, err := c.svc.Write(r.Context(), vault.WriteRequest{
		EntityType:  req.EntityType,
		TenantID:    req.Tenant,
		BusinessKey: req.BusinessKey,
		Payload:     req.Payload,
		Actor:       req.Actor,
		SourceTag:   req.SourceTag,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, writeResultJSON{
		Key:             res.IdentityKey.String(),
		VersionSeq:      res.VersionSeq,
		Changed:         res.Changed,
		IdentityCreated: res.IdentityCreated,
	})
}

// handleCurrent returns the entity's current version.
//
// Query params: entity_type, tenant, business_key.
func (c *RecordsController) handleCurrent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rec, err := c.svc.ReadCurrent(r.Context(), q.Get("entity_type"), q.Get("tenant"), q.Get("business_key"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, recordToJSON(rec))
}

// handleAsOf returns the version effective at the given instant.
//
// Query params: entity_type, tenant, business_key, at (RFC3339 or Unix ms).
func (c *RecordsController) handleAsOf(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	atMs := parseTimestamp(q.Get("at"))
	if atMs == 0 {
		writeError(w, http.StatusBadRequest, "at is required (RFC3339 or Unix ms)")
		return
	}
	rec, err := c.svc.ReadAsOf(r.Context(), q.Get("entity_type"), q.Get("tenant"), q.Get("business_key"), time.UnixMilli(atMs))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, recordToJSON(rec))
}

// handleClose marks the entity inactive by writing a closing version.
func (c *RecordsController) handleClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req recordCloseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	changed, err := c.svc.Deactivate(r.Context(), req.EntityType, req.Tenant, req.BusinessKey, req.Actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]bool{"changed": changed})
}

// handleHistory returns the entity's version history.
//
// Query params: entity_type, tenant, business_key, limit, reverse.
func (c *RecordsController) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	recs, err := c.svc.History(r.Context(), q.Get("entity_type"), q.Get("tenant"), q.Get("business_key"), satellite.HistoryOptions{
		Limit:   parseLimit(q.Get("limit")),
		Reverse: parseBool(q.Get("reverse")),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	versions := make([]versionJSON, len(recs))
	for i, rec := range recs {
		versions[i] = versionToJSON(rec.Version)
	}
	out := map[string]any{"versions": versions}
	if len(recs) > 0 {
		out["identity"] = identityToJSON(recs[0].Identity)
	}
	writeJSON(w, out)
}

// handleLookup resolves the identity record for a business triple without
// touching version data.
func (c *RecordsController) handleLookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ident, err := c.svc.Lookup(q.Get("entity_type"), q.Get("tenant"), q.Get("business_key"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, identityToJSON(ident))
}
