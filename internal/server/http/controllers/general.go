package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/travisdw72/onevault-api-sub007/internal/runtime"
	"github.com/travisdw72/onevault-api-sub007/internal/vault"
)

// GeneralController handles general HTTP endpoints like health and tenants.
type GeneralController struct {
	rt  *runtime.Runtime
	svc *vault.Service
}

// NewGeneralController creates a new general controller.
func NewGeneralController(rt *runtime.Runtime, svc *vault.Service) *GeneralController {
	return &GeneralController{rt: rt, svc: svc}
}

// RegisterRoutes registers general routes with the given mux.
//
// This method sets up HTTP endpoints for:
// - Health checks (/v1/healthz)
// - Tenant management (/v1/tenants, /v1/tenants/create)
func (c *GeneralController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/healthz", c.handleHealth)
	mux.HandleFunc("/v1/tenants", c.handleListTenants)
	mux.HandleFunc("/v1/tenants/create", c.handleTenantCreate)
}

// handleHealth returns the health status of the service.
//
// Returns 200 OK with {"status": "ok"} if healthy, 503 Service Unavailable otherwise.
func (c *GeneralController) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := c.rt.CheckHealth(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_serving")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleListTenants lists all registered tenants.
func (c *GeneralController) handleListTenants(w http.ResponseWriter, r *http.Request) {
	list, err := c.svc.ListTenants()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]any{"tenants": list})
}

// handleTenantCreate creates a tenant record if absent.
//
// Expects a JSON body with a "tenant" field. Returns 201 Created on success.
func (c *GeneralController) handleTenantCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req tenantCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Tenant == "" {
		writeError(w, http.StatusBadRequest, "tenant is required")
		return
	}
	if _, err := c.svc.EnsureTenant(req.Tenant); err != nil {
		writeServiceError(w, err)
		return
	}
	writeCreated(w)
}
