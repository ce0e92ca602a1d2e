package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/travisdw72/onevault-api-sub007/internal/schema"
	"github.com/travisdw72/onevault-api-sub007/internal/vault"
)

// SchemasController handles payload schema registration and listing.
type SchemasController struct {
	svc *vault.Service
}

// NewSchemasController creates a new schemas controller.
func NewSchemasController(svc *vault.Service) *SchemasController {
	return &SchemasController{svc: svc}
}

// RegisterRoutes registers schema routes with the given mux.
func (c *SchemasController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/schemas", c.handleList)
	mux.HandleFunc("/v1/schemas/register", c.handleRegister)
}

// handleRegister installs a payload schema for an entity type. The constraint
// expression is compiled up front, so a malformed expression is rejected here
// rather than at write time.
func (c *SchemasController) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req schemaRegisterReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	err := c.svc.RegisterSchema(schema.Def{
		EntityType:      req.EntityType,
		RequiredFields:  req.RequiredFields,
		Constraint:      req.Constraint,
		MaxPayloadBytes: req.MaxPayloadBytes,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeCreated(w)
}

// handleList lists registered entity types with their validation mode.
func (c *SchemasController) handleList(w http.ResponseWriter, r *http.Request) {
	types := c.svc.Schemas()
	out := make([]map[string]string, len(types))
	for i, et := range types {
		out[i] = map[string]string{
			"entity_type": et,
			"mode":        c.svc.SchemaMode(et).String(),
		}
	}
	writeJSON(w, map[string]any{"schemas": out})
}
