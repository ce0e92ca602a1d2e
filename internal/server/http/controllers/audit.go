package controllers

import (
	"net/http"

	"github.com/travisdw72/onevault-api-sub007/internal/audit"
	"github.com/travisdw72/onevault-api-sub007/internal/vault"
)

// AuditController serves reads of the persistent audit trail.
type AuditController struct {
	svc *vault.Service
}

// NewAuditController creates a new audit controller.
func NewAuditController(svc *vault.Service) *AuditController {
	return &AuditController{svc: svc}
}

// RegisterRoutes registers audit routes with the given mux.
func (c *AuditController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/audit/tail", c.handleTail)
}

// handleTail reads audit entries in log order.
//
// Query params: start_seq (resume cursor, inclusive), limit, filter (CEL
// expression over seq, ts_ms, entity_type, tenant, business_key, actor,
// new_seq, json, now_ms). The response carries "next_seq" to resume from.
//
// Only available when the configured audit sink is the persistent store.
func (c *AuditController) handleTail(w http.ResponseWriter, r *http.Request) {
	logStore := c.svc.AuditLog()
	if logStore == nil {
		writeError(w, http.StatusBadRequest, "audit sink is not the persistent store")
		return
	}
	q := r.URL.Query()
	filter, err := audit.NewFilter(q.Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter expression")
		return
	}
	entries, next, err := logStore.Read(audit.ReadOptions{
		StartSeq: parseSeq(q.Get("start_seq")),
		Limit:    parseLimit(q.Get("limit")),
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	matched := make([]audit.Entry, 0, len(entries))
	for _, e := range entries {
		if filter.Match(e) {
			matched = append(matched, e)
		}
	}
	writeJSON(w, map[string]any{"entries": matched, "next_seq": next})
}
