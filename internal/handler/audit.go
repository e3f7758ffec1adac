package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
)

// ListAudit handles GET /staff/audit.
//
// Supports ?page= and ?limit= (defaults: page=1, limit=20, max=100), plus
// optional ?target_model= and ?target_id= to narrow to one record's history.
func (s *Server) ListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := domain.NewPaginationParams(queryInt(q.Get("page")), queryInt(q.Get("limit")))

	var (
		entries []domain.AuditEntry
		err     error
	)
	if model := q.Get("target_model"); model != "" {
		entries, err = s.audits.ListByTarget(r.Context(), model, q.Get("target_id"), params)
	} else {
		entries, err = s.audits.List(r.Context(), params)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// PurgeAudit handles DELETE /staff/audit?before=2024-01-01T00:00:00Z.
// Admin only; the gate is in the router.
func (s *Server) PurgeAudit(w http.ResponseWriter, r *http.Request) {
	cutoff, err := time.Parse(time.RFC3339, r.URL.Query().Get("before"))
	if err != nil {
		writeBadRequest(w, "before must be an RFC 3339 timestamp")
		return
	}

	purged, err := s.audits.Purge(r.Context(), cutoff)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"purged": purged})
}

// queryInt parses an optional integer query parameter.
func queryInt(raw string) *int {
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
