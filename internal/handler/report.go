package handler

import (
	"fmt"
	"net/http"

	"github.com/zobaczyc-morze/crewreg/internal/auth"
	"github.com/zobaczyc-morze/crewreg/internal/domain"
	"github.com/zobaczyc-morze/crewreg/internal/middleware"
	"github.com/zobaczyc-morze/crewreg/internal/report"
)

// ExportTripReport handles GET /staff/trips/{tripID}/report.
//
// ?format=csv switches from the default xlsx to a plain CSV of the crew
// sheet. ?include_sensitive=true adds the plaintext embarkation sheet and is
// admin-only; CSV has no second sheet, so the combination is rejected.
func (s *Server) ExportTripReport(w http.ResponseWriter, r *http.Request) {
	tripID, err := urlUUID(r, "tripID")
	if err != nil {
		writeBadRequest(w, "invalid trip id")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "csv" {
		writeBadRequest(w, "format must be xlsx or csv")
		return
	}
	includeSensitive := r.URL.Query().Get("include_sensitive") == "true"

	if includeSensitive {
		if middleware.StaffRole(r.Context()) != auth.RoleAdmin {
			writeError(w, domain.ErrForbidden)
			return
		}
		if format != "xlsx" {
			writeBadRequest(w, "sensitive data is only available in the xlsx report")
			return
		}
	}

	rep, err := s.reports.BuildTripReport(r.Context(), tripID, includeSensitive)
	if err != nil {
		writeError(w, err)
		return
	}

	switch format {
	case "xlsx":
		data, err := report.BuildXLSX(rep)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.Trip.Name+".xlsx"))
		w.Write(data)

	case "csv":
		data, err := report.BuildCSV(rep.Crew)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.Trip.Name+".csv"))
		w.Write(data)
	}
}
