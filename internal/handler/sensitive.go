package handler

import (
	"net/http"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
)

// SubmitSensitive handles POST /registrations/{token}/sensitive: the
// qualified participant supplies the identification data the skipper needs
// for embarkation. The response is already masked; the plaintext never
// echoes back.
func (s *Server) SubmitSensitive(w http.ResponseWriter, r *http.Request) {
	reg, ok := s.registrationFromToken(w, r)
	if !ok {
		return
	}
	var body struct {
		NationalID     string              `json:"national_id"`
		DocumentType   domain.DocumentType `json:"document_type"`
		DocumentNumber string              `json:"document_number"`
		Consent        bool                `json:"consent"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	masked, err := s.sensitive.Submit(r.Context(), reg, domain.SensitiveRecord{
		NationalID:     body.NationalID,
		DocumentType:   body.DocumentType,
		DocumentNumber: body.DocumentNumber,
		Consent:        body.Consent,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, masked)
}

// GetMaskedSensitive handles GET /staff/registrations/{registrationID}/sensitive.
// Staff only ever sees the masked projection; the plaintext is reserved for
// the admin-gated embarkation report.
func (s *Server) GetMaskedSensitive(w http.ResponseWriter, r *http.Request) {
	registrationID, err := urlUUID(r, "registrationID")
	if err != nil {
		writeBadRequest(w, "invalid registration id")
		return
	}

	reg, err := s.registrations.GetByID(r.Context(), registrationID)
	if err != nil {
		writeError(w, err)
		return
	}
	masked, err := s.sensitive.GetMasked(r.Context(), reg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, masked)
}
