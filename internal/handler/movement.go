package handler

import (
	"net/http"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
)

// RecordMovement handles POST /staff/registrations/{registrationID}/movements:
// manually recorded bank transfers, cash payments, and refunds.
func (s *Server) RecordMovement(w http.ResponseWriter, r *http.Request) {
	registrationID, err := urlUUID(r, "registrationID")
	if err != nil {
		writeBadRequest(w, "invalid registration id")
		return
	}
	var body struct {
		Kind        domain.MovementKind `json:"kind"`
		AmountCents domain.Cents        `json:"amount_cents"`
		Description string              `json:"description"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	created, err := s.movements.RecordManual(r.Context(), domain.MoneyMovement{
		RegistrationID: registrationID,
		Kind:           body.Kind,
		AmountCents:    body.AmountCents,
		Description:    body.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListMovements handles GET /staff/registrations/{registrationID}/movements.
func (s *Server) ListMovements(w http.ResponseWriter, r *http.Request) {
	registrationID, err := urlUUID(r, "registrationID")
	if err != nil {
		writeBadRequest(w, "invalid registration id")
		return
	}

	movements, err := s.movements.ListByRegistration(r.Context(), registrationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movements)
}
