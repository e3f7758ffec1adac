package handler

import (
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
)

// tripRequest is the request body for creating and updating trips. Dates are
// plain calendar days ("2026-07-04"), not timestamps.
type tripRequest struct {
	Name            string             `json:"name"`
	StartDate       openapi_types.Date `json:"start_date"`
	EndDate         openapi_types.Date `json:"end_date"`
	DeparturePort   string             `json:"departure_port"`
	ArrivalPort     string             `json:"arrival_port"`
	PriceCents      domain.Cents       `json:"price_cents"`
	DepositCents    domain.Cents       `json:"deposit_cents"`
	RecruitmentOpen bool               `json:"recruitment_open"`
}

func (b tripRequest) toDomain() domain.Trip {
	return domain.Trip{
		Name:            b.Name,
		StartDate:       b.StartDate.Time,
		EndDate:         b.EndDate.Time,
		DeparturePort:   b.DeparturePort,
		ArrivalPort:     b.ArrivalPort,
		PriceCents:      b.PriceCents,
		DepositCents:    b.DepositCents,
		RecruitmentOpen: b.RecruitmentOpen,
	}
}

// ListRecruitingTrips handles GET /trips: the public listing of upcoming
// trips that are open for registration.
func (s *Server) ListRecruitingTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.ListRecruiting(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

// ListTrips handles GET /staff/trips.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

// CreateTrip handles POST /staff/trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body tripRequest
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	created, err := s.trips.Create(r.Context(), body.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetTrip handles GET /staff/trips/{tripID}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "tripID")
	if err != nil {
		writeBadRequest(w, "invalid trip id")
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// UpdateTrip handles PUT /staff/trips/{tripID}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "tripID")
	if err != nil {
		writeBadRequest(w, "invalid trip id")
		return
	}
	var body tripRequest
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	trip := body.toDomain()
	trip.ID = id
	updated, err := s.trips.Update(r.Context(), trip)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteTrip handles DELETE /staff/trips/{tripID}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "tripID")
	if err != nil {
		writeBadRequest(w, "invalid trip id")
		return
	}
	if err := s.trips.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
