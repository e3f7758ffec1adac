package handler

import (
	"net/http"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
	"github.com/zobaczyc-morze/crewreg/internal/service"
)

// registrationRequest is the public sign-up body.
type registrationRequest struct {
	FirstName    string              `json:"first_name"`
	LastName     string              `json:"last_name"`
	Email        string              `json:"email"`
	Phone        string              `json:"phone"`
	BirthDate    openapi_types.Date  `json:"birth_date"`
	Address      string              `json:"address"`
	PostalCode   string              `json:"postal_code"`
	City         string              `json:"city"`
	SailedBefore bool                `json:"sailed_before"`
	GDPRConsent  bool                `json:"gdpr_consent"`
	Vision       domain.VisionStatus `json:"vision"`
	Role         domain.CrewRole     `json:"role"`
}

// createdRegistrationResponse returns the fresh registration together with
// the access token. This is the only place the token ever appears in a
// response body; the participant keeps the manage link, staff never sees it.
type createdRegistrationResponse struct {
	Registration domain.Registration `json:"registration"`
	AccessToken  uuid.UUID           `json:"access_token"`
}

// ownRegistrationResponse is the participant's view of their registration.
type ownRegistrationResponse struct {
	Registration domain.Registration    `json:"registration"`
	Trip         domain.Trip            `json:"trip"`
	Balance      service.BalanceSummary `json:"balance"`
	Movements    []domain.MoneyMovement `json:"movements"`
}

// CreateRegistration handles POST /trips/{tripID}/registrations, the public
// sign-up form.
func (s *Server) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	tripID, err := urlUUID(r, "tripID")
	if err != nil {
		writeBadRequest(w, "invalid trip id")
		return
	}
	var body registrationRequest
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	created, err := s.registrations.Register(r.Context(), domain.Registration{
		TripID:       tripID,
		FirstName:    body.FirstName,
		LastName:     body.LastName,
		Email:        body.Email,
		Phone:        body.Phone,
		BirthDate:    body.BirthDate.Time,
		Address:      body.Address,
		PostalCode:   body.PostalCode,
		City:         body.City,
		SailedBefore: body.SailedBefore,
		GDPRConsent:  body.GDPRConsent,
		Vision:       body.Vision,
		Role:         body.Role,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdRegistrationResponse{
		Registration: created,
		AccessToken:  created.AccessToken,
	})
}

// registrationFromToken resolves the {token} path parameter to a
// registration. An unparseable token gets the same 404 as an unknown one,
// so the URL space leaks nothing.
func (s *Server) registrationFromToken(w http.ResponseWriter, r *http.Request) (domain.Registration, bool) {
	token, err := urlUUID(r, "token")
	if err != nil {
		writeError(w, domain.ErrNotFound)
		return domain.Registration{}, false
	}
	reg, err := s.registrations.GetByToken(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return domain.Registration{}, false
	}
	return reg, true
}

// GetOwnRegistration handles GET /registrations/{token}: everything the
// participant's manage page shows.
func (s *Server) GetOwnRegistration(w http.ResponseWriter, r *http.Request) {
	reg, ok := s.registrationFromToken(w, r)
	if !ok {
		return
	}

	trip, err := s.trips.GetByID(r.Context(), reg.TripID)
	if err != nil {
		writeError(w, err)
		return
	}
	balance, err := s.movements.Summary(r.Context(), reg)
	if err != nil {
		writeError(w, err)
		return
	}
	movements, err := s.movements.ListByRegistration(r.Context(), reg.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ownRegistrationResponse{
		Registration: reg,
		Trip:         trip,
		Balance:      balance,
		Movements:    movements,
	})
}

// ListOwnAnnouncements handles GET /registrations/{token}/announcements.
func (s *Server) ListOwnAnnouncements(w http.ResponseWriter, r *http.Request) {
	reg, ok := s.registrationFromToken(w, r)
	if !ok {
		return
	}

	announcements, err := s.announcements.ListByTrip(r.Context(), reg.TripID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, announcements)
}

// ListTripRegistrations handles GET /staff/trips/{tripID}/registrations.
func (s *Server) ListTripRegistrations(w http.ResponseWriter, r *http.Request) {
	tripID, err := urlUUID(r, "tripID")
	if err != nil {
		writeBadRequest(w, "invalid trip id")
		return
	}

	regs, err := s.registrations.ListByTrip(r.Context(), tripID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, regs)
}

// GetRegistration handles GET /staff/registrations/{registrationID}.
func (s *Server) GetRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "registrationID")
	if err != nil {
		writeBadRequest(w, "invalid registration id")
		return
	}

	reg, err := s.registrations.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// UpdateRegistrationStatus handles PATCH /staff/registrations/{registrationID}/status.
func (s *Server) UpdateRegistrationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "registrationID")
	if err != nil {
		writeBadRequest(w, "invalid registration id")
		return
	}
	var body struct {
		Status domain.RegistrationStatus `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	updated, err := s.registrations.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// AssignRegistrationWatchGroup handles PUT /staff/registrations/{registrationID}/watch-group.
// A null watch_group_id detaches the registration from its group.
func (s *Server) AssignRegistrationWatchGroup(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "registrationID")
	if err != nil {
		writeBadRequest(w, "invalid registration id")
		return
	}
	var body struct {
		WatchGroupID *uuid.UUID `json:"watch_group_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	updated, err := s.registrations.AssignWatchGroup(r.Context(), id, body.WatchGroupID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
