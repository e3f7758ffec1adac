package handler

import (
	"net/http"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
)

// ListWatchGroups handles GET /staff/trips/{tripID}/watch-groups.
func (s *Server) ListWatchGroups(w http.ResponseWriter, r *http.Request) {
	tripID, err := urlUUID(r, "tripID")
	if err != nil {
		writeBadRequest(w, "invalid trip id")
		return
	}

	groups, err := s.groups.ListByTrip(r.Context(), tripID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// CreateWatchGroup handles POST /staff/trips/{tripID}/watch-groups.
func (s *Server) CreateWatchGroup(w http.ResponseWriter, r *http.Request) {
	tripID, err := urlUUID(r, "tripID")
	if err != nil {
		writeBadRequest(w, "invalid trip id")
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	created, err := s.groups.Create(r.Context(), domain.WatchGroup{TripID: tripID, Name: body.Name})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListWatchGroupMembers handles GET /staff/trips/{tripID}/watch-groups/{groupID}/members.
func (s *Server) ListWatchGroupMembers(w http.ResponseWriter, r *http.Request) {
	tripID, err := urlUUID(r, "tripID")
	if err != nil {
		writeBadRequest(w, "invalid trip id")
		return
	}
	groupID, err := urlUUID(r, "groupID")
	if err != nil {
		writeBadRequest(w, "invalid watch group id")
		return
	}

	members, err := s.groups.Members(r.Context(), tripID, groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// DeleteWatchGroup handles DELETE /staff/trips/{tripID}/watch-groups/{groupID}.
func (s *Server) DeleteWatchGroup(w http.ResponseWriter, r *http.Request) {
	tripID, err := urlUUID(r, "tripID")
	if err != nil {
		writeBadRequest(w, "invalid trip id")
		return
	}
	groupID, err := urlUUID(r, "groupID")
	if err != nil {
		writeBadRequest(w, "invalid watch group id")
		return
	}

	if err := s.groups.Delete(r.Context(), tripID, groupID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
