package handler

import (
	"net/http"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
)

// ListAnnouncements handles GET /staff/trips/{tripID}/announcements.
func (s *Server) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	tripID, err := urlUUID(r, "tripID")
	if err != nil {
		writeBadRequest(w, "invalid trip id")
		return
	}

	announcements, err := s.announcements.ListByTrip(r.Context(), tripID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, announcements)
}

// CreateAnnouncement handles POST /staff/trips/{tripID}/announcements.
func (s *Server) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	tripID, err := urlUUID(r, "tripID")
	if err != nil {
		writeBadRequest(w, "invalid trip id")
		return
	}
	var body struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	created, err := s.announcements.Create(r.Context(), domain.Announcement{
		TripID: tripID,
		Title:  body.Title,
		Body:   body.Body,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// DeleteAnnouncement handles DELETE /staff/trips/{tripID}/announcements/{announcementID}.
func (s *Server) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	tripID, err := urlUUID(r, "tripID")
	if err != nil {
		writeBadRequest(w, "invalid trip id")
		return
	}
	id, err := urlUUID(r, "announcementID")
	if err != nil {
		writeBadRequest(w, "invalid announcement id")
		return
	}

	if err := s.announcements.Delete(r.Context(), tripID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
