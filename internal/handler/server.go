// Package handler implements the HTTP handlers for the crew registration API.
// All handlers are methods on Server; methods are split into domain-specific
// files (trip.go, registration.go, payment.go, etc.) but share the same
// Server struct so they can access its dependencies.
//
// The API has three surfaces: public endpoints (trip listing, sign-up, and
// everything reachable through a registration's access token), staff
// endpoints behind a bearer token, and a few admin-only endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zobaczyc-morze/crewreg/internal/auth"
	"github.com/zobaczyc-morze/crewreg/internal/domain"
	"github.com/zobaczyc-morze/crewreg/internal/middleware"
	"github.com/zobaczyc-morze/crewreg/internal/report"
	"github.com/zobaczyc-morze/crewreg/internal/service"
)

// The servicer interfaces define the business operations the handlers depend
// on. Defining them here, in the consumer package, lets handler tests inject
// mocks without touching the database or the service layer.

type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	List(ctx context.Context) ([]domain.Trip, error)
	ListRecruiting(ctx context.Context) ([]domain.Trip, error)
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type RegistrationServicer interface {
	Register(ctx context.Context, reg domain.Registration) (domain.Registration, error)
	GetByToken(ctx context.Context, token uuid.UUID) (domain.Registration, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Registration, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Registration, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RegistrationStatus) (domain.Registration, error)
	AssignWatchGroup(ctx context.Context, id uuid.UUID, groupID *uuid.UUID) (domain.Registration, error)
}

type WatchGroupServicer interface {
	Create(ctx context.Context, wg domain.WatchGroup) (domain.WatchGroup, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.WatchGroup, error)
	Members(ctx context.Context, tripID, groupID uuid.UUID) ([]domain.Registration, error)
	Delete(ctx context.Context, tripID, groupID uuid.UUID) error
}

type PaymentServicer interface {
	Start(ctx context.Context, reg domain.Registration, purpose domain.PaymentPurpose) (service.StartResult, error)
	HandleNotification(ctx context.Context, rawBody []byte, signatureHeader string) service.WebhookResult
	GetIntent(ctx context.Context, reg domain.Registration, intentID uuid.UUID) (domain.PaymentIntent, error)
	SyncFromGateway(ctx context.Context, reg domain.Registration, intentID uuid.UUID) (domain.PaymentIntent, error)
}

type MovementServicer interface {
	RecordManual(ctx context.Context, m domain.MoneyMovement) (domain.MoneyMovement, error)
	ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]domain.MoneyMovement, error)
	Summary(ctx context.Context, reg domain.Registration) (service.BalanceSummary, error)
}

type SensitiveServicer interface {
	Submit(ctx context.Context, reg domain.Registration, rec domain.SensitiveRecord) (domain.MaskedSensitiveRecord, error)
	GetMasked(ctx context.Context, reg domain.Registration) (domain.MaskedSensitiveRecord, error)
}

type ReportServicer interface {
	BuildTripReport(ctx context.Context, tripID uuid.UUID, includeSensitive bool) (report.TripReport, error)
}

type AuditServicer interface {
	List(ctx context.Context, p domain.PaginationParams) ([]domain.AuditEntry, error)
	ListByTarget(ctx context.Context, targetModel, targetID string, p domain.PaginationParams) ([]domain.AuditEntry, error)
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

type AnnouncementServicer interface {
	Create(ctx context.Context, a domain.Announcement) (domain.Announcement, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Announcement, error)
	Delete(ctx context.Context, tripID, id uuid.UUID) error
}

// Server holds every handler dependency. Wire it in main.go and mount it
// with Register.
type Server struct {
	trips         TripServicer
	registrations RegistrationServicer
	groups        WatchGroupServicer
	payments      PaymentServicer
	movements     MovementServicer
	sensitive     SensitiveServicer
	reports       ReportServicer
	audits        AuditServicer
	announcements AnnouncementServicer
	tokens        *auth.TokenService
	log           *slog.Logger
}

func NewServer(
	trips TripServicer,
	registrations RegistrationServicer,
	groups WatchGroupServicer,
	payments PaymentServicer,
	movements MovementServicer,
	sensitive SensitiveServicer,
	reports ReportServicer,
	audits AuditServicer,
	announcements AnnouncementServicer,
	tokens *auth.TokenService,
	log *slog.Logger,
) *Server {
	return &Server{
		trips:         trips,
		registrations: registrations,
		groups:        groups,
		payments:      payments,
		movements:     movements,
		sensitive:     sensitive,
		reports:       reports,
		audits:        audits,
		announcements: announcements,
		tokens:        tokens,
		log:           log,
	}
}

// Register mounts all routes on r. Ambient middleware (logging, CORS, body
// limits) is the caller's business; Register only adds the auth gates.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.GetHealth)

	// Public surface. Everything under /registrations/{token} authenticates
	// by the access token alone.
	r.Get("/trips", s.ListRecruitingTrips)
	r.Post("/trips/{tripID}/registrations", s.CreateRegistration)
	r.Post("/payu/notify", s.PayUNotify)

	r.Route("/registrations/{token}", func(r chi.Router) {
		r.Get("/", s.GetOwnRegistration)
		r.Get("/announcements", s.ListOwnAnnouncements)
		r.Post("/sensitive", s.SubmitSensitive)
		r.Post("/pay/{purpose}", s.StartPayment)
		r.Get("/payments/{intentID}/return", s.PaymentReturn)
	})

	// Staff back office.
	r.Route("/staff", func(r chi.Router) {
		r.Use(middleware.RequireStaff(s.tokens, s.log))

		r.Route("/trips", func(r chi.Router) {
			r.Get("/", s.ListTrips)
			r.Post("/", s.CreateTrip)

			r.Route("/{tripID}", func(r chi.Router) {
				r.Get("/", s.GetTrip)
				r.Put("/", s.UpdateTrip)
				r.Delete("/", s.DeleteTrip)
				r.Get("/registrations", s.ListTripRegistrations)
				r.Get("/report", s.ExportTripReport)

				r.Route("/watch-groups", func(r chi.Router) {
					r.Get("/", s.ListWatchGroups)
					r.Post("/", s.CreateWatchGroup)
					r.Get("/{groupID}/members", s.ListWatchGroupMembers)
					r.Delete("/{groupID}", s.DeleteWatchGroup)
				})

				r.Route("/announcements", func(r chi.Router) {
					r.Get("/", s.ListAnnouncements)
					r.Post("/", s.CreateAnnouncement)
					r.Delete("/{announcementID}", s.DeleteAnnouncement)
				})
			})
		})

		r.Route("/registrations/{registrationID}", func(r chi.Router) {
			r.Get("/", s.GetRegistration)
			r.Patch("/status", s.UpdateRegistrationStatus)
			r.Put("/watch-group", s.AssignRegistrationWatchGroup)
			r.Get("/movements", s.ListMovements)
			r.Post("/movements", s.RecordMovement)
			r.Get("/sensitive", s.GetMaskedSensitive)
		})

		r.Get("/audit", s.ListAudit)
		r.With(middleware.RequireAdmin(s.tokens, s.log)).Delete("/audit", s.PurgeAudit)
	})
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
