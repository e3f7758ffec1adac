package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
	"github.com/zobaczyc-morze/crewreg/internal/metrics"
	"github.com/zobaczyc-morze/crewreg/internal/notify"
	"github.com/zobaczyc-morze/crewreg/internal/repo"
)

// RegistrationService implements the participant sign-up flow and the staff
// review operations on top of it.
type RegistrationService struct {
	trips    repo.TripRepo
	regs     repo.RegistrationRepo
	groups   repo.WatchGroupRepo
	notifier notify.Notifier
	audit    *AuditService
	metrics  *metrics.Metrics
	siteURL  string
}

func NewRegistrationService(
	trips repo.TripRepo,
	regs repo.RegistrationRepo,
	groups repo.WatchGroupRepo,
	notifier notify.Notifier,
	audit *AuditService,
	m *metrics.Metrics,
	siteURL string,
) *RegistrationService {
	return &RegistrationService{
		trips:    trips,
		regs:     regs,
		groups:   groups,
		notifier: notifier,
		audit:    audit,
		metrics:  m,
		siteURL:  siteURL,
	}
}

// Register validates and persists a public sign-up against a trip.
//
// Returns domain.ErrValidation for rule violations, domain.ErrNotFound when
// the trip does not exist, domain.ErrForbidden when recruitment is closed,
// and domain.ErrDuplicate when the same person already signed up.
func (s *RegistrationService) Register(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	trip, err := s.trips.GetByID(ctx, reg.TripID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("service.RegistrationService.Register: %w", err)
	}
	if !trip.RecruitmentOpen || !trip.StartDate.After(time.Now()) {
		return domain.Registration{}, fmt.Errorf("service.RegistrationService.Register: recruitment closed: %w", domain.ErrForbidden)
	}
	if err := validateRegistration(reg); err != nil {
		return domain.Registration{}, err
	}

	created, err := s.regs.Create(ctx, reg)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("service.RegistrationService.Register: %w", err)
	}

	s.metrics.IncRegistrationsCreated()
	s.audit.Record(ctx, domain.AuditCreate, "registration", created.ID.String(), created.FullName(), "public sign-up")
	s.notifier.RegistrationReceived(ctx, created, s.manageURL(created))
	return created, nil
}

// GetByToken resolves a participant's registration from their access token.
func (s *RegistrationService) GetByToken(ctx context.Context, token uuid.UUID) (domain.Registration, error) {
	reg, err := s.regs.GetByToken(ctx, token)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("service.RegistrationService.GetByToken: %w", err)
	}
	return reg, nil
}

// GetByID returns a registration for staff views.
func (s *RegistrationService) GetByID(ctx context.Context, id uuid.UUID) (domain.Registration, error) {
	reg, err := s.regs.GetByID(ctx, id)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("service.RegistrationService.GetByID: %w", err)
	}
	return reg, nil
}

// ListByTrip returns all of a trip's registrations for the staff back office.
// Always returns a non-nil slice so callers can safely range over it.
func (s *RegistrationService) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Registration, error) {
	regs, err := s.regs.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.RegistrationService.ListByTrip: %w", err)
	}
	if regs == nil {
		return []domain.Registration{}, nil
	}
	return regs, nil
}

// UpdateStatus applies a staff qualification decision and notifies the
// participant.
func (s *RegistrationService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RegistrationStatus) (domain.Registration, error) {
	if !status.Valid() {
		return domain.Registration{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}

	updated, err := s.regs.UpdateStatus(ctx, id, status)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("service.RegistrationService.UpdateStatus: %w", err)
	}

	s.audit.Record(ctx, domain.AuditModify, "registration", updated.ID.String(), updated.FullName(),
		"status set to "+string(status))
	s.notifier.StatusChanged(ctx, updated)
	return updated, nil
}

// AssignWatchGroup places a registration into a watch group of its own trip,
// or detaches it when groupID is nil.
func (s *RegistrationService) AssignWatchGroup(ctx context.Context, id uuid.UUID, groupID *uuid.UUID) (domain.Registration, error) {
	reg, err := s.regs.GetByID(ctx, id)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("service.RegistrationService.AssignWatchGroup: %w", err)
	}

	var group domain.WatchGroup
	if groupID != nil {
		// Trip-scoped lookup: a group from another trip comes back not found.
		group, err = s.groups.GetByID(ctx, reg.TripID, *groupID)
		if err != nil {
			return domain.Registration{}, fmt.Errorf("service.RegistrationService.AssignWatchGroup: %w", err)
		}
	}

	updated, err := s.regs.AssignWatchGroup(ctx, id, groupID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("service.RegistrationService.AssignWatchGroup: %w", err)
	}
	if groupID != nil {
		s.notifier.WatchAssigned(ctx, updated, group)
	}
	return updated, nil
}

func (s *RegistrationService) manageURL(reg domain.Registration) string {
	return fmt.Sprintf("%s/registrations/%s", strings.TrimRight(s.siteURL, "/"), reg.AccessToken)
}

// validateRegistration enforces the sign-up rules.
func validateRegistration(reg domain.Registration) error {
	if strings.TrimSpace(reg.FirstName) == "" || strings.TrimSpace(reg.LastName) == "" {
		return fmt.Errorf("%w: first and last name are required", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(reg.Email); err != nil {
		return fmt.Errorf("%w: invalid email address", domain.ErrValidation)
	}
	if reg.BirthDate.IsZero() || !reg.BirthDate.Before(time.Now()) {
		return fmt.Errorf("%w: birth_date must be in the past", domain.ErrValidation)
	}
	if !reg.Vision.Valid() {
		return fmt.Errorf("%w: unknown vision status %q", domain.ErrValidation, reg.Vision)
	}
	if !reg.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrValidation, reg.Role)
	}
	if !reg.GDPRConsent {
		return fmt.Errorf("%w: data processing consent is required", domain.ErrValidation)
	}
	return nil
}
