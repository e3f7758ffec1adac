package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
	"github.com/zobaczyc-morze/crewreg/internal/notify"
	"github.com/zobaczyc-morze/crewreg/internal/repo"
)

// AnnouncementService lets staff broadcast notices to a trip's crew.
type AnnouncementService struct {
	trips         repo.TripRepo
	regs          repo.RegistrationRepo
	announcements repo.AnnouncementRepo
	notifier      notify.Notifier
}

func NewAnnouncementService(trips repo.TripRepo, regs repo.RegistrationRepo, announcements repo.AnnouncementRepo, notifier notify.Notifier) *AnnouncementService {
	return &AnnouncementService{trips: trips, regs: regs, announcements: announcements, notifier: notifier}
}

// Create persists the announcement and fans it out to every registration of
// the trip. Delivery is fire-and-forget per recipient.
func (s *AnnouncementService) Create(ctx context.Context, a domain.Announcement) (domain.Announcement, error) {
	if strings.TrimSpace(a.Title) == "" {
		return domain.Announcement{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if _, err := s.trips.GetByID(ctx, a.TripID); err != nil {
		return domain.Announcement{}, fmt.Errorf("service.AnnouncementService.Create: %w", err)
	}

	created, err := s.announcements.Create(ctx, a)
	if err != nil {
		return domain.Announcement{}, fmt.Errorf("service.AnnouncementService.Create: %w", err)
	}

	regs, err := s.regs.ListByTrip(ctx, a.TripID)
	if err != nil {
		return domain.Announcement{}, fmt.Errorf("service.AnnouncementService.Create: %w", err)
	}
	for _, reg := range regs {
		s.notifier.Announcement(ctx, reg, created)
	}
	return created, nil
}

// ListByTrip returns a trip's announcements, newest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *AnnouncementService) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Announcement, error) {
	announcements, err := s.announcements.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.AnnouncementService.ListByTrip: %w", err)
	}
	if announcements == nil {
		return []domain.Announcement{}, nil
	}
	return announcements, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, tripID, id uuid.UUID) error {
	if err := s.announcements.Delete(ctx, tripID, id); err != nil {
		return fmt.Errorf("service.AnnouncementService.Delete: %w", err)
	}
	return nil
}
