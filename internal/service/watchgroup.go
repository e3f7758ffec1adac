package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
	"github.com/zobaczyc-morze/crewreg/internal/repo"
)

// WatchGroupService implements business logic for watch group operations.
// It holds the trip repo because creating a group requires a live parent trip.
type WatchGroupService struct {
	trips  repo.TripRepo
	groups repo.WatchGroupRepo
	regs   repo.RegistrationRepo
}

func NewWatchGroupService(trips repo.TripRepo, groups repo.WatchGroupRepo, regs repo.RegistrationRepo) *WatchGroupService {
	return &WatchGroupService{trips: trips, groups: groups, regs: regs}
}

// Create validates the group, verifies the parent trip exists, then persists.
func (s *WatchGroupService) Create(ctx context.Context, wg domain.WatchGroup) (domain.WatchGroup, error) {
	if strings.TrimSpace(wg.Name) == "" {
		return domain.WatchGroup{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if _, err := s.trips.GetByID(ctx, wg.TripID); err != nil {
		return domain.WatchGroup{}, fmt.Errorf("service.WatchGroupService.Create: %w", err)
	}
	result, err := s.groups.Create(ctx, wg)
	if err != nil {
		return domain.WatchGroup{}, fmt.Errorf("service.WatchGroupService.Create: %w", err)
	}
	return result, nil
}

// ListByTrip returns a trip's watch groups.
// Always returns a non-nil slice so callers can safely range over it.
func (s *WatchGroupService) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.WatchGroup, error) {
	groups, err := s.groups.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.WatchGroupService.ListByTrip: %w", err)
	}
	if groups == nil {
		return []domain.WatchGroup{}, nil
	}
	return groups, nil
}

// Members returns the registrations currently assigned to a group.
func (s *WatchGroupService) Members(ctx context.Context, tripID, groupID uuid.UUID) ([]domain.Registration, error) {
	if _, err := s.groups.GetByID(ctx, tripID, groupID); err != nil {
		return nil, fmt.Errorf("service.WatchGroupService.Members: %w", err)
	}
	members, err := s.regs.ListByWatchGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("service.WatchGroupService.Members: %w", err)
	}
	if members == nil {
		return []domain.Registration{}, nil
	}
	return members, nil
}

// Delete removes a watch group; its members are detached, not deleted.
func (s *WatchGroupService) Delete(ctx context.Context, tripID, groupID uuid.UUID) error {
	if err := s.groups.Delete(ctx, tripID, groupID); err != nil {
		return fmt.Errorf("service.WatchGroupService.Delete: %w", err)
	}
	return nil
}
