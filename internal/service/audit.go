// Package service contains the business logic for the crew registration API.
// Services validate inputs, enforce business rules, and orchestrate repo
// calls. No SQL lives here — services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
	"github.com/zobaczyc-morze/crewreg/internal/middleware"
	"github.com/zobaczyc-morze/crewreg/internal/repo"
)

// AuditService records and serves the GDPR processing register.
//
// Record never fails the calling operation: an audit insert error is logged
// and swallowed, because refusing a payment or a registration over a broken
// audit write would punish the participant for an operational problem.
type AuditService struct {
	repo repo.AuditRepo
	log  *slog.Logger
}

func NewAuditService(r repo.AuditRepo, log *slog.Logger) *AuditService {
	return &AuditService{repo: r, log: log}
}

// Record appends one processing event. Actor, client IP, and User-Agent are
// taken from the request context where the middleware put them; system
// actions (webhooks, sweeps) naturally carry none.
func (s *AuditService) Record(ctx context.Context, action domain.AuditAction, targetModel, targetID, targetRepr, detail string) {
	entry := domain.AuditEntry{
		ActorID:     middleware.StaffID(ctx),
		Action:      action,
		TargetModel: targetModel,
		TargetID:    targetID,
		TargetRepr:  targetRepr,
		IPAddress:   middleware.ClientIP(ctx),
		UserAgent:   middleware.UserAgent(ctx),
		Detail:      detail,
	}

	if _, err := s.repo.Append(ctx, entry); err != nil {
		s.log.ErrorContext(ctx, "audit append failed",
			"error", err,
			"action", string(action),
			"target_model", targetModel,
			"target_id", targetID,
		)
	}
}

// List returns a page of the register, newest first.
func (s *AuditService) List(ctx context.Context, p domain.PaginationParams) ([]domain.AuditEntry, error) {
	entries, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("service.AuditService.List: %w", err)
	}
	if entries == nil {
		return []domain.AuditEntry{}, nil
	}
	return entries, nil
}

// ListByTarget returns a page of entries concerning one record.
func (s *AuditService) ListByTarget(ctx context.Context, targetModel, targetID string, p domain.PaginationParams) ([]domain.AuditEntry, error) {
	entries, err := s.repo.ListByTarget(ctx, targetModel, targetID, p)
	if err != nil {
		return nil, fmt.Errorf("service.AuditService.ListByTarget: %w", err)
	}
	if entries == nil {
		return []domain.AuditEntry{}, nil
	}
	return entries, nil
}

// Purge removes entries older than the cutoff and returns how many went.
// The admin-only gate sits in the HTTP layer; the purge itself is recorded
// as a delete event so the register documents its own trimming.
func (s *AuditService) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	purged, err := s.repo.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("service.AuditService.Purge: %w", err)
	}

	s.Record(ctx, domain.AuditDelete, "audit_entry", "", "",
		fmt.Sprintf("purged %d entries older than %s", purged, cutoff.UTC().Format(time.RFC3339)))
	return purged, nil
}
