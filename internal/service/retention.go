package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
	"github.com/zobaczyc-morze/crewreg/internal/metrics"
	"github.com/zobaczyc-morze/crewreg/internal/repo"
)

// RetentionService purges sensitive records once their trip is far enough in
// the past. The retention window is configuration, not code, so the
// foundation can adjust it without a deploy.
type RetentionService struct {
	records       repo.SensitiveRepo
	audit         *AuditService
	metrics       *metrics.Metrics
	log           *slog.Logger
	retentionDays int
}

func NewRetentionService(records repo.SensitiveRepo, audit *AuditService, m *metrics.Metrics, log *slog.Logger, retentionDays int) *RetentionService {
	return &RetentionService{records: records, audit: audit, metrics: m, log: log, retentionDays: retentionDays}
}

// SweepFailure records one registration the sweep could not purge.
type SweepFailure struct {
	RegistrationID uuid.UUID
	Err            error
}

// SweepResult summarizes one retention sweep.
type SweepResult struct {
	Cutoff     time.Time
	DryRun     bool
	Candidates []domain.PurgeCandidate
	Purged     int
	Failures   []SweepFailure
}

// Sweep deletes every sensitive record whose trip ended more than the
// retention window ago. With dryRun it only reports what would go.
//
// One failed delete does not stop the sweep: the remaining candidates are
// still processed and the failures are returned for the operator to inspect.
func (s *RetentionService) Sweep(ctx context.Context, dryRun bool) (SweepResult, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)
	result := SweepResult{Cutoff: cutoff, DryRun: dryRun}

	candidates, err := s.records.ListPurgeCandidates(ctx, cutoff)
	if err != nil {
		return result, fmt.Errorf("service.RetentionService.Sweep: %w", err)
	}
	result.Candidates = candidates

	if dryRun {
		s.log.InfoContext(ctx, "retention sweep dry run",
			"cutoff", cutoff.Format(time.RFC3339),
			"candidates", len(candidates),
		)
		return result, nil
	}

	for _, c := range candidates {
		if err := s.records.Delete(ctx, c.RegistrationID); err != nil {
			result.Failures = append(result.Failures, SweepFailure{RegistrationID: c.RegistrationID, Err: err})
			s.log.ErrorContext(ctx, "retention purge failed", "registration_id", c.RegistrationID, "error", err)
			continue
		}
		result.Purged++
		// The entry carries the participant's identity: once the record and
		// its trip are gone, the UUID alone would attribute to nobody.
		s.audit.Record(ctx, domain.AuditDelete, "sensitive_record", c.RegistrationID.String(), c.FullName,
			fmt.Sprintf("retention purge, trip %q ended %s", c.TripName, c.TripEndDate.Format("2006-01-02")))
	}

	s.metrics.AddSensitivePurged(result.Purged)
	s.log.InfoContext(ctx, "retention sweep finished",
		"cutoff", cutoff.Format(time.RFC3339),
		"candidates", len(candidates),
		"purged", result.Purged,
		"failed", len(result.Failures),
	)
	return result, nil
}
