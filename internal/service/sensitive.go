package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
	"github.com/zobaczyc-morze/crewreg/internal/repo"
)

// SensitiveService handles the participant submission and staff viewing of
// embarkation identification data. Every read of a record lands in the audit
// trail; staff only ever see masked values outside the sensitive report.
type SensitiveService struct {
	records repo.SensitiveRepo
	audit   *AuditService
}

func NewSensitiveService(records repo.SensitiveRepo, audit *AuditService) *SensitiveService {
	return &SensitiveService{records: records, audit: audit}
}

// Submit stores or replaces a participant's record. Qualification is the
// gate: collecting identification data from people who may never sail has no
// lawful basis.
func (s *SensitiveService) Submit(ctx context.Context, reg domain.Registration, rec domain.SensitiveRecord) (domain.MaskedSensitiveRecord, error) {
	if reg.Status != domain.StatusQualified {
		return domain.MaskedSensitiveRecord{}, fmt.Errorf("service.SensitiveService.Submit: registration not qualified: %w", domain.ErrForbidden)
	}
	if err := validateSensitive(rec); err != nil {
		return domain.MaskedSensitiveRecord{}, err
	}

	rec.RegistrationID = reg.ID
	stored, err := s.records.Upsert(ctx, rec)
	if err != nil {
		return domain.MaskedSensitiveRecord{}, fmt.Errorf("service.SensitiveService.Submit: %w", err)
	}

	s.audit.Record(ctx, domain.AuditModify, "sensitive_record", reg.ID.String(), reg.FullName(), "participant submission")
	return stored.Masked(), nil
}

// GetMasked returns the staff view of one record. The read is audited.
func (s *SensitiveService) GetMasked(ctx context.Context, reg domain.Registration) (domain.MaskedSensitiveRecord, error) {
	rec, err := s.records.Get(ctx, reg.ID)
	if err != nil {
		return domain.MaskedSensitiveRecord{}, fmt.Errorf("service.SensitiveService.GetMasked: %w", err)
	}

	s.audit.Record(ctx, domain.AuditRead, "sensitive_record", reg.ID.String(), reg.FullName(), "staff view (masked)")
	return rec.Masked(), nil
}

// ListByTripPlaintext returns decrypted records for the sensitive report
// sheet. Admin gating happens at the HTTP layer; the export event is recorded
// by the report service, which knows the export context.
func (s *SensitiveService) ListByTripPlaintext(ctx context.Context, tripID uuid.UUID) ([]domain.SensitiveRecord, error) {
	records, err := s.records.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.SensitiveService.ListByTripPlaintext: %w", err)
	}
	return records, nil
}

func validateSensitive(rec domain.SensitiveRecord) error {
	if !rec.Consent {
		return fmt.Errorf("%w: consent is required", domain.ErrValidation)
	}
	if strings.TrimSpace(rec.NationalID) == "" {
		return fmt.Errorf("%w: national id is required", domain.ErrValidation)
	}
	if !rec.DocumentType.Valid() {
		return fmt.Errorf("%w: unknown document type %q", domain.ErrValidation, rec.DocumentType)
	}
	if strings.TrimSpace(rec.DocumentNumber) == "" {
		return fmt.Errorf("%w: document number is required", domain.ErrValidation)
	}
	return nil
}
