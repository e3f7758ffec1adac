package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/zobaczyc-morze/crewreg/internal/crypto"
	"github.com/zobaczyc-morze/crewreg/internal/domain"
)

// SensitiveRepo defines the persistence operations for sensitive embarkation
// data. National ID and document number are encrypted before they reach the
// database; everything this interface returns is already decrypted.
type SensitiveRepo interface {
	// Upsert stores or replaces the record for a registration. Resubmission
	// overwrites: there is exactly one record per registration.
	Upsert(ctx context.Context, rec domain.SensitiveRecord) (domain.SensitiveRecord, error)

	// Get retrieves and decrypts one registration's record.
	Get(ctx context.Context, registrationID uuid.UUID) (domain.SensitiveRecord, error)

	// ListByTrip returns decrypted records for all of a trip's registrations.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.SensitiveRecord, error)

	// ListPurgeCandidates lists registrations whose trip ended before the
	// cutoff and which still hold a sensitive record, with the identity
	// needed for the deletion audit entry.
	ListPurgeCandidates(ctx context.Context, cutoff time.Time) ([]domain.PurgeCandidate, error)

	// Delete removes a record. Deleting an absent record is not an error.
	Delete(ctx context.Context, registrationID uuid.UUID) error
}

type pgSensitiveRepo struct {
	db     db
	cipher *crypto.FieldCipher
}

// NewSensitiveRepo constructs a SensitiveRepo that encrypts with the given cipher.
func NewSensitiveRepo(db db, cipher *crypto.FieldCipher) SensitiveRepo {
	return &pgSensitiveRepo{db: db, cipher: cipher}
}

func (r *pgSensitiveRepo) Upsert(ctx context.Context, rec domain.SensitiveRecord) (domain.SensitiveRecord, error) {
	nationalID, err := r.cipher.Encrypt(rec.NationalID)
	if err != nil {
		return domain.SensitiveRecord{}, fmt.Errorf("repo.SensitiveRepo.Upsert: %w", err)
	}
	documentNumber, err := r.cipher.Encrypt(rec.DocumentNumber)
	if err != nil {
		return domain.SensitiveRecord{}, fmt.Errorf("repo.SensitiveRepo.Upsert: %w", err)
	}

	const q = `
		INSERT INTO sensitive_records (registration_id, national_id, document_type, document_number, consent)
		VALUES (@registration_id, @national_id, @document_type, @document_number, @consent)
		ON CONFLICT (registration_id) DO UPDATE SET
			national_id = EXCLUDED.national_id,
			document_type = EXCLUDED.document_type,
			document_number = EXCLUDED.document_number,
			consent = EXCLUDED.consent
		RETURNING registration_id, created_at`

	args := pgx.NamedArgs{
		"registration_id": rec.RegistrationID,
		"national_id":     nationalID,
		"document_type":   string(rec.DocumentType),
		"document_number": documentNumber,
		"consent":         rec.Consent,
	}

	var regID pgtype.UUID
	if err := r.db.QueryRow(ctx, q, args).Scan(&regID, &rec.CreatedAt); err != nil {
		return domain.SensitiveRecord{}, fmt.Errorf("repo.SensitiveRepo.Upsert: %w", err)
	}
	rec.RegistrationID = uuid.UUID(regID.Bytes)
	return rec, nil
}

func (r *pgSensitiveRepo) Get(ctx context.Context, registrationID uuid.UUID) (domain.SensitiveRecord, error) {
	const q = `
		SELECT registration_id, national_id, document_type, document_number, consent, created_at
		FROM sensitive_records WHERE registration_id = @registration_id`

	rec, err := r.scanSensitive(r.db.QueryRow(ctx, q, pgx.NamedArgs{"registration_id": registrationID}))
	if err != nil {
		return domain.SensitiveRecord{}, fmt.Errorf("repo.SensitiveRepo.Get: %w", err)
	}
	return rec, nil
}

func (r *pgSensitiveRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.SensitiveRecord, error) {
	const q = `
		SELECT s.registration_id, s.national_id, s.document_type, s.document_number, s.consent, s.created_at
		FROM sensitive_records s
		JOIN registrations reg ON reg.id = s.registration_id
		WHERE reg.trip_id = @trip_id
		ORDER BY reg.last_name, reg.first_name`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.SensitiveRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	var records []domain.SensitiveRecord
	for rows.Next() {
		rec, err := r.scanSensitive(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.SensitiveRepo.ListByTrip: scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SensitiveRepo.ListByTrip: rows: %w", err)
	}
	return records, nil
}

func (r *pgSensitiveRepo) ListPurgeCandidates(ctx context.Context, cutoff time.Time) ([]domain.PurgeCandidate, error) {
	const q = `
		SELECT s.registration_id, reg.first_name || ' ' || reg.last_name, t.name, t.end_date
		FROM sensitive_records s
		JOIN registrations reg ON reg.id = s.registration_id
		JOIN trips t ON t.id = reg.trip_id
		WHERE t.end_date < @cutoff
		ORDER BY s.registration_id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"cutoff": cutoff})
	if err != nil {
		return nil, fmt.Errorf("repo.SensitiveRepo.ListPurgeCandidates: %w", err)
	}
	defer rows.Close()

	var candidates []domain.PurgeCandidate
	for rows.Next() {
		var (
			c  domain.PurgeCandidate
			id pgtype.UUID
		)
		if err := rows.Scan(&id, &c.FullName, &c.TripName, &c.TripEndDate); err != nil {
			return nil, fmt.Errorf("repo.SensitiveRepo.ListPurgeCandidates: scan: %w", err)
		}
		c.RegistrationID = uuid.UUID(id.Bytes)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SensitiveRepo.ListPurgeCandidates: rows: %w", err)
	}
	return candidates, nil
}

func (r *pgSensitiveRepo) Delete(ctx context.Context, registrationID uuid.UUID) error {
	const q = `DELETE FROM sensitive_records WHERE registration_id = @registration_id`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"registration_id": registrationID}); err != nil {
		return fmt.Errorf("repo.SensitiveRepo.Delete: %w", err)
	}
	return nil
}

func (r *pgSensitiveRepo) scanSensitive(s scanner) (domain.SensitiveRecord, error) {
	var (
		rec          domain.SensitiveRecord
		regID        pgtype.UUID
		nationalID   string
		documentType string
		documentNum  string
	)

	err := s.Scan(&regID, &nationalID, &documentType, &documentNum, &rec.Consent, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SensitiveRecord{}, domain.ErrNotFound
		}
		return domain.SensitiveRecord{}, err
	}

	rec.RegistrationID = uuid.UUID(regID.Bytes)
	rec.DocumentType = domain.DocumentType(documentType)
	if rec.NationalID, err = r.cipher.Decrypt(nationalID); err != nil {
		return domain.SensitiveRecord{}, err
	}
	if rec.DocumentNumber, err = r.cipher.Decrypt(documentNum); err != nil {
		return domain.SensitiveRecord{}, err
	}
	return rec, nil
}
