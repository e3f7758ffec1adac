package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
)

// RegistrationRepo defines the persistence operations for registrations.
type RegistrationRepo interface {
	// Create inserts a new registration. Returns domain.ErrDuplicate when the
	// (trip, first name, last name, email) unique index rejects the insert.
	Create(ctx context.Context, reg domain.Registration) (domain.Registration, error)

	// GetByID retrieves a registration by primary key.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Registration, error)

	// GetByToken retrieves a registration by its opaque access token.
	// This is the participant-facing lookup; it never lists.
	GetByToken(ctx context.Context, token uuid.UUID) (domain.Registration, error)

	// ListByTrip returns all registrations of a trip ordered by last name.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Registration, error)

	// ListByWatchGroup returns the members of a watch group ordered by last name.
	ListByWatchGroup(ctx context.Context, watchGroupID uuid.UUID) ([]domain.Registration, error)

	// UpdateStatus sets the review status and returns the updated record.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RegistrationStatus) (domain.Registration, error)

	// AssignWatchGroup sets (or clears, with nil) the watch group and returns
	// the updated record. Same-trip validation happens in the service layer.
	AssignWatchGroup(ctx context.Context, id uuid.UUID, watchGroupID *uuid.UUID) (domain.Registration, error)
}

const registrationColumns = `id, trip_id, watch_group_id, first_name, last_name, email, phone,
		birth_date, address, postal_code, city, sailed_before, gdpr_consent,
		status, vision, role, access_token, created_at`

type pgRegistrationRepo struct {
	db db
}

// NewRegistrationRepo constructs a RegistrationRepo backed by the provided db connection.
func NewRegistrationRepo(db db) RegistrationRepo {
	return &pgRegistrationRepo{db: db}
}

func (r *pgRegistrationRepo) Create(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	const q = `
		INSERT INTO registrations (trip_id, first_name, last_name, email, phone,
			birth_date, address, postal_code, city, sailed_before, gdpr_consent,
			status, vision, role)
		VALUES (@trip_id, @first_name, @last_name, @email, @phone,
			@birth_date, @address, @postal_code, @city, @sailed_before, @gdpr_consent,
			@status, @vision, @role)
		RETURNING ` + registrationColumns

	args := pgx.NamedArgs{
		"trip_id":       reg.TripID,
		"first_name":    reg.FirstName,
		"last_name":     reg.LastName,
		"email":         reg.Email,
		"phone":         reg.Phone,
		"birth_date":    reg.BirthDate,
		"address":       reg.Address,
		"postal_code":   reg.PostalCode,
		"city":          reg.City,
		"sailed_before": reg.SailedBefore,
		"gdpr_consent":  reg.GDPRConsent,
		"status":        string(domain.StatusPending),
		"vision":        string(reg.Vision),
		"role":          string(reg.Role),
	}

	result, err := scanRegistration(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Registration{}, fmt.Errorf("repo.RegistrationRepo.Create: %w", domain.ErrDuplicate)
		}
		return domain.Registration{}, fmt.Errorf("repo.RegistrationRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgRegistrationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Registration, error) {
	const q = `SELECT ` + registrationColumns + ` FROM registrations WHERE id = @id`

	result, err := scanRegistration(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Registration{}, fmt.Errorf("repo.RegistrationRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgRegistrationRepo) GetByToken(ctx context.Context, token uuid.UUID) (domain.Registration, error) {
	const q = `SELECT ` + registrationColumns + ` FROM registrations WHERE access_token = @token`

	result, err := scanRegistration(r.db.QueryRow(ctx, q, pgx.NamedArgs{"token": token}))
	if err != nil {
		return domain.Registration{}, fmt.Errorf("repo.RegistrationRepo.GetByToken: %w", err)
	}
	return result, nil
}

func (r *pgRegistrationRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Registration, error) {
	const q = `SELECT ` + registrationColumns + `
		FROM registrations WHERE trip_id = @trip_id
		ORDER BY last_name, first_name`
	return r.queryRegistrations(ctx, "ListByTrip", q, pgx.NamedArgs{"trip_id": tripID})
}

func (r *pgRegistrationRepo) ListByWatchGroup(ctx context.Context, watchGroupID uuid.UUID) ([]domain.Registration, error) {
	const q = `SELECT ` + registrationColumns + `
		FROM registrations WHERE watch_group_id = @watch_group_id
		ORDER BY last_name, first_name`
	return r.queryRegistrations(ctx, "ListByWatchGroup", q, pgx.NamedArgs{"watch_group_id": watchGroupID})
}

func (r *pgRegistrationRepo) queryRegistrations(ctx context.Context, op, q string, args pgx.NamedArgs) ([]domain.Registration, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.RegistrationRepo.%s: %w", op, err)
	}
	defer rows.Close()

	var regs []domain.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.RegistrationRepo.%s: scan: %w", op, err)
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RegistrationRepo.%s: rows: %w", op, err)
	}
	return regs, nil
}

func (r *pgRegistrationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RegistrationStatus) (domain.Registration, error) {
	const q = `
		UPDATE registrations SET status = @status
		WHERE id = @id
		RETURNING ` + registrationColumns

	result, err := scanRegistration(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "status": string(status)}))
	if err != nil {
		return domain.Registration{}, fmt.Errorf("repo.RegistrationRepo.UpdateStatus: %w", err)
	}
	return result, nil
}

func (r *pgRegistrationRepo) AssignWatchGroup(ctx context.Context, id uuid.UUID, watchGroupID *uuid.UUID) (domain.Registration, error) {
	const q = `
		UPDATE registrations SET watch_group_id = @watch_group_id
		WHERE id = @id
		RETURNING ` + registrationColumns

	result, err := scanRegistration(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "watch_group_id": watchGroupID}))
	if err != nil {
		return domain.Registration{}, fmt.Errorf("repo.RegistrationRepo.AssignWatchGroup: %w", err)
	}
	return result, nil
}

func scanRegistration(s scanner) (domain.Registration, error) {
	var (
		reg        domain.Registration
		id, tripID pgtype.UUID
		watchID    pgtype.UUID
		birth      pgtype.Date
		token      pgtype.UUID
		status     string
		vision     string
		role       string
	)

	err := s.Scan(&id, &tripID, &watchID, &reg.FirstName, &reg.LastName, &reg.Email, &reg.Phone,
		&birth, &reg.Address, &reg.PostalCode, &reg.City, &reg.SailedBefore, &reg.GDPRConsent,
		&status, &vision, &role, &token, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Registration{}, domain.ErrNotFound
		}
		return domain.Registration{}, err
	}

	reg.ID = uuid.UUID(id.Bytes)
	reg.TripID = uuid.UUID(tripID.Bytes)
	if watchID.Valid {
		w := uuid.UUID(watchID.Bytes)
		reg.WatchGroupID = &w
	}
	reg.BirthDate = birth.Time
	reg.Status = domain.RegistrationStatus(status)
	reg.Vision = domain.VisionStatus(vision)
	reg.Role = domain.CrewRole(role)
	reg.AccessToken = uuid.UUID(token.Bytes)
	return reg, nil
}
