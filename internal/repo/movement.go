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

// MovementRepo defines the persistence operations for the money ledger.
// The ledger is append-only: movements are never updated or deleted, and a
// registration's paid total is always derived by summing them.
type MovementRepo interface {
	// Insert appends a manual movement (payment or refund) to the ledger.
	Insert(ctx context.Context, m domain.MoneyMovement) (domain.MoneyMovement, error)

	// InsertFromGateway appends a gateway-credited movement keyed by the
	// external order ID. Redelivery of the same order is a no-op: created is
	// false and the ledger is unchanged.
	InsertFromGateway(ctx context.Context, m domain.MoneyMovement) (created bool, err error)

	// ListByRegistration returns a registration's movements, newest first.
	ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]domain.MoneyMovement, error)

	// ListByTrip returns every movement of a trip's registrations, oldest
	// first, for the payments sheet of the trip report.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.MoneyMovement, error)

	// SumPaid returns the net amount paid: payments and gateway payments
	// count positive, refunds negative.
	SumPaid(ctx context.Context, registrationID uuid.UUID) (domain.Cents, error)

	// SumPaidByTrip returns the net paid amount per registration for a whole
	// trip in one query, keyed by registration id. Used by the report builder
	// to avoid a query per crew member.
	SumPaidByTrip(ctx context.Context, tripID uuid.UUID) (map[uuid.UUID]domain.Cents, error)
}

const movementColumns = `id, registration_id, amount_cents, kind, external_source_id, description, created_at`

type pgMovementRepo struct {
	db db
}

// NewMovementRepo constructs a MovementRepo backed by the provided db connection.
func NewMovementRepo(db db) MovementRepo {
	return &pgMovementRepo{db: db}
}

func (r *pgMovementRepo) Insert(ctx context.Context, m domain.MoneyMovement) (domain.MoneyMovement, error) {
	const q = `
		INSERT INTO money_movements (registration_id, amount_cents, kind, external_source_id, description)
		VALUES (@registration_id, @amount_cents, @kind, @external_source_id, @description)
		RETURNING ` + movementColumns

	args := pgx.NamedArgs{
		"registration_id":    m.RegistrationID,
		"amount_cents":       int64(m.AmountCents),
		"kind":               string(m.Kind),
		"external_source_id": nullableString(m.ExternalSourceID),
		"description":        m.Description,
	}

	result, err := scanMovement(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.MoneyMovement{}, fmt.Errorf("repo.MovementRepo.Insert: %w", err)
	}
	return result, nil
}

func (r *pgMovementRepo) InsertFromGateway(ctx context.Context, m domain.MoneyMovement) (bool, error) {
	// The partial unique index on (registration_id, external_source_id) makes
	// this insert idempotent under webhook redelivery.
	const q = `
		INSERT INTO money_movements (registration_id, amount_cents, kind, external_source_id, description)
		VALUES (@registration_id, @amount_cents, @kind, @external_source_id, @description)
		ON CONFLICT (registration_id, external_source_id) WHERE external_source_id IS NOT NULL
		DO NOTHING`

	args := pgx.NamedArgs{
		"registration_id":    m.RegistrationID,
		"amount_cents":       int64(m.AmountCents),
		"kind":               string(domain.MovementGatewayPayment),
		"external_source_id": m.ExternalSourceID,
		"description":        m.Description,
	}

	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return false, fmt.Errorf("repo.MovementRepo.InsertFromGateway: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgMovementRepo) ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]domain.MoneyMovement, error) {
	const q = `SELECT ` + movementColumns + `
		FROM money_movements WHERE registration_id = @registration_id
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"registration_id": registrationID})
	if err != nil {
		return nil, fmt.Errorf("repo.MovementRepo.ListByRegistration: %w", err)
	}
	defer rows.Close()

	var movements []domain.MoneyMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.MovementRepo.ListByRegistration: scan: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.MovementRepo.ListByRegistration: rows: %w", err)
	}
	return movements, nil
}

func (r *pgMovementRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.MoneyMovement, error) {
	const q = `
		SELECT m.id, m.registration_id, m.amount_cents, m.kind, m.external_source_id, m.description, m.created_at
		FROM money_movements m
		JOIN registrations reg ON reg.id = m.registration_id
		WHERE reg.trip_id = @trip_id
		ORDER BY m.created_at, m.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.MovementRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	var movements []domain.MoneyMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.MovementRepo.ListByTrip: scan: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.MovementRepo.ListByTrip: rows: %w", err)
	}
	return movements, nil
}

func (r *pgMovementRepo) SumPaid(ctx context.Context, registrationID uuid.UUID) (domain.Cents, error) {
	const q = `
		SELECT COALESCE(SUM(CASE WHEN kind = 'refund' THEN -amount_cents ELSE amount_cents END), 0)
		FROM money_movements WHERE registration_id = @registration_id`

	var sum int64
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"registration_id": registrationID}).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("repo.MovementRepo.SumPaid: %w", err)
	}
	return domain.Cents(sum), nil
}

func (r *pgMovementRepo) SumPaidByTrip(ctx context.Context, tripID uuid.UUID) (map[uuid.UUID]domain.Cents, error) {
	const q = `
		SELECT m.registration_id,
			SUM(CASE WHEN m.kind = 'refund' THEN -m.amount_cents ELSE m.amount_cents END)
		FROM money_movements m
		JOIN registrations reg ON reg.id = m.registration_id
		WHERE reg.trip_id = @trip_id
		GROUP BY m.registration_id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.MovementRepo.SumPaidByTrip: %w", err)
	}
	defer rows.Close()

	sums := make(map[uuid.UUID]domain.Cents)
	for rows.Next() {
		var (
			regID pgtype.UUID
			sum   int64
		)
		if err := rows.Scan(&regID, &sum); err != nil {
			return nil, fmt.Errorf("repo.MovementRepo.SumPaidByTrip: scan: %w", err)
		}
		sums[uuid.UUID(regID.Bytes)] = domain.Cents(sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.MovementRepo.SumPaidByTrip: rows: %w", err)
	}
	return sums, nil
}

func scanMovement(s scanner) (domain.MoneyMovement, error) {
	var (
		m              domain.MoneyMovement
		id, regID      pgtype.UUID
		amount         int64
		kind           string
		externalSource *string
	)

	err := s.Scan(&id, &regID, &amount, &kind, &externalSource, &m.Description, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MoneyMovement{}, domain.ErrNotFound
		}
		return domain.MoneyMovement{}, err
	}

	m.ID = uuid.UUID(id.Bytes)
	m.RegistrationID = uuid.UUID(regID.Bytes)
	m.AmountCents = domain.Cents(amount)
	m.Kind = domain.MovementKind(kind)
	if externalSource != nil {
		m.ExternalSourceID = *externalSource
	}
	return m, nil
}

// nullableString maps an empty string to SQL NULL, so the partial unique
// index on external_source_id only applies to gateway-sourced movements.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
