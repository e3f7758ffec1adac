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

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// List returns all trips ordered by start_date ascending.
	List(ctx context.Context) ([]domain.Trip, error)

	// ListRecruiting returns trips with open recruitment that have not yet
	// started, ordered by start_date ascending.
	ListRecruiting(ctx context.Context) ([]domain.Trip, error)

	// Update overwrites the mutable fields of an existing trip and returns the
	// updated record. Returns domain.ErrNotFound if no trip with that ID exists.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip by ID, cascading to its watch groups,
	// registrations, and their financial records.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

const tripColumns = `id, name, start_date, end_date, departure_port, arrival_port,
		description, price_cents, deposit_cents, recruitment_open, created_at, updated_at`

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (name, start_date, end_date, departure_port, arrival_port,
			description, price_cents, deposit_cents, recruitment_open)
		VALUES (@name, @start_date, @end_date, @departure_port, @arrival_port,
			@description, @price_cents, @deposit_cents, @recruitment_open)
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"name":             trip.Name,
		"start_date":       trip.StartDate,
		"end_date":         trip.EndDate,
		"departure_port":   trip.DeparturePort,
		"arrival_port":     trip.ArrivalPort,
		"description":      trip.Description,
		"price_cents":      int64(trip.PriceCents),
		"deposit_cents":    int64(trip.DepositCents),
		"recruitment_open": trip.RecruitmentOpen,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips ORDER BY start_date`
	return r.queryTrips(ctx, "List", q, nil)
}

func (r *pgTripRepo) ListRecruiting(ctx context.Context) ([]domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips
		WHERE recruitment_open AND start_date >= current_date
		ORDER BY start_date`
	return r.queryTrips(ctx, "ListRecruiting", q, nil)
}

func (r *pgTripRepo) queryTrips(ctx context.Context, op, q string, args pgx.NamedArgs) ([]domain.Trip, error) {
	var rows pgx.Rows
	var err error
	if args == nil {
		rows, err = r.db.Query(ctx, q)
	} else {
		rows, err = r.db.Query(ctx, q, args)
	}
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.%s: %w", op, err)
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.%s: scan: %w", op, err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.%s: rows: %w", op, err)
	}
	return trips, nil
}

func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET name             = @name,
		    start_date       = @start_date,
		    end_date         = @end_date,
		    departure_port   = @departure_port,
		    arrival_port     = @arrival_port,
		    description      = @description,
		    price_cents      = @price_cents,
		    deposit_cents    = @deposit_cents,
		    recruitment_open = @recruitment_open,
		    updated_at       = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"id":               trip.ID,
		"name":             trip.Name,
		"start_date":       trip.StartDate,
		"end_date":         trip.EndDate,
		"departure_port":   trip.DeparturePort,
		"arrival_port":     trip.ArrivalPort,
		"description":      trip.Description,
		"price_cents":      int64(trip.PriceCents),
		"deposit_cents":    int64(trip.DepositCents),
		"recruitment_open": trip.RecruitmentOpen,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanTrip maps a single database row into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t          domain.Trip
		id         pgtype.UUID
		start, end pgtype.Date
		price, dep int64
	)

	err := s.Scan(&id, &t.Name, &start, &end, &t.DeparturePort, &t.ArrivalPort,
		&t.Description, &price, &dep, &t.RecruitmentOpen, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.StartDate = start.Time
	t.EndDate = end.Time
	t.PriceCents = domain.Cents(price)
	t.DepositCents = domain.Cents(dep)
	return t, nil
}
