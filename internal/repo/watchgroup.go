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

// WatchGroupRepo defines the persistence operations for watch groups.
type WatchGroupRepo interface {
	Create(ctx context.Context, wg domain.WatchGroup) (domain.WatchGroup, error)

	// GetByID retrieves a watch group scoped to a trip: a group id belonging
	// to a different trip yields domain.ErrNotFound. This scoping is what the
	// service relies on to enforce same-trip watch assignment.
	GetByID(ctx context.Context, tripID, id uuid.UUID) (domain.WatchGroup, error)

	// ListByTrip returns a trip's watch groups ordered by name.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.WatchGroup, error)

	// Delete removes a watch group; its members' watch_group_id is nulled by
	// the foreign key, not cascaded.
	Delete(ctx context.Context, tripID, id uuid.UUID) error
}

type pgWatchGroupRepo struct {
	db db
}

// NewWatchGroupRepo constructs a WatchGroupRepo backed by the provided db connection.
func NewWatchGroupRepo(db db) WatchGroupRepo {
	return &pgWatchGroupRepo{db: db}
}

func (r *pgWatchGroupRepo) Create(ctx context.Context, wg domain.WatchGroup) (domain.WatchGroup, error) {
	const q = `
		INSERT INTO watch_groups (trip_id, name)
		VALUES (@trip_id, @name)
		RETURNING id, trip_id, name, created_at`

	result, err := scanWatchGroup(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"trip_id": wg.TripID,
		"name":    wg.Name,
	}))
	if err != nil {
		return domain.WatchGroup{}, fmt.Errorf("repo.WatchGroupRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgWatchGroupRepo) GetByID(ctx context.Context, tripID, id uuid.UUID) (domain.WatchGroup, error) {
	const q = `
		SELECT id, trip_id, name, created_at
		FROM watch_groups
		WHERE id = @id AND trip_id = @trip_id`

	result, err := scanWatchGroup(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "trip_id": tripID}))
	if err != nil {
		return domain.WatchGroup{}, fmt.Errorf("repo.WatchGroupRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgWatchGroupRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.WatchGroup, error) {
	const q = `
		SELECT id, trip_id, name, created_at
		FROM watch_groups
		WHERE trip_id = @trip_id
		ORDER BY name`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.WatchGroupRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	var groups []domain.WatchGroup
	for rows.Next() {
		wg, err := scanWatchGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.WatchGroupRepo.ListByTrip: scan: %w", err)
		}
		groups = append(groups, wg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.WatchGroupRepo.ListByTrip: rows: %w", err)
	}
	return groups, nil
}

func (r *pgWatchGroupRepo) Delete(ctx context.Context, tripID, id uuid.UUID) error {
	const q = `DELETE FROM watch_groups WHERE id = @id AND trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "trip_id": tripID})
	if err != nil {
		return fmt.Errorf("repo.WatchGroupRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.WatchGroupRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanWatchGroup(s scanner) (domain.WatchGroup, error) {
	var (
		wg         domain.WatchGroup
		id, tripID pgtype.UUID
	)

	if err := s.Scan(&id, &tripID, &wg.Name, &wg.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.WatchGroup{}, domain.ErrNotFound
		}
		return domain.WatchGroup{}, err
	}

	wg.ID = uuid.UUID(id.Bytes)
	wg.TripID = uuid.UUID(tripID.Bytes)
	return wg, nil
}
