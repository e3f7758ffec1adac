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

// AnnouncementRepo defines the persistence operations for trip announcements.
type AnnouncementRepo interface {
	Create(ctx context.Context, a domain.Announcement) (domain.Announcement, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Announcement, error)
	Delete(ctx context.Context, tripID, id uuid.UUID) error
}

const announcementColumns = `id, trip_id, title, body, created_at`

type pgAnnouncementRepo struct {
	db db
}

// NewAnnouncementRepo constructs an AnnouncementRepo backed by the provided db connection.
func NewAnnouncementRepo(db db) AnnouncementRepo {
	return &pgAnnouncementRepo{db: db}
}

func (r *pgAnnouncementRepo) Create(ctx context.Context, a domain.Announcement) (domain.Announcement, error) {
	const q = `
		INSERT INTO announcements (trip_id, title, body)
		VALUES (@trip_id, @title, @body)
		RETURNING ` + announcementColumns

	args := pgx.NamedArgs{"trip_id": a.TripID, "title": a.Title, "body": a.Body}

	result, err := scanAnnouncement(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Announcement{}, fmt.Errorf("repo.AnnouncementRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgAnnouncementRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Announcement, error) {
	const q = `SELECT ` + announcementColumns + `
		FROM announcements WHERE trip_id = @trip_id
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.AnnouncementRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	var announcements []domain.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.AnnouncementRepo.ListByTrip: scan: %w", err)
		}
		announcements = append(announcements, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.AnnouncementRepo.ListByTrip: rows: %w", err)
	}
	return announcements, nil
}

func (r *pgAnnouncementRepo) Delete(ctx context.Context, tripID, id uuid.UUID) error {
	const q = `DELETE FROM announcements WHERE id = @id AND trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "trip_id": tripID})
	if err != nil {
		return fmt.Errorf("repo.AnnouncementRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.AnnouncementRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanAnnouncement(s scanner) (domain.Announcement, error) {
	var (
		a          domain.Announcement
		id, tripID pgtype.UUID
	)

	err := s.Scan(&id, &tripID, &a.Title, &a.Body, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Announcement{}, domain.ErrNotFound
		}
		return domain.Announcement{}, err
	}

	a.ID = uuid.UUID(id.Bytes)
	a.TripID = uuid.UUID(tripID.Bytes)
	return a, nil
}
