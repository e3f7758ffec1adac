package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
)

// AuditRepo defines the persistence operations for the processing register.
// Append and read only; PurgeOlderThan is the single sanctioned delete path.
type AuditRepo interface {
	Append(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error)
	List(ctx context.Context, p domain.PaginationParams) ([]domain.AuditEntry, error)
	ListByTarget(ctx context.Context, targetModel, targetID string, p domain.PaginationParams) ([]domain.AuditEntry, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

const auditColumns = `id, at, actor_id, action, target_model, target_id, target_repr, ip_address, user_agent, detail`

type pgAuditRepo struct {
	db db
}

// NewAuditRepo constructs an AuditRepo backed by the provided db connection.
func NewAuditRepo(db db) AuditRepo {
	return &pgAuditRepo{db: db}
}

func (r *pgAuditRepo) Append(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error) {
	const q = `
		INSERT INTO audit_entries (actor_id, action, target_model, target_id, target_repr, ip_address, user_agent, detail)
		VALUES (@actor_id, @action, @target_model, @target_id, @target_repr, @ip_address, @user_agent, @detail)
		RETURNING ` + auditColumns

	args := pgx.NamedArgs{
		"actor_id":     entry.ActorID,
		"action":       string(entry.Action),
		"target_model": entry.TargetModel,
		"target_id":    entry.TargetID,
		"target_repr":  entry.TargetRepr,
		"ip_address":   entry.IPAddress,
		"user_agent":   entry.UserAgent,
		"detail":       entry.Detail,
	}

	result, err := scanAuditEntry(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.AuditEntry{}, fmt.Errorf("repo.AuditRepo.Append: %w", err)
	}
	return result, nil
}

func (r *pgAuditRepo) List(ctx context.Context, p domain.PaginationParams) ([]domain.AuditEntry, error) {
	const q = `SELECT ` + auditColumns + `
		FROM audit_entries
		ORDER BY at DESC, id DESC
		LIMIT @limit OFFSET @offset`
	return r.queryEntries(ctx, "List", q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
}

func (r *pgAuditRepo) ListByTarget(ctx context.Context, targetModel, targetID string, p domain.PaginationParams) ([]domain.AuditEntry, error) {
	const q = `SELECT ` + auditColumns + `
		FROM audit_entries
		WHERE target_model = @target_model AND target_id = @target_id
		ORDER BY at DESC, id DESC
		LIMIT @limit OFFSET @offset`
	args := pgx.NamedArgs{
		"target_model": targetModel,
		"target_id":    targetID,
		"limit":        p.Limit,
		"offset":       p.Offset(),
	}
	return r.queryEntries(ctx, "ListByTarget", q, args)
}

func (r *pgAuditRepo) queryEntries(ctx context.Context, op, q string, args pgx.NamedArgs) ([]domain.AuditEntry, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.AuditRepo.%s: %w", op, err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.AuditRepo.%s: scan: %w", op, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.AuditRepo.%s: rows: %w", op, err)
	}
	return entries, nil
}

func (r *pgAuditRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM audit_entries WHERE at < @cutoff`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"cutoff": cutoff})
	if err != nil {
		return 0, fmt.Errorf("repo.AuditRepo.PurgeOlderThan: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanAuditEntry(s scanner) (domain.AuditEntry, error) {
	var (
		entry   domain.AuditEntry
		id      pgtype.UUID
		actorID pgtype.UUID
		action  string
	)

	err := s.Scan(&id, &entry.At, &actorID, &action, &entry.TargetModel, &entry.TargetID,
		&entry.TargetRepr, &entry.IPAddress, &entry.UserAgent, &entry.Detail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AuditEntry{}, domain.ErrNotFound
		}
		return domain.AuditEntry{}, err
	}

	entry.ID = uuid.UUID(id.Bytes)
	if actorID.Valid {
		a := uuid.UUID(actorID.Bytes)
		entry.ActorID = &a
	}
	entry.Action = domain.AuditAction(action)
	return entry, nil
}
