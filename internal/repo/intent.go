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

// IntentRepo defines the persistence operations for gateway payment intents.
type IntentRepo interface {
	// Create inserts a new intent in status NEW, before the gateway order exists.
	Create(ctx context.Context, intent domain.PaymentIntent) (domain.PaymentIntent, error)

	// SetExternalOrder records the gateway order id and moves NEW -> PENDING.
	SetExternalOrder(ctx context.Context, id uuid.UUID, externalOrderID string) (domain.PaymentIntent, error)

	// GetByID retrieves an intent scoped to a registration, so a participant
	// token can only see its own attempts.
	GetByID(ctx context.Context, registrationID, id uuid.UUID) (domain.PaymentIntent, error)

	// GetByExternalOrderID retrieves the intent a gateway notification refers to.
	GetByExternalOrderID(ctx context.Context, externalOrderID string) (domain.PaymentIntent, error)

	// TransitionTerminal moves a non-terminal intent to the given terminal
	// status. When the intent is already COMPLETED or FAILED, transitioned is
	// false and the row is untouched; the guard is a single atomic UPDATE.
	TransitionTerminal(ctx context.Context, id uuid.UUID, status domain.IntentStatus) (transitioned bool, err error)

	// ListStale returns non-terminal intents not updated since the cutoff.
	ListStale(ctx context.Context, cutoff time.Time) ([]domain.PaymentIntent, error)
}

const intentColumns = `id, registration_id, amount_cents, purpose, external_order_id, status, created_at, updated_at`

type pgIntentRepo struct {
	db db
}

// NewIntentRepo constructs an IntentRepo backed by the provided db connection.
func NewIntentRepo(db db) IntentRepo {
	return &pgIntentRepo{db: db}
}

func (r *pgIntentRepo) Create(ctx context.Context, intent domain.PaymentIntent) (domain.PaymentIntent, error) {
	const q = `
		INSERT INTO payment_intents (registration_id, amount_cents, purpose, status)
		VALUES (@registration_id, @amount_cents, @purpose, @status)
		RETURNING ` + intentColumns

	args := pgx.NamedArgs{
		"registration_id": intent.RegistrationID,
		"amount_cents":    int64(intent.AmountCents),
		"purpose":         string(intent.Purpose),
		"status":          string(domain.IntentNew),
	}

	result, err := scanIntent(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("repo.IntentRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgIntentRepo) SetExternalOrder(ctx context.Context, id uuid.UUID, externalOrderID string) (domain.PaymentIntent, error) {
	const q = `
		UPDATE payment_intents
		SET external_order_id = @external_order_id, status = @status, updated_at = now()
		WHERE id = @id AND status = @from
		RETURNING ` + intentColumns

	args := pgx.NamedArgs{
		"id":                id,
		"external_order_id": externalOrderID,
		"status":            string(domain.IntentPending),
		"from":              string(domain.IntentNew),
	}

	result, err := scanIntent(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("repo.IntentRepo.SetExternalOrder: %w", err)
	}
	return result, nil
}

func (r *pgIntentRepo) GetByID(ctx context.Context, registrationID, id uuid.UUID) (domain.PaymentIntent, error) {
	const q = `SELECT ` + intentColumns + `
		FROM payment_intents WHERE id = @id AND registration_id = @registration_id`

	result, err := scanIntent(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "registration_id": registrationID}))
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("repo.IntentRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgIntentRepo) GetByExternalOrderID(ctx context.Context, externalOrderID string) (domain.PaymentIntent, error) {
	const q = `SELECT ` + intentColumns + `
		FROM payment_intents WHERE external_order_id = @external_order_id`

	result, err := scanIntent(r.db.QueryRow(ctx, q, pgx.NamedArgs{"external_order_id": externalOrderID}))
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("repo.IntentRepo.GetByExternalOrderID: %w", err)
	}
	return result, nil
}

func (r *pgIntentRepo) TransitionTerminal(ctx context.Context, id uuid.UUID, status domain.IntentStatus) (bool, error) {
	if !status.Terminal() {
		return false, fmt.Errorf("repo.IntentRepo.TransitionTerminal: %q is not terminal: %w", status, domain.ErrValidation)
	}

	// The status guard makes concurrent notification deliveries race-safe:
	// whichever UPDATE lands first wins, the rest match zero rows.
	const q = `
		UPDATE payment_intents
		SET status = @status, updated_at = now()
		WHERE id = @id AND status NOT IN ('COMPLETED', 'FAILED')`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "status": string(status)})
	if err != nil {
		return false, fmt.Errorf("repo.IntentRepo.TransitionTerminal: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgIntentRepo) ListStale(ctx context.Context, cutoff time.Time) ([]domain.PaymentIntent, error) {
	const q = `SELECT ` + intentColumns + `
		FROM payment_intents
		WHERE status NOT IN ('COMPLETED', 'FAILED') AND updated_at < @cutoff
		ORDER BY updated_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"cutoff": cutoff})
	if err != nil {
		return nil, fmt.Errorf("repo.IntentRepo.ListStale: %w", err)
	}
	defer rows.Close()

	var intents []domain.PaymentIntent
	for rows.Next() {
		intent, err := scanIntent(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.IntentRepo.ListStale: scan: %w", err)
		}
		intents = append(intents, intent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.IntentRepo.ListStale: rows: %w", err)
	}
	return intents, nil
}

func scanIntent(s scanner) (domain.PaymentIntent, error) {
	var (
		intent        domain.PaymentIntent
		id, regID     pgtype.UUID
		amount        int64
		purpose       string
		externalOrder *string
		status        string
	)

	err := s.Scan(&id, &regID, &amount, &purpose, &externalOrder, &status, &intent.CreatedAt, &intent.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PaymentIntent{}, domain.ErrNotFound
		}
		return domain.PaymentIntent{}, err
	}

	intent.ID = uuid.UUID(id.Bytes)
	intent.RegistrationID = uuid.UUID(regID.Bytes)
	intent.AmountCents = domain.Cents(amount)
	intent.Purpose = domain.PaymentPurpose(purpose)
	if externalOrder != nil {
		intent.ExternalOrderID = *externalOrder
	}
	intent.Status = domain.IntentStatus(status)
	return intent, nil
}
