package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
	"github.com/zobaczyc-morze/crewreg/internal/repo"
)

func TestIntentRepo_CreateAndSetExternalOrder(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewIntentRepo(tx)
	ctx := context.Background()

	reg := createRegistration(t, tx)

	created, err := r.Create(ctx, domain.PaymentIntent{
		RegistrationID: reg.ID,
		AmountCents:    50000,
		Purpose:        domain.PurposeDeposit,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.IntentNew, created.Status)
	assert.Empty(t, created.ExternalOrderID)

	pending, err := r.SetExternalOrder(ctx, created.ID, "PAYU-ORDER-1")
	require.NoError(t, err)
	assert.Equal(t, domain.IntentPending, pending.Status)
	assert.Equal(t, "PAYU-ORDER-1", pending.ExternalOrderID)

	// A second SetExternalOrder finds no NEW row to update.
	_, err = r.SetExternalOrder(ctx, created.ID, "PAYU-ORDER-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIntentRepo_GetByExternalOrderID(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewIntentRepo(tx)
	ctx := context.Background()

	reg := createRegistration(t, tx)

	created, err := r.Create(ctx, domain.PaymentIntent{RegistrationID: reg.ID, AmountCents: 100, Purpose: domain.PurposeDeposit})
	require.NoError(t, err)
	_, err = r.SetExternalOrder(ctx, created.ID, "PAYU-ORDER-42")
	require.NoError(t, err)

	got, err := r.GetByExternalOrderID(ctx, "PAYU-ORDER-42")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = r.GetByExternalOrderID(ctx, "UNKNOWN")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIntentRepo_GetByID_ScopedToRegistration(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewIntentRepo(tx)
	ctx := context.Background()

	reg := createRegistration(t, tx)
	other := createRegistration(t, tx)

	created, err := r.Create(ctx, domain.PaymentIntent{RegistrationID: reg.ID, AmountCents: 100, Purpose: domain.PurposeBalance})
	require.NoError(t, err)

	_, err = r.GetByID(ctx, reg.ID, created.ID)
	assert.NoError(t, err)

	// Another registration's token must not see it.
	_, err = r.GetByID(ctx, other.ID, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIntentRepo_TransitionTerminal(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewIntentRepo(tx)
	ctx := context.Background()

	reg := createRegistration(t, tx)

	created, err := r.Create(ctx, domain.PaymentIntent{RegistrationID: reg.ID, AmountCents: 100, Purpose: domain.PurposeDeposit})
	require.NoError(t, err)
	_, err = r.SetExternalOrder(ctx, created.ID, "PAYU-ORDER-T")
	require.NoError(t, err)

	transitioned, err := r.TransitionTerminal(ctx, created.ID, domain.IntentCompleted)
	require.NoError(t, err)
	assert.True(t, transitioned)

	// Terminal states stick: a late FAILED doesn't flip a COMPLETED intent.
	transitioned, err = r.TransitionTerminal(ctx, created.ID, domain.IntentFailed)
	require.NoError(t, err)
	assert.False(t, transitioned)

	got, err := r.GetByID(ctx, reg.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IntentCompleted, got.Status)
}

func TestIntentRepo_TransitionTerminal_FailedIsSticky(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewIntentRepo(tx)
	ctx := context.Background()

	reg := createRegistration(t, tx)

	created, err := r.Create(ctx, domain.PaymentIntent{RegistrationID: reg.ID, AmountCents: 100, Purpose: domain.PurposeDeposit})
	require.NoError(t, err)

	transitioned, err := r.TransitionTerminal(ctx, created.ID, domain.IntentFailed)
	require.NoError(t, err)
	assert.True(t, transitioned)

	// A COMPLETED notification after FAILED does not revive the intent.
	transitioned, err = r.TransitionTerminal(ctx, created.ID, domain.IntentCompleted)
	require.NoError(t, err)
	assert.False(t, transitioned)

	got, err := r.GetByID(ctx, reg.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IntentFailed, got.Status)
}

func TestIntentRepo_TransitionTerminal_RejectsNonTerminal(t *testing.T) {
	r := repo.NewIntentRepo(newTestTx(t))

	_, err := r.TransitionTerminal(context.Background(), uuid.New(), domain.IntentPending)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestIntentRepo_ListStale(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewIntentRepo(tx)
	ctx := context.Background()

	reg := createRegistration(t, tx)

	pending, err := r.Create(ctx, domain.PaymentIntent{RegistrationID: reg.ID, AmountCents: 100, Purpose: domain.PurposeDeposit})
	require.NoError(t, err)

	done, err := r.Create(ctx, domain.PaymentIntent{RegistrationID: reg.ID, AmountCents: 100, Purpose: domain.PurposeBalance})
	require.NoError(t, err)
	_, err = r.TransitionTerminal(ctx, done.ID, domain.IntentFailed)
	require.NoError(t, err)

	// A cutoff in the future makes every non-terminal intent stale.
	stale, err := r.ListStale(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)

	var ids []uuid.UUID
	for _, intent := range stale {
		ids = append(ids, intent.ID)
	}
	assert.Contains(t, ids, pending.ID)
	assert.NotContains(t, ids, done.ID, "terminal intents are never stale")

	// A cutoff in the past matches nothing from this test.
	stale, err = r.ListStale(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	for _, intent := range stale {
		assert.NotEqual(t, pending.ID, intent.ID)
	}
}
