package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
	"github.com/zobaczyc-morze/crewreg/internal/repo"
)

// createRegistration inserts a trip and a registration against it.
func createRegistration(t *testing.T, tx pgx.Tx) domain.Registration {
	t.Helper()
	trip := createTrip(t, tx)
	reg, err := repo.NewRegistrationRepo(tx).Create(context.Background(), registrationFixture(trip.ID))
	require.NoError(t, err)
	return reg
}

func TestMovementRepo_InsertAndSum(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewMovementRepo(tx)
	ctx := context.Background()

	reg := createRegistration(t, tx)

	_, err := r.Insert(ctx, domain.MoneyMovement{
		RegistrationID: reg.ID,
		AmountCents:    50000,
		Kind:           domain.MovementPayment,
		Description:    "bank transfer, deposit",
	})
	require.NoError(t, err)

	_, err = r.Insert(ctx, domain.MoneyMovement{
		RegistrationID: reg.ID,
		AmountCents:    10000,
		Kind:           domain.MovementRefund,
		Description:    "partial refund",
	})
	require.NoError(t, err)

	sum, err := r.SumPaid(ctx, reg.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.Cents(40000), sum, "refunds subtract from the paid total")
}

func TestMovementRepo_SumPaid_Empty(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewMovementRepo(tx)

	reg := createRegistration(t, tx)

	sum, err := r.SumPaid(context.Background(), reg.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.Cents(0), sum)
}

func TestMovementRepo_InsertFromGateway_Idempotent(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewMovementRepo(tx)
	ctx := context.Background()

	reg := createRegistration(t, tx)

	m := domain.MoneyMovement{
		RegistrationID:   reg.ID,
		AmountCents:      50000,
		ExternalSourceID: "PAYU-ORDER-1",
		Description:      "gateway payment",
	}

	created, err := r.InsertFromGateway(ctx, m)
	require.NoError(t, err)
	assert.True(t, created, "first delivery should credit")

	// Redelivery of the same order must not credit twice.
	created, err = r.InsertFromGateway(ctx, m)
	require.NoError(t, err)
	assert.False(t, created, "redelivery should be a no-op")

	sum, err := r.SumPaid(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Cents(50000), sum, "ledger must hold exactly one credit")
}

func TestMovementRepo_InsertFromGateway_DistinctOrders(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewMovementRepo(tx)
	ctx := context.Background()

	reg := createRegistration(t, tx)

	for _, orderID := range []string{"PAYU-ORDER-A", "PAYU-ORDER-B"} {
		created, err := r.InsertFromGateway(ctx, domain.MoneyMovement{
			RegistrationID:   reg.ID,
			AmountCents:      25000,
			ExternalSourceID: orderID,
		})
		require.NoError(t, err)
		assert.True(t, created)
	}

	sum, err := r.SumPaid(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Cents(50000), sum)
}

func TestMovementRepo_ListByRegistration(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewMovementRepo(tx)
	ctx := context.Background()

	reg := createRegistration(t, tx)
	other := createRegistration(t, tx)

	_, err := r.Insert(ctx, domain.MoneyMovement{RegistrationID: reg.ID, AmountCents: 100, Kind: domain.MovementPayment})
	require.NoError(t, err)
	_, err = r.Insert(ctx, domain.MoneyMovement{RegistrationID: other.ID, AmountCents: 200, Kind: domain.MovementPayment})
	require.NoError(t, err)

	movements, err := r.ListByRegistration(ctx, reg.ID)

	require.NoError(t, err)
	require.Len(t, movements, 1, "only own movements should be listed")
	assert.Equal(t, domain.Cents(100), movements[0].AmountCents)
}

func TestMovementRepo_ListByTrip(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewMovementRepo(tx)
	ctx := context.Background()

	trip := createTrip(t, tx)
	regRepo := repo.NewRegistrationRepo(tx)

	reg1, err := regRepo.Create(ctx, registrationFixture(trip.ID))
	require.NoError(t, err)

	fix2 := registrationFixture(trip.ID)
	fix2.FirstName = "Jan"
	fix2.Email = "jan@example.com"
	reg2, err := regRepo.Create(ctx, fix2)
	require.NoError(t, err)

	// A movement on another trip must stay out of the listing.
	foreign := createRegistration(t, tx)
	_, err = r.Insert(ctx, domain.MoneyMovement{RegistrationID: foreign.ID, AmountCents: 999, Kind: domain.MovementPayment})
	require.NoError(t, err)

	_, err = r.Insert(ctx, domain.MoneyMovement{RegistrationID: reg1.ID, AmountCents: 50000, Kind: domain.MovementPayment})
	require.NoError(t, err)
	_, err = r.Insert(ctx, domain.MoneyMovement{RegistrationID: reg2.ID, AmountCents: 30000, Kind: domain.MovementPayment})
	require.NoError(t, err)

	movements, err := r.ListByTrip(ctx, trip.ID)

	require.NoError(t, err)
	require.Len(t, movements, 2, "only the trip's own movements are listed")
	listed := []uuid.UUID{movements[0].RegistrationID, movements[1].RegistrationID}
	assert.ElementsMatch(t, []uuid.UUID{reg1.ID, reg2.ID}, listed)
}

func TestMovementRepo_SumPaidByTrip(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewMovementRepo(tx)
	ctx := context.Background()

	trip := createTrip(t, tx)
	regRepo := repo.NewRegistrationRepo(tx)

	reg1, err := regRepo.Create(ctx, registrationFixture(trip.ID))
	require.NoError(t, err)

	fix2 := registrationFixture(trip.ID)
	fix2.FirstName = "Jan"
	fix2.Email = "jan@example.com"
	reg2, err := regRepo.Create(ctx, fix2)
	require.NoError(t, err)

	fix3 := registrationFixture(trip.ID)
	fix3.FirstName = "Maria"
	fix3.Email = "maria@example.com"
	reg3, err := regRepo.Create(ctx, fix3)
	require.NoError(t, err)

	_, err = r.Insert(ctx, domain.MoneyMovement{RegistrationID: reg1.ID, AmountCents: 50000, Kind: domain.MovementPayment})
	require.NoError(t, err)
	_, err = r.Insert(ctx, domain.MoneyMovement{RegistrationID: reg2.ID, AmountCents: 30000, Kind: domain.MovementPayment})
	require.NoError(t, err)
	_, err = r.Insert(ctx, domain.MoneyMovement{RegistrationID: reg2.ID, AmountCents: 10000, Kind: domain.MovementRefund})
	require.NoError(t, err)

	sums, err := r.SumPaidByTrip(ctx, trip.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.Cents(50000), sums[reg1.ID])
	assert.Equal(t, domain.Cents(20000), sums[reg2.ID])
	_, ok := sums[reg3.ID]
	assert.False(t, ok, "registrations without movements have no entry")
}
