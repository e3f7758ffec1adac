package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
	"github.com/zobaczyc-morze/crewreg/internal/service"
)

func validTrip() domain.Trip {
	return domain.Trip{
		Name:            "Baltic Crossing",
		DeparturePort:   "Gdynia",
		ArrivalPort:     "Visby",
		StartDate:       time.Now().AddDate(0, 1, 0),
		EndDate:         time.Now().AddDate(0, 1, 14),
		PriceCents:      250000,
		DepositCents:    50000,
		RecruitmentOpen: true,
	}
}

func TestTripService_Create(t *testing.T) {
	repo := &mockTripRepo{
		create: func(_ context.Context, trip domain.Trip) (domain.Trip, error) {
			trip.ID = uuid.New()
			return trip, nil
		},
	}
	svc := service.NewTripService(repo)

	created, err := svc.Create(context.Background(), validTrip())

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "Baltic Crossing", created.Name)
}

func TestTripService_Create_Validation(t *testing.T) {
	svc := service.NewTripService(&mockTripRepo{})

	tests := []struct {
		name   string
		mutate func(*domain.Trip)
	}{
		{"empty name", func(tr *domain.Trip) { tr.Name = "  " }},
		{"missing departure port", func(tr *domain.Trip) { tr.DeparturePort = "" }},
		{"missing arrival port", func(tr *domain.Trip) { tr.ArrivalPort = "" }},
		{"end before start", func(tr *domain.Trip) { tr.EndDate = tr.StartDate.AddDate(0, 0, -1) }},
		{"negative price", func(tr *domain.Trip) { tr.PriceCents = -1 }},
		{"negative deposit", func(tr *domain.Trip) { tr.DepositCents = -1 }},
		{"deposit above price", func(tr *domain.Trip) { tr.DepositCents = tr.PriceCents + 1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			trip := validTrip()
			tc.mutate(&trip)
			_, err := svc.Create(context.Background(), trip)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestTripService_Create_SingleDay(t *testing.T) {
	repo := &mockTripRepo{
		create: func(_ context.Context, trip domain.Trip) (domain.Trip, error) { return trip, nil },
	}
	svc := service.NewTripService(repo)

	trip := validTrip()
	trip.EndDate = trip.StartDate

	_, err := svc.Create(context.Background(), trip)
	assert.NoError(t, err, "a one-day trip is valid")
}

func TestTripService_List_NeverNil(t *testing.T) {
	repo := &mockTripRepo{
		list:           func(_ context.Context) ([]domain.Trip, error) { return nil, nil },
		listRecruiting: func(_ context.Context) ([]domain.Trip, error) { return nil, nil },
	}
	svc := service.NewTripService(repo)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)

	recruiting, err := svc.ListRecruiting(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, recruiting)
}

func TestTripService_GetByID_NotFound(t *testing.T) {
	repo := &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	}
	svc := service.NewTripService(repo)

	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
