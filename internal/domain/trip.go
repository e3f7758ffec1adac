// Package domain contains the core data types for the crew registration
// application. This package has zero external dependencies beyond uuid and is
// imported by every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip represents a scheduled voyage open for crew registration.
// A trip is the top-level aggregate; watch groups and registrations belong to it.
type Trip struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	DeparturePort   string    `json:"departure_port"`
	ArrivalPort     string    `json:"arrival_port"`
	Description     string    `json:"description,omitempty"`
	PriceCents      Cents     `json:"price_cents"`
	DepositCents    Cents     `json:"deposit_cents"`
	RecruitmentOpen bool      `json:"recruitment_open"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BalanceCents is the remainder after the deposit, used on payment pages.
func (t Trip) BalanceCents() Cents {
	return t.PriceCents - t.DepositCents
}

// WatchGroup is a named sub-crew within a trip.
// Deleting a watch group detaches its members; deleting a trip cascades.
type WatchGroup struct {
	ID        uuid.UUID `json:"id"`
	TripID    uuid.UUID `json:"trip_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Announcement is a staff notice attached to a trip and broadcast to all of
// its registered participants.
type Announcement struct {
	ID        uuid.UUID `json:"id"`
	TripID    uuid.UUID `json:"trip_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
