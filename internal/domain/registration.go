package domain

import (
	"time"

	"github.com/google/uuid"
)

// RegistrationStatus tracks staff review of a sign-up.
type RegistrationStatus string

const (
	StatusPending   RegistrationStatus = "pending"
	StatusQualified RegistrationStatus = "qualified"
	StatusRejected  RegistrationStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusQualified, StatusRejected:
		return true
	}
	return false
}

// VisionStatus describes a participant's sight. The foundation sails mixed
// crews of sighted and blind participants, so watch planning needs this.
type VisionStatus string

const (
	VisionSighted   VisionStatus = "sighted"
	VisionBlind     VisionStatus = "blind"
	VisionLowVision VisionStatus = "low_vision"
)

func (v VisionStatus) Valid() bool {
	switch v {
	case VisionSighted, VisionBlind, VisionLowVision:
		return true
	}
	return false
}

// CrewRole is the participant's role on board.
type CrewRole string

const (
	RoleCrew         CrewRole = "crew"
	RoleWatchOfficer CrewRole = "watch_officer"
)

func (r CrewRole) Valid() bool {
	return r == RoleCrew || r == RoleWatchOfficer
}

// Registration is one participant's sign-up to a trip.
//
// AccessToken is an opaque capability: participants manage their registration
// (view status, submit sensitive data, pay) through links carrying the token,
// without accounts. It is never listed publicly.
//
// WatchGroupID, when set, must reference a watch group of the same trip;
// the service layer enforces this and the repo lookup is trip-scoped.
type Registration struct {
	ID           uuid.UUID          `json:"id"`
	TripID       uuid.UUID          `json:"trip_id"`
	WatchGroupID *uuid.UUID         `json:"watch_group_id,omitempty"`
	FirstName    string             `json:"first_name"`
	LastName     string             `json:"last_name"`
	Email        string             `json:"email"`
	Phone        string             `json:"phone"`
	BirthDate    time.Time          `json:"birth_date"`
	Address      string             `json:"address"`
	PostalCode   string             `json:"postal_code"`
	City         string             `json:"city"`
	SailedBefore bool               `json:"sailed_before"` // took part in a previous voyage
	GDPRConsent  bool               `json:"gdpr_consent"`
	Status       RegistrationStatus `json:"status"`
	Vision       VisionStatus       `json:"vision"`
	Role         CrewRole           `json:"role"`
	AccessToken  uuid.UUID          `json:"-"`
	CreatedAt    time.Time          `json:"created_at"`
}

// FullName is used in notifications, audit detail, and report rows.
func (r Registration) FullName() string {
	return r.FirstName + " " + r.LastName
}
