package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentType is the travel document a participant embarks with.
type DocumentType string

const (
	DocumentPassport DocumentType = "passport"
	DocumentIDCard   DocumentType = "id_card"
)

func (d DocumentType) Valid() bool {
	return d == DocumentPassport || d == DocumentIDCard
}

// SensitiveRecord holds the identification data the skipper needs for
// embarkation procedures: national ID number and travel document details.
// One-to-one with a qualified registration, gated on explicit consent,
// encrypted at rest, and purged a fixed number of days after the trip ends.
//
// Values in this struct are plaintext; the repo encrypts on write and
// decrypts on read. It never appears in JSON responses — staff endpoints
// return MaskedSensitiveRecord instead.
type SensitiveRecord struct {
	RegistrationID uuid.UUID
	NationalID     string
	DocumentType   DocumentType
	DocumentNumber string
	Consent        bool
	CreatedAt      time.Time
}

// Masked returns the redacted view used everywhere outside the sensitive
// report sheet.
func (s SensitiveRecord) Masked() MaskedSensitiveRecord {
	return MaskedSensitiveRecord{
		RegistrationID: s.RegistrationID,
		NationalID:     maskValue(s.NationalID, 2, 1),
		DocumentType:   s.DocumentType,
		DocumentNumber: maskValue(s.DocumentNumber, 1, 1),
		Consent:        s.Consent,
		CreatedAt:      s.CreatedAt,
	}
}

// MaskedSensitiveRecord is the staff-visible projection of a SensitiveRecord.
type MaskedSensitiveRecord struct {
	RegistrationID uuid.UUID    `json:"registration_id"`
	NationalID     string       `json:"national_id"`
	DocumentType   DocumentType `json:"document_type"`
	DocumentNumber string       `json:"document_number"`
	Consent        bool         `json:"consent"`
	CreatedAt      time.Time    `json:"created_at"`
}

// PurgeCandidate identifies one sensitive record due for retention purge.
// It carries the participant's name and trip so the deletion audit entry
// stays attributable after the record (and, later, the trip) is gone.
type PurgeCandidate struct {
	RegistrationID uuid.UUID
	FullName       string
	TripName       string
	TripEndDate    time.Time
}

// maskValue keeps prefixLen leading and suffixLen trailing characters and
// stars the rest. Values too short to mask meaningfully are fully starred.
func maskValue(value string, prefixLen, suffixLen int) string {
	if len(value) <= prefixLen+suffixLen {
		return strings.Repeat("*", len(value))
	}
	masked := len(value) - prefixLen - suffixLen
	return value[:prefixLen] + strings.Repeat("*", masked) + value[len(value)-suffixLen:]
}
