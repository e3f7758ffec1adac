package domain

import (
	"time"

	"github.com/google/uuid"
)

// IntentStatus is the lifecycle state of a gateway payment attempt.
// Values match the gateway's own status strings so transitions can be driven
// directly from notification payloads.
type IntentStatus string

const (
	IntentNew       IntentStatus = "NEW"
	IntentPending   IntentStatus = "PENDING"
	IntentCompleted IntentStatus = "COMPLETED"
	IntentFailed    IntentStatus = "FAILED"
)

// Terminal reports whether the status admits no further transitions.
// Both COMPLETED and FAILED are terminal: a COMPLETED notification arriving
// after FAILED is ignored rather than reviving the intent.
func (s IntentStatus) Terminal() bool {
	return s == IntentCompleted || s == IntentFailed
}

// PaymentPurpose says which part of the trip price an intent collects.
type PaymentPurpose string

const (
	PurposeDeposit PaymentPurpose = "deposit"
	PurposeBalance PaymentPurpose = "balance"
)

func (p PaymentPurpose) Valid() bool {
	return p == PurposeDeposit || p == PurposeBalance
}

// PaymentIntent is one attempt to collect a deposit or balance through the
// external gateway. Status transitions are driven exclusively by gateway
// callbacks or status polls, never by participant action.
type PaymentIntent struct {
	ID              uuid.UUID      `json:"id"`
	RegistrationID  uuid.UUID      `json:"registration_id"`
	AmountCents     Cents          `json:"amount_cents"`
	Purpose         PaymentPurpose `json:"purpose"`
	ExternalOrderID string         `json:"external_order_id,omitempty"`
	Status          IntentStatus   `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
