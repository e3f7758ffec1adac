package domain

import (
	"time"

	"github.com/google/uuid"
)

// MovementKind classifies a money movement.
type MovementKind string

const (
	// MovementPayment is a manually recorded incoming payment (bank transfer, cash).
	MovementPayment MovementKind = "payment"
	// MovementRefund is money returned to the participant. Stored positive,
	// subtracted when aggregating. Corrections are new refund rows, never edits.
	MovementRefund MovementKind = "refund"
	// MovementGatewayPayment is a payment credited from a completed gateway order.
	MovementGatewayPayment MovementKind = "gateway_payment"
)

func (k MovementKind) Valid() bool {
	switch k {
	case MovementPayment, MovementRefund, MovementGatewayPayment:
		return true
	}
	return false
}

// MoneyMovement is an immutable signed financial entry against a registration.
// The ledger is append-only: there is no update or delete path, and the sum
// paid is always recomputed from the movements.
//
// ExternalSourceID carries the gateway order id for gateway-sourced payments.
// The (registration_id, external_source_id) pair is unique in the database,
// which is what makes webhook-driven crediting idempotent: redelivery of a
// completed order inserts nothing.
type MoneyMovement struct {
	ID               uuid.UUID    `json:"id"`
	RegistrationID   uuid.UUID    `json:"registration_id"`
	AmountCents      Cents        `json:"amount_cents"`
	Kind             MovementKind `json:"kind"`
	ExternalSourceID string       `json:"external_source_id,omitempty"`
	Description      string       `json:"description,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}
