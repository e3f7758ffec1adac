package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
	"github.com/zobaczyc-morze/crewreg/internal/notify"
	"github.com/zobaczyc-morze/crewreg/internal/repo"
)

// MovementService implements the manual side of the ledger: staff-recorded
// bank transfers, cash payments, and refunds, plus the balance summary shown
// to participants and staff.
type MovementService struct {
	regs      repo.RegistrationRepo
	trips     repo.TripRepo
	movements repo.MovementRepo
	audit     *AuditService
	notifier  notify.Notifier
}

func NewMovementService(regs repo.RegistrationRepo, trips repo.TripRepo, movements repo.MovementRepo, audit *AuditService, notifier notify.Notifier) *MovementService {
	return &MovementService{regs: regs, trips: trips, movements: movements, audit: audit, notifier: notifier}
}

// RecordManual appends a staff-entered payment or refund.
// Gateway movements never come through here; they are credited by the
// payment service with their order id.
func (s *MovementService) RecordManual(ctx context.Context, m domain.MoneyMovement) (domain.MoneyMovement, error) {
	if m.Kind != domain.MovementPayment && m.Kind != domain.MovementRefund {
		return domain.MoneyMovement{}, fmt.Errorf("%w: kind must be payment or refund", domain.ErrValidation)
	}
	if m.AmountCents <= 0 {
		return domain.MoneyMovement{}, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}

	reg, err := s.regs.GetByID(ctx, m.RegistrationID)
	if err != nil {
		return domain.MoneyMovement{}, fmt.Errorf("service.MovementService.RecordManual: %w", err)
	}

	m.ExternalSourceID = ""
	created, err := s.movements.Insert(ctx, m)
	if err != nil {
		return domain.MoneyMovement{}, fmt.Errorf("service.MovementService.RecordManual: %w", err)
	}

	s.audit.Record(ctx, domain.AuditCreate, "money_movement", created.ID.String(), reg.FullName(),
		fmt.Sprintf("%s of %s recorded", created.Kind, created.AmountCents))
	s.notifier.MovementRecorded(ctx, reg, created)
	return created, nil
}

// ListByRegistration returns a registration's ledger, newest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *MovementService) ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]domain.MoneyMovement, error) {
	movements, err := s.movements.ListByRegistration(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("service.MovementService.ListByRegistration: %w", err)
	}
	if movements == nil {
		return []domain.MoneyMovement{}, nil
	}
	return movements, nil
}

// BalanceSummary is the financial position of one registration.
type BalanceSummary struct {
	PriceCents   domain.Cents `json:"price_cents"`
	DepositCents domain.Cents `json:"deposit_cents"`
	PaidCents    domain.Cents `json:"paid_cents"`
	DueCents     domain.Cents `json:"due_cents"`
}

// Summary derives the registration's balance from the trip price and the
// ledger sum. Due may go negative: an overpayment shows as a credit, and it
// is up to the renderer how to present that.
func (s *MovementService) Summary(ctx context.Context, reg domain.Registration) (BalanceSummary, error) {
	trip, err := s.trips.GetByID(ctx, reg.TripID)
	if err != nil {
		return BalanceSummary{}, fmt.Errorf("service.MovementService.Summary: %w", err)
	}

	paid, err := s.movements.SumPaid(ctx, reg.ID)
	if err != nil {
		return BalanceSummary{}, fmt.Errorf("service.MovementService.Summary: %w", err)
	}

	return BalanceSummary{
		PriceCents:   trip.PriceCents,
		DepositCents: trip.DepositCents,
		PaidCents:    paid,
		DueCents:     trip.PriceCents - paid,
	}, nil
}
