package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
	"github.com/zobaczyc-morze/crewreg/internal/metrics"
	"github.com/zobaczyc-morze/crewreg/internal/notify"
	"github.com/zobaczyc-morze/crewreg/internal/payu"
	"github.com/zobaczyc-morze/crewreg/internal/repo"
)

// PaymentService drives the online payment flow: starting gateway orders,
// reconciling webhook notifications, syncing on participant return, and
// expiring intents the gateway went silent on.
//
// The ledger credit is keyed by gateway order id, so every path that observes
// a COMPLETED order may credit safely: the insert is idempotent.
type PaymentService struct {
	trips     repo.TripRepo
	regs      repo.RegistrationRepo
	intents   repo.IntentRepo
	movements repo.MovementRepo
	verifier  *payu.Verifier
	gateway   payu.Gateway
	notifier  notify.Notifier
	audit     *AuditService
	metrics   *metrics.Metrics
	log       *slog.Logger
	siteURL   string
}

func NewPaymentService(
	trips repo.TripRepo,
	regs repo.RegistrationRepo,
	intents repo.IntentRepo,
	movements repo.MovementRepo,
	verifier *payu.Verifier,
	gateway payu.Gateway,
	notifier notify.Notifier,
	audit *AuditService,
	m *metrics.Metrics,
	log *slog.Logger,
	siteURL string,
) *PaymentService {
	return &PaymentService{
		trips:     trips,
		regs:      regs,
		intents:   intents,
		movements: movements,
		verifier:  verifier,
		gateway:   gateway,
		notifier:  notifier,
		audit:     audit,
		metrics:   m,
		log:       log,
		siteURL:   siteURL,
	}
}

// StartResult is what the participant needs to continue at the gateway.
type StartResult struct {
	Intent      domain.PaymentIntent
	RedirectURI string
}

// Start opens a gateway payment for the given purpose.
//
// A deposit can be paid by any registration; the balance only once the
// registration is qualified. The balance amount is whatever remains of the
// trip price after existing ledger entries, so partial manual payments are
// honored.
func (s *PaymentService) Start(ctx context.Context, reg domain.Registration, purpose domain.PaymentPurpose) (StartResult, error) {
	if !purpose.Valid() {
		return StartResult{}, fmt.Errorf("%w: unknown payment purpose %q", domain.ErrValidation, purpose)
	}

	trip, err := s.trips.GetByID(ctx, reg.TripID)
	if err != nil {
		return StartResult{}, fmt.Errorf("service.PaymentService.Start: %w", err)
	}

	var amount domain.Cents
	switch purpose {
	case domain.PurposeDeposit:
		amount = trip.DepositCents
	case domain.PurposeBalance:
		if reg.Status != domain.StatusQualified {
			return StartResult{}, fmt.Errorf("service.PaymentService.Start: balance requires qualification: %w", domain.ErrForbidden)
		}
		paid, err := s.movements.SumPaid(ctx, reg.ID)
		if err != nil {
			return StartResult{}, fmt.Errorf("service.PaymentService.Start: %w", err)
		}
		amount = trip.PriceCents - paid
	}
	if amount <= 0 {
		return StartResult{}, fmt.Errorf("%w: nothing to pay", domain.ErrValidation)
	}

	intent, err := s.intents.Create(ctx, domain.PaymentIntent{
		RegistrationID: reg.ID,
		AmountCents:    amount,
		Purpose:        purpose,
	})
	if err != nil {
		return StartResult{}, fmt.Errorf("service.PaymentService.Start: %w", err)
	}

	start := time.Now()
	order, err := s.gateway.CreateOrder(ctx, payu.OrderRequest{
		AmountCents: amount,
		Description: fmt.Sprintf("%s – %s", trip.Name, purpose),
		PayerEmail:  reg.Email,
		NotifyURL:   s.base() + "/payu/notify",
		ContinueURL: fmt.Sprintf("%s/registrations/%s/payments/%s/return", s.base(), reg.AccessToken, intent.ID),
	})
	s.metrics.ObserveGatewayCall(start)
	if err != nil {
		return StartResult{}, fmt.Errorf("service.PaymentService.Start: gateway: %w", err)
	}

	intent, err = s.intents.SetExternalOrder(ctx, intent.ID, order.OrderID)
	if err != nil {
		return StartResult{}, fmt.Errorf("service.PaymentService.Start: %w", err)
	}

	s.metrics.IncPaymentsStarted()
	s.audit.Record(ctx, domain.AuditCreate, "payment_intent", intent.ID.String(), reg.FullName(),
		fmt.Sprintf("%s payment of %s started", purpose, amount))
	return StartResult{Intent: intent, RedirectURI: order.RedirectURI}, nil
}

// notification is the slice of the PayU webhook payload this service acts on.
type notification struct {
	Order *struct {
		OrderID string `json:"orderId"`
		Status  string `json:"status"`
	} `json:"order"`
}

// WebhookResult is the exact HTTP answer the gateway expects. PayU retries
// anything non-2xx, so only genuinely rejectable requests may say no.
type WebhookResult struct {
	Status int
	Body   string
}

// HandleNotification processes one PayU webhook delivery against the raw
// request body and the OpenPayu-Signature header.
//
// The pipeline is: signature check (403), payload parse (400), order lookup
// (404), terminal short-circuit (200), transition + idempotent ledger credit
// (200). Redeliveries and out-of-order notifications are harmless.
func (s *PaymentService) HandleNotification(ctx context.Context, rawBody []byte, signatureHeader string) WebhookResult {
	if !s.verifier.Verify(rawBody, signatureHeader) {
		s.metrics.IncWebhook("403")
		return WebhookResult{Status: http.StatusForbidden, Body: "Invalid signature"}
	}

	var n notification
	if err := json.Unmarshal(rawBody, &n); err != nil || n.Order == nil || n.Order.OrderID == "" {
		s.metrics.IncWebhook("400")
		return WebhookResult{Status: http.StatusBadRequest, Body: "NO ORDER"}
	}

	intent, err := s.intents.GetByExternalOrderID(ctx, n.Order.OrderID)
	if err != nil {
		s.metrics.IncWebhook("404")
		return WebhookResult{Status: http.StatusNotFound, Body: "UNKNOWN ORDER"}
	}

	if err := s.applyGatewayStatus(ctx, intent, n.Order.Status); err != nil {
		// A DB failure here must surface as 5xx so PayU redelivers.
		s.log.ErrorContext(ctx, "webhook processing failed", "error", err, "order_id", n.Order.OrderID)
		s.metrics.IncWebhook("500")
		return WebhookResult{Status: http.StatusInternalServerError, Body: "ERROR"}
	}

	s.metrics.IncWebhook("200")
	return WebhookResult{Status: http.StatusOK, Body: "OK"}
}

// GetIntent returns one of the registration's own payment attempts.
func (s *PaymentService) GetIntent(ctx context.Context, reg domain.Registration, intentID uuid.UUID) (domain.PaymentIntent, error) {
	intent, err := s.intents.GetByID(ctx, reg.ID, intentID)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("service.PaymentService.GetIntent: %w", err)
	}
	return intent, nil
}

// SyncFromGateway polls the gateway for the current order status and applies
// it. Used on the participant's return from the payment page, where the
// webhook may not have landed yet.
func (s *PaymentService) SyncFromGateway(ctx context.Context, reg domain.Registration, intentID uuid.UUID) (domain.PaymentIntent, error) {
	intent, err := s.intents.GetByID(ctx, reg.ID, intentID)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("service.PaymentService.SyncFromGateway: %w", err)
	}
	if intent.ExternalOrderID == "" {
		return domain.PaymentIntent{}, fmt.Errorf("%w: intent has no gateway order", domain.ErrValidation)
	}
	if intent.Status.Terminal() {
		return intent, nil
	}

	start := time.Now()
	status, err := s.gateway.GetOrderStatus(ctx, intent.ExternalOrderID)
	s.metrics.ObserveGatewayCall(start)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("service.PaymentService.SyncFromGateway: gateway: %w", err)
	}

	if err := s.applyGatewayStatus(ctx, intent, status); err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("service.PaymentService.SyncFromGateway: %w", err)
	}

	intent, err = s.intents.GetByID(ctx, reg.ID, intentID)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("service.PaymentService.SyncFromGateway: %w", err)
	}
	return intent, nil
}

// ExpireStaleResult summarizes one expiry sweep.
type ExpireStaleResult struct {
	Checked int
	Expired int
}

// ExpireStale walks non-terminal intents older than the cutoff, gives each
// one last status poll, and force-fails those the gateway cannot confirm.
// Without this, an abandoned payment page leaves a PENDING intent forever.
// With dryRun the candidates are only counted.
func (s *PaymentService) ExpireStale(ctx context.Context, cutoff time.Time, dryRun bool) (ExpireStaleResult, error) {
	stale, err := s.intents.ListStale(ctx, cutoff)
	if err != nil {
		return ExpireStaleResult{}, fmt.Errorf("service.PaymentService.ExpireStale: %w", err)
	}

	var result ExpireStaleResult
	for _, intent := range stale {
		result.Checked++
		if dryRun {
			continue
		}

		if intent.ExternalOrderID != "" {
			status, err := s.gateway.GetOrderStatus(ctx, intent.ExternalOrderID)
			if err == nil && status == string(domain.IntentCompleted) {
				if err := s.applyGatewayStatus(ctx, intent, status); err != nil {
					return result, fmt.Errorf("service.PaymentService.ExpireStale: %w", err)
				}
				continue
			}
		}

		transitioned, err := s.intents.TransitionTerminal(ctx, intent.ID, domain.IntentFailed)
		if err != nil {
			return result, fmt.Errorf("service.PaymentService.ExpireStale: %w", err)
		}
		if transitioned {
			result.Expired++
			s.metrics.IncPaymentsFailed()
			s.log.InfoContext(ctx, "expired stale payment intent",
				"intent_id", intent.ID,
				"order_id", intent.ExternalOrderID,
			)
		}
	}
	return result, nil
}

// applyGatewayStatus maps a gateway order status onto the intent and, for a
// completed order, credits the ledger exactly once.
func (s *PaymentService) applyGatewayStatus(ctx context.Context, intent domain.PaymentIntent, status string) error {
	switch strings.ToUpper(status) {
	case string(domain.IntentCompleted):
		transitioned, err := s.intents.TransitionTerminal(ctx, intent.ID, domain.IntentCompleted)
		if err != nil {
			return err
		}
		if transitioned {
			s.metrics.IncPaymentsCompleted()
			return s.credit(ctx, intent)
		}
		// Lost the transition race. Credit only if the intent actually ended
		// up COMPLETED: a late COMPLETED for an already FAILED intent must
		// not touch the ledger. The insert is keyed by order id, so at most
		// one movement ever lands even with concurrent deliveries.
		current, err := s.intents.GetByID(ctx, intent.RegistrationID, intent.ID)
		if err != nil {
			return err
		}
		if current.Status != domain.IntentCompleted {
			return nil
		}
		return s.credit(ctx, intent)

	case "FAILED", "CANCELED":
		transitioned, err := s.intents.TransitionTerminal(ctx, intent.ID, domain.IntentFailed)
		if err != nil {
			return err
		}
		if transitioned {
			s.metrics.IncPaymentsFailed()
		}
		return nil

	default:
		// PENDING, WAITING_FOR_CONFIRMATION, and anything new the gateway
		// invents: acknowledge without acting.
		return nil
	}
}

func (s *PaymentService) credit(ctx context.Context, intent domain.PaymentIntent) error {
	created, err := s.movements.InsertFromGateway(ctx, domain.MoneyMovement{
		RegistrationID:   intent.RegistrationID,
		AmountCents:      intent.AmountCents,
		ExternalSourceID: intent.ExternalOrderID,
		Description:      fmt.Sprintf("PayU – %s", intent.Purpose),
	})
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	s.audit.Record(ctx, domain.AuditCreate, "money_movement", intent.RegistrationID.String(), "",
		fmt.Sprintf("gateway payment of %s credited, order %s", intent.AmountCents, intent.ExternalOrderID))

	if reg, err := s.regs.GetByID(ctx, intent.RegistrationID); err == nil {
		s.notifier.PaymentReceived(ctx, reg, intent.AmountCents)
	}
	return nil
}

func (s *PaymentService) base() string {
	return strings.TrimRight(s.siteURL, "/")
}
