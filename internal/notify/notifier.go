// Package notify delivers participant-facing messages: registration
// confirmations with the access link, qualification decisions, payment
// receipts, and trip announcements.
package notify

import (
	"context"
	"log/slog"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
)

// Notifier is the outbound message boundary. Services call it after state
// changes; delivery failures are logged, never propagated, so a broken mail
// relay cannot fail a registration or a payment.
type Notifier interface {
	RegistrationReceived(ctx context.Context, reg domain.Registration, manageURL string)
	StatusChanged(ctx context.Context, reg domain.Registration)
	PaymentReceived(ctx context.Context, reg domain.Registration, amount domain.Cents)
	MovementRecorded(ctx context.Context, reg domain.Registration, m domain.MoneyMovement)
	WatchAssigned(ctx context.Context, reg domain.Registration, group domain.WatchGroup)
	Announcement(ctx context.Context, reg domain.Registration, a domain.Announcement)
}

// LogNotifier writes notifications as structured log lines. It stands in for
// a real mail integration and keeps the full message content observable.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) RegistrationReceived(ctx context.Context, reg domain.Registration, manageURL string) {
	n.log.InfoContext(ctx, "notify: registration received",
		"email", reg.Email,
		"name", reg.FullName(),
		"manage_url", manageURL,
	)
}

func (n *LogNotifier) StatusChanged(ctx context.Context, reg domain.Registration) {
	n.log.InfoContext(ctx, "notify: status changed",
		"email", reg.Email,
		"name", reg.FullName(),
		"status", string(reg.Status),
	)
}

func (n *LogNotifier) PaymentReceived(ctx context.Context, reg domain.Registration, amount domain.Cents) {
	n.log.InfoContext(ctx, "notify: payment received",
		"email", reg.Email,
		"name", reg.FullName(),
		"amount", amount.String(),
	)
}

func (n *LogNotifier) MovementRecorded(ctx context.Context, reg domain.Registration, m domain.MoneyMovement) {
	n.log.InfoContext(ctx, "notify: movement recorded",
		"email", reg.Email,
		"name", reg.FullName(),
		"kind", string(m.Kind),
		"amount", m.AmountCents.String(),
	)
}

func (n *LogNotifier) WatchAssigned(ctx context.Context, reg domain.Registration, group domain.WatchGroup) {
	n.log.InfoContext(ctx, "notify: watch assigned",
		"email", reg.Email,
		"name", reg.FullName(),
		"watch_group", group.Name,
	)
}

func (n *LogNotifier) Announcement(ctx context.Context, reg domain.Registration, a domain.Announcement) {
	n.log.InfoContext(ctx, "notify: announcement",
		"email", reg.Email,
		"title", a.Title,
	)
}
