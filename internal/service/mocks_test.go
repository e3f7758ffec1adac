package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
	"github.com/zobaczyc-morze/crewreg/internal/notify"
	"github.com/zobaczyc-morze/crewreg/internal/payu"
	"github.com/zobaczyc-morze/crewreg/internal/repo"
	"github.com/zobaczyc-morze/crewreg/internal/service"
)

// Hand-written function-field test doubles for the repo interfaces. Only the
// fields a test sets are callable; an unset field panics, which points
// straight at the unexpected call.

type mockTripRepo struct {
	create         func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID        func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	list           func(ctx context.Context) ([]domain.Trip, error)
	listRecruiting func(ctx context.Context) ([]domain.Trip, error)
	update         func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete         func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) List(ctx context.Context) ([]domain.Trip, error) { return m.list(ctx) }
func (m *mockTripRepo) ListRecruiting(ctx context.Context) ([]domain.Trip, error) {
	return m.listRecruiting(ctx)
}
func (m *mockTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error { return m.delete(ctx, id) }

var _ repo.TripRepo = (*mockTripRepo)(nil)

type mockRegistrationRepo struct {
	create           func(ctx context.Context, reg domain.Registration) (domain.Registration, error)
	getByID          func(ctx context.Context, id uuid.UUID) (domain.Registration, error)
	getByToken       func(ctx context.Context, token uuid.UUID) (domain.Registration, error)
	listByTrip       func(ctx context.Context, tripID uuid.UUID) ([]domain.Registration, error)
	listByWatchGroup func(ctx context.Context, watchGroupID uuid.UUID) ([]domain.Registration, error)
	updateStatus     func(ctx context.Context, id uuid.UUID, status domain.RegistrationStatus) (domain.Registration, error)
	assignWatchGroup func(ctx context.Context, id uuid.UUID, watchGroupID *uuid.UUID) (domain.Registration, error)
}

func (m *mockRegistrationRepo) Create(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	return m.create(ctx, reg)
}
func (m *mockRegistrationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Registration, error) {
	return m.getByID(ctx, id)
}
func (m *mockRegistrationRepo) GetByToken(ctx context.Context, token uuid.UUID) (domain.Registration, error) {
	return m.getByToken(ctx, token)
}
func (m *mockRegistrationRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Registration, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockRegistrationRepo) ListByWatchGroup(ctx context.Context, watchGroupID uuid.UUID) ([]domain.Registration, error) {
	return m.listByWatchGroup(ctx, watchGroupID)
}
func (m *mockRegistrationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RegistrationStatus) (domain.Registration, error) {
	return m.updateStatus(ctx, id, status)
}
func (m *mockRegistrationRepo) AssignWatchGroup(ctx context.Context, id uuid.UUID, watchGroupID *uuid.UUID) (domain.Registration, error) {
	return m.assignWatchGroup(ctx, id, watchGroupID)
}

var _ repo.RegistrationRepo = (*mockRegistrationRepo)(nil)

type mockWatchGroupRepo struct {
	create     func(ctx context.Context, wg domain.WatchGroup) (domain.WatchGroup, error)
	getByID    func(ctx context.Context, tripID, id uuid.UUID) (domain.WatchGroup, error)
	listByTrip func(ctx context.Context, tripID uuid.UUID) ([]domain.WatchGroup, error)
	delete     func(ctx context.Context, tripID, id uuid.UUID) error
}

func (m *mockWatchGroupRepo) Create(ctx context.Context, wg domain.WatchGroup) (domain.WatchGroup, error) {
	return m.create(ctx, wg)
}
func (m *mockWatchGroupRepo) GetByID(ctx context.Context, tripID, id uuid.UUID) (domain.WatchGroup, error) {
	return m.getByID(ctx, tripID, id)
}
func (m *mockWatchGroupRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.WatchGroup, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockWatchGroupRepo) Delete(ctx context.Context, tripID, id uuid.UUID) error {
	return m.delete(ctx, tripID, id)
}

var _ repo.WatchGroupRepo = (*mockWatchGroupRepo)(nil)

type mockMovementRepo struct {
	insert             func(ctx context.Context, m domain.MoneyMovement) (domain.MoneyMovement, error)
	insertFromGateway  func(ctx context.Context, m domain.MoneyMovement) (bool, error)
	listByRegistration func(ctx context.Context, registrationID uuid.UUID) ([]domain.MoneyMovement, error)
	listByTrip         func(ctx context.Context, tripID uuid.UUID) ([]domain.MoneyMovement, error)
	sumPaid            func(ctx context.Context, registrationID uuid.UUID) (domain.Cents, error)
	sumPaidByTrip      func(ctx context.Context, tripID uuid.UUID) (map[uuid.UUID]domain.Cents, error)
}

func (m *mockMovementRepo) Insert(ctx context.Context, mv domain.MoneyMovement) (domain.MoneyMovement, error) {
	return m.insert(ctx, mv)
}
func (m *mockMovementRepo) InsertFromGateway(ctx context.Context, mv domain.MoneyMovement) (bool, error) {
	return m.insertFromGateway(ctx, mv)
}
func (m *mockMovementRepo) ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]domain.MoneyMovement, error) {
	return m.listByRegistration(ctx, registrationID)
}
func (m *mockMovementRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.MoneyMovement, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockMovementRepo) SumPaid(ctx context.Context, registrationID uuid.UUID) (domain.Cents, error) {
	return m.sumPaid(ctx, registrationID)
}
func (m *mockMovementRepo) SumPaidByTrip(ctx context.Context, tripID uuid.UUID) (map[uuid.UUID]domain.Cents, error) {
	return m.sumPaidByTrip(ctx, tripID)
}

var _ repo.MovementRepo = (*mockMovementRepo)(nil)

type mockIntentRepo struct {
	create               func(ctx context.Context, intent domain.PaymentIntent) (domain.PaymentIntent, error)
	setExternalOrder     func(ctx context.Context, id uuid.UUID, externalOrderID string) (domain.PaymentIntent, error)
	getByID              func(ctx context.Context, registrationID, id uuid.UUID) (domain.PaymentIntent, error)
	getByExternalOrderID func(ctx context.Context, externalOrderID string) (domain.PaymentIntent, error)
	transitionTerminal   func(ctx context.Context, id uuid.UUID, status domain.IntentStatus) (bool, error)
	listStale            func(ctx context.Context, cutoff time.Time) ([]domain.PaymentIntent, error)
}

func (m *mockIntentRepo) Create(ctx context.Context, intent domain.PaymentIntent) (domain.PaymentIntent, error) {
	return m.create(ctx, intent)
}
func (m *mockIntentRepo) SetExternalOrder(ctx context.Context, id uuid.UUID, externalOrderID string) (domain.PaymentIntent, error) {
	return m.setExternalOrder(ctx, id, externalOrderID)
}
func (m *mockIntentRepo) GetByID(ctx context.Context, registrationID, id uuid.UUID) (domain.PaymentIntent, error) {
	return m.getByID(ctx, registrationID, id)
}
func (m *mockIntentRepo) GetByExternalOrderID(ctx context.Context, externalOrderID string) (domain.PaymentIntent, error) {
	return m.getByExternalOrderID(ctx, externalOrderID)
}
func (m *mockIntentRepo) TransitionTerminal(ctx context.Context, id uuid.UUID, status domain.IntentStatus) (bool, error) {
	return m.transitionTerminal(ctx, id, status)
}
func (m *mockIntentRepo) ListStale(ctx context.Context, cutoff time.Time) ([]domain.PaymentIntent, error) {
	return m.listStale(ctx, cutoff)
}

var _ repo.IntentRepo = (*mockIntentRepo)(nil)

type mockSensitiveRepo struct {
	upsert              func(ctx context.Context, rec domain.SensitiveRecord) (domain.SensitiveRecord, error)
	get                 func(ctx context.Context, registrationID uuid.UUID) (domain.SensitiveRecord, error)
	listByTrip          func(ctx context.Context, tripID uuid.UUID) ([]domain.SensitiveRecord, error)
	listPurgeCandidates func(ctx context.Context, cutoff time.Time) ([]domain.PurgeCandidate, error)
	delete              func(ctx context.Context, registrationID uuid.UUID) error
}

func (m *mockSensitiveRepo) Upsert(ctx context.Context, rec domain.SensitiveRecord) (domain.SensitiveRecord, error) {
	return m.upsert(ctx, rec)
}
func (m *mockSensitiveRepo) Get(ctx context.Context, registrationID uuid.UUID) (domain.SensitiveRecord, error) {
	return m.get(ctx, registrationID)
}
func (m *mockSensitiveRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.SensitiveRecord, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockSensitiveRepo) ListPurgeCandidates(ctx context.Context, cutoff time.Time) ([]domain.PurgeCandidate, error) {
	return m.listPurgeCandidates(ctx, cutoff)
}
func (m *mockSensitiveRepo) Delete(ctx context.Context, registrationID uuid.UUID) error {
	return m.delete(ctx, registrationID)
}

var _ repo.SensitiveRepo = (*mockSensitiveRepo)(nil)

// mockAuditRepo defaults to accepting appends silently, so tests that don't
// care about the audit trail need no setup.
type mockAuditRepo struct {
	append         func(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error)
	list           func(ctx context.Context, p domain.PaginationParams) ([]domain.AuditEntry, error)
	listByTarget   func(ctx context.Context, targetModel, targetID string, p domain.PaginationParams) ([]domain.AuditEntry, error)
	purgeOlderThan func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockAuditRepo) Append(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error) {
	if m.append == nil {
		return entry, nil
	}
	return m.append(ctx, entry)
}
func (m *mockAuditRepo) List(ctx context.Context, p domain.PaginationParams) ([]domain.AuditEntry, error) {
	return m.list(ctx, p)
}
func (m *mockAuditRepo) ListByTarget(ctx context.Context, targetModel, targetID string, p domain.PaginationParams) ([]domain.AuditEntry, error) {
	return m.listByTarget(ctx, targetModel, targetID, p)
}
func (m *mockAuditRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.purgeOlderThan(ctx, cutoff)
}

var _ repo.AuditRepo = (*mockAuditRepo)(nil)

type mockAnnouncementRepo struct {
	create     func(ctx context.Context, a domain.Announcement) (domain.Announcement, error)
	listByTrip func(ctx context.Context, tripID uuid.UUID) ([]domain.Announcement, error)
	delete     func(ctx context.Context, tripID, id uuid.UUID) error
}

func (m *mockAnnouncementRepo) Create(ctx context.Context, a domain.Announcement) (domain.Announcement, error) {
	return m.create(ctx, a)
}
func (m *mockAnnouncementRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Announcement, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockAnnouncementRepo) Delete(ctx context.Context, tripID, id uuid.UUID) error {
	return m.delete(ctx, tripID, id)
}

var _ repo.AnnouncementRepo = (*mockAnnouncementRepo)(nil)

// mockGateway is a test double for payu.Gateway.
type mockGateway struct {
	createOrder    func(ctx context.Context, order payu.OrderRequest) (payu.OrderResult, error)
	getOrderStatus func(ctx context.Context, externalOrderID string) (string, error)
}

func (m *mockGateway) CreateOrder(ctx context.Context, order payu.OrderRequest) (payu.OrderResult, error) {
	return m.createOrder(ctx, order)
}
func (m *mockGateway) GetOrderStatus(ctx context.Context, externalOrderID string) (string, error) {
	return m.getOrderStatus(ctx, externalOrderID)
}

var _ payu.Gateway = (*mockGateway)(nil)

// recordingNotifier counts notifications by kind.
type recordingNotifier struct {
	received      int
	statusChanged int
	payments      int
	movements     int
	watchAssigned int
	announcements int
}

func (n *recordingNotifier) RegistrationReceived(context.Context, domain.Registration, string) {
	n.received++
}
func (n *recordingNotifier) StatusChanged(context.Context, domain.Registration) { n.statusChanged++ }
func (n *recordingNotifier) PaymentReceived(context.Context, domain.Registration, domain.Cents) {
	n.payments++
}
func (n *recordingNotifier) MovementRecorded(context.Context, domain.Registration, domain.MoneyMovement) {
	n.movements++
}
func (n *recordingNotifier) WatchAssigned(context.Context, domain.Registration, domain.WatchGroup) {
	n.watchAssigned++
}
func (n *recordingNotifier) Announcement(context.Context, domain.Registration, domain.Announcement) {
	n.announcements++
}

var _ notify.Notifier = (*recordingNotifier)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newAuditService returns an AuditService that accepts everything.
func newAuditService(t *testing.T) *service.AuditService {
	t.Helper()
	return service.NewAuditService(&mockAuditRepo{}, discardLogger())
}
