package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/zobaczyc-morze/crewreg/internal/auth"
	"github.com/zobaczyc-morze/crewreg/internal/domain"
	"github.com/zobaczyc-morze/crewreg/internal/handler"
	"github.com/zobaczyc-morze/crewreg/internal/report"
	"github.com/zobaczyc-morze/crewreg/internal/service"
)

// Function-field test doubles for the servicer interfaces. Set only the
// fields your test needs; an unset field panics and points at the
// unexpected call.

type mockTripServicer struct {
	create         func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID        func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	list           func(ctx context.Context) ([]domain.Trip, error)
	listRecruiting func(ctx context.Context) ([]domain.Trip, error)
	update         func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete         func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripServicer) Create(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, t)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) List(ctx context.Context) ([]domain.Trip, error) { return m.list(ctx) }
func (m *mockTripServicer) ListRecruiting(ctx context.Context) ([]domain.Trip, error) {
	return m.listRecruiting(ctx)
}
func (m *mockTripServicer) Update(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.update(ctx, t)
}
func (m *mockTripServicer) Delete(ctx context.Context, id uuid.UUID) error { return m.delete(ctx, id) }

var _ handler.TripServicer = (*mockTripServicer)(nil)

type mockRegistrationServicer struct {
	register         func(ctx context.Context, reg domain.Registration) (domain.Registration, error)
	getByToken       func(ctx context.Context, token uuid.UUID) (domain.Registration, error)
	getByID          func(ctx context.Context, id uuid.UUID) (domain.Registration, error)
	listByTrip       func(ctx context.Context, tripID uuid.UUID) ([]domain.Registration, error)
	updateStatus     func(ctx context.Context, id uuid.UUID, status domain.RegistrationStatus) (domain.Registration, error)
	assignWatchGroup func(ctx context.Context, id uuid.UUID, groupID *uuid.UUID) (domain.Registration, error)
}

func (m *mockRegistrationServicer) Register(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	return m.register(ctx, reg)
}
func (m *mockRegistrationServicer) GetByToken(ctx context.Context, token uuid.UUID) (domain.Registration, error) {
	return m.getByToken(ctx, token)
}
func (m *mockRegistrationServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Registration, error) {
	return m.getByID(ctx, id)
}
func (m *mockRegistrationServicer) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Registration, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockRegistrationServicer) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RegistrationStatus) (domain.Registration, error) {
	return m.updateStatus(ctx, id, status)
}
func (m *mockRegistrationServicer) AssignWatchGroup(ctx context.Context, id uuid.UUID, groupID *uuid.UUID) (domain.Registration, error) {
	return m.assignWatchGroup(ctx, id, groupID)
}

var _ handler.RegistrationServicer = (*mockRegistrationServicer)(nil)

type mockWatchGroupServicer struct {
	create     func(ctx context.Context, wg domain.WatchGroup) (domain.WatchGroup, error)
	listByTrip func(ctx context.Context, tripID uuid.UUID) ([]domain.WatchGroup, error)
	members    func(ctx context.Context, tripID, groupID uuid.UUID) ([]domain.Registration, error)
	delete     func(ctx context.Context, tripID, groupID uuid.UUID) error
}

func (m *mockWatchGroupServicer) Create(ctx context.Context, wg domain.WatchGroup) (domain.WatchGroup, error) {
	return m.create(ctx, wg)
}
func (m *mockWatchGroupServicer) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.WatchGroup, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockWatchGroupServicer) Members(ctx context.Context, tripID, groupID uuid.UUID) ([]domain.Registration, error) {
	return m.members(ctx, tripID, groupID)
}
func (m *mockWatchGroupServicer) Delete(ctx context.Context, tripID, groupID uuid.UUID) error {
	return m.delete(ctx, tripID, groupID)
}

var _ handler.WatchGroupServicer = (*mockWatchGroupServicer)(nil)

type mockPaymentServicer struct {
	start              func(ctx context.Context, reg domain.Registration, purpose domain.PaymentPurpose) (service.StartResult, error)
	handleNotification func(ctx context.Context, rawBody []byte, signatureHeader string) service.WebhookResult
	getIntent          func(ctx context.Context, reg domain.Registration, intentID uuid.UUID) (domain.PaymentIntent, error)
	syncFromGateway    func(ctx context.Context, reg domain.Registration, intentID uuid.UUID) (domain.PaymentIntent, error)
}

func (m *mockPaymentServicer) Start(ctx context.Context, reg domain.Registration, purpose domain.PaymentPurpose) (service.StartResult, error) {
	return m.start(ctx, reg, purpose)
}
func (m *mockPaymentServicer) HandleNotification(ctx context.Context, rawBody []byte, signatureHeader string) service.WebhookResult {
	return m.handleNotification(ctx, rawBody, signatureHeader)
}
func (m *mockPaymentServicer) GetIntent(ctx context.Context, reg domain.Registration, intentID uuid.UUID) (domain.PaymentIntent, error) {
	return m.getIntent(ctx, reg, intentID)
}
func (m *mockPaymentServicer) SyncFromGateway(ctx context.Context, reg domain.Registration, intentID uuid.UUID) (domain.PaymentIntent, error) {
	return m.syncFromGateway(ctx, reg, intentID)
}

var _ handler.PaymentServicer = (*mockPaymentServicer)(nil)

type mockMovementServicer struct {
	recordManual       func(ctx context.Context, mv domain.MoneyMovement) (domain.MoneyMovement, error)
	listByRegistration func(ctx context.Context, registrationID uuid.UUID) ([]domain.MoneyMovement, error)
	summary            func(ctx context.Context, reg domain.Registration) (service.BalanceSummary, error)
}

func (m *mockMovementServicer) RecordManual(ctx context.Context, mv domain.MoneyMovement) (domain.MoneyMovement, error) {
	return m.recordManual(ctx, mv)
}
func (m *mockMovementServicer) ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]domain.MoneyMovement, error) {
	return m.listByRegistration(ctx, registrationID)
}
func (m *mockMovementServicer) Summary(ctx context.Context, reg domain.Registration) (service.BalanceSummary, error) {
	return m.summary(ctx, reg)
}

var _ handler.MovementServicer = (*mockMovementServicer)(nil)

type mockSensitiveServicer struct {
	submit    func(ctx context.Context, reg domain.Registration, rec domain.SensitiveRecord) (domain.MaskedSensitiveRecord, error)
	getMasked func(ctx context.Context, reg domain.Registration) (domain.MaskedSensitiveRecord, error)
}

func (m *mockSensitiveServicer) Submit(ctx context.Context, reg domain.Registration, rec domain.SensitiveRecord) (domain.MaskedSensitiveRecord, error) {
	return m.submit(ctx, reg, rec)
}
func (m *mockSensitiveServicer) GetMasked(ctx context.Context, reg domain.Registration) (domain.MaskedSensitiveRecord, error) {
	return m.getMasked(ctx, reg)
}

var _ handler.SensitiveServicer = (*mockSensitiveServicer)(nil)

type mockReportServicer struct {
	buildTripReport func(ctx context.Context, tripID uuid.UUID, includeSensitive bool) (report.TripReport, error)
}

func (m *mockReportServicer) BuildTripReport(ctx context.Context, tripID uuid.UUID, includeSensitive bool) (report.TripReport, error) {
	return m.buildTripReport(ctx, tripID, includeSensitive)
}

var _ handler.ReportServicer = (*mockReportServicer)(nil)

type mockAuditServicer struct {
	list         func(ctx context.Context, p domain.PaginationParams) ([]domain.AuditEntry, error)
	listByTarget func(ctx context.Context, targetModel, targetID string, p domain.PaginationParams) ([]domain.AuditEntry, error)
	purge        func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockAuditServicer) List(ctx context.Context, p domain.PaginationParams) ([]domain.AuditEntry, error) {
	return m.list(ctx, p)
}
func (m *mockAuditServicer) ListByTarget(ctx context.Context, targetModel, targetID string, p domain.PaginationParams) ([]domain.AuditEntry, error) {
	return m.listByTarget(ctx, targetModel, targetID, p)
}
func (m *mockAuditServicer) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.purge(ctx, cutoff)
}

var _ handler.AuditServicer = (*mockAuditServicer)(nil)

type mockAnnouncementServicer struct {
	create     func(ctx context.Context, a domain.Announcement) (domain.Announcement, error)
	listByTrip func(ctx context.Context, tripID uuid.UUID) ([]domain.Announcement, error)
	delete     func(ctx context.Context, tripID, id uuid.UUID) error
}

func (m *mockAnnouncementServicer) Create(ctx context.Context, a domain.Announcement) (domain.Announcement, error) {
	return m.create(ctx, a)
}
func (m *mockAnnouncementServicer) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Announcement, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockAnnouncementServicer) Delete(ctx context.Context, tripID, id uuid.UUID) error {
	return m.delete(ctx, tripID, id)
}

var _ handler.AnnouncementServicer = (*mockAnnouncementServicer)(nil)

// ---- wiring ----------------------------------------------------------------

// serverDeps bundles the mocks for newTestHandler. Unset fields stay nil;
// a test that routes into a nil servicer fails loudly, which is what we want.
type serverDeps struct {
	trips         *mockTripServicer
	registrations *mockRegistrationServicer
	groups        *mockWatchGroupServicer
	payments      *mockPaymentServicer
	movements     *mockMovementServicer
	sensitive     *mockSensitiveServicer
	reports       *mockReportServicer
	audits        *mockAuditServicer
	announcements *mockAnnouncementServicer
}

const testSigningKey = "handler-test-signing-key"

var testTokens = auth.NewTokenService([]byte(testSigningKey), "crewreg-test")

// newTestHandler wires a Server with the given mocks into a chi router, the
// same way main.go does in production.
func newTestHandler(d serverDeps) http.Handler {
	srv := handler.NewServer(
		d.trips,
		d.registrations,
		d.groups,
		d.payments,
		d.movements,
		d.sensitive,
		d.reports,
		d.audits,
		d.announcements,
		testTokens,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	r := chi.NewRouter()
	srv.Register(r)
	return r
}

// bearerToken issues a valid token for the given role.
func bearerToken(t *testing.T, role auth.Role) string {
	t.Helper()
	token, err := testTokens.Issue(uuid.New(), role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}
