package appointment

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguacare/admin-api/internal/email"
	"github.com/linguacare/admin-api/internal/model"
	"github.com/linguacare/admin-api/internal/service/audit"
	"github.com/linguacare/admin-api/internal/service/invoice"
	"github.com/linguacare/admin-api/internal/service/notification"
	apperrors "github.com/linguacare/admin-api/pkg/errors"
	"github.com/linguacare/admin-api/pkg/logger"
	"github.com/linguacare/admin-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test_appointment", "svc")

func testLogger() *logger.Logger {
	return &logger.Logger{ZL: zerolog.Nop()}
}

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
	statusErr    error
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (f *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	apt.ID = uuid.New()
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = time.Now()
	f.appointments[apt.ID] = apt
	return nil
}

func (f *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := f.appointments[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *apt
	return &copied, nil
}

func (f *fakeAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	f.appointments[apt.ID] = apt
	return nil
}

func (f *fakeAppointmentRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	delete(f.appointments, id)
	return nil
}

func (f *fakeAppointmentRepo) List(context.Context, *model.AppointmentFilters) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range f.appointments {
		out = append(out, apt)
	}
	return out, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus, interpreterID *uuid.UUID, cancelReason *string) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	apt, ok := f.appointments[id]
	if !ok {
		return errors.New("not found")
	}
	apt.Status = status
	if interpreterID != nil {
		apt.InterpreterID = interpreterID
	}
	if cancelReason != nil {
		apt.CancelReason = cancelReason
	}
	apt.UpdatedAt = time.Now()
	return nil
}

func (f *fakeAppointmentRepo) UpdateOffer(_ context.Context, id uuid.UUID, radius float64, expandedAt time.Time) error {
	apt, ok := f.appointments[id]
	if !ok {
		return errors.New("not found")
	}
	apt.OfferRadius = radius
	apt.OfferExpandedAt = &expandedAt
	return nil
}

func (f *fakeAppointmentRepo) ListAwaitingInterpreter(context.Context, time.Time) ([]*model.Appointment, error) {
	return nil, nil
}

type fakeOfferRepo struct {
	notified map[uuid.UUID][]uuid.UUID
}

func newFakeOfferRepo() *fakeOfferRepo {
	return &fakeOfferRepo{notified: make(map[uuid.UUID][]uuid.UUID)}
}

func (f *fakeOfferRepo) ListNotifiedInterpreters(_ context.Context, appointmentID uuid.UUID) ([]uuid.UUID, error) {
	return f.notified[appointmentID], nil
}

func (f *fakeOfferRepo) RecordNotified(_ context.Context, appointmentID uuid.UUID, ids []uuid.UUID) error {
	f.notified[appointmentID] = append(f.notified[appointmentID], ids...)
	return nil
}

type fakeNotificationRepo struct {
	rows []*model.Notification
}

func (f *fakeNotificationRepo) CreateBatch(_ context.Context, notifications []*model.Notification) error {
	f.rows = append(f.rows, notifications...)
	return nil
}
func (f *fakeNotificationRepo) ListForRecipient(context.Context, model.Recipient, bool, int) ([]*model.Notification, error) {
	return nil, nil
}
func (f *fakeNotificationRepo) CountUnread(context.Context, model.Recipient) (int, error) {
	return 0, nil
}
func (f *fakeNotificationRepo) MarkRead(context.Context, []uuid.UUID, model.Recipient) (int64, error) {
	return 0, nil
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, evt *model.OutboxEvent) error {
	f.events = append(f.events, evt)
	return nil
}
func (f *fakeOutboxRepo) GetPendingEventsWithLock(context.Context, int) ([]*model.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutboxRepo) BeginTx(context.Context) (*sql.Tx, error) { return nil, nil }
func (f *fakeOutboxRepo) UpdateStatusTx(context.Context, *sql.Tx, uuid.UUID, model.OutboxStatus, *string, *time.Time) error {
	return nil
}
func (f *fakeOutboxRepo) MoveToDeadLetter(context.Context, *sql.Tx, *model.OutboxEvent) error {
	return nil
}
func (f *fakeOutboxRepo) DeleteProcessedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type fakeInvoiceRepo struct {
	invoices map[uuid.UUID]*model.Invoice
	payouts  []*model.Payout
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[uuid.UUID]*model.Invoice)}
}

func (f *fakeInvoiceRepo) Create(_ context.Context, inv *model.Invoice) error {
	inv.ID = uuid.New()
	f.invoices[inv.AppointmentID] = inv
	return nil
}
func (f *fakeInvoiceRepo) Get(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	for _, inv := range f.invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, errors.New("not found")
}
func (f *fakeInvoiceRepo) GetByAppointment(_ context.Context, appointmentID uuid.UUID) (*model.Invoice, error) {
	inv, ok := f.invoices[appointmentID]
	if !ok {
		return nil, errors.New("not found")
	}
	return inv, nil
}
func (f *fakeInvoiceRepo) ExistsForAppointment(_ context.Context, appointmentID uuid.UUID) (bool, error) {
	_, ok := f.invoices[appointmentID]
	return ok, nil
}
func (f *fakeInvoiceRepo) List(context.Context) ([]*model.Invoice, error) { return nil, nil }
func (f *fakeInvoiceRepo) CreatePayout(_ context.Context, payout *model.Payout) error {
	f.payouts = append(f.payouts, payout)
	return nil
}
func (f *fakeInvoiceRepo) ListPayouts(context.Context, uuid.UUID) ([]*model.Payout, error) {
	return nil, nil
}

type fakeAuditRepo struct {
	entries []*model.AuditLog
}

func (f *fakeAuditRepo) Create(_ context.Context, entry *model.AuditLog) error {
	f.entries = append(f.entries, entry)
	return nil
}
func (f *fakeAuditRepo) List(context.Context, string, int) ([]*model.AuditLog, error) {
	return nil, nil
}

type fixture struct {
	svc          *Service
	appointments *fakeAppointmentRepo
	offers       *fakeOfferRepo
	outbox       *fakeOutboxRepo
	invoices     *fakeInvoiceRepo
	auditLog     *fakeAuditRepo
}

func newFixture() *fixture {
	appointments := newFakeAppointmentRepo()
	offers := newFakeOfferRepo()
	outbox := &fakeOutboxRepo{}
	invoices := newFakeInvoiceRepo()
	auditRepo := &fakeAuditRepo{}

	log := testLogger()
	fanout := notification.NewService(&fakeNotificationRepo{}, outbox, email.Noop{}, testMetrics, log)
	invoiceSvc := invoice.NewService(invoices, fanout, log)
	auditSvc := audit.NewService(auditRepo, log)

	return &fixture{
		svc:          NewService(appointments, offers, fanout, invoiceSvc, auditSvc, log),
		appointments: appointments,
		offers:       offers,
		outbox:       outbox,
		invoices:     invoices,
		auditLog:     auditRepo,
	}
}

func (f *fixture) seed(status model.AppointmentStatus) *model.Appointment {
	apt := &model.Appointment{
		FacilityID:    uuid.New(),
		PatientID:     uuid.New(),
		CoordinatorID: uuid.New(),
		Language:      "Spanish",
		StartTime:     time.Now().Add(24 * time.Hour),
		EndTime:       time.Now().Add(25 * time.Hour),
		Status:        status,
	}
	apt.ID = uuid.New()
	f.appointments.appointments[apt.ID] = apt
	return apt
}

func TestCanTransitionTable(t *testing.T) {
	cases := []struct {
		from, to model.AppointmentStatus
		ok       bool
	}{
		{model.AppointmentStatusPendingAuthorization, model.AppointmentStatusPendingConfirmation, true},
		{model.AppointmentStatusPendingAuthorization, model.AppointmentStatusCancelled, true},
		{model.AppointmentStatusPendingAuthorization, model.AppointmentStatusConfirmed, false},
		{model.AppointmentStatusPendingAuthorization, model.AppointmentStatusClosed, false},
		{model.AppointmentStatusPendingConfirmation, model.AppointmentStatusInterpreterRequested, true},
		{model.AppointmentStatusPendingConfirmation, model.AppointmentStatusConfirmed, true},
		{model.AppointmentStatusPendingConfirmation, model.AppointmentStatusCancelled, true},
		{model.AppointmentStatusPendingConfirmation, model.AppointmentStatusClosed, false},
		{model.AppointmentStatusInterpreterRequested, model.AppointmentStatusConfirmed, true},
		{model.AppointmentStatusInterpreterRequested, model.AppointmentStatusCancelled, true},
		{model.AppointmentStatusInterpreterRequested, model.AppointmentStatusPendingConfirmation, false},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusClosed, true},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusCancelled, true},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusPendingConfirmation, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatusesRejectEverything(t *testing.T) {
	for _, terminal := range []model.AppointmentStatus{model.AppointmentStatusCancelled, model.AppointmentStatusClosed} {
		for _, to := range model.AppointmentStatuses {
			assert.False(t, CanTransition(terminal, to), "%s -> %s must be rejected", terminal, to)
		}
	}
}

func TestClosedOnlyFromConfirmed(t *testing.T) {
	for _, from := range model.AppointmentStatuses {
		want := from == model.AppointmentStatusConfirmed
		assert.Equal(t, want, CanTransition(from, model.AppointmentStatusClosed), "from %s", from)
	}
}

func TestTransitionPersistsAndFansOut(t *testing.T) {
	f := newFixture()
	apt := f.seed(model.AppointmentStatusInterpreterRequested)

	change, err := f.svc.Transition(context.Background(), apt.ID, model.AppointmentStatusConfirmed, nil, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusInterpreterRequested, change.Previous)
	assert.Equal(t, model.AppointmentStatusConfirmed, change.New)

	stored := f.appointments.appointments[apt.ID]
	assert.Equal(t, model.AppointmentStatusConfirmed, stored.Status)

	// Admin broadcast and coordinator channel.
	assert.Len(t, f.outbox.events, 2)
	require.Len(t, f.auditLog.entries, 1)
	assert.Equal(t, "appointment.status_change", f.auditLog.entries[0].Action)
}

func TestTransitionRejectsInvalidMove(t *testing.T) {
	f := newFixture()
	apt := f.seed(model.AppointmentStatusPendingAuthorization)

	_, err := f.svc.Transition(context.Background(), apt.ID, model.AppointmentStatusClosed, nil, uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTransition))
	assert.Equal(t, model.AppointmentStatusPendingAuthorization, f.appointments.appointments[apt.ID].Status)
	assert.Empty(t, f.outbox.events)
}

func TestTransitionPersistenceFailureLeavesLedgerUntouched(t *testing.T) {
	f := newFixture()
	apt := f.seed(model.AppointmentStatusConfirmed)
	f.appointments.statusErr = errors.New("db gone")

	_, err := f.svc.Transition(context.Background(), apt.ID, model.AppointmentStatusClosed, nil, uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrPersistenceFailure))
	assert.Empty(t, f.outbox.events)
}

func TestTransitionToClosedGeneratesInvoice(t *testing.T) {
	f := newFixture()
	apt := f.seed(model.AppointmentStatusConfirmed)
	interpreterID := uuid.New()
	apt.InterpreterID = &interpreterID

	_, err := f.svc.Transition(context.Background(), apt.ID, model.AppointmentStatusClosed, nil, uuid.New())
	require.NoError(t, err)

	inv, ok := f.invoices.invoices[apt.ID]
	require.True(t, ok, "closing must generate an invoice")
	assert.Equal(t, model.InvoiceStatusIssued, inv.Status)
	assert.Positive(t, inv.AmountCents)
	require.Len(t, f.invoices.payouts, 1)
	assert.Equal(t, interpreterID, f.invoices.payouts[0].InterpreterID)
}

func TestTransitionCancelKeepsReason(t *testing.T) {
	f := newFixture()
	apt := f.seed(model.AppointmentStatusPendingConfirmation)
	reason := "patient request"

	_, err := f.svc.Transition(context.Background(), apt.ID, model.AppointmentStatusCancelled, &reason, uuid.New())
	require.NoError(t, err)

	stored := f.appointments.appointments[apt.ID]
	require.NotNil(t, stored.CancelReason)
	assert.Equal(t, reason, *stored.CancelReason)
}

func TestTransitionUnknownAppointment(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Transition(context.Background(), uuid.New(), model.AppointmentStatusCancelled, nil, uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestAcceptOfferConfirmsAndAssigns(t *testing.T) {
	f := newFixture()
	apt := f.seed(model.AppointmentStatusInterpreterRequested)
	interpreterID := uuid.New()
	f.offers.notified[apt.ID] = []uuid.UUID{interpreterID}

	change, err := f.svc.AcceptOffer(context.Background(), apt.ID, interpreterID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, change.New)

	stored := f.appointments.appointments[apt.ID]
	require.NotNil(t, stored.InterpreterID)
	assert.Equal(t, interpreterID, *stored.InterpreterID)
}

func TestAcceptOfferRejectsUninvitedInterpreter(t *testing.T) {
	f := newFixture()
	apt := f.seed(model.AppointmentStatusInterpreterRequested)

	_, err := f.svc.AcceptOffer(context.Background(), apt.ID, uuid.New(), uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestAcceptOfferRejectsTerminalStatus(t *testing.T) {
	f := newFixture()
	apt := f.seed(model.AppointmentStatusCancelled)
	interpreterID := uuid.New()
	f.offers.notified[apt.ID] = []uuid.UUID{interpreterID}

	_, err := f.svc.AcceptOffer(context.Background(), apt.ID, interpreterID, uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTransition))
}

func TestDeleteOnlyCancelledWithoutInvoice(t *testing.T) {
	f := newFixture()

	active := f.seed(model.AppointmentStatusConfirmed)
	err := f.svc.Delete(context.Background(), active.ID, uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))

	cancelled := f.seed(model.AppointmentStatusCancelled)
	f.invoices.invoices[cancelled.ID] = &model.Invoice{AppointmentID: cancelled.ID}
	err = f.svc.Delete(context.Background(), cancelled.ID, uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))

	deletable := f.seed(model.AppointmentStatusCancelled)
	require.NoError(t, f.svc.Delete(context.Background(), deletable.ID, uuid.New()))
	_, ok := f.appointments.appointments[deletable.ID]
	assert.False(t, ok)
}

func TestStale(t *testing.T) {
	now := time.Now()
	apt := &model.Appointment{Status: model.AppointmentStatusPendingConfirmation}
	apt.UpdatedAt = now.Add(-time.Hour)

	assert.True(t, Stale(apt, 30*time.Minute, now))

	recent := now.Add(-time.Minute)
	apt.OfferExpandedAt = &recent
	assert.False(t, Stale(apt, 30*time.Minute, now))

	apt.Status = model.AppointmentStatusConfirmed
	assert.False(t, Stale(apt, 30*time.Minute, now))
}
