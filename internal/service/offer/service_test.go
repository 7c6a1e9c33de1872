package offer

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguacare/admin-api/internal/email"
	"github.com/linguacare/admin-api/internal/model"
	"github.com/linguacare/admin-api/internal/service/notification"
	apperrors "github.com/linguacare/admin-api/pkg/errors"
	"github.com/linguacare/admin-api/pkg/event"
	"github.com/linguacare/admin-api/pkg/logger"
	"github.com/linguacare/admin-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test_offer", "svc")

func testLogger() *logger.Logger {
	return &logger.Logger{ZL: zerolog.Nop()}
}

// Facility sits at a fixed point; interpreters are placed by shifting
// latitude (one degree of latitude is roughly 69 miles).
var facilityPoint = struct{ lat, lng float64 }{37.7749, -122.4194}

func interpreterAt(milesNorth float64, languages ...string) *model.Interpreter {
	interp := &model.Interpreter{
		Email:     "interp@example.com",
		Languages: pq.StringArray(languages),
		Latitude:  facilityPoint.lat + milesNorth/69.0,
		Longitude: facilityPoint.lng,
		Active:    true,
	}
	interp.ID = uuid.New()
	return interp
}

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
	updateErr    error
}

func (f *fakeAppointmentRepo) Create(context.Context, *model.Appointment) error { return nil }
func (f *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := f.appointments[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *apt
	return &copied, nil
}
func (f *fakeAppointmentRepo) Update(context.Context, *model.Appointment) error     { return nil }
func (f *fakeAppointmentRepo) SoftDelete(context.Context, uuid.UUID) error          { return nil }
func (f *fakeAppointmentRepo) List(context.Context, *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}
func (f *fakeAppointmentRepo) UpdateStatus(context.Context, uuid.UUID, model.AppointmentStatus, *uuid.UUID, *string) error {
	return nil
}
func (f *fakeAppointmentRepo) UpdateOffer(_ context.Context, id uuid.UUID, radius float64, expandedAt time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	apt := f.appointments[id]
	apt.OfferRadius = radius
	apt.OfferExpandedAt = &expandedAt
	return nil
}
func (f *fakeAppointmentRepo) ListAwaitingInterpreter(context.Context, time.Time) ([]*model.Appointment, error) {
	return nil, nil
}

type fakeFacilityRepo struct {
	facility *model.Facility
}

func (f *fakeFacilityRepo) Create(context.Context, *model.Facility) error { return nil }
func (f *fakeFacilityRepo) Get(context.Context, uuid.UUID) (*model.Facility, error) {
	return f.facility, nil
}
func (f *fakeFacilityRepo) Update(context.Context, *model.Facility) error { return nil }
func (f *fakeFacilityRepo) Delete(context.Context, uuid.UUID) error       { return nil }
func (f *fakeFacilityRepo) List(context.Context) ([]*model.Facility, error) {
	return nil, nil
}

type fakeInterpreterRepo struct {
	active []*model.Interpreter
}

func (f *fakeInterpreterRepo) Create(context.Context, *model.Interpreter) error { return nil }
func (f *fakeInterpreterRepo) Get(context.Context, uuid.UUID) (*model.Interpreter, error) {
	return nil, errors.New("not found")
}
func (f *fakeInterpreterRepo) Update(context.Context, *model.Interpreter) error { return nil }
func (f *fakeInterpreterRepo) Delete(context.Context, uuid.UUID) error          { return nil }
func (f *fakeInterpreterRepo) List(context.Context) ([]*model.Interpreter, error) {
	return f.active, nil
}
func (f *fakeInterpreterRepo) ListActive(context.Context) ([]*model.Interpreter, error) {
	return f.active, nil
}

type fakeOfferRepo struct {
	notified map[uuid.UUID][]uuid.UUID
}

func (f *fakeOfferRepo) ListNotifiedInterpreters(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	return f.notified[id], nil
}
func (f *fakeOfferRepo) RecordNotified(_ context.Context, id uuid.UUID, ids []uuid.UUID) error {
	f.notified[id] = append(f.notified[id], ids...)
	return nil
}

type fakeNotificationRepo struct{ rows []*model.Notification }

func (f *fakeNotificationRepo) CreateBatch(_ context.Context, rows []*model.Notification) error {
	f.rows = append(f.rows, rows...)
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

type fakeOutboxRepo struct{ events []*model.OutboxEvent }

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

type fixture struct {
	svc          *Service
	appointments *fakeAppointmentRepo
	offers       *fakeOfferRepo
	outbox       *fakeOutboxRepo
	apt          *model.Appointment
}

func newFixture(cfg Config, interpreters ...*model.Interpreter) *fixture {
	apt := &model.Appointment{
		FacilityID: uuid.New(),
		Language:   "Spanish",
		Status:     model.AppointmentStatusPendingConfirmation,
		StartTime:  time.Now().Add(24 * time.Hour),
		EndTime:    time.Now().Add(25 * time.Hour),
	}
	apt.ID = uuid.New()

	facility := &model.Facility{
		Name:      "Mercy General",
		Latitude:  facilityPoint.lat,
		Longitude: facilityPoint.lng,
	}
	facility.ID = apt.FacilityID

	appointments := &fakeAppointmentRepo{appointments: map[uuid.UUID]*model.Appointment{apt.ID: apt}}
	offers := &fakeOfferRepo{notified: make(map[uuid.UUID][]uuid.UUID)}
	outbox := &fakeOutboxRepo{}
	fanout := notification.NewService(&fakeNotificationRepo{}, outbox, email.Noop{}, testMetrics, testLogger())

	svc := NewService(cfg, appointments, &fakeFacilityRepo{facility: facility},
		&fakeInterpreterRepo{active: interpreters}, offers, fanout, testMetrics, testLogger())

	return &fixture{svc: svc, appointments: appointments, offers: offers, outbox: outbox, apt: apt}
}

func defaultConfig() Config {
	return Config{StepMiles: 10, MaxMiles: 30, CacheTTL: time.Minute}
}

func TestExpandRadiusGrowsMonotonically(t *testing.T) {
	f := newFixture(defaultConfig())

	result, err := f.svc.ExpandRadius(context.Background(), f.apt.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, result.Radius)

	result, err = f.svc.ExpandRadius(context.Background(), f.apt.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, result.Radius)

	result, err = f.svc.ExpandRadius(context.Background(), f.apt.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, result.Radius)
}

func TestExpandRadiusReturnsOnlyNewInterpreters(t *testing.T) {
	near := interpreterAt(4, "Spanish")
	far := interpreterAt(15, "Spanish")
	f := newFixture(defaultConfig(), near, far)

	first, err := f.svc.ExpandRadius(context.Background(), f.apt.ID)
	require.NoError(t, err)
	require.Len(t, first.NewInterpreters, 1)
	assert.Equal(t, near.ID, first.NewInterpreters[0].ID)

	// The second ring picks up only the far interpreter; the near one was
	// already invited and must not reappear.
	second, err := f.svc.ExpandRadius(context.Background(), f.apt.ID)
	require.NoError(t, err)
	require.Len(t, second.NewInterpreters, 1)
	assert.Equal(t, far.ID, second.NewInterpreters[0].ID)

	third, err := f.svc.ExpandRadius(context.Background(), f.apt.ID)
	require.NoError(t, err)
	assert.Empty(t, third.NewInterpreters)
}

func TestExpandRadiusFiltersLanguage(t *testing.T) {
	spanish := interpreterAt(4, "Spanish")
	mandarin := interpreterAt(4, "Mandarin")
	f := newFixture(defaultConfig(), spanish, mandarin)

	result, err := f.svc.ExpandRadius(context.Background(), f.apt.ID)
	require.NoError(t, err)
	require.Len(t, result.NewInterpreters, 1)
	assert.Equal(t, spanish.ID, result.NewInterpreters[0].ID)
}

func TestExpandRadiusRespectsInterpreterCoverage(t *testing.T) {
	// Within the offer radius, but the interpreter only covers 2 miles.
	homebody := interpreterAt(4, "Spanish")
	homebody.CoverageMiles = 2
	f := newFixture(defaultConfig(), homebody)

	result, err := f.svc.ExpandRadius(context.Background(), f.apt.ID)
	require.NoError(t, err)
	assert.Empty(t, result.NewInterpreters)
}

func TestExpandRadiusCapsAtMax(t *testing.T) {
	f := newFixture(Config{StepMiles: 25, MaxMiles: 30, CacheTTL: time.Minute})

	result, err := f.svc.ExpandRadius(context.Background(), f.apt.ID)
	require.NoError(t, err)
	assert.Equal(t, 25.0, result.Radius)

	result, err = f.svc.ExpandRadius(context.Background(), f.apt.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, result.Radius)

	_, err = f.svc.ExpandRadius(context.Background(), f.apt.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrMaxRadiusReached))
	assert.Equal(t, 30.0, f.appointments.appointments[f.apt.ID].OfferRadius)
}

func TestExpandRadiusNotExpandableStatuses(t *testing.T) {
	for _, status := range []model.AppointmentStatus{
		model.AppointmentStatusPendingAuthorization,
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusCancelled,
		model.AppointmentStatusClosed,
	} {
		f := newFixture(defaultConfig())
		f.apt.Status = status

		_, err := f.svc.ExpandRadius(context.Background(), f.apt.ID)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrNotExpandable), "status %s", status)
		assert.Zero(t, f.apt.OfferRadius, "status %s must not move the radius", status)
	}
}

func TestExpandRadiusExpandableStatuses(t *testing.T) {
	for _, status := range []model.AppointmentStatus{
		model.AppointmentStatusPendingConfirmation,
		model.AppointmentStatusInterpreterRequested,
	} {
		f := newFixture(defaultConfig())
		f.apt.Status = status

		result, err := f.svc.ExpandRadius(context.Background(), f.apt.ID)
		require.NoError(t, err, "status %s", status)
		assert.Equal(t, 10.0, result.Radius)
	}
}

func TestExpandRadiusPersistFailure(t *testing.T) {
	f := newFixture(defaultConfig(), interpreterAt(4, "Spanish"))
	f.appointments.updateErr = errors.New("db gone")

	_, err := f.svc.ExpandRadius(context.Background(), f.apt.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrPersistenceFailure))
	assert.Empty(t, f.offers.notified[f.apt.ID], "no interpreter may be recorded when the radius write failed")
}

func TestExpandRadiusRecordsNotifiedSet(t *testing.T) {
	near := interpreterAt(4, "Spanish")
	f := newFixture(defaultConfig(), near)

	_, err := f.svc.ExpandRadius(context.Background(), f.apt.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{near.ID}, f.offers.notified[f.apt.ID])

	// The invite goes to the new interpreter's channel only.
	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, event.UserChannel(near.ID), f.outbox.events[0].Channel)
}

func TestExpandRadiusUnknownAppointment(t *testing.T) {
	f := newFixture(defaultConfig())
	_, err := f.svc.ExpandRadius(context.Background(), uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}
