package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/linguacare/admin-api/internal/email"
	"github.com/linguacare/admin-api/internal/model"
	"github.com/linguacare/admin-api/internal/repository"
	apperrors "github.com/linguacare/admin-api/pkg/errors"
	"github.com/linguacare/admin-api/pkg/event"
	"github.com/linguacare/admin-api/pkg/logger"
	"github.com/linguacare/admin-api/pkg/metrics"
)

// Service owns notification fan-out and read state. Fan-out is best-effort:
// a delivery failure is recorded and logged but never propagated in a way
// that would roll back the status change that triggered it.
type Service struct {
	notifications repository.NotificationRepository
	outbox        repository.OutboxRepository
	email         email.Service
	metrics       *metrics.Metrics
	logger        *logger.Logger
}

func NewService(
	notifications repository.NotificationRepository,
	outbox repository.OutboxRepository,
	emailSvc email.Service,
	m *metrics.Metrics,
	l *logger.Logger,
) *Service {
	if emailSvc == nil {
		emailSvc = email.Noop{}
	}
	return &Service{
		notifications: notifications,
		outbox:        outbox,
		email:         emailSvc,
		metrics:       m,
		logger:        l,
	}
}

// recipient is one fan-out target: the admin broadcast scope or a single
// user's direct scope.
type target struct {
	scope  model.RecipientScope
	userID uuid.UUID
}

func (t target) channel() string {
	if t.scope == model.ScopeAdmins {
		return event.AdminChannel()
	}
	return event.UserChannel(t.userID)
}

// OnTransition fans out a status change. Only externally visible outcomes
// (confirmed, cancelled, closed) produce notifications; intermediate moves
// like pending_authorization -> pending_confirmation stay internal.
func (s *Service) OnTransition(ctx context.Context, change *model.StatusChange) error {
	var eventType event.Type
	switch change.New {
	case model.AppointmentStatusConfirmed:
		eventType = event.TypeAppointmentConfirmed
	case model.AppointmentStatusCancelled:
		eventType = event.TypeAppointmentCancelled
	case model.AppointmentStatusClosed:
		eventType = event.TypeAppointmentClosed
	default:
		return nil
	}

	apt := change.Appointment
	payload := event.StatusChanged{
		AppointmentID:  apt.ID,
		FacilityID:     apt.FacilityID,
		PreviousStatus: string(change.Previous),
		NewStatus:      string(change.New),
		StartTime:      apt.StartTime,
	}

	targets := []target{
		{scope: model.ScopeAdmins},
		{scope: model.ScopeUser, userID: apt.CoordinatorID},
	}
	if apt.InterpreterID != nil {
		targets = append(targets, target{scope: model.ScopeUser, userID: *apt.InterpreterID})
	}

	return s.dispatch(ctx, eventType, payload, targets)
}

// OnRadiusExpanded sends a direct notification to each interpreter newly
// added to the offer pool. Previously invited interpreters and the admin
// broadcast scope hear nothing. The email side channel is best-effort on
// top of the best-effort fan-out.
func (s *Service) OnRadiusExpanded(ctx context.Context, apt *model.Appointment, facility *model.Facility, added []*model.Interpreter) error {
	if len(added) == 0 {
		return nil
	}

	payload := event.OfferInvite{
		AppointmentID: apt.ID,
		FacilityID:    apt.FacilityID,
		FacilityName:  facility.Name,
		RadiusMiles:   apt.OfferRadius,
		StartTime:     apt.StartTime,
		EndTime:       apt.EndTime,
		Language:      apt.Language,
	}

	targets := make([]target, 0, len(added))
	for _, interp := range added {
		targets = append(targets, target{scope: model.ScopeUser, userID: interp.ID})
	}

	err := s.dispatch(ctx, event.TypeOfferInvite, payload, targets)

	for _, interp := range added {
		if interp.Email == "" {
			continue
		}
		if mailErr := s.email.SendOfferInvite(ctx, interp.Email, facility.Name, apt.StartTime); mailErr != nil {
			s.logger.Error(mailErr, "failed to email offer invite",
				"interpreter_id", interp.ID.String(), "appointment_id", apt.ID.String())
		}
	}

	return err
}

// OnInvoiceGenerated announces a new invoice on the admin broadcast scope.
func (s *Service) OnInvoiceGenerated(ctx context.Context, invoice *model.Invoice) error {
	payload := event.InvoiceGenerated{
		InvoiceID:     invoice.ID,
		AppointmentID: invoice.AppointmentID,
		AmountCents:   invoice.AmountCents,
		Currency:      invoice.Currency,
	}
	return s.dispatch(ctx, event.TypeInvoiceGenerated, payload, []target{{scope: model.ScopeAdmins}})
}

// dispatch persists one notification row per distinct target and enqueues
// one outbox row per distinct channel. A channel never receives the same
// logical event twice, even if a user appears in multiple roles.
func (s *Service) dispatch(ctx context.Context, t event.Type, payload event.Payload, targets []target) error {
	env, err := event.NewEnvelope(t, payload)
	if err != nil {
		return apperrors.DeliveryFailure(err)
	}
	raw, err := env.Marshal()
	if err != nil {
		return apperrors.DeliveryFailure(err)
	}

	seen := make(map[string]bool, len(targets))
	var rows []*model.Notification
	var channels []target
	for _, tgt := range targets {
		ch := tgt.channel()
		if seen[ch] {
			continue
		}
		seen[ch] = true
		channels = append(channels, tgt)

		row := &model.Notification{
			Scope:     tgt.scope,
			EventType: string(t),
			Payload:   env.Payload,
		}
		if tgt.scope == model.ScopeUser {
			id := tgt.userID
			row.RecipientID = &id
		}
		rows = append(rows, row)
	}

	if err := s.notifications.CreateBatch(ctx, rows); err != nil {
		return apperrors.Persistence(fmt.Errorf("failed to persist notifications for %s: %w", t, err))
	}
	s.metrics.NotificationsCreated.WithLabelValues(string(t)).Add(float64(len(rows)))

	var firstErr error
	for _, tgt := range channels {
		evt := &model.OutboxEvent{
			EventType: string(t),
			Channel:   tgt.channel(),
			Payload:   raw,
		}
		if err := s.outbox.Create(ctx, evt); err != nil {
			kind := "user"
			if tgt.scope == model.ScopeAdmins {
				kind = "admins"
			}
			s.metrics.PublishFailures.WithLabelValues(kind).Inc()
			s.logger.Error(err, "failed to enqueue notification publish",
				"event_type", string(t), "channel", tgt.channel())
			if firstErr == nil {
				firstErr = apperrors.DeliveryFailure(err)
			}
		}
	}
	return firstErr
}

// MarkRead flips the given notifications to read for the recipient. Already
// read and foreign notifications are skipped silently, so retried requests
// converge on the same state.
func (s *Service) MarkRead(ctx context.Context, ids []uuid.UUID, recipient model.Recipient) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	updated, err := s.notifications.MarkRead(ctx, ids, recipient)
	if err != nil {
		return 0, apperrors.Persistence(fmt.Errorf("failed to mark notifications read: %w", err))
	}
	s.metrics.NotificationsMarkedRead.Add(float64(updated))
	return updated, nil
}

// List returns the recipient's notifications, newest first.
func (s *Service) List(ctx context.Context, recipient model.Recipient, unreadOnly bool, limit int) ([]*model.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	items, err := s.notifications.ListForRecipient(ctx, recipient, unreadOnly, limit)
	if err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("failed to list notifications: %w", err))
	}
	return items, nil
}

// Summary returns the unread count plus the most recent notifications for
// the bell badge.
func (s *Service) Summary(ctx context.Context, recipient model.Recipient) (*model.NotificationSummary, error) {
	count, err := s.notifications.CountUnread(ctx, recipient)
	if err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("failed to count unread notifications: %w", err))
	}
	latest, err := s.notifications.ListForRecipient(ctx, recipient, false, 10)
	if err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("failed to load latest notifications: %w", err))
	}
	return &model.NotificationSummary{UnreadCount: count, Latest: latest}, nil
}
