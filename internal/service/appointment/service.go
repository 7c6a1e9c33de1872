package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/linguacare/admin-api/internal/model"
	"github.com/linguacare/admin-api/internal/repository"
	"github.com/linguacare/admin-api/internal/service/audit"
	"github.com/linguacare/admin-api/internal/service/invoice"
	"github.com/linguacare/admin-api/internal/service/notification"
	apperrors "github.com/linguacare/admin-api/pkg/errors"
	"github.com/linguacare/admin-api/pkg/logger"
)

// allowedTransitions is the single source of truth for the status ledger.
// A transition absent from this table is rejected; terminal statuses map to
// an empty set. Closed is reachable only from confirmed.
var allowedTransitions = map[model.AppointmentStatus][]model.AppointmentStatus{
	model.AppointmentStatusPendingAuthorization: {
		model.AppointmentStatusPendingConfirmation,
		model.AppointmentStatusCancelled,
	},
	model.AppointmentStatusPendingConfirmation: {
		model.AppointmentStatusInterpreterRequested,
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusCancelled,
	},
	model.AppointmentStatusInterpreterRequested: {
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusCancelled,
	},
	model.AppointmentStatusConfirmed: {
		model.AppointmentStatusClosed,
		model.AppointmentStatusCancelled,
	},
	model.AppointmentStatusCancelled: {},
	model.AppointmentStatusClosed:    {},
}

// CanTransition reports whether the ledger permits moving from one status
// to another.
func CanTransition(from, to model.AppointmentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Service struct {
	appointments repository.AppointmentRepository
	offers       repository.OfferRepository
	fanout       *notification.Service
	invoices     *invoice.Service
	audit        *audit.Service
	logger       *logger.Logger
}

func NewService(
	appointments repository.AppointmentRepository,
	offers repository.OfferRepository,
	fanout *notification.Service,
	invoices *invoice.Service,
	auditSvc *audit.Service,
	l *logger.Logger,
) *Service {
	return &Service{
		appointments: appointments,
		offers:       offers,
		fanout:       fanout,
		invoices:     invoices,
		audit:        auditSvc,
		logger:       l,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest, actorID uuid.UUID) (*model.Appointment, error) {
	facilityID, err := uuid.Parse(req.FacilityID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid facility id", err)
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid patient id", err)
	}
	coordinatorID, err := uuid.Parse(req.CoordinatorID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid coordinator id", err)
	}

	apt := &model.Appointment{
		FacilityID:    facilityID,
		PatientID:     patientID,
		CoordinatorID: coordinatorID,
		Language:      req.Language,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Status:        model.AppointmentStatusPendingAuthorization,
		Notes:         req.Notes,
	}
	if err := s.appointments.Create(ctx, apt); err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("failed to create appointment: %w", err))
	}

	s.audit.Log(ctx, actorID, "appointment.create", "appointment", apt.ID, model.JSONMap{
		"status": string(apt.Status),
	})
	return apt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("appointment", err)
	}
	return apt, nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.appointments.List(ctx, filters)
}

// Transition validates the requested status against the ledger, persists it,
// then fans out notifications. The write is the commit point: a fan-out
// failure is logged but the new status stands.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, newStatus model.AppointmentStatus, cancelReason *string, actorID uuid.UUID) (*model.StatusChange, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("appointment", err)
	}

	if !CanTransition(apt.Status, newStatus) {
		return nil, apperrors.InvalidTransition(string(apt.Status), string(newStatus))
	}

	if newStatus != model.AppointmentStatusCancelled {
		cancelReason = nil
	}
	if err := s.appointments.UpdateStatus(ctx, id, newStatus, nil, cancelReason); err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("failed to update appointment status: %w", err))
	}

	change := &model.StatusChange{
		Previous:    apt.Status,
		New:         newStatus,
		Appointment: apt,
	}
	apt.Status = newStatus
	if cancelReason != nil {
		apt.CancelReason = cancelReason
	}

	s.audit.Log(ctx, actorID, "appointment.status_change", "appointment", apt.ID, model.JSONMap{
		"previous": string(change.Previous),
		"new":      string(change.New),
	})

	if err := s.fanout.OnTransition(ctx, change); err != nil {
		s.logger.Error(err, "status change fan-out failed",
			"appointment_id", id.String(), "new_status", string(newStatus))
	}

	if newStatus == model.AppointmentStatusClosed {
		if _, err := s.invoices.GenerateForAppointment(ctx, apt); err != nil {
			s.logger.Error(err, "failed to generate invoice on close", "appointment_id", id.String())
		}
	}

	return change, nil
}

// AcceptOffer assigns an interpreter who was invited through the offer pool
// and confirms the appointment in one move.
func (s *Service) AcceptOffer(ctx context.Context, id uuid.UUID, interpreterID uuid.UUID, actorID uuid.UUID) (*model.StatusChange, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("appointment", err)
	}

	if !CanTransition(apt.Status, model.AppointmentStatusConfirmed) {
		return nil, apperrors.InvalidTransition(string(apt.Status), string(model.AppointmentStatusConfirmed))
	}

	notified, err := s.offers.ListNotifiedInterpreters(ctx, id)
	if err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("failed to load offer pool: %w", err))
	}
	invited := false
	for _, nid := range notified {
		if nid == interpreterID {
			invited = true
			break
		}
	}
	if !invited {
		return nil, apperrors.BadRequest("interpreter was not invited to this appointment", nil)
	}

	if err := s.appointments.UpdateStatus(ctx, id, model.AppointmentStatusConfirmed, &interpreterID, nil); err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("failed to confirm appointment: %w", err))
	}

	change := &model.StatusChange{
		Previous:    apt.Status,
		New:         model.AppointmentStatusConfirmed,
		Appointment: apt,
	}
	apt.Status = model.AppointmentStatusConfirmed
	apt.InterpreterID = &interpreterID

	s.audit.Log(ctx, actorID, "appointment.accept_offer", "appointment", apt.ID, model.JSONMap{
		"interpreter_id": interpreterID.String(),
	})

	if err := s.fanout.OnTransition(ctx, change); err != nil {
		s.logger.Error(err, "offer acceptance fan-out failed", "appointment_id", id.String())
	}

	return change, nil
}

// Delete soft-deletes an appointment. Only cancelled appointments without an
// invoice can be removed; everything else stays for the audit trail.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return apperrors.NotFound("appointment", err)
	}
	if apt.Status != model.AppointmentStatusCancelled {
		return apperrors.BadRequest("only cancelled appointments can be deleted", nil)
	}

	invoiced, err := s.invoices.ExistsForAppointment(ctx, id)
	if err != nil {
		return apperrors.Persistence(fmt.Errorf("failed to check invoices: %w", err))
	}
	if invoiced {
		return apperrors.BadRequest("appointments with invoices cannot be deleted", nil)
	}

	if err := s.appointments.SoftDelete(ctx, id); err != nil {
		return apperrors.Persistence(fmt.Errorf("failed to delete appointment: %w", err))
	}
	s.audit.Log(ctx, actorID, "appointment.delete", "appointment", id, nil)
	return nil
}

// Stale reports whether the appointment has been awaiting an interpreter
// without movement for longer than the given window.
func Stale(apt *model.Appointment, staleAfter time.Duration, now time.Time) bool {
	if !apt.Status.AwaitingInterpreter() {
		return false
	}
	last := apt.UpdatedAt
	if apt.OfferExpandedAt != nil && apt.OfferExpandedAt.After(last) {
		last = *apt.OfferExpandedAt
	}
	return now.Sub(last) >= staleAfter
}
