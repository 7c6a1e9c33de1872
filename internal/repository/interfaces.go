package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/linguacare/admin-api/internal/model"
)

// All repository interfaces in one file
type (
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		SoftDelete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, interpreterID *uuid.UUID, cancelReason *string) error
		UpdateOffer(ctx context.Context, id uuid.UUID, radius float64, expandedAt time.Time) error
		ListAwaitingInterpreter(ctx context.Context, staleBefore time.Time) ([]*model.Appointment, error)
	}

	FacilityRepository interface {
		Create(ctx context.Context, facility *model.Facility) error
		Get(ctx context.Context, id uuid.UUID) (*model.Facility, error)
		Update(ctx context.Context, facility *model.Facility) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Facility, error)
	}

	InterpreterRepository interface {
		Create(ctx context.Context, interpreter *model.Interpreter) error
		Get(ctx context.Context, id uuid.UUID) (*model.Interpreter, error)
		Update(ctx context.Context, interpreter *model.Interpreter) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Interpreter, error)
		ListActive(ctx context.Context) ([]*model.Interpreter, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Patient, error)
	}

	// NotificationRepository persists fan-out output and read state.
	NotificationRepository interface {
		CreateBatch(ctx context.Context, notifications []*model.Notification) error
		ListForRecipient(ctx context.Context, recipient model.Recipient, unreadOnly bool, limit int) ([]*model.Notification, error)
		CountUnread(ctx context.Context, recipient model.Recipient) (int, error)
		MarkRead(ctx context.Context, ids []uuid.UUID, recipient model.Recipient) (int64, error)
	}

	// OfferRepository tracks which interpreters were already notified for an
	// appointment so radius expansion never re-notifies them.
	OfferRepository interface {
		ListNotifiedInterpreters(ctx context.Context, appointmentID uuid.UUID) ([]uuid.UUID, error)
		RecordNotified(ctx context.Context, appointmentID uuid.UUID, interpreterIDs []uuid.UUID) error
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		ListAdmins(ctx context.Context) ([]*model.User, error)
	}

	InvoiceRepository interface {
		Create(ctx context.Context, invoice *model.Invoice) error
		Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
		GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Invoice, error)
		ExistsForAppointment(ctx context.Context, appointmentID uuid.UUID) (bool, error)
		List(ctx context.Context) ([]*model.Invoice, error)
		CreatePayout(ctx context.Context, payout *model.Payout) error
		ListPayouts(ctx context.Context, interpreterID uuid.UUID) ([]*model.Payout, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, entityType string, limit int) ([]*model.AuditLog, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		BeginTx(ctx context.Context) (*sql.Tx, error)
		UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
		MoveToDeadLetter(ctx context.Context, tx *sql.Tx, evt *model.OutboxEvent) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
