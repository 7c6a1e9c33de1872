package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/linguacare/admin-api/internal/model"
	"github.com/linguacare/admin-api/internal/repository"
	"github.com/linguacare/admin-api/internal/service/notification"
	apperrors "github.com/linguacare/admin-api/pkg/errors"
	"github.com/linguacare/admin-api/pkg/logger"
)

const (
	// Billing rates in cents. Interpreters are paid a fixed share of the
	// invoiced amount.
	rateCentsPerMinute = 150
	payoutShare        = 0.6
	currency           = "USD"
)

type Service struct {
	invoices repository.InvoiceRepository
	fanout   *notification.Service
	logger   *logger.Logger
}

func NewService(invoices repository.InvoiceRepository, fanout *notification.Service, l *logger.Logger) *Service {
	return &Service{invoices: invoices, fanout: fanout, logger: l}
}

// GenerateForAppointment creates the invoice for a closed appointment, plus
// the interpreter payout when one is assigned. Generation is idempotent: a
// second close of the same appointment returns the existing invoice.
func (s *Service) GenerateForAppointment(ctx context.Context, apt *model.Appointment) (*model.Invoice, error) {
	exists, err := s.invoices.ExistsForAppointment(ctx, apt.ID)
	if err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("failed to check existing invoice: %w", err))
	}
	if exists {
		return s.invoices.GetByAppointment(ctx, apt.ID)
	}

	minutes := apt.EndTime.Sub(apt.StartTime) / time.Minute
	if minutes <= 0 {
		minutes = 1
	}

	inv := &model.Invoice{
		AppointmentID: apt.ID,
		PatientID:     apt.PatientID,
		AmountCents:   int64(minutes) * rateCentsPerMinute,
		Currency:      currency,
		Status:        model.InvoiceStatusIssued,
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("failed to create invoice: %w", err))
	}

	if apt.InterpreterID != nil {
		payout := &model.Payout{
			InvoiceID:     inv.ID,
			InterpreterID: *apt.InterpreterID,
			AmountCents:   int64(float64(inv.AmountCents) * payoutShare),
			Status:        model.PayoutStatusPending,
		}
		if err := s.invoices.CreatePayout(ctx, payout); err != nil {
			s.logger.Error(err, "failed to create interpreter payout",
				"invoice_id", inv.ID.String(), "interpreter_id", apt.InterpreterID.String())
		}
	}

	if err := s.fanout.OnInvoiceGenerated(ctx, inv); err != nil {
		s.logger.Error(err, "failed to fan out invoice notification", "invoice_id", inv.ID.String())
	}

	return inv, nil
}

// ExistsForAppointment reports whether the appointment has already been
// invoiced. Invoiced appointments cannot be deleted.
func (s *Service) ExistsForAppointment(ctx context.Context, appointmentID uuid.UUID) (bool, error) {
	return s.invoices.ExistsForAppointment(ctx, appointmentID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	inv, err := s.invoices.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("invoice", err)
	}
	return inv, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Invoice, error) {
	return s.invoices.List(ctx)
}

func (s *Service) ListPayouts(ctx context.Context, interpreterID uuid.UUID) ([]*model.Payout, error) {
	return s.invoices.ListPayouts(ctx, interpreterID)
}
