package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/linguacare/admin-api/internal/model"
)

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	query := `
		INSERT INTO invoices (
			id, appointment_id, patient_id, amount_cents, currency, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	invoice.ID = uuid.New()
	invoice.CreatedAt = time.Now()
	invoice.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		invoice.ID, invoice.AppointmentID, invoice.PatientID,
		invoice.AmountCents, invoice.Currency, invoice.Status,
		invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	query := `
		SELECT id, appointment_id, patient_id, amount_cents, currency, status,
			   created_at, updated_at, deleted_at
		FROM invoices
		WHERE id = $1 AND deleted_at IS NULL
	`
	var invoice model.Invoice
	if err := r.db.GetContext(ctx, &invoice, query, id); err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &invoice, nil
}

func (r *invoiceRepository) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Invoice, error) {
	query := `
		SELECT id, appointment_id, patient_id, amount_cents, currency, status,
			   created_at, updated_at, deleted_at
		FROM invoices
		WHERE appointment_id = $1 AND deleted_at IS NULL
	`
	var invoice model.Invoice
	if err := r.db.GetContext(ctx, &invoice, query, appointmentID); err != nil {
		return nil, fmt.Errorf("failed to get invoice by appointment: %w", err)
	}
	return &invoice, nil
}

func (r *invoiceRepository) ExistsForAppointment(ctx context.Context, appointmentID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM invoices
			WHERE appointment_id = $1 AND deleted_at IS NULL
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, appointmentID); err != nil {
		return false, fmt.Errorf("failed to check invoice existence: %w", err)
	}
	return exists, nil
}

func (r *invoiceRepository) List(ctx context.Context) ([]*model.Invoice, error) {
	query := `
		SELECT id, appointment_id, patient_id, amount_cents, currency, status,
			   created_at, updated_at, deleted_at
		FROM invoices
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`
	var invoices []*model.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query); err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

func (r *invoiceRepository) CreatePayout(ctx context.Context, payout *model.Payout) error {
	query := `
		INSERT INTO payouts (
			id, invoice_id, interpreter_id, amount_cents, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	payout.ID = uuid.New()
	payout.CreatedAt = time.Now()
	payout.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		payout.ID, payout.InvoiceID, payout.InterpreterID,
		payout.AmountCents, payout.Status, payout.CreatedAt, payout.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payout: %w", err)
	}
	return nil
}

func (r *invoiceRepository) ListPayouts(ctx context.Context, interpreterID uuid.UUID) ([]*model.Payout, error) {
	query := `
		SELECT id, invoice_id, interpreter_id, amount_cents, status,
			   created_at, updated_at, deleted_at
		FROM payouts
		WHERE interpreter_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`
	var payouts []*model.Payout
	if err := r.db.SelectContext(ctx, &payouts, query, interpreterID); err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	return payouts, nil
}
