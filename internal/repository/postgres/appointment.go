package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/linguacare/admin-api/internal/model"
)

const appointmentColumns = `
	id, facility_id, patient_id, coordinator_id, interpreter_id,
	language, date, start_time, end_time, status, notes, cancel_reason,
	offer_radius, offer_expanded_at, created_at, updated_at, deleted_at
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, facility_id, patient_id, coordinator_id, interpreter_id,
			language, date, start_time, end_time, status, notes,
			offer_radius, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.FacilityID,
		appointment.PatientID,
		appointment.CoordinatorID,
		appointment.InterpreterID,
		appointment.Language,
		appointment.Date,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.Notes,
		appointment.OfferRadius,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE id = $1 AND deleted_at IS NULL
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET facility_id = $1, patient_id = $2, coordinator_id = $3,
			language = $4, date = $5, start_time = $6, end_time = $7,
			notes = $8, updated_at = $9
		WHERE id = $10 AND deleted_at IS NULL
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.FacilityID,
		appointment.PatientID,
		appointment.CoordinatorID,
		appointment.Language,
		appointment.Date,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Notes,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return checkRowsAffected(result, "appointment")
}

// UpdateStatus persists a ledger transition. Last write wins; concurrent
// transitions on the same appointment are not arbitrated here.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, interpreterID *uuid.UUID, cancelReason *string) error {
	query := `
		UPDATE appointments
		SET status = $1,
			interpreter_id = COALESCE($2, interpreter_id),
			cancel_reason = COALESCE($3, cancel_reason),
			updated_at = $4
		WHERE id = $5 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, status, interpreterID, cancelReason, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	return checkRowsAffected(result, "appointment")
}

func (r *appointmentRepository) UpdateOffer(ctx context.Context, id uuid.UUID, radius float64, expandedAt time.Time) error {
	query := `
		UPDATE appointments
		SET offer_radius = $1, offer_expanded_at = $2, updated_at = $3
		WHERE id = $4 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, radius, expandedAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update offer: %w", err)
	}
	return checkRowsAffected(result, "appointment")
}

func (r *appointmentRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE appointments
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return checkRowsAffected(result, "appointment")
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE deleted_at IS NULL
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.FacilityID != uuid.Nil {
			query += fmt.Sprintf(" AND facility_id = $%d", argCount)
			args = append(args, filters.FacilityID)
			argCount++
		}
		if filters.PatientID != uuid.Nil {
			query += fmt.Sprintf(" AND patient_id = $%d", argCount)
			args = append(args, filters.PatientID)
			argCount++
		}
		if filters.InterpreterID != uuid.Nil {
			query += fmt.Sprintf(" AND interpreter_id = $%d", argCount)
			args = append(args, filters.InterpreterID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if !filters.StartDate.IsZero() {
			query += fmt.Sprintf(" AND date >= $%d", argCount)
			args = append(args, filters.StartDate)
			argCount++
		}
		if !filters.EndDate.IsZero() {
			query += fmt.Sprintf(" AND date <= $%d", argCount)
			args = append(args, filters.EndDate)
			argCount++
		}
	}

	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// ListAwaitingInterpreter returns appointments still waiting for an
// interpreter whose offer was last expanded before staleBefore (or never).
func (r *appointmentRepository) ListAwaitingInterpreter(ctx context.Context, staleBefore time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE deleted_at IS NULL
		AND status IN ('pending_confirmation', 'interpreter_requested')
		AND (offer_expanded_at IS NULL OR offer_expanded_at < $1)
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, staleBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments awaiting interpreter: %w", err)
	}
	return appointments, nil
}
