package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (r *offerRepository) ListNotifiedInterpreters(ctx context.Context, appointmentID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT interpreter_id
		FROM offer_notifications
		WHERE appointment_id = $1
	`
	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, query, appointmentID); err != nil {
		return nil, fmt.Errorf("failed to list notified interpreters: %w", err)
	}
	return ids, nil
}

func (r *offerRepository) RecordNotified(ctx context.Context, appointmentID uuid.UUID, interpreterIDs []uuid.UUID) error {
	if len(interpreterIDs) == 0 {
		return nil
	}

	// ON CONFLICT keeps the record idempotent if an expansion is retried.
	query := `
		INSERT INTO offer_notifications (appointment_id, interpreter_id, notified_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (appointment_id, interpreter_id) DO NOTHING
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, id := range interpreterIDs {
		if _, err := tx.ExecContext(ctx, query, appointmentID, id, now); err != nil {
			return fmt.Errorf("failed to record notified interpreter: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit offer notifications: %w", err)
	}
	return nil
}
