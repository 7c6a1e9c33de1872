package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/linguacare/admin-api/internal/model"
)

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	query := `
		INSERT INTO notifications (
			id, scope, recipient_id, event_type, payload, is_read, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, n := range notifications {
		if n.ID == uuid.Nil {
			n.ID = uuid.New()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now()
		}
		if _, err := tx.ExecContext(ctx, query,
			n.ID, n.Scope, n.RecipientID, n.EventType, n.Payload, n.IsRead, n.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit notifications: %w", err)
	}
	return nil
}

// recipientFilter limits rows to the ones a recipient can see: their own
// direct notifications, plus the admin broadcast scope for admins.
func recipientFilter(recipient model.Recipient, argOffset int) (string, []interface{}) {
	if recipient.Admin {
		return fmt.Sprintf("(scope = 'admins' OR recipient_id = $%d)", argOffset),
			[]interface{}{recipient.UserID}
	}
	return fmt.Sprintf("(scope = 'user' AND recipient_id = $%d)", argOffset),
		[]interface{}{recipient.UserID}
}

func (r *notificationRepository) ListForRecipient(ctx context.Context, recipient model.Recipient, unreadOnly bool, limit int) ([]*model.Notification, error) {
	filter, args := recipientFilter(recipient, 1)

	query := `
		SELECT id, scope, recipient_id, event_type, payload, is_read, created_at
		FROM notifications
		WHERE ` + filter
	if unreadOnly {
		query += " AND is_read = false"
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}

	var notifications []*model.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipient model.Recipient) (int, error) {
	filter, args := recipientFilter(recipient, 1)

	query := `SELECT COUNT(*) FROM notifications WHERE is_read = false AND ` + filter

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead flips the listed notifications to read in a single statement.
// Already-read rows and rows outside the recipient's scope are skipped, so
// repeated calls are no-ops rather than errors.
func (r *notificationRepository) MarkRead(ctx context.Context, ids []uuid.UUID, recipient model.Recipient) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	filter, filterArgs := recipientFilter(recipient, 2)

	query := `
		UPDATE notifications
		SET is_read = true
		WHERE id = ANY($1)
		AND is_read = false
		AND ` + filter

	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}

	args := append([]interface{}{pq.Array(strIDs)}, filterArgs...)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
