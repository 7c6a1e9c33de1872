package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RecipientScope is a notification's delivery scope: the admin broadcast
// channel or a single user's direct channel.
type RecipientScope string

const (
	ScopeAdmins RecipientScope = "admins"
	ScopeUser   RecipientScope = "user"
)

// Notification rows are created only by the fan-out layer and mutated only
// by the read-state tracker. Clients never write them directly.
type Notification struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Scope       RecipientScope  `db:"scope" json:"scope"`
	RecipientID *uuid.UUID      `db:"recipient_id" json:"recipient_id,omitempty"`
	EventType   string          `db:"event_type" json:"event_type"`
	Payload     json.RawMessage `db:"payload" json:"payload"`
	IsRead      bool            `db:"is_read" json:"is_read"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// NotificationSummary backs the summary endpoint: unread count plus the
// latest notifications, newest first.
type NotificationSummary struct {
	UnreadCount int             `json:"unread_count"`
	Latest      []*Notification `json:"latest"`
}

// Recipient identifies who is reading notifications. Admins see direct
// messages plus the admin broadcast scope.
type Recipient struct {
	UserID uuid.UUID
	Admin  bool
}

type MarkReadRequest struct {
	NotificationIDs []string `json:"notification_ids" binding:"required,min=1,dive,uuid"`
}
