package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type identifies a notification event emitted by the fan-out layer.
type Type string

const (
	TypeAppointmentConfirmed Type = "appointment.confirmed"
	TypeAppointmentCancelled Type = "appointment.cancelled"
	TypeAppointmentClosed    Type = "appointment.closed"
	TypeOfferInvite          Type = "offer.interpreter_invited"
	TypeInvoiceGenerated     Type = "invoice.generated"
)

// AllTypes lists every event type the fan-out layer can emit. Tests use it
// to enforce that the cache invalidation contract stays exhaustive.
var AllTypes = []Type{
	TypeAppointmentConfirmed,
	TypeAppointmentCancelled,
	TypeAppointmentClosed,
	TypeOfferInvite,
	TypeInvoiceGenerated,
}

// Payload is the closed set of event payloads. Consumers switch on the
// envelope type and decode into the matching variant instead of probing
// loose maps.
type Payload interface {
	isPayload()
}

// StatusChanged carries a status transition on an appointment.
type StatusChanged struct {
	AppointmentID  uuid.UUID `json:"appointment_id"`
	FacilityID     uuid.UUID `json:"facility_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	StartTime      time.Time `json:"start_time"`
}

// OfferInvite is sent to each interpreter newly added to an offer pool.
type OfferInvite struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	FacilityID    uuid.UUID `json:"facility_id"`
	FacilityName  string    `json:"facility_name"`
	RadiusMiles   float64   `json:"radius_miles"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Language      string    `json:"language,omitempty"`
}

// InvoiceGenerated announces a new invoice for a closed appointment.
type InvoiceGenerated struct {
	InvoiceID     uuid.UUID `json:"invoice_id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
}

func (StatusChanged) isPayload()    {}
func (OfferInvite) isPayload()      {}
func (InvoiceGenerated) isPayload() {}

// Envelope is the wire format published on every channel. CacheKeys tells
// the receiving client which cached queries to refetch; a stale entry here
// is a correctness bug, so the mapping travels with the message.
type Envelope struct {
	Type      Type            `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CacheKeys []string        `json:"cache_keys"`
	EmittedAt time.Time       `json:"emitted_at"`
}

// NewEnvelope builds an envelope for a typed payload.
func NewEnvelope(t Type, p Payload) (*Envelope, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", t, err)
	}
	return &Envelope{
		Type:      t,
		Payload:   raw,
		CacheKeys: CacheKeys(t),
		EmittedAt: time.Now().UTC(),
	}, nil
}

// Marshal serializes the envelope for publishing.
func (e *Envelope) Marshal() ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s envelope: %w", e.Type, err)
	}
	return raw, nil
}

// DecodeEnvelope parses a published message back into an envelope.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	return &env, nil
}

// DecodePayload decodes an envelope payload into its typed variant.
func DecodePayload(t Type, raw json.RawMessage) (Payload, error) {
	switch t {
	case TypeAppointmentConfirmed, TypeAppointmentCancelled, TypeAppointmentClosed:
		var p StatusChanged
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case TypeOfferInvite:
		var p OfferInvite
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case TypeInvoiceGenerated:
		var p InvoiceGenerated
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown event type: %s", t)
	}
}

// AdminChannel is the broadcast channel every admin client subscribes to.
func AdminChannel() string {
	return "notifications:admins"
}

// UserChannel is the direct channel for a single user.
func UserChannel(userID uuid.UUID) string {
	return "notifications:user:" + userID.String()
}
