package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPendingAuthorization AppointmentStatus = "pending_authorization"
	AppointmentStatusPendingConfirmation  AppointmentStatus = "pending_confirmation"
	AppointmentStatusInterpreterRequested AppointmentStatus = "interpreter_requested"
	AppointmentStatusConfirmed            AppointmentStatus = "confirmed"
	AppointmentStatusCancelled            AppointmentStatus = "cancelled"
	AppointmentStatusClosed               AppointmentStatus = "closed"
)

// AppointmentStatuses lists every valid status value, for request validation.
var AppointmentStatuses = []AppointmentStatus{
	AppointmentStatusPendingAuthorization,
	AppointmentStatusPendingConfirmation,
	AppointmentStatusInterpreterRequested,
	AppointmentStatusConfirmed,
	AppointmentStatusCancelled,
	AppointmentStatusClosed,
}

// AwaitingInterpreter reports whether the appointment still needs an
// interpreter, i.e. its offer radius may keep growing.
func (s AppointmentStatus) AwaitingInterpreter() bool {
	return s == AppointmentStatusPendingConfirmation || s == AppointmentStatusInterpreterRequested
}

// Terminal reports whether no further transition is possible.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCancelled || s == AppointmentStatusClosed
}

type Appointment struct {
	Base
	FacilityID    uuid.UUID         `db:"facility_id" json:"facility_id"`
	PatientID     uuid.UUID         `db:"patient_id" json:"patient_id"`
	CoordinatorID uuid.UUID         `db:"coordinator_id" json:"coordinator_id"`
	InterpreterID *uuid.UUID        `db:"interpreter_id" json:"interpreter_id,omitempty"`
	Language      string            `db:"language" json:"language"`
	Date          time.Time         `db:"date" json:"date"`
	StartTime     time.Time         `db:"start_time" json:"start_time"`
	EndTime       time.Time         `db:"end_time" json:"end_time"`
	Status        AppointmentStatus `db:"status" json:"status"`
	Notes         string            `db:"notes" json:"notes,omitempty"`
	CancelReason  *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`

	// Offer context. The radius only grows while the appointment is
	// awaiting an interpreter.
	OfferRadius     float64    `db:"offer_radius" json:"offer_radius"`
	OfferExpandedAt *time.Time `db:"offer_expanded_at" json:"offer_expanded_at,omitempty"`
}

// StatusChange is the previous/new pair the ledger returns on a successful
// transition; fan-out uses it to decide the event type.
type StatusChange struct {
	Previous    AppointmentStatus `json:"previous"`
	New         AppointmentStatus `json:"new"`
	Appointment *Appointment      `json:"appointment"`
}

type CreateAppointmentRequest struct {
	FacilityID    string    `json:"facility_id" binding:"required,uuid"`
	PatientID     string    `json:"patient_id" binding:"required,uuid"`
	CoordinatorID string    `json:"coordinator_id" binding:"required,uuid"`
	Language      string    `json:"language" binding:"required"`
	Date          time.Time `json:"date" binding:"required"`
	StartTime     time.Time `json:"start_time" binding:"required"`
	EndTime       time.Time `json:"end_time" binding:"required,gtfield=StartTime"`
	Notes         string    `json:"notes" binding:"max=1000"`
}

type UpdateAppointmentStatusRequest struct {
	Status       AppointmentStatus `json:"status" binding:"required,apptstatus"`
	CancelReason *string           `json:"cancel_reason,omitempty"`
}

type AcceptOfferRequest struct {
	InterpreterID string `json:"interpreter_id" binding:"required,uuid"`
}

type AppointmentFilters struct {
	FacilityID    uuid.UUID
	PatientID     uuid.UUID
	InterpreterID uuid.UUID
	Status        AppointmentStatus
	StartDate     time.Time
	EndDate       time.Time
}
