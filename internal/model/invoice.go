package model

import "github.com/google/uuid"

type InvoiceStatus string

const (
	InvoiceStatusDraft  InvoiceStatus = "draft"
	InvoiceStatusIssued InvoiceStatus = "issued"
	InvoiceStatusPaid   InvoiceStatus = "paid"
)

type Invoice struct {
	Base
	AppointmentID uuid.UUID     `db:"appointment_id" json:"appointment_id"`
	PatientID     uuid.UUID     `db:"patient_id" json:"patient_id"`
	AmountCents   int64         `db:"amount_cents" json:"amount_cents"`
	Currency      string        `db:"currency" json:"currency"`
	Status        InvoiceStatus `db:"status" json:"status"`
}

type PayoutStatus string

const (
	PayoutStatusPending PayoutStatus = "pending"
	PayoutStatusPaid    PayoutStatus = "paid"
)

type Payout struct {
	Base
	InvoiceID     uuid.UUID    `db:"invoice_id" json:"invoice_id"`
	InterpreterID uuid.UUID    `db:"interpreter_id" json:"interpreter_id"`
	AmountCents   int64        `db:"amount_cents" json:"amount_cents"`
	Status        PayoutStatus `db:"status" json:"status"`
}
