package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/linguacare/admin-api/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

type facilityRepository struct {
	db *sqlx.DB
}

type interpreterRepository struct {
	db *sqlx.DB
}

type patientRepository struct {
	db *sqlx.DB
}

type notificationRepository struct {
	db *sqlx.DB
}

type offerRepository struct {
	db *sqlx.DB
}

type userRepository struct {
	db *sqlx.DB
}

type invoiceRepository struct {
	db *sqlx.DB
}

type auditRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func NewFacilityRepository(db *sqlx.DB) repository.FacilityRepository {
	return &facilityRepository{db: db}
}

func NewInterpreterRepository(db *sqlx.DB) repository.InterpreterRepository {
	return &interpreterRepository{db: db}
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func NewNotificationRepository(db *sqlx.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func NewOfferRepository(db *sqlx.DB) repository.OfferRepository {
	return &offerRepository{db: db}
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func NewInvoiceRepository(db *sqlx.DB) repository.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func NewAuditRepository(db *sqlx.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}
