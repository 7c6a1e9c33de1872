package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/lib/pq"

	"github.com/linguacare/admin-api/internal/config"
	"github.com/linguacare/admin-api/internal/model"
	"github.com/linguacare/admin-api/internal/repository/postgres"
	authService "github.com/linguacare/admin-api/internal/service/auth"
	"github.com/linguacare/admin-api/pkg/logger"
)

var languages = []string{"Spanish", "Mandarin", "Vietnamese", "Arabic", "Russian", "Korean", "Tagalog"}

// Seeds a development database with an admin login plus fake facilities,
// interpreters, patients and appointments.
func main() {
	var (
		interpreters = flag.Int("interpreters", 25, "number of interpreters to create")
		patients     = flag.Int("patients", 40, "number of patients to create")
		facilities   = flag.Int("facilities", 5, "number of facilities to create")
		appointments = flag.Int("appointments", 30, "number of appointments to create")
		seed         = flag.Uint64("seed", 0, "fake data seed (0 = random)")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	faker := gofakeit.New(*seed)
	ctx := context.Background()

	userRepo := postgres.NewUserRepository(db)
	facilityRepo := postgres.NewFacilityRepository(db)
	interpreterRepo := postgres.NewInterpreterRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)

	hash, err := authService.HashPassword("admin123")
	if err != nil {
		log.Fatal(err, "failed to hash password")
	}
	admin := &model.User{
		Email:        "admin@linguacare.local",
		Name:         "Seed Admin",
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Status:       model.UserStatusActive,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		log.Fatal(err, "failed to create admin user")
	}
	log.Info("Created admin user", "email", admin.Email)

	var facilityModels []*model.Facility
	for i := 0; i < *facilities; i++ {
		f := &model.Facility{
			Name:      faker.Company() + " Medical Center",
			Street:    faker.Street(),
			City:      faker.City(),
			State:     faker.StateAbr(),
			ZipCode:   faker.Zip(),
			Phone:     faker.Phone(),
			Email:     faker.Email(),
			Latitude:  faker.Float64Range(37.2, 37.9),
			Longitude: faker.Float64Range(-122.5, -121.8),
			Active:    true,
		}
		if err := facilityRepo.Create(ctx, f); err != nil {
			log.Fatal(err, "failed to create facility")
		}
		facilityModels = append(facilityModels, f)
	}

	for i := 0; i < *interpreters; i++ {
		langs := []string{languages[faker.IntRange(0, len(languages)-1)]}
		if faker.Bool() {
			langs = append(langs, languages[faker.IntRange(0, len(languages)-1)])
		}
		interp := &model.Interpreter{
			FirstName:     faker.FirstName(),
			LastName:      faker.LastName(),
			Email:         faker.Email(),
			Phone:         faker.Phone(),
			Languages:     pq.StringArray(langs),
			Latitude:      faker.Float64Range(37.0, 38.1),
			Longitude:     faker.Float64Range(-122.7, -121.6),
			CoverageMiles: faker.Float64Range(10, 80),
			Active:        true,
		}
		if err := interpreterRepo.Create(ctx, interp); err != nil {
			log.Fatal(err, "failed to create interpreter")
		}
	}

	var patientModels []*model.Patient
	for i := 0; i < *patients; i++ {
		p := &model.Patient{
			FirstName:         faker.FirstName(),
			LastName:          faker.LastName(),
			Email:             faker.Email(),
			Phone:             faker.Phone(),
			PreferredLanguage: languages[faker.IntRange(0, len(languages)-1)],
		}
		if err := patientRepo.Create(ctx, p); err != nil {
			log.Fatal(err, "failed to create patient")
		}
		patientModels = append(patientModels, p)
	}

	for i := 0; i < *appointments; i++ {
		facility := facilityModels[faker.IntRange(0, len(facilityModels)-1)]
		patient := patientModels[faker.IntRange(0, len(patientModels)-1)]
		date := time.Now().AddDate(0, 0, faker.IntRange(1, 30))
		start := time.Date(date.Year(), date.Month(), date.Day(), faker.IntRange(8, 16), 0, 0, 0, time.Local)

		apt := &model.Appointment{
			FacilityID:    facility.ID,
			PatientID:     patient.ID,
			CoordinatorID: admin.ID,
			Language:      patient.PreferredLanguage,
			Date:          date,
			StartTime:     start,
			EndTime:       start.Add(time.Duration(faker.IntRange(30, 120)) * time.Minute),
			Status:        model.AppointmentStatusPendingAuthorization,
		}
		if err := appointmentRepo.Create(ctx, apt); err != nil {
			log.Fatal(err, "failed to create appointment")
		}
	}

	log.Info("Seed complete",
		"facilities", *facilities,
		"interpreters", *interpreters,
		"patients", *patients,
		"appointments", *appointments)
}
