package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/linguacare/admin-api/internal/config"
	"github.com/linguacare/admin-api/internal/email"
	"github.com/linguacare/admin-api/internal/handler"
	appointmentHandler "github.com/linguacare/admin-api/internal/handler/appointment"
	auditHandler "github.com/linguacare/admin-api/internal/handler/audit"
	authHandler "github.com/linguacare/admin-api/internal/handler/auth"
	facilityHandler "github.com/linguacare/admin-api/internal/handler/facility"
	healthHandler "github.com/linguacare/admin-api/internal/handler/health"
	interpreterHandler "github.com/linguacare/admin-api/internal/handler/interpreter"
	invoiceHandler "github.com/linguacare/admin-api/internal/handler/invoice"
	notificationHandler "github.com/linguacare/admin-api/internal/handler/notification"
	patientHandler "github.com/linguacare/admin-api/internal/handler/patient"
	"github.com/linguacare/admin-api/internal/middleware"
	"github.com/linguacare/admin-api/internal/repository/postgres"
	"github.com/linguacare/admin-api/internal/router"
	appointmentService "github.com/linguacare/admin-api/internal/service/appointment"
	auditService "github.com/linguacare/admin-api/internal/service/audit"
	authService "github.com/linguacare/admin-api/internal/service/auth"
	invoiceService "github.com/linguacare/admin-api/internal/service/invoice"
	notificationService "github.com/linguacare/admin-api/internal/service/notification"
	offerService "github.com/linguacare/admin-api/internal/service/offer"
	"github.com/linguacare/admin-api/pkg/auth"
	"github.com/linguacare/admin-api/pkg/logger"
	"github.com/linguacare/admin-api/pkg/messaging/redis"
	"github.com/linguacare/admin-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Logging.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.ZL)
	if err != nil {
		log.Fatal(err, "failed to connect to Redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics("linguacare", "api")

	appointmentRepo := postgres.NewAppointmentRepository(db)
	facilityRepo := postgres.NewFacilityRepository(db)
	interpreterRepo := postgres.NewInterpreterRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	offerRepo := postgres.NewOfferRepository(db)
	userRepo := postgres.NewUserRepository(db)
	invoiceRepo := postgres.NewInvoiceRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	outboxRepo := postgres.NewOutboxRepository(postgres.NewBaseRepository(db))

	var mailer email.Service = email.Noop{}
	if cfg.SMTP.Host != "" {
		mailer = email.NewSMTPService(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authSvc := authService.NewService(userRepo, jwtSvc, time.Duration(cfg.JWT.ExpiryHours)*time.Hour, log)
	auditSvc := auditService.NewService(auditRepo, log)
	notificationSvc := notificationService.NewService(notificationRepo, outboxRepo, mailer, m, log)
	invoiceSvc := invoiceService.NewService(invoiceRepo, notificationSvc, log)
	appointmentSvc := appointmentService.NewService(appointmentRepo, offerRepo, notificationSvc, invoiceSvc, auditSvc, log)
	offerSvc := offerService.NewService(offerService.Config{
		StepMiles: cfg.Offer.StepMiles,
		MaxMiles:  cfg.Offer.MaxMiles,
		CacheTTL:  cfg.Offer.CacheTTL,
	}, appointmentRepo, facilityRepo, interpreterRepo, offerRepo, notificationSvc, m, log)

	if err := handler.RegisterValidators(); err != nil {
		log.Fatal(err, "failed to register validators")
	}

	authMW := middleware.NewAuthMiddleware(authSvc)
	r := router.New(cfg, authMW, router.Handlers{
		Health:       healthHandler.NewHandler(db, broker),
		Auth:         authHandler.NewHandler(authSvc),
		Appointment:  appointmentHandler.NewHandler(appointmentSvc, offerSvc),
		Notification: notificationHandler.NewHandler(notificationSvc),
		Facility:     facilityHandler.NewHandler(facilityRepo),
		Interpreter:  interpreterHandler.NewHandler(interpreterRepo),
		Patient:      patientHandler.NewHandler(patientRepo),
		Invoice:      invoiceHandler.NewHandler(invoiceSvc),
		Audit:        auditHandler.NewHandler(auditSvc),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Starting API server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "forced shutdown")
	}
}
