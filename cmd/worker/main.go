package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/linguacare/admin-api/internal/config"
	"github.com/linguacare/admin-api/internal/email"
	"github.com/linguacare/admin-api/internal/repository/postgres"
	notificationService "github.com/linguacare/admin-api/internal/service/notification"
	offerService "github.com/linguacare/admin-api/internal/service/offer"
	"github.com/linguacare/admin-api/pkg/logger"
	"github.com/linguacare/admin-api/pkg/messaging/redis"
	"github.com/linguacare/admin-api/pkg/metrics"
	"github.com/linguacare/admin-api/pkg/worker"
)

// The worker binary runs the outbox processor (publishes queued
// notifications to Redis) and the offer sweeper (expands stale offer pools).
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

	m := metrics.NewMetrics("linguacare", "worker")

	appointmentRepo := postgres.NewAppointmentRepository(db)
	facilityRepo := postgres.NewFacilityRepository(db)
	interpreterRepo := postgres.NewInterpreterRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	offerRepo := postgres.NewOfferRepository(db)
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

	notificationSvc := notificationService.NewService(notificationRepo, outboxRepo, mailer, m, log)
	offerSvc := offerService.NewService(offerService.Config{
		StepMiles: cfg.Offer.StepMiles,
		MaxMiles:  cfg.Offer.MaxMiles,
		CacheTTL:  cfg.Offer.CacheTTL,
	}, appointmentRepo, facilityRepo, interpreterRepo, offerRepo, notificationSvc, m, log)

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay,
		RetainFor:     cfg.Outbox.RetainFor,
	}, log, m)

	sweeper := worker.NewOfferSweeper(appointmentRepo, offerSvc, broker.Client(), worker.OfferSweeperConfig{
		SweepInterval: cfg.Offer.SweepInterval,
		StaleAfter:    cfg.Offer.StaleAfter,
	}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		sweeper.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down workers")
	cancel()
	wg.Wait()
}
