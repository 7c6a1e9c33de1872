package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/linguacare/admin-api/internal/repository"
	"github.com/linguacare/admin-api/internal/service/offer"
	apperrors "github.com/linguacare/admin-api/pkg/errors"
	"github.com/linguacare/admin-api/pkg/logger"
)

type OfferSweeperConfig struct {
	SweepInterval time.Duration
	StaleAfter    time.Duration
	LockTTL       time.Duration
}

// OfferSweeper periodically expands the offer radius for appointments that
// have sat awaiting an interpreter too long. A Redis lock per appointment
// keeps concurrent sweeper instances from double-expanding.
type OfferSweeper struct {
	appointments repository.AppointmentRepository
	offers       *offer.Service
	redis        *redis.Client
	config       OfferSweeperConfig
	logger       *logger.Logger
}

func NewOfferSweeper(
	appointments repository.AppointmentRepository,
	offers *offer.Service,
	redisClient *redis.Client,
	config OfferSweeperConfig,
	logger *logger.Logger,
) *OfferSweeper {
	if config.SweepInterval <= 0 {
		panic("SweepInterval must be greater than 0")
	}
	if config.StaleAfter <= 0 {
		panic("StaleAfter must be greater than 0")
	}
	if config.LockTTL <= 0 {
		config.LockTTL = time.Minute
	}

	return &OfferSweeper{
		appointments: appointments,
		offers:       offers,
		redis:        redisClient,
		config:       config,
		logger:       logger,
	}
}

func (s *OfferSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.config.SweepInterval)
	defer ticker.Stop()

	s.logger.Info("Starting offer sweeper")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Shutting down offer sweeper")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *OfferSweeper) sweep(ctx context.Context) {
	staleBefore := time.Now().Add(-s.config.StaleAfter)
	stale, err := s.appointments.ListAwaitingInterpreter(ctx, staleBefore)
	if err != nil {
		s.logger.Error(err, "Failed to list stale appointments")
		return
	}

	for _, apt := range stale {
		s.expandOne(ctx, apt.ID)
	}
}

func (s *OfferSweeper) expandOne(ctx context.Context, appointmentID uuid.UUID) {
	lockKey := "offer:sweep:" + appointmentID.String()
	locked, err := s.redis.SetNX(ctx, lockKey, "1", s.config.LockTTL).Result()
	if err != nil {
		s.logger.Error(err, "Failed to acquire sweep lock", "appointment_id", appointmentID.String())
		return
	}
	if !locked {
		return
	}
	defer s.redis.Del(ctx, lockKey)

	result, err := s.offers.ExpandRadius(ctx, appointmentID)
	if err != nil {
		switch {
		case apperrors.IsCode(err, apperrors.ErrMaxRadiusReached):
			// The pool is as wide as it gets. Staff have to resolve
			// this one manually.
			s.logger.Info("offer radius already at maximum", "appointment_id", appointmentID.String())
		case apperrors.IsCode(err, apperrors.ErrNotExpandable):
			// Status moved between the listing and the expansion.
		default:
			s.logger.Error(err, "Failed to expand offer", "appointment_id", appointmentID.String())
		}
		return
	}

	s.logger.Info("Sweeper expanded offer radius",
		"appointment_id", appointmentID.String(),
		"radius", result.Radius,
		"interpreters_added", len(result.NewInterpreters))
}
