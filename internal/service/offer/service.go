package offer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/linguacare/admin-api/internal/model"
	"github.com/linguacare/admin-api/internal/repository"
	"github.com/linguacare/admin-api/internal/service/notification"
	apperrors "github.com/linguacare/admin-api/pkg/errors"
	"github.com/linguacare/admin-api/pkg/geo"
	"github.com/linguacare/admin-api/pkg/logger"
	"github.com/linguacare/admin-api/pkg/metrics"
)

// Config tunes the expansion policy. The radius grows by StepMiles per
// expansion and never exceeds MaxMiles.
type Config struct {
	StepMiles float64
	MaxMiles  float64
	CacheTTL  time.Duration
}

// Result is what one expansion produced: the new radius and only the
// interpreters added by this expansion. Interpreters notified by earlier
// expansions never reappear here.
type Result struct {
	Radius          float64              `json:"radius_miles"`
	NewInterpreters []*model.Interpreter `json:"new_interpreters"`
}

type Service struct {
	cfg          Config
	appointments repository.AppointmentRepository
	facilities   repository.FacilityRepository
	interpreters repository.InterpreterRepository
	offers       repository.OfferRepository
	fanout       *notification.Service
	cache        *gocache.Cache
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

func NewService(
	cfg Config,
	appointments repository.AppointmentRepository,
	facilities repository.FacilityRepository,
	interpreters repository.InterpreterRepository,
	offers repository.OfferRepository,
	fanout *notification.Service,
	m *metrics.Metrics,
	l *logger.Logger,
) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	return &Service{
		cfg:          cfg,
		appointments: appointments,
		facilities:   facilities,
		interpreters: interpreters,
		offers:       offers,
		fanout:       fanout,
		cache:        gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		metrics:      m,
		logger:       l,
	}
}

// ExpandRadius grows the appointment's offer radius one step and invites the
// interpreters the larger circle newly covers. The radius only moves
// forward; expanding twice can never shrink the pool or re-invite anyone.
func (s *Service) ExpandRadius(ctx context.Context, appointmentID uuid.UUID) (*Result, error) {
	apt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, apperrors.NotFound("appointment", err)
	}

	if !apt.Status.AwaitingInterpreter() {
		return nil, apperrors.NotExpandable(string(apt.Status))
	}
	if apt.OfferRadius >= s.cfg.MaxMiles {
		s.metrics.OfferMaxRadiusHit.Inc()
		return nil, apperrors.MaxRadiusReached(apt.OfferRadius)
	}

	newRadius := apt.OfferRadius + s.cfg.StepMiles
	if newRadius > s.cfg.MaxMiles {
		newRadius = s.cfg.MaxMiles
	}

	facility, err := s.getFacility(ctx, apt.FacilityID)
	if err != nil {
		return nil, apperrors.NotFound("facility", err)
	}
	candidates, err := s.activeInterpreters(ctx)
	if err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("failed to load interpreters: %w", err))
	}
	notified, err := s.offers.ListNotifiedInterpreters(ctx, appointmentID)
	if err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("failed to load offer pool: %w", err))
	}
	already := make(map[uuid.UUID]bool, len(notified))
	for _, id := range notified {
		already[id] = true
	}

	origin := facility.Location()
	var added []*model.Interpreter
	for _, interp := range candidates {
		if already[interp.ID] || !interp.Speaks(apt.Language) {
			continue
		}
		dist := geo.DistanceMiles(origin, interp.Location())
		if dist > newRadius {
			continue
		}
		if interp.CoverageMiles > 0 && dist > interp.CoverageMiles {
			continue
		}
		added = append(added, interp)
	}

	now := time.Now()
	if err := s.appointments.UpdateOffer(ctx, appointmentID, newRadius, now); err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("failed to persist offer radius: %w", err))
	}
	apt.OfferRadius = newRadius
	apt.OfferExpandedAt = &now

	if len(added) > 0 {
		ids := make([]uuid.UUID, len(added))
		for i, interp := range added {
			ids[i] = interp.ID
		}
		if err := s.offers.RecordNotified(ctx, appointmentID, ids); err != nil {
			return nil, apperrors.Persistence(fmt.Errorf("failed to record notified interpreters: %w", err))
		}
		if err := s.fanout.OnRadiusExpanded(ctx, apt, facility, added); err != nil {
			s.logger.Error(err, "offer invite fan-out failed",
				"appointment_id", appointmentID.String(), "radius", newRadius)
		}
	}

	s.metrics.OfferExpansions.Inc()
	s.metrics.OfferInterpretersAdded.Add(float64(len(added)))
	s.logger.Info("offer radius expanded",
		"appointment_id", appointmentID.String(),
		"radius", newRadius,
		"interpreters_added", len(added))

	return &Result{Radius: newRadius, NewInterpreters: added}, nil
}

// ListNotified returns the interpreter IDs already invited for an
// appointment.
func (s *Service) ListNotified(ctx context.Context, appointmentID uuid.UUID) ([]uuid.UUID, error) {
	return s.offers.ListNotifiedInterpreters(ctx, appointmentID)
}

func (s *Service) getFacility(ctx context.Context, id uuid.UUID) (*model.Facility, error) {
	key := "facility:" + id.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*model.Facility), nil
	}
	facility, err := s.facilities.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, facility)
	return facility, nil
}

func (s *Service) activeInterpreters(ctx context.Context) ([]*model.Interpreter, error) {
	const key = "interpreters:active"
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.Interpreter), nil
	}
	interpreters, err := s.interpreters.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, interpreters)
	return interpreters, nil
}
