package waitlist

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"icetea/internal/shared/errs"
	"icetea/pkg/logger"
	"icetea/pkg/metrics"

	"github.com/google/uuid"
)

// Replacer backfills a vacancy left by a SELECTED entrant. The lottery engine
// implements it; declared here to avoid an import cycle.
type Replacer interface {
	Replace(ctx context.Context, eventID uuid.UUID, vacatingUserID string) (string, error)
}

type Service interface {
	SetReplacer(replacer Replacer)
	Join(ctx context.Context, eventID uuid.UUID, userID string, loc *Location) (*Entry, bool, error)
	Leave(ctx context.Context, eventID uuid.UUID, userID string) error
	GetEntry(ctx context.Context, eventID uuid.UUID, userID string) (*Entry, error)
	ListByUser(ctx context.Context, userID string) ([]Entry, error)
	ListEntrants(ctx context.Context, eventID uuid.UUID, status *Status) (*EntrantListResponse, error)
	Respond(ctx context.Context, eventID uuid.UUID, userID string, accept bool) (*Entry, error)
	Cancel(ctx context.Context, eventID uuid.UUID, userID string) (*Entry, error)
}

// ServiceConfig holds the waitlist service knobs
type ServiceConfig struct {
	// AutoReplace backfills a SELECTED entrant's spot as soon as they decline
	// or cancel.
	AutoReplace bool
}

func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{AutoReplace: true}
}

type service struct {
	repo     Repository
	replacer Replacer
	config   *ServiceConfig
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func NewService(repo Repository, m *metrics.Metrics, config *ServiceConfig) Service {
	if config == nil {
		config = DefaultServiceConfig()
	}
	return &service{
		repo:    repo,
		config:  config,
		metrics: m,
		logger:  logger.GetDefault(),
	}
}

func (s *service) SetReplacer(replacer Replacer) {
	s.replacer = replacer
}

func (s *service) Join(ctx context.Context, eventID uuid.UUID, userID string, loc *Location) (*Entry, bool, error) {
	start := time.Now()
	defer s.metrics.ObserveSince("join", start)

	entry, created, err := s.repo.Join(ctx, eventID, userID, loc)
	s.metrics.TrackWaitlistOp("join", err)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.logger.LogEntrantJoined(ctx, eventID.String(), userID)
	}
	return entry, created, nil
}

func (s *service) Leave(ctx context.Context, eventID uuid.UUID, userID string) error {
	removed, err := s.repo.Leave(ctx, eventID, userID)
	s.metrics.TrackWaitlistOp("leave", err)
	if err != nil {
		return err
	}
	if removed {
		s.logger.LogEntrantLeft(ctx, eventID.String(), userID)
	}
	return nil
}

func (s *service) GetEntry(ctx context.Context, eventID uuid.UUID, userID string) (*Entry, error) {
	return s.repo.GetEntry(ctx, eventID, userID)
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]Entry, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListEntrants(ctx context.Context, eventID uuid.UUID, status *Status) (*EntrantListResponse, error) {
	var (
		entries []Entry
		err     error
	)
	if status != nil {
		entries, err = s.repo.ListByStatus(ctx, eventID, *status)
	} else {
		entries, err = s.repo.ListByEvent(ctx, eventID)
	}
	if err != nil {
		return nil, err
	}

	counts := make(map[Status]int, len(AllStatuses))
	for _, e := range entries {
		counts[e.Status]++
	}
	return &EntrantListResponse{
		EventID: eventID.String(),
		Total:   len(entries),
		Counts:  counts,
		Entries: ToEntryResponses(entries),
	}, nil
}

// Respond records a SELECTED entrant's answer to their invitation.
func (s *service) Respond(ctx context.Context, eventID uuid.UUID, userID string, accept bool) (*Entry, error) {
	to := StatusDeclined
	if accept {
		to = StatusAccepted
	}
	return s.transition(ctx, eventID, userID, to, "respond")
}

// Cancel withdraws the entrant while keeping their entry on record.
func (s *service) Cancel(ctx context.Context, eventID uuid.UUID, userID string) (*Entry, error) {
	return s.transition(ctx, eventID, userID, StatusCancelled, "cancel")
}

func (s *service) transition(ctx context.Context, eventID uuid.UUID, userID string, to Status, op string) (*Entry, error) {
	tr, err := s.repo.SetStatus(ctx, eventID, userID, to)
	s.metrics.TrackWaitlistOp(op, err)
	if err != nil {
		return nil, err
	}
	s.logger.LogStatusChanged(ctx, eventID.String(), userID, string(tr.From), string(to))

	if tr.From == StatusSelected && (to == StatusDeclined || to == StatusCancelled) {
		s.backfill(ctx, eventID, userID)
	}
	return tr.Entry, nil
}

// backfill runs the automatic replacement. The entrant's own change has
// already committed, so replacement problems are logged rather than returned.
func (s *service) backfill(ctx context.Context, eventID uuid.UUID, vacatingUserID string) {
	if !s.config.AutoReplace || s.replacer == nil {
		return
	}
	promoted, err := s.replacer.Replace(ctx, eventID, vacatingUserID)
	switch {
	case errors.Is(err, errs.ErrNoWaitingEntrants):
		s.logger.InfoContext(ctx, "No waiting entrants to backfill vacancy",
			slog.String("event_id", eventID.String()),
			slog.String("vacating_user_id", vacatingUserID),
		)
	case err != nil:
		s.logger.WithError(err).ErrorContext(ctx, "Automatic replacement failed",
			slog.String("event_id", eventID.String()),
			slog.String("vacating_user_id", vacatingUserID),
		)
	default:
		s.logger.DebugContext(ctx, "Vacancy backfilled",
			slog.String("event_id", eventID.String()),
			slog.String("promoted_user_id", promoted),
		)
	}
}
