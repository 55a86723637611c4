package lottery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"icetea/internal/events"
	"icetea/internal/notifications"
	"icetea/internal/shared/errs"
	"icetea/internal/waitlist"
	"icetea/pkg/clock"
	"icetea/pkg/logger"
	"icetea/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notifier is the part of the notification dispatcher the engine needs.
type Notifier interface {
	SendIfEnabled(ctx context.Context, userID string, eventID uuid.UUID, kind notifications.Type, title, message string) error
}

type Engine interface {
	Draw(ctx context.Context, eventID uuid.UUID, count int) ([]string, error)
	Replace(ctx context.Context, eventID uuid.UUID, vacatingUserID string) (string, error)
	Revoke(ctx context.Context, eventID uuid.UUID, userID string, replace bool) (*waitlist.Entry, string, error)
	ListDraws(ctx context.Context, eventID uuid.UUID) ([]DrawLog, error)
}

type EngineConfig struct {
	// NotifyNotSelected sends a NOT_SELECTED notification to every entrant
	// left WAITING after a draw.
	NotifyNotSelected bool
}

type engine struct {
	db       *gorm.DB
	entries  waitlist.Repository
	notifier Notifier
	rng      RandomSource
	clock    clock.Clock
	config   *EngineConfig
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func NewEngine(db *gorm.DB, entries waitlist.Repository, notifier Notifier, rng RandomSource, clk clock.Clock, m *metrics.Metrics, config *EngineConfig) Engine {
	if rng == nil {
		rng = NewRuntimeSource()
	}
	if config == nil {
		config = &EngineConfig{}
	}
	return &engine{
		db:       db,
		entries:  entries,
		notifier: notifier,
		rng:      rng,
		clock:    clk,
		config:   config,
		metrics:  m,
		logger:   logger.GetDefault(),
	}
}

// drawOutcome carries what the draw transaction committed.
type drawOutcome struct {
	eventName string
	poolSize  int
	winners   []string
	losers    []string
}

// Draw promotes count distinct WAITING entrants, chosen uniformly at random,
// and marks the event as drawn. Either all of it commits or none of it does.
func (e *engine) Draw(ctx context.Context, eventID uuid.UUID, count int) ([]string, error) {
	if count <= 0 {
		return nil, errs.Invalid("draw count must be positive, got %d", count)
	}

	start := time.Now()
	defer e.metrics.ObserveSince("draw", start)

	var out drawOutcome
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := events.LockForUpdate(tx, eventID)
		if err != nil {
			return err
		}
		if event.AlreadyDrew {
			return fmt.Errorf("event %s: %w", eventID, errs.ErrAlreadyDrew)
		}

		pool, err := waitlist.WaitingPool(tx, eventID)
		if err != nil {
			return err
		}
		if count > len(pool) {
			return fmt.Errorf("requested %d winners from a pool of %d: %w",
				count, len(pool), errs.ErrInsufficientEntrants)
		}

		ids := make([]string, len(pool))
		for i := range pool {
			ids[i] = pool[i].UserID
		}
		e.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		winners := ids[:count]

		now := e.clock.Now()
		if err := waitlist.Promote(tx, eventID, winners, now); err != nil {
			return err
		}

		res := tx.Model(&events.Event{}).
			Where("id = ? AND already_drew = ?", eventID, false).
			Updates(map[string]interface{}{"already_drew": true, "updated_at": now})
		if res.Error != nil {
			return errs.Store("mark event drawn", res.Error)
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("event %s: %w", eventID, errs.ErrAlreadyDrew)
		}

		drawLog := &DrawLog{
			EventID:   eventID,
			Requested: count,
			PoolSize:  len(pool),
			Winners:   strings.Join(winners, ","),
			CreatedAt: now,
		}
		if err := tx.Create(drawLog).Error; err != nil {
			return errs.Store("insert draw log", err)
		}

		out = drawOutcome{
			eventName: event.Name,
			poolSize:  len(pool),
			winners:   append([]string(nil), winners...),
			losers:    append([]string(nil), ids[count:]...),
		}
		return nil
	})
	e.metrics.TrackDraw(len(out.winners), err)
	if err != nil {
		return nil, wrapTx("draw", err)
	}
	e.logger.LogDrawCompleted(ctx, eventID.String(), count, out.poolSize)

	for _, userID := range out.winners {
		e.notify(ctx, userID, eventID, notifications.TypeWon, wonTitle, wonMessage(out.eventName))
	}
	if e.config.NotifyNotSelected {
		for _, userID := range out.losers {
			e.notify(ctx, userID, eventID, notifications.TypeNotSelected, notSelectedTitle, notSelectedMessage(out.eventName))
		}
	}
	return out.winners, nil
}

// Replace fills the vacancy left by a SELECTED entrant who declined or was
// cancelled. The earliest joined WAITING entrant is promoted, ties broken by
// user id.
func (e *engine) Replace(ctx context.Context, eventID uuid.UUID, vacatingUserID string) (string, error) {
	start := time.Now()
	defer e.metrics.ObserveSince("replace", start)

	var (
		promoted  string
		eventName string
	)
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := events.LockForUpdate(tx, eventID)
		if err != nil {
			return err
		}

		vacating, err := waitlist.LockEntry(tx, eventID, vacatingUserID)
		if err != nil {
			return err
		}
		if err := checkVacancy(vacating); err != nil {
			return err
		}

		pool, err := waitlist.WaitingPool(tx, eventID, vacatingUserID)
		if err != nil {
			return err
		}
		if len(pool) == 0 {
			return fmt.Errorf("event %s: %w", eventID, errs.ErrNoWaitingEntrants)
		}
		next := pool[0].UserID

		now := e.clock.Now()
		if err := waitlist.Promote(tx, eventID, []string{next}, now); err != nil {
			return err
		}
		err = tx.Model(&waitlist.Entry{}).
			Where("event_id = ? AND user_id = ?", eventID, vacatingUserID).
			Updates(map[string]interface{}{"replaced_by": next, "updated_at": now}).Error
		if err != nil {
			return errs.Store("record replacement", err)
		}

		promoted = next
		eventName = event.Name
		return nil
	})
	e.metrics.TrackReplacement(err)
	if err != nil {
		return "", wrapTx("replace", err)
	}

	e.logger.LogReplacement(ctx, eventID.String(), vacatingUserID, promoted)
	e.notify(ctx, promoted, eventID, notifications.TypeWon, wonTitle, wonMessage(eventName))
	return promoted, nil
}

// checkVacancy accepts only entries that left the SELECTED state and have not
// been backfilled yet.
func checkVacancy(entry *waitlist.Entry) error {
	switch {
	case entry.Status == waitlist.StatusDeclined:
	case entry.Status == waitlist.StatusCancelled && entry.WasSelected():
	default:
		return fmt.Errorf("%w: %s is %s and holds no vacated spot",
			errs.ErrInvalidStatusTransition, entry.UserID, entry.Status)
	}
	if entry.ReplacedBy != nil {
		return fmt.Errorf("%w: spot of %s was already given to %s",
			errs.ErrInvalidStatusTransition, entry.UserID, *entry.ReplacedBy)
	}
	return nil
}

// Revoke cancels a WAITING or SELECTED entrant on the organizer's behalf. When
// replace is set and the entrant held a winning spot, the freed spot is offered
// to the next WAITING entrant; the returned id is empty when nobody was
// promoted.
func (e *engine) Revoke(ctx context.Context, eventID uuid.UUID, userID string, replace bool) (*waitlist.Entry, string, error) {
	current, err := e.entries.GetEntry(ctx, eventID, userID)
	if err != nil {
		return nil, "", err
	}
	if current.Status != waitlist.StatusSelected && current.Status != waitlist.StatusWaiting {
		return nil, "", fmt.Errorf("%w: cannot revoke an entrant who is %s",
			errs.ErrInvalidStatusTransition, current.Status)
	}

	tr, err := e.entries.SetStatus(ctx, eventID, userID, waitlist.StatusCancelled)
	if err != nil {
		return nil, "", err
	}
	e.logger.LogStatusChanged(ctx, eventID.String(), userID, string(tr.From), string(waitlist.StatusCancelled))

	name := e.eventName(ctx, eventID)
	e.notify(ctx, userID, eventID, notifications.TypeRevoked, revokedTitle, revokedMessage(name, tr.From == waitlist.StatusSelected))

	if !replace || tr.From != waitlist.StatusSelected {
		return tr.Entry, "", nil
	}
	promoted, err := e.Replace(ctx, eventID, userID)
	if errors.Is(err, errs.ErrNoWaitingEntrants) {
		return tr.Entry, "", nil
	}
	if err != nil {
		return tr.Entry, "", err
	}
	return tr.Entry, promoted, nil
}

func (e *engine) ListDraws(ctx context.Context, eventID uuid.UUID) ([]DrawLog, error) {
	var logs []DrawLog
	err := e.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, errs.Store("list draw logs", err)
	}
	return logs, nil
}

// notify runs after the state change has committed, so a failure is logged
// and never undoes the promotion.
func (e *engine) notify(ctx context.Context, userID string, eventID uuid.UUID, kind notifications.Type, title, message string) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.SendIfEnabled(ctx, userID, eventID, kind, title, message); err != nil {
		e.logger.WithError(err).ErrorContext(ctx, "Failed to notify entrant",
			slog.String("event_id", eventID.String()),
			slog.String("user_id", userID),
			slog.String("type", string(kind)),
		)
	}
}

func (e *engine) eventName(ctx context.Context, eventID uuid.UUID) string {
	var names []string
	err := e.db.WithContext(ctx).Model(&events.Event{}).Where("id = ?", eventID).Pluck("name", &names).Error
	if err != nil || len(names) == 0 {
		return "the event"
	}
	return names[0]
}

func wrapTx(op string, err error) error {
	if errs.IsDomain(err) || errors.Is(err, errs.ErrStoreFailure) {
		return err
	}
	return errs.Store(op, err)
}
