package notifications

import (
	"context"
	"log/slog"
	"strings"

	"icetea/internal/shared/errs"
	"icetea/internal/waitlist"
	"icetea/pkg/clock"
	"icetea/pkg/logger"
	"icetea/pkg/metrics"

	"github.com/google/uuid"
)

const defaultListLimit = 50

// PreferenceReader reports whether a user wants notifications. Unknown users
// are reported as disabled.
type PreferenceReader interface {
	NotificationsEnabled(ctx context.Context, userID string) (bool, error)
}

// EntrantLister finds broadcast recipients. waitlist.Repository satisfies it.
type EntrantLister interface {
	ListByStatus(ctx context.Context, eventID uuid.UUID, statuses ...waitlist.Status) ([]waitlist.Entry, error)
}

type Dispatcher interface {
	SendIfEnabled(ctx context.Context, userID string, eventID uuid.UUID, kind Type, title, message string) error
	Broadcast(ctx context.Context, eventID uuid.UUID, senderID string, statuses []waitlist.Status, title, message string) (*NotificationLog, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]Notification, error)
	ListLogs(ctx context.Context, eventID uuid.UUID) ([]NotificationLog, error)
}

type dispatcher struct {
	repo      Repository
	prefs     PreferenceReader
	entrants  EntrantLister
	publisher Publisher
	clock     clock.Clock
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// NewDispatcher builds a dispatcher. publisher may be nil when no downstream
// delivery is configured.
func NewDispatcher(repo Repository, prefs PreferenceReader, entrants EntrantLister, publisher Publisher, clk clock.Clock, m *metrics.Metrics) Dispatcher {
	return &dispatcher{
		repo:      repo,
		prefs:     prefs,
		entrants:  entrants,
		publisher: publisher,
		clock:     clk,
		metrics:   m,
		logger:    logger.GetDefault(),
	}
}

// SendIfEnabled stores one notification unless the user opted out. Calling it
// twice stores two records.
func (d *dispatcher) SendIfEnabled(ctx context.Context, userID string, eventID uuid.UUID, kind Type, title, message string) error {
	_, err := d.send(ctx, userID, eventID, kind, title, message)
	return err
}

func (d *dispatcher) send(ctx context.Context, userID string, eventID uuid.UUID, kind Type, title, message string) (bool, error) {
	enabled, err := d.prefs.NotificationsEnabled(ctx, userID)
	if err != nil {
		d.record(ctx, userID, eventID, OutcomeFailed)
		return false, err
	}
	if !enabled {
		d.record(ctx, userID, eventID, OutcomeOptedOut)
		return false, nil
	}

	n := &Notification{
		UserID:    userID,
		EventID:   eventID,
		Type:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: d.clock.Now(),
	}
	if err := d.repo.Create(ctx, n); err != nil {
		d.record(ctx, userID, eventID, OutcomeFailed)
		return false, err
	}
	d.record(ctx, userID, eventID, OutcomeStored)

	if d.publisher != nil {
		if err := d.publisher.Publish(ctx, n); err != nil {
			d.metrics.TrackNotification(OutcomePublishFailed)
			d.logger.WithError(err).WarnContext(ctx, "Failed to publish notification",
				slog.String("notification_id", n.ID.String()),
				slog.String("user_id", userID),
			)
		} else {
			d.metrics.TrackNotification(OutcomePublished)
		}
	}
	return true, nil
}

func (d *dispatcher) record(ctx context.Context, userID string, eventID uuid.UUID, outcome string) {
	d.metrics.TrackNotification(outcome)
	d.logger.LogNotification(ctx, userID, eventID.String(), outcome)
}

// Broadcast sends an organizer message to every entrant of the event whose
// status is one of statuses, and records the send in a NotificationLog. A
// failed recipient is counted and skipped; the log is written regardless.
func (d *dispatcher) Broadcast(ctx context.Context, eventID uuid.UUID, senderID string, statuses []waitlist.Status, title, message string) (*NotificationLog, error) {
	if len(statuses) == 0 {
		return nil, errs.Invalid("at least one status is required")
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(message) == "" {
		return nil, errs.Invalid("title and message are required")
	}

	entries, err := d.entrants.ListByStatus(ctx, eventID, statuses...)
	if err != nil {
		return nil, err
	}

	delivered, failed := 0, 0
	for _, e := range entries {
		ok, err := d.send(ctx, e.UserID, eventID, TypeBroadcast, title, message)
		if err != nil {
			failed++
			d.logger.WithError(err).WarnContext(ctx, "Broadcast delivery failed",
				slog.String("event_id", eventID.String()),
				slog.String("user_id", e.UserID),
			)
			continue
		}
		if ok {
			delivered++
		}
	}

	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	entry := &NotificationLog{
		EventID:    eventID,
		SenderID:   senderID,
		Title:      title,
		Message:    message,
		Statuses:   strings.Join(names, ","),
		Recipients: len(entries),
		Delivered:  delivered,
		Failed:     failed,
		CreatedAt:  d.clock.Now(),
	}
	if err := d.repo.CreateLog(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (d *dispatcher) ListForUser(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return d.repo.ListByUser(ctx, userID, limit)
}

func (d *dispatcher) ListLogs(ctx context.Context, eventID uuid.UUID) ([]NotificationLog, error) {
	return d.repo.ListLogs(ctx, eventID)
}
