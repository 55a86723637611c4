package waitlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"icetea/internal/events"
	"icetea/internal/shared/errs"
	"icetea/pkg/clock"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository owns waitlist entries and the per-event current_entrants counter.
// Every write that touches the counter runs in one transaction holding the
// event row lock.
type Repository interface {
	Join(ctx context.Context, eventID uuid.UUID, userID string, loc *Location) (*Entry, bool, error)
	Leave(ctx context.Context, eventID uuid.UUID, userID string) (bool, error)
	GetEntry(ctx context.Context, eventID uuid.UUID, userID string) (*Entry, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]Entry, error)
	ListByUser(ctx context.Context, userID string) ([]Entry, error)
	ListByStatus(ctx context.Context, eventID uuid.UUID, statuses ...Status) ([]Entry, error)
	SetStatus(ctx context.Context, eventID uuid.UUID, userID string, to Status) (*Transition, error)
	ReconcileCounters(ctx context.Context) (int, error)
}

type repository struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewRepository(db *gorm.DB, clk clock.Clock) Repository {
	return &repository{db: db, clock: clk}
}

// Join adds userID to the event's waiting list. The bool result is false when
// the entrant was already on the list and the existing entry is returned as is.
func (r *repository) Join(ctx context.Context, eventID uuid.UUID, userID string, loc *Location) (*Entry, bool, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, false, errs.Invalid("user id is required")
	}

	var (
		result  *Entry
		created bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := events.LockForUpdate(tx, eventID)
		if err != nil {
			return err
		}

		existing, err := findEntry(tx, eventID, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return nil
		}

		if event.IsFull() {
			return fmt.Errorf("event %s has %d of %d spots taken: %w",
				eventID, event.CurrentEntrants, *event.Capacity, errs.ErrCapacityExceeded)
		}
		if event.GeolocationRequired && loc == nil {
			return errs.Invalid("this event requires your location to join")
		}

		entry := &Entry{
			EventID:  eventID,
			UserID:   userID,
			Status:   StatusWaiting,
			JoinedAt: r.clock.Now(),
		}
		if event.GeolocationRequired {
			lat, lng := loc.Latitude, loc.Longitude
			entry.Latitude = &lat
			entry.Longitude = &lng
		}

		if err := tx.Create(entry).Error; err != nil {
			return errs.Store("insert entry", err)
		}
		if err := setCurrentEntrants(tx, eventID, event.CurrentEntrants+1); err != nil {
			return err
		}

		result = entry
		created = true
		return nil
	})
	if err != nil {
		return nil, false, wrapTx("join", err)
	}
	return result, created, nil
}

// Leave deletes the entry and releases its spot. The bool result reports
// whether an entry existed.
func (r *repository) Leave(ctx context.Context, eventID uuid.UUID, userID string) (bool, error) {
	var removed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := events.LockForUpdate(tx, eventID)
		if err != nil {
			return err
		}

		entry, err := findEntry(tx, eventID, userID)
		if err != nil || entry == nil {
			return err
		}

		if err := tx.Where("event_id = ? AND user_id = ?", eventID, userID).Delete(&Entry{}).Error; err != nil {
			return errs.Store("delete entry", err)
		}
		// cancelled entries already gave their spot back
		if entry.Status.CountsTowardCapacity() {
			if err := setCurrentEntrants(tx, eventID, event.CurrentEntrants-1); err != nil {
				return err
			}
		}
		removed = true
		return nil
	})
	if err != nil {
		return false, wrapTx("leave", err)
	}
	return removed, nil
}

func (r *repository) GetEntry(ctx context.Context, eventID uuid.UUID, userID string) (*Entry, error) {
	entry, err := findEntry(r.db.WithContext(ctx), eventID, userID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("entry %s/%s: %w", eventID, userID, errs.ErrNotFound)
	}
	return entry, nil
}

func (r *repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("joined_at ASC, user_id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, errs.Store("list entries by event", err)
	}
	return entries, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("joined_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, errs.Store("list entries by user", err)
	}
	return entries, nil
}

func (r *repository) ListByStatus(ctx context.Context, eventID uuid.UUID, statuses ...Status) ([]Entry, error) {
	if len(statuses) == 0 {
		return r.ListByEvent(ctx, eventID)
	}
	var entries []Entry
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND status IN ?", eventID, statuses).
		Order("joined_at ASC, user_id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, errs.Store("list entries by status", err)
	}
	return entries, nil
}

// SetStatus moves one entry to a new status. A move into CANCELLED releases
// the entrant's spot in the same transaction.
func (r *repository) SetStatus(ctx context.Context, eventID uuid.UUID, userID string, to Status) (*Transition, error) {
	if !Reachable(to) {
		return nil, fmt.Errorf("%w: no entry can move to %s", errs.ErrInvalidStatusTransition, to)
	}

	var out *Transition
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := events.LockForUpdate(tx, eventID)
		if err != nil {
			return err
		}

		entry, err := lockEntry(tx, eventID, userID)
		if err != nil {
			return err
		}
		from := entry.Status
		if err := ValidateTransition(from, to); err != nil {
			return err
		}

		now := r.clock.Now()
		updates := map[string]interface{}{"status": to, "updated_at": now}
		if to == StatusSelected {
			updates["selected_at"] = now
		}
		res := tx.Model(&Entry{}).
			Where("event_id = ? AND user_id = ? AND status = ?", eventID, userID, from).
			Updates(updates)
		if res.Error != nil {
			return errs.Store("update entry status", res.Error)
		}
		if res.RowsAffected != 1 {
			return errs.Store("update entry status", fmt.Errorf("entry %s/%s changed concurrently", eventID, userID))
		}

		if from.CountsTowardCapacity() && !to.CountsTowardCapacity() {
			if err := setCurrentEntrants(tx, eventID, event.CurrentEntrants-1); err != nil {
				return err
			}
		}

		entry.Status = to
		entry.UpdatedAt = now
		if to == StatusSelected {
			entry.SelectedAt = &now
		}
		out = &Transition{Entry: entry, From: from}
		return nil
	})
	if err != nil {
		return nil, wrapTx("set status", err)
	}
	return out, nil
}

// ReconcileCounters recomputes current_entrants for every event from its
// entries and repairs any drift. It returns how many events were repaired.
func (r *repository) ReconcileCounters(ctx context.Context) (int, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&events.Event{}).Pluck("id", &ids).Error; err != nil {
		return 0, errs.Store("list events", err)
	}

	repaired := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return repaired, err
		}
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			event, err := events.LockForUpdate(tx, id)
			if err != nil {
				return err
			}
			var active int64
			err = tx.Model(&Entry{}).
				Where("event_id = ? AND status <> ?", id, StatusCancelled).
				Count(&active).Error
			if err != nil {
				return errs.Store("count entries", err)
			}
			if int(active) == event.CurrentEntrants {
				return nil
			}
			if err := setCurrentEntrants(tx, id, int(active)); err != nil {
				return err
			}
			repaired++
			return nil
		})
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return repaired, wrapTx("reconcile", err)
		}
	}
	return repaired, nil
}

// WaitingPool returns the WAITING entries of an event inside tx, oldest first
// with user id as tie-break, leaving out the given user ids.
func WaitingPool(tx *gorm.DB, eventID uuid.UUID, exclude ...string) ([]Entry, error) {
	q := tx.Where("event_id = ? AND status = ?", eventID, StatusWaiting)
	if len(exclude) > 0 {
		q = q.Where("user_id NOT IN ?", exclude)
	}
	var pool []Entry
	if err := q.Order("joined_at ASC, user_id ASC").Find(&pool).Error; err != nil {
		return nil, errs.Store("read waiting pool", err)
	}
	return pool, nil
}

// Promote moves the given WAITING entries to SELECTED inside tx. It fails
// unless every one of them was still WAITING.
func Promote(tx *gorm.DB, eventID uuid.UUID, userIDs []string, at time.Time) error {
	if len(userIDs) == 0 {
		return nil
	}
	res := tx.Model(&Entry{}).
		Where("event_id = ? AND status = ? AND user_id IN ?", eventID, StatusWaiting, userIDs).
		Updates(map[string]interface{}{
			"status":      StatusSelected,
			"selected_at": at,
			"updated_at":  at,
		})
	if res.Error != nil {
		return errs.Store("promote entries", res.Error)
	}
	if int(res.RowsAffected) != len(userIDs) {
		return errs.Store("promote entries",
			fmt.Errorf("expected %d waiting entries, updated %d", len(userIDs), res.RowsAffected))
	}
	return nil
}

// LockEntry reads one entry inside tx under a row lock.
func LockEntry(tx *gorm.DB, eventID uuid.UUID, userID string) (*Entry, error) {
	return lockEntry(tx, eventID, userID)
}

func lockEntry(tx *gorm.DB, eventID uuid.UUID, userID string) (*Entry, error) {
	var entry Entry
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("entry %s/%s: %w", eventID, userID, errs.ErrNotFound)
		}
		return nil, errs.Store("lock entry", err)
	}
	return &entry, nil
}

func findEntry(db *gorm.DB, eventID uuid.UUID, userID string) (*Entry, error) {
	var entries []Entry
	err := db.Where("event_id = ? AND user_id = ?", eventID, userID).Limit(1).Find(&entries).Error
	if err != nil {
		return nil, errs.Store("get entry", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func setCurrentEntrants(tx *gorm.DB, eventID uuid.UUID, n int) error {
	if n < 0 {
		return errs.Store("update counter", fmt.Errorf("current_entrants for %s would drop below zero", eventID))
	}
	err := tx.Model(&events.Event{}).Where("id = ?", eventID).Update("current_entrants", n).Error
	if err != nil {
		return errs.Store("update counter", err)
	}
	return nil
}

// wrapTx passes domain errors and already wrapped store errors through and
// wraps anything else, such as a failed commit, as a store failure.
func wrapTx(op string, err error) error {
	if errs.IsDomain(err) || errors.Is(err, errs.ErrStoreFailure) {
		return err
	}
	return errs.Store(op, err)
}
