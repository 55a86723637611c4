package events

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"icetea/internal/shared/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetAll(ctx context.Context, query EventListQuery) ([]Event, int64, error)
	UpdateLocked(ctx context.Context, id uuid.UUID, apply func(*Event) error) (*Event, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// LockForUpdate reads the event row inside tx and holds its row lock until the
// transaction ends. Every counter or flag decision goes through it.
func LockForUpdate(tx *gorm.DB, id uuid.UUID) (*Event, error) {
	var event Event
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("event %s: %w", id, errs.ErrNotFound)
		}
		return nil, errs.Store("lock event", err)
	}
	return &event, nil
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return errs.Store("create event", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("event %s: %w", id, errs.ErrNotFound)
		}
		return nil, errs.Store("get event", err)
	}
	return &event, nil
}

func (r *repository) GetAll(ctx context.Context, query EventListQuery) ([]Event, int64, error) {
	var (
		events []Event
		total  int64
	)

	q := r.db.WithContext(ctx).Model(&Event{})
	if query.OrganizerID != "" {
		q = q.Where("organizer_id = ?", query.OrganizerID)
	}
	if s := strings.TrimSpace(query.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errs.Store("count events", err)
	}

	offset := (query.Page - 1) * query.Limit
	err := q.Order("created_at DESC").Offset(offset).Limit(query.Limit).Find(&events).Error
	if err != nil {
		return nil, 0, errs.Store("list events", err)
	}
	return events, total, nil
}

// UpdateLocked applies changes to the locked row and saves it in one
// transaction. apply may reject the change with a domain error.
func (r *repository) UpdateLocked(ctx context.Context, id uuid.UUID, apply func(*Event) error) (*Event, error) {
	var updated *Event
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := LockForUpdate(tx, id)
		if err != nil {
			return err
		}
		if err := apply(event); err != nil {
			return err
		}
		// counter and draw flag are owned by the waitlist and lottery
		if err := tx.Omit("current_entrants", "already_drew", "created_at").Save(event).Error; err != nil {
			return errs.Store("update event", err)
		}
		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
