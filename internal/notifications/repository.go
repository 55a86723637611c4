package notifications

import (
	"context"

	"icetea/internal/shared/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Notification, error)
	CreateLog(ctx context.Context, log *NotificationLog) error
	ListLogs(ctx context.Context, eventID uuid.UUID) ([]NotificationLog, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return errs.Store("insert notification", err)
	}
	return nil
}

// ListByUser returns the newest notifications first.
func (r *repository) ListByUser(ctx context.Context, userID string, limit int) ([]Notification, error) {
	var out []Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, errs.Store("list notifications", err)
	}
	return out, nil
}

func (r *repository) CreateLog(ctx context.Context, log *NotificationLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return errs.Store("insert notification log", err)
	}
	return nil
}

func (r *repository) ListLogs(ctx context.Context, eventID uuid.UUID) ([]NotificationLog, error) {
	var out []NotificationLog
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, errs.Store("list notification logs", err)
	}
	return out, nil
}
