package users

import (
	"context"
	"errors"
	"fmt"

	"icetea/internal/shared/errs"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest) (*User, error)
	SetNotificationsEnabled(ctx context.Context, id string, enabled bool) error
	NotificationsEnabled(ctx context.Context, id string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return errs.Store("create user", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, errs.ErrNotFound)
		}
		return nil, errs.Store("get user", err)
	}
	return &user, nil
}

func (r *repository) UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest) (*User, error) {
	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}

	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, errs.Store("update user", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, fmt.Errorf("user %s: %w", id, errs.ErrNotFound)
		}
	}
	return r.GetByID(ctx, id)
}

func (r *repository) SetNotificationsEnabled(ctx context.Context, id string, enabled bool) error {
	result := r.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", id).
		Update("notifications_opt_out", !enabled)
	if result.Error != nil {
		return errs.Store("update preferences", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", id, errs.ErrNotFound)
	}
	return nil
}

// NotificationsEnabled reports the user's preference. A device that never
// registered has nowhere to receive notifications and reads as disabled.
func (r *repository) NotificationsEnabled(ctx context.Context, id string) (bool, error) {
	var optOut []bool
	err := r.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", id).
		Limit(1).
		Pluck("notifications_opt_out", &optOut).Error
	if err != nil {
		return false, errs.Store("read preferences", err)
	}
	if len(optOut) == 0 {
		return false, nil
	}
	return !optOut[0], nil
}
