package users

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is keyed by the device id the mobile client generates on install.
type User struct {
	ID                  string    `json:"id" gorm:"primaryKey;size:128"`
	DisplayName         string    `json:"display_name" gorm:"size:255"`
	Email               string    `json:"email" gorm:"size:255"`
	Phone               string    `json:"phone" gorm:"size:32"`
	Role                Role      `json:"role" gorm:"type:varchar(20);not null;default:'USER'"`
	DeviceSecretHash    string    `json:"-" gorm:"not null"`
	NotificationsOptOut bool      `json:"notifications_opt_out" gorm:"not null;default:false"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (u *User) NotificationsEnabled() bool {
	return !u.NotificationsOptOut
}

func IsValidRole(role string) bool {
	switch role {
	case string(RoleUser), string(RoleAdmin):
		return true
	default:
		return false
	}
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=1,max=255"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=32"`
}

type UpdatePreferencesRequest struct {
	NotificationsEnabled *bool `json:"notifications_enabled" validate:"required"`
}

type UserResponse struct {
	ID                   string    `json:"id"`
	DisplayName          string    `json:"display_name"`
	Email                string    `json:"email"`
	Phone                string    `json:"phone"`
	Role                 string    `json:"role"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func ToResponse(u *User) UserResponse {
	return UserResponse{
		ID:                   u.ID,
		DisplayName:          u.DisplayName,
		Email:                u.Email,
		Phone:                u.Phone,
		Role:                 string(u.Role),
		NotificationsEnabled: u.NotificationsEnabled(),
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}
