package events

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Event struct {
	ID                   uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizerID          string     `json:"organizer_id" gorm:"size:128;not null;index"`
	Name                 string     `json:"name" gorm:"not null;size:255"`
	Description          string     `json:"description" gorm:"type:text"`
	Criteria             string     `json:"criteria" gorm:"type:text"`
	Location             string     `json:"location" gorm:"size:255"`
	Capacity             *int       `json:"capacity" gorm:"check:chk_events_capacity,capacity IS NULL OR capacity >= 0"`
	CurrentEntrants      int        `json:"current_entrants" gorm:"not null;default:0;check:chk_events_current_entrants,current_entrants >= 0"`
	AlreadyDrew          bool       `json:"already_drew" gorm:"not null;default:false"`
	GeolocationRequired  bool       `json:"geolocation_required" gorm:"not null;default:false"`
	RegistrationOpensAt  *time.Time `json:"registration_opens_at"`
	RegistrationClosesAt *time.Time `json:"registration_closes_at"`
	StartsAt             *time.Time `json:"starts_at"`
	CreatedAt            time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt            time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// HasCapacityLimit reports whether joins are bounded. Zero means unlimited.
func (e *Event) HasCapacityLimit() bool {
	return e.Capacity != nil && *e.Capacity > 0
}

// IsFull reports whether one more join would overbook the event.
func (e *Event) IsFull() bool {
	return e.HasCapacityLimit() && e.CurrentEntrants >= *e.Capacity
}

type EventResponse struct {
	ID                   string     `json:"id"`
	OrganizerID          string     `json:"organizer_id"`
	Name                 string     `json:"name"`
	Description          string     `json:"description"`
	Criteria             string     `json:"criteria"`
	Location             string     `json:"location"`
	Capacity             *int       `json:"capacity"`
	CurrentEntrants      int        `json:"current_entrants"`
	SpotsLeft            *int       `json:"spots_left"`
	AlreadyDrew          bool       `json:"already_drew"`
	GeolocationRequired  bool       `json:"geolocation_required"`
	RegistrationPhase    Phase      `json:"registration_phase"`
	RegistrationOpensAt  *time.Time `json:"registration_opens_at"`
	RegistrationClosesAt *time.Time `json:"registration_closes_at"`
	StartsAt             *time.Time `json:"starts_at"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type CreateEventRequest struct {
	Name                 string     `json:"name" validate:"required,min=3,max=255"`
	Description          string     `json:"description" validate:"max=4000"`
	Criteria             string     `json:"criteria" validate:"max=4000"`
	Location             string     `json:"location" validate:"max=255"`
	Capacity             *int       `json:"capacity" validate:"omitempty,min=0,max=100000"`
	GeolocationRequired  bool       `json:"geolocation_required"`
	RegistrationOpensAt  *time.Time `json:"registration_opens_at"`
	RegistrationClosesAt *time.Time `json:"registration_closes_at"`
	StartsAt             *time.Time `json:"starts_at"`
}

type UpdateEventRequest struct {
	Name                 *string    `json:"name" validate:"omitempty,min=3,max=255"`
	Description          *string    `json:"description" validate:"omitempty,max=4000"`
	Criteria             *string    `json:"criteria" validate:"omitempty,max=4000"`
	Location             *string    `json:"location" validate:"omitempty,max=255"`
	Capacity             *int       `json:"capacity" validate:"omitempty,min=0,max=100000"`
	GeolocationRequired  *bool      `json:"geolocation_required"`
	RegistrationOpensAt  *time.Time `json:"registration_opens_at"`
	RegistrationClosesAt *time.Time `json:"registration_closes_at"`
	StartsAt             *time.Time `json:"starts_at"`
}

type EventListQuery struct {
	Page        int    `form:"page" binding:"omitempty,min=1"`
	Limit       int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search      string `form:"search"`
	OrganizerID string `form:"-"`
}

type PaginatedEvents struct {
	Events     []EventResponse `json:"events"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}
