package waitlist

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one entrant's participation in one event's waiting list. The pair
// (event_id, user_id) is the primary key, so an entrant can appear at most once
// per event.
type Entry struct {
	EventID    uuid.UUID  `json:"event_id" gorm:"type:uuid;primaryKey;index:idx_waitlist_pool,priority:1"`
	UserID     string     `json:"user_id" gorm:"size:128;primaryKey;index"`
	Status     Status     `json:"status" gorm:"type:varchar(20);not null;index:idx_waitlist_pool,priority:2"`
	JoinedAt   time.Time  `json:"joined_at" gorm:"not null;index:idx_waitlist_pool,priority:3"`
	Latitude   *float64   `json:"latitude"`
	Longitude  *float64   `json:"longitude"`
	SelectedAt *time.Time `json:"selected_at"`
	ReplacedBy *string    `json:"replaced_by" gorm:"size:128"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Entry) TableName() string {
	return "waitlist_entries"
}

// WasSelected reports whether the entry was ever promoted by a draw or a
// replacement.
func (e *Entry) WasSelected() bool {
	return e.SelectedAt != nil
}

// Location is the device position captured at join time for events that
// require it.
type Location struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Transition is the outcome of a status change.
type Transition struct {
	Entry *Entry
	From  Status
}
