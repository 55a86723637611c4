package notifications

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Type string

const (
	TypeWon         Type = "WON"
	TypeRevoked     Type = "REVOKED"
	TypeNotSelected Type = "NOT_SELECTED"
	TypeBroadcast   Type = "BROADCAST"
)

// Delivery outcomes used for logs and metrics
const (
	OutcomeStored        = "stored"
	OutcomeOptedOut      = "opted_out"
	OutcomeFailed        = "failed"
	OutcomePublished     = "published"
	OutcomePublishFailed = "publish_failed"
)

// Notification is an append-only inbox record. Records are never updated.
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    string    `gorm:"size:128;not null;index:idx_notifications_user_created,priority:1" json:"user_id"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	Type      Type      `gorm:"size:20;not null" json:"type"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"not null;index:idx_notifications_user_created,priority:2" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// PartitionKey keeps every message for one user on the same partition.
func (n *Notification) PartitionKey() string {
	return n.UserID
}

func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// NotificationLog records one organizer broadcast.
type NotificationLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	EventID    uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	SenderID   string    `gorm:"size:128;not null" json:"sender_id"`
	Title      string    `gorm:"size:200;not null" json:"title"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	Statuses   string    `gorm:"size:100;not null" json:"-"`
	Recipients int       `gorm:"not null;default:0" json:"recipients"`
	Delivered  int       `gorm:"not null;default:0" json:"delivered"`
	Failed     int       `gorm:"not null;default:0" json:"failed"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (l *NotificationLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// StatusList splits the stored comma list.
func (l *NotificationLog) StatusList() []string {
	if l.Statuses == "" {
		return nil
	}
	return strings.Split(l.Statuses, ",")
}

type BroadcastRequest struct {
	Statuses []string `json:"statuses" validate:"required,min=1,dive,required"`
	Title    string   `json:"title" validate:"required,min=1,max=200"`
	Message  string   `json:"message" validate:"required,min=1,max=2000"`
}

type ListQuery struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=200"`
}

type LogResponse struct {
	ID         uuid.UUID `json:"id"`
	EventID    uuid.UUID `json:"event_id"`
	SenderID   string    `json:"sender_id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Statuses   []string  `json:"statuses"`
	Recipients int       `json:"recipients"`
	Delivered  int       `json:"delivered"`
	Failed     int       `json:"failed"`
	CreatedAt  time.Time `json:"created_at"`
}

func ToLogResponse(l *NotificationLog) LogResponse {
	return LogResponse{
		ID:         l.ID,
		EventID:    l.EventID,
		SenderID:   l.SenderID,
		Title:      l.Title,
		Message:    l.Message,
		Statuses:   l.StatusList(),
		Recipients: l.Recipients,
		Delivered:  l.Delivered,
		Failed:     l.Failed,
		CreatedAt:  l.CreatedAt,
	}
}
