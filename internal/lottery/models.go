package lottery

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DrawLog is the audit record of one committed draw.
type DrawLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	Requested int       `gorm:"not null" json:"requested"`
	PoolSize  int       `gorm:"not null" json:"pool_size"`
	Winners   string    `gorm:"type:text;not null" json:"-"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (d *DrawLog) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (d *DrawLog) WinnerIDs() []string {
	if d.Winners == "" {
		return nil
	}
	return strings.Split(d.Winners, ",")
}

type DrawRequest struct {
	Count int `json:"count" validate:"required,min=1"`
}

type ReplaceRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
}

type RevokeRequest struct {
	// Replace defaults to the server's auto-replace setting when omitted.
	Replace *bool `json:"replace"`
}

type DrawResponse struct {
	EventID string   `json:"event_id"`
	Winners []string `json:"winners"`
}

type ReplaceResponse struct {
	EventID        string `json:"event_id"`
	VacatingUserID string `json:"vacating_user_id"`
	PromotedUserID string `json:"promoted_user_id"`
}

type RevokeResponse struct {
	EventID        string `json:"event_id"`
	UserID         string `json:"user_id"`
	Status         string `json:"status"`
	PromotedUserID string `json:"promoted_user_id,omitempty"`
}

type DrawLogResponse struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	Requested int       `json:"requested"`
	PoolSize  int       `json:"pool_size"`
	Winners   []string  `json:"winners"`
	CreatedAt time.Time `json:"created_at"`
}

func ToDrawLogResponses(logs []DrawLog) []DrawLogResponse {
	out := make([]DrawLogResponse, len(logs))
	for i := range logs {
		out[i] = DrawLogResponse{
			ID:        logs[i].ID,
			EventID:   logs[i].EventID,
			Requested: logs[i].Requested,
			PoolSize:  logs[i].PoolSize,
			Winners:   logs[i].WinnerIDs(),
			CreatedAt: logs[i].CreatedAt,
		}
	}
	return out
}
