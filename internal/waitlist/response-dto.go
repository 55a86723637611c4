package waitlist

import "time"

type EntryResponse struct {
	EventID    string     `json:"event_id"`
	UserID     string     `json:"user_id"`
	Status     Status     `json:"status"`
	JoinedAt   time.Time  `json:"joined_at"`
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
	SelectedAt *time.Time `json:"selected_at,omitempty"`
	ReplacedBy *string    `json:"replaced_by,omitempty"`
}

type EntrantListResponse struct {
	EventID string          `json:"event_id"`
	Total   int             `json:"total"`
	Counts  map[Status]int  `json:"counts"`
	Entries []EntryResponse `json:"entries"`
}

func ToEntryResponse(e *Entry) EntryResponse {
	return EntryResponse{
		EventID:    e.EventID.String(),
		UserID:     e.UserID,
		Status:     e.Status,
		JoinedAt:   e.JoinedAt,
		Latitude:   e.Latitude,
		Longitude:  e.Longitude,
		SelectedAt: e.SelectedAt,
		ReplacedBy: e.ReplacedBy,
	}
}

func ToEntryResponses(entries []Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, ToEntryResponse(&entries[i]))
	}
	return out
}
