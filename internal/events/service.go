package events

import (
	"context"
	"errors"
	"math"

	"icetea/internal/shared/errs"
	"icetea/pkg/clock"
	"icetea/pkg/logger"

	"github.com/google/uuid"
)

var ErrNotOrganizer = errors.New("only the event organizer can do that")

type Service interface {
	CreateEvent(ctx context.Context, organizerID string, req CreateEventRequest) (*EventResponse, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*EventResponse, error)
	// Authorize returns nil when userID may run organizer actions on the event.
	Authorize(ctx context.Context, eventID uuid.UUID, userID string, isAdmin bool) error
}

type service struct {
	repo   Repository
	clock  clock.Clock
	logger *logger.Logger
}

func NewService(repo Repository, clk clock.Clock) Service {
	return &service{
		repo:   repo,
		clock:  clk,
		logger: logger.GetDefault(),
	}
}

func (s *service) CreateEvent(ctx context.Context, organizerID string, req CreateEventRequest) (*EventResponse, error) {
	if req.RegistrationOpensAt != nil && req.RegistrationClosesAt != nil &&
		!req.RegistrationClosesAt.After(*req.RegistrationOpensAt) {
		return nil, errs.Invalid("registration must close after it opens")
	}

	event := &Event{
		OrganizerID:          organizerID,
		Name:                 req.Name,
		Description:          req.Description,
		Criteria:             req.Criteria,
		Location:             req.Location,
		Capacity:             normalizeCapacity(req.Capacity),
		GeolocationRequired:  req.GeolocationRequired,
		RegistrationOpensAt:  req.RegistrationOpensAt,
		RegistrationClosesAt: req.RegistrationClosesAt,
		StartsAt:             req.StartsAt,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.logger.LogEventCreated(ctx, event.ID.String(), organizerID)
	resp := s.toResponse(event)
	return &resp, nil
}

func (s *service) GetEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(event)
	return &resp, nil
}

func (s *service) GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	events, total, err := s.repo.GetAll(ctx, query)
	if err != nil {
		return nil, err
	}

	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, s.toResponse(&events[i]))
	}

	return &PaginatedEvents{
		Events:     out,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(query.Limit))),
	}, nil
}

func (s *service) UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*EventResponse, error) {
	event, err := s.repo.UpdateLocked(ctx, id, func(e *Event) error {
		if req.Name != nil {
			e.Name = *req.Name
		}
		if req.Description != nil {
			e.Description = *req.Description
		}
		if req.Criteria != nil {
			e.Criteria = *req.Criteria
		}
		if req.Location != nil {
			e.Location = *req.Location
		}
		if req.GeolocationRequired != nil {
			e.GeolocationRequired = *req.GeolocationRequired
		}
		if req.RegistrationOpensAt != nil {
			e.RegistrationOpensAt = req.RegistrationOpensAt
		}
		if req.RegistrationClosesAt != nil {
			e.RegistrationClosesAt = req.RegistrationClosesAt
		}
		if req.StartsAt != nil {
			e.StartsAt = req.StartsAt
		}
		if req.Capacity != nil {
			capacity := normalizeCapacity(req.Capacity)
			if capacity != nil && *capacity < e.CurrentEntrants {
				return errs.Invalid("capacity %d is below the %d entrants already on the list", *capacity, e.CurrentEntrants)
			}
			e.Capacity = capacity
		}
		if e.RegistrationOpensAt != nil && e.RegistrationClosesAt != nil &&
			!e.RegistrationClosesAt.After(*e.RegistrationOpensAt) {
			return errs.Invalid("registration must close after it opens")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(event)
	return &resp, nil
}

func (s *service) Authorize(ctx context.Context, eventID uuid.UUID, userID string, isAdmin bool) error {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if isAdmin || event.OrganizerID == userID {
		return nil
	}
	return ErrNotOrganizer
}

func (s *service) toResponse(e *Event) EventResponse {
	var spotsLeft *int
	if e.HasCapacityLimit() {
		left := *e.Capacity - e.CurrentEntrants
		if left < 0 {
			left = 0
		}
		spotsLeft = &left
	}

	return EventResponse{
		ID:                   e.ID.String(),
		OrganizerID:          e.OrganizerID,
		Name:                 e.Name,
		Description:          e.Description,
		Criteria:             e.Criteria,
		Location:             e.Location,
		Capacity:             e.Capacity,
		CurrentEntrants:      e.CurrentEntrants,
		SpotsLeft:            spotsLeft,
		AlreadyDrew:          e.AlreadyDrew,
		GeolocationRequired:  e.GeolocationRequired,
		RegistrationPhase:    e.RegistrationPhase(s.clock.Now()),
		RegistrationOpensAt:  e.RegistrationOpensAt,
		RegistrationClosesAt: e.RegistrationClosesAt,
		StartsAt:             e.StartsAt,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

// normalizeCapacity stores "unlimited" as NULL whether it arrived as null or 0.
func normalizeCapacity(c *int) *int {
	if c == nil || *c <= 0 {
		return nil
	}
	v := *c
	return &v
}
