package waitlist

// JoinRequest carries the optional device position. It is only stored for
// events that require geolocation.
type JoinRequest struct {
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

// Partial reports a request carrying only one of the two coordinates.
func (r *JoinRequest) Partial() bool {
	return r != nil && (r.Latitude == nil) != (r.Longitude == nil)
}

func (r *JoinRequest) Location() *Location {
	if r == nil || r.Latitude == nil || r.Longitude == nil {
		return nil
	}
	return &Location{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

type RespondRequest struct {
	Accept *bool `json:"accept" validate:"required"`
}

type ListEntrantsQuery struct {
	Status string `form:"status"`
}
