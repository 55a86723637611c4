package waitlist

import (
	"net/http"

	"icetea/internal/events"
	"icetea/internal/shared/middleware"
	"icetea/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// JoinWaitlist handles POST /events/:eventId/waitlist
func (c *Controller) JoinWaitlist(ctx *gin.Context) {
	eventID, ok := events.ParseEventID(ctx)
	if !ok {
		return
	}
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req JoinRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
			return
		}
		if err := c.validator.Struct(&req); err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
			return
		}
		if req.Partial() {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Latitude and longitude must be sent together", nil, nil)
			return
		}
	}

	entry, created, err := c.service.Join(ctx.Request.Context(), eventID, userID, req.Location())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	if created {
		response.RespondJSON(ctx, "success", http.StatusCreated, "Joined the waiting list", ToEntryResponse(entry), nil)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Already on the waiting list", ToEntryResponse(entry), nil)
}

// LeaveWaitlist handles DELETE /events/:eventId/waitlist
func (c *Controller) LeaveWaitlist(ctx *gin.Context) {
	eventID, ok := events.ParseEventID(ctx)
	if !ok {
		return
	}
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	if err := c.service.Leave(ctx.Request.Context(), eventID, userID); err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Left the waiting list", nil, nil)
}

// GetMyEntry handles GET /events/:eventId/waitlist/me
func (c *Controller) GetMyEntry(ctx *gin.Context) {
	eventID, ok := events.ParseEventID(ctx)
	if !ok {
		return
	}
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	entry, err := c.service.GetEntry(ctx.Request.Context(), eventID, userID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Waiting list entry retrieved", ToEntryResponse(entry), nil)
}

// Respond handles POST /events/:eventId/waitlist/respond
func (c *Controller) Respond(ctx *gin.Context) {
	eventID, ok := events.ParseEventID(ctx)
	if !ok {
		return
	}
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req RespondRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	entry, err := c.service.Respond(ctx.Request.Context(), eventID, userID, *req.Accept)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	message := "Invitation declined"
	if *req.Accept {
		message = "Invitation accepted"
	}
	response.RespondJSON(ctx, "success", http.StatusOK, message, ToEntryResponse(entry), nil)
}

// Cancel handles POST /events/:eventId/waitlist/cancel
func (c *Controller) Cancel(ctx *gin.Context) {
	eventID, ok := events.ParseEventID(ctx)
	if !ok {
		return
	}
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	entry, err := c.service.Cancel(ctx.Request.Context(), eventID, userID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Participation cancelled", ToEntryResponse(entry), nil)
}

// GetMyWaitlists handles GET /users/me/waitlist
func (c *Controller) GetMyWaitlists(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	entries, err := c.service.ListByUser(ctx.Request.Context(), userID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Waiting lists retrieved", ToEntryResponses(entries), nil)
}

// ListEntrants handles GET /organizer/events/:eventId/entrants
func (c *Controller) ListEntrants(ctx *gin.Context) {
	eventID, ok := events.ParseEventID(ctx)
	if !ok {
		return
	}

	var query ListEntrantsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	var filter *Status
	if query.Status != "" {
		s, err := ParseStatus(query.Status)
		if err != nil {
			response.RespondError(ctx, err)
			return
		}
		filter = &s
	}

	list, err := c.service.ListEntrants(ctx.Request.Context(), eventID, filter)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Entrants retrieved", list, nil)
}
