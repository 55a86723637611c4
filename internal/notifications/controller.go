package notifications

import (
	"net/http"

	"icetea/internal/events"
	"icetea/internal/shared/middleware"
	"icetea/internal/shared/utils/response"
	"icetea/internal/waitlist"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	dispatcher Dispatcher
	validator  *validator.Validate
}

func NewController(dispatcher Dispatcher) *Controller {
	return &Controller{
		dispatcher: dispatcher,
		validator:  validator.New(),
	}
}

// GetMyNotifications handles GET /users/me/notifications
func (c *Controller) GetMyNotifications(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var query ListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	list, err := c.dispatcher.ListForUser(ctx.Request.Context(), userID, query.Limit)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Notifications retrieved", list, nil)
}

// Broadcast handles POST /organizer/events/:eventId/notifications
func (c *Controller) Broadcast(ctx *gin.Context) {
	eventID, ok := events.ParseEventID(ctx)
	if !ok {
		return
	}
	senderID, _ := middleware.CurrentUserID(ctx)

	var req BroadcastRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	statuses := make([]waitlist.Status, 0, len(req.Statuses))
	for _, raw := range req.Statuses {
		s, err := waitlist.ParseStatus(raw)
		if err != nil {
			response.RespondError(ctx, err)
			return
		}
		statuses = append(statuses, s)
	}

	entry, err := c.dispatcher.Broadcast(ctx.Request.Context(), eventID, senderID, statuses, req.Title, req.Message)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Notification sent", ToLogResponse(entry), nil)
}

// ListBroadcasts handles GET /organizer/events/:eventId/notifications
func (c *Controller) ListBroadcasts(ctx *gin.Context) {
	eventID, ok := events.ParseEventID(ctx)
	if !ok {
		return
	}

	logs, err := c.dispatcher.ListLogs(ctx.Request.Context(), eventID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	out := make([]LogResponse, len(logs))
	for i := range logs {
		out[i] = ToLogResponse(&logs[i])
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Notification history retrieved", out, nil)
}
