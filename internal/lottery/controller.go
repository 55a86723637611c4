package lottery

import (
	"net/http"
	"strings"

	"icetea/internal/events"
	"icetea/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	engine      Engine
	autoReplace bool
	validator   *validator.Validate
}

// NewController builds the organizer lottery handlers. autoReplace is the
// revoke default when the request does not say.
func NewController(engine Engine, autoReplace bool) *Controller {
	return &Controller{
		engine:      engine,
		autoReplace: autoReplace,
		validator:   validator.New(),
	}
}

// Draw handles POST /organizer/events/:eventId/draw
func (c *Controller) Draw(ctx *gin.Context) {
	eventID, ok := events.ParseEventID(ctx)
	if !ok {
		return
	}

	var req DrawRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	winners, err := c.engine.Draw(ctx.Request.Context(), eventID, req.Count)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Lottery drawn", DrawResponse{
		EventID: eventID.String(),
		Winners: winners,
	}, nil)
}

// Replace handles POST /organizer/events/:eventId/replace
func (c *Controller) Replace(ctx *gin.Context) {
	eventID, ok := events.ParseEventID(ctx)
	if !ok {
		return
	}

	var req ReplaceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	promoted, err := c.engine.Replace(ctx.Request.Context(), eventID, req.UserID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Replacement selected", ReplaceResponse{
		EventID:        eventID.String(),
		VacatingUserID: req.UserID,
		PromotedUserID: promoted,
	}, nil)
}

// Revoke handles POST /organizer/events/:eventId/entrants/:userId/revoke
func (c *Controller) Revoke(ctx *gin.Context) {
	eventID, ok := events.ParseEventID(ctx)
	if !ok {
		return
	}
	userID := strings.TrimSpace(ctx.Param("userId"))
	if userID == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "User ID is required", nil, nil)
		return
	}

	var req RevokeRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
			return
		}
	}
	replace := c.autoReplace
	if req.Replace != nil {
		replace = *req.Replace
	}

	entry, promoted, err := c.engine.Revoke(ctx.Request.Context(), eventID, userID, replace)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Entrant revoked", RevokeResponse{
		EventID:        eventID.String(),
		UserID:         userID,
		Status:         string(entry.Status),
		PromotedUserID: promoted,
	}, nil)
}

// ListDraws handles GET /organizer/events/:eventId/draws
func (c *Controller) ListDraws(ctx *gin.Context) {
	eventID, ok := events.ParseEventID(ctx)
	if !ok {
		return
	}

	logs, err := c.engine.ListDraws(ctx.Request.Context(), eventID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Draw history retrieved", ToDrawLogResponses(logs), nil)
}
