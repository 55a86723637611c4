package response

import (
	"errors"
	"net/http"

	"icetea/internal/shared/errs"
	"icetea/pkg/logger"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError maps a service error to one short message and status code.
func RespondError(c *gin.Context, err error) {
	code, message := StatusFor(err)
	var details interface{}
	if code == http.StatusInternalServerError {
		logger.GetDefault().LogHTTPError(c, err, code)
	} else {
		details = err.Error()
	}
	RespondJSON(c, "error", code, message, nil, details)
}

func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, errs.ErrCapacityExceeded):
		return http.StatusConflict, "The waiting list is full"
	case errors.Is(err, errs.ErrAlreadyDrew):
		return http.StatusConflict, "The lottery has already been drawn"
	case errors.Is(err, errs.ErrInvalidArgument):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, errs.ErrInsufficientEntrants):
		return http.StatusUnprocessableEntity, "Not enough entrants are waiting"
	case errors.Is(err, errs.ErrNoWaitingEntrants):
		return http.StatusUnprocessableEntity, "No entrants are waiting"
	case errors.Is(err, errs.ErrInvalidStatusTransition):
		return http.StatusUnprocessableEntity, "That action is not allowed in the current state"
	default:
		return http.StatusInternalServerError, "Something went wrong, please try again"
	}
}
