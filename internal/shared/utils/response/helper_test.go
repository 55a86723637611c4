package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"icetea/internal/shared/errs"
	"icetea/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("event x: %w", errs.ErrNotFound), http.StatusNotFound},
		{errs.ErrCapacityExceeded, http.StatusConflict},
		{errs.ErrAlreadyDrew, http.StatusConflict},
		{errs.Invalid("count"), http.StatusBadRequest},
		{errs.ErrInsufficientEntrants, http.StatusUnprocessableEntity},
		{errs.ErrNoWaitingEntrants, http.StatusUnprocessableEntity},
		{errs.ErrInvalidStatusTransition, http.StatusUnprocessableEntity},
		{errs.Store("join", errors.New("dial tcp")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		code, msg := StatusFor(tc.err)
		assert.Equal(t, tc.code, code, tc.err.Error())
		assert.NotEmpty(t, msg)
	}
}

func TestRespondErrorHidesStoreDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/events/x/waitlist", nil)

	var logs bytes.Buffer
	prev := logger.GetDefault()
	logger.SetDefault(logger.NewWithWriter(&logs, "info"))
	defer logger.SetDefault(prev)

	RespondError(c, errs.Store("join", errors.New("password authentication failed")))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body StandardApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Nil(t, body.Errors)
	assert.NotContains(t, w.Body.String(), "password")
	assert.Contains(t, logs.String(), "password authentication failed")
}
