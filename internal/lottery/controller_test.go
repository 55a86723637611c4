package lottery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"icetea/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*fixture, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := newFixture(t, 11, nil)
	r := gin.New()
	pass := func(c *gin.Context) { c.Next() }
	SetupLotteryRoutes(r.Group("/api/v1"), NewController(f.engine, true), pass, pass)
	return f, r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDrawEndpoint(t *testing.T) {
	f, r := newTestRouter(t)
	eventID := f.event(t, 0)
	f.join(t, eventID, "A", "B", "C")
	path := "/api/v1/organizer/events/" + eventID.String() + "/draw"

	assert.Equal(t, http.StatusBadRequest, post(r, path, `{"count": 0}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, post(r, path, `{"count": 4}`).Code)

	w := post(r, path, `{"count": 2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Data DrawResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data.Winners, 2)

	w = post(r, path, `{"count": 1}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	var failure response.StandardApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failure))
	assert.Equal(t, "The lottery has already been drawn", failure.Message)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/organizer/events/"+eventID.String()+"/draws", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pool_size":3`)
}

func TestReplaceAndRevokeEndpoints(t *testing.T) {
	f, r := newTestRouter(t)
	eventID := f.event(t, 0)
	f.join(t, eventID, "A", "B")
	base := "/api/v1/organizer/events/" + eventID.String()

	assert.Equal(t, http.StatusUnprocessableEntity, post(r, base+"/replace", `{"user_id": "A"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, base+"/replace", `{}`).Code)

	f.selectAll(t, eventID, "A")
	w := post(r, base+"/entrants/A/revoke", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"promoted_user_id":"B"`)

	assert.Equal(t, http.StatusUnprocessableEntity, post(r, base+"/entrants/A/revoke", `{"replace": false}`).Code)
}
