package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"icetea/internal/shared/config"
	"icetea/internal/shared/database"
	"icetea/internal/shared/testutil"
	"icetea/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testApp struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		APIPrefix:  "/api",
		APIVersion: "v1",
		JWT: config.JWTConfig{
			Secret:           "router-test-secret",
			JWTExpiresIn:     time.Hour,
			RefreshExpiresIn: 24 * time.Hour,
		},
		Lottery: config.LotteryConfig{AutoReplace: true, RandomSeed: 7},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	db := &database.DB{PostgreSQL: testutil.NewDB(t, database.Models()...)}

	reg := prometheus.NewRegistry()
	r := NewRouter(cfg, db, Options{Metrics: metrics.New(reg), Gatherer: reg})
	engine := gin.New()
	r.SetupRoutes(engine)
	return &testApp{t: t, engine: engine}
}

func (a *testApp) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (a *testApp) device(id string) string {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/v1/auth/device", "", gin.H{
		"device_id":     id,
		"device_secret": "secret-for-" + id,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &out))
	return out.AccessToken
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	w, _ := app.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = app.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = app.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLotteryFlow(t *testing.T) {
	app := newTestApp(t)

	organizer := app.device("organizer-device")
	entrants := map[string]string{}
	for _, id := range []string{"entrant-aaaa", "entrant-bbbb", "entrant-cccc"} {
		entrants[id] = app.device(id)
	}
	latecomer := app.device("entrant-dddd")

	w, env := app.do(http.MethodPost, "/api/v1/events", organizer, gin.H{"name": "Swim lessons", "capacity": 3})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var event struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &event))
	base := "/api/v1/events/" + event.ID
	organizerBase := "/api/v1/organizer/events/" + event.ID

	for id, token := range entrants {
		w, _ := app.do(http.MethodPost, base+"/waitlist", token, gin.H{})
		require.Equal(t, http.StatusCreated, w.Code, id)
	}
	w, env = app.do(http.MethodPost, base+"/waitlist", latecomer, gin.H{})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "The waiting list is full", env.Message)

	// entrants cannot run the draw
	w, _ = app.do(http.MethodPost, organizerBase+"/draw", entrants["entrant-aaaa"], gin.H{"count": 2})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = app.do(http.MethodPost, organizerBase+"/draw", organizer, gin.H{"count": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var draw struct {
		Winners []string `json:"winners"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &draw))
	require.Len(t, draw.Winners, 2)

	w, _ = app.do(http.MethodPost, organizerBase+"/draw", organizer, gin.H{"count": 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	var loser string
	for id := range entrants {
		if id != draw.Winners[0] && id != draw.Winners[1] {
			loser = id
		}
	}
	require.NotEmpty(t, loser)

	// a winner declines and the remaining entrant is promoted automatically
	w, _ = app.do(http.MethodPost, base+"/waitlist/respond", entrants[draw.Winners[0]], gin.H{"accept": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = app.do(http.MethodGet, base+"/waitlist/me", entrants[loser], nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entry struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &entry))
	assert.Equal(t, "SELECTED", entry.Status)

	w, _ = app.do(http.MethodGet, "/api/v1/users/me/notifications", entrants[loser], nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "You're a winner!")

	w, _ = app.do(http.MethodGet, organizerBase+"/draws", organizer, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = app.do(http.MethodGet, "/metrics", "", nil)
	assert.Contains(t, w.Body.String(), "lottery_draws_total")
}
