package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"icetea/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func newEngine(cfg *config.Config, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWTAuthWithConfig(cfg)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		c.String(http.StatusOK, id)
	})
	r.GET("/me", handlers...)
	return r
}

func TestJWTAuth(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret"}}
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token abc", http.StatusUnauthorized},
		{"bad signature", "Bearer " + signed(t, "other", jwt.MapClaims{"user_id": "dev-1", "type": "access", "exp": exp}), http.StatusUnauthorized},
		{"refresh token", "Bearer " + signed(t, "test-secret", jwt.MapClaims{"user_id": "dev-1", "type": "refresh", "exp": exp}), http.StatusUnauthorized},
		{"expired", "Bearer " + signed(t, "test-secret", jwt.MapClaims{"user_id": "dev-1", "type": "access", "exp": time.Now().Add(-time.Minute).Unix()}), http.StatusUnauthorized},
		{"valid", "Bearer " + signed(t, "test-secret", jwt.MapClaims{"user_id": "dev-1", "role": "USER", "type": "access", "exp": exp}), http.StatusOK},
	}

	r := newEngine(cfg)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.code, w.Code)
			if tc.code == http.StatusOK {
				assert.Equal(t, "dev-1", w.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "s"}}
	r := newEngine(cfg, RequireAdmin())
	exp := time.Now().Add(time.Hour).Unix()

	for role, code := range map[string]int{"USER": http.StatusForbidden, "ADMIN": http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+signed(t, "s", jwt.MapClaims{"user_id": "dev-9", "role": role, "type": "access", "exp": exp}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, code, w.Code, role)
	}
}
