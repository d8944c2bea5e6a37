package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupRouter(checks map[string]Check) *gin.Engine {
	r := gin.New()
	h := Health(checks)
	r.GET("/healthz", h)
	r.HEAD("/healthz", h)
	r.OPTIONS("/healthz", h)
	return r
}

func up(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func TestHealth_GET(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	setupRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestHealth_Checks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		checks         map[string]Check
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "all up",
			checks:         map[string]Check{"db": up, "redis": up},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"ok","checks":{"db":"up","redis":"up"}}`,
		},
		{
			name:           "one down",
			checks:         map[string]Check{"db": up, "redis": down},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"status":"degraded","checks":{"db":"up","redis":"down"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			setupRouter(tt.checks).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestHealth_CheckHasDeadline(t *testing.T) {
	t.Parallel()

	var hadDeadline bool
	check := func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	}
	w := httptest.NewRecorder()
	setupRouter(map[string]Check{"db": check}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, hadDeadline)
}

func TestHealth_HEAD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		checks         map[string]Check
		expectedStatus int
	}{
		{"healthy", map[string]Check{"db": up}, http.StatusOK},
		{"unhealthy", map[string]Check{"db": down}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			setupRouter(tt.checks).ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/healthz", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			// HEAD should have no body
			assert.Zero(t, w.Body.Len())
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
		})
	}
}

func TestHealth_OPTIONS(t *testing.T) {
	t.Parallel()

	called := false
	check := func(context.Context) error {
		called = true
		return nil
	}

	w := httptest.NewRecorder()
	setupRouter(map[string]Check{"db": check}).ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/healthz", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.False(t, called)
	assert.Zero(t, w.Body.Len())
}
