package httpapi

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GrantReport/pkg/logger"
)

func TestRequestIDMiddleware(t *testing.T) {
	t.Parallel()

	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ctx": logger.RequestID(c.Request.Context())})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	generated := w.Header().Get(requestIDHeader)
	assert.Len(t, generated, 36)
	assert.JSONEq(t, `{"ctx":"`+generated+`"}`, w.Body.String())
}

func TestRequestIDMiddlewareWithExistingID(t *testing.T) {
	t.Parallel()

	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(requestIDHeader, "existing-request-id-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "existing-request-id-123", w.Header().Get(requestIDHeader))
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Parallel()

	router := NewRouter(NewHandler(stubLoader{}, stubReporter{}, nil), nil, nil)
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func bufferedLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})), &buf
}

func TestRecoveryKeepsStartedResponse(t *testing.T) {
	t.Parallel()

	log, buf := bufferedLogger(slog.LevelInfo)
	router := gin.New()
	router.Use(RequestID(), Recovery(log))
	router.GET("/partial", func(c *gin.Context) {
		c.String(http.StatusAccepted, "partial")
		panic("late failure")
	})

	req := httptest.NewRequest(http.MethodGet, "/partial", nil)
	req.Header.Set(requestIDHeader, "req-7")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "partial", w.Body.String())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "handler panicked", line["msg"])
	assert.Equal(t, "req-7", line["request_id"])
	assert.Equal(t, "/partial", line["route"])
}

func TestRequestLoggerTagsRouteAndRequestID(t *testing.T) {
	t.Parallel()

	log, buf := bufferedLogger(slog.LevelInfo)
	router := gin.New()
	router.Use(RequestID(), RequestLogger(log))
	router.GET("/items/:id", func(c *gin.Context) {
		c.String(http.StatusNotFound, "missing")
	})

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	req.Header.Set(requestIDHeader, "req-42")
	router.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "req-42", line["request_id"])
	assert.Equal(t, "/items/:id", line["route"])
	assert.Equal(t, float64(http.StatusNotFound), line["status"])
	assert.Equal(t, float64(len("missing")), line["bytes"])
}

func TestRequestLoggerQuietsHealthRoutes(t *testing.T) {
	t.Parallel()

	log, buf := bufferedLogger(slog.LevelInfo)
	router := gin.New()
	router.Use(RequestLogger(log))
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Zero(t, buf.Len())
}
