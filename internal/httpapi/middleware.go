package httpapi

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"GrantReport/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags each request with an id, reusing X-Request-ID when the caller sends one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Header(requestIDHeader, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}

// Recovery turns a panic into the API's {"detail": ...} error body. A handler
// that already started its response keeps it; the connection is just aborted.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.FromContext(c.Request.Context(), log).Error("handler panicked",
				"panic", rec,
				"method", c.Request.Method,
				"route", routeOf(c),
				"stack", string(debug.Stack()),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		}()

		c.Next()
	}
}

// quietRoutes are polled by health checks and scrapers and only logged at debug level.
var quietRoutes = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// RequestLogger writes one line per request, carrying the request id from the context.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		route := routeOf(c)
		attrs := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"bytes", max(c.Writer.Size(), 0),
		}

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		case quietRoutes[route]:
			level = slog.LevelDebug
		}

		ctx := c.Request.Context()
		logger.FromContext(ctx, log).Log(ctx, level, "request completed", attrs...)
	}
}

// routeOf prefers the matched route pattern; unmatched requests report their raw path.
func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return c.Request.URL.Path
}
