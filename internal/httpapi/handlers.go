package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"GrantReport/pkg/logger"
)

const rootMessage = "Hey, this is the root endpoint. Don’t forget to set your 'API_TOKEN' as env variable."

// Loader runs one ingestion.
type Loader interface {
	Run(ctx context.Context) (int, error)
}

// Reporter produces the serialised report.
type Reporter interface {
	Generate(ctx context.Context) ([]byte, error)
}

// Handler serves the grant report endpoints.
type Handler struct {
	loader   Loader
	reporter Reporter
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandler wires the use cases behind the HTTP surface.
func NewHandler(loader Loader, reporter Reporter, log *slog.Logger) *Handler {
	return &Handler{loader: loader, reporter: reporter, logger: log, now: time.Now}
}

// Root greets the caller and reminds them about the API token.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": rootMessage})
}

// LoadApplications replaces the stored applications with the upstream set.
func (h *Handler) LoadApplications(c *gin.Context) {
	count, err := h.loader.Run(c.Request.Context())
	if err != nil {
		h.fail(c, "load applications failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%d applications successfully loaded into database.", count),
	})
}

// Report returns the aggregated report document.
func (h *Handler) Report(c *gin.Context) {
	payload, err := h.reporter.Generate(c.Request.Context())
	if err != nil {
		h.fail(c, "build report failed", err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) fail(c *gin.Context, msg string, err error) {
	status, detail := errorResponse(err)
	log := logger.FromContext(c.Request.Context(), h.logger)
	if status >= http.StatusInternalServerError {
		log.Error(msg, "status", status, "error", err)
	} else {
		log.Warn(msg, "status", status, "error", err)
	}
	c.JSON(status, gin.H{"detail": detail})
}
