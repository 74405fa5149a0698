package httpapi

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the gin engine with middleware and routes.
// A nil gatherer exposes the default Prometheus registry.
func NewRouter(h *Handler, gatherer prometheus.Gatherer, log *slog.Logger) *gin.Engine {
	if log == nil {
		log = slog.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()
	router.Use(RequestID())
	router.Use(Recovery(log))
	router.Use(RequestLogger(log))

	router.GET("/", h.Root)
	router.POST("/load_applications/", h.LoadApplications)
	router.GET("/report/", h.Report)
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return router
}
