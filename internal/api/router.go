// Package api exposes the repository over a JSON HTTP API.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/pkg/logger"
)

type routerOptions struct {
	metrics  bool
	pageSize int
	log      *zap.Logger
}

// Option configures NewRouter.
type Option func(*routerOptions)

// WithMetrics toggles the /metrics endpoint.
func WithMetrics(enabled bool) Option {
	return func(o *routerOptions) { o.metrics = enabled }
}

// WithPageSize sets the per_page value reported in listing metadata.
func WithPageSize(n int) Option {
	return func(o *routerOptions) { o.pageSize = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *routerOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(catalog Catalog, opts ...Option) (*gin.Engine, error) {
	if catalog == nil {
		return nil, errors.New("api: catalog must be provided")
	}

	o := routerOptions{metrics: true, pageSize: 20, log: logger.WithModule("http")}
	for _, opt := range opts {
		opt(&o)
	}

	r := gin.New()
	r.Use(Recovery(o.log))
	r.Use(RequestID())
	r.Use(Logger(o.log))
	r.Use(Metrics())
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   &ErrorInfo{Code: "ROUTE_NOT_FOUND", Message: "route " + c.Request.URL.Path + " not found"},
		})
	})

	h := &handler{catalog: catalog, pageSize: o.pageSize}

	r.GET("/health", h.health)
	if o.metrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api")
	{
		api.GET("/records", h.list)
		api.GET("/records/:id", h.show)
		api.GET("/references", h.byReference)
		api.GET("/names/:name", h.byName)
		api.GET("/types/:id", h.recordType)
		api.GET("/filter", h.filter)
		api.POST("/maintenance/evict", h.evict)
		api.DELETE("/cache", h.clear)
	}

	return r, nil
}
