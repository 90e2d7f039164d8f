package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/charlesng35/wedding-rsvp/internal/auth"
	"github.com/charlesng35/wedding-rsvp/internal/middleware"
	"github.com/charlesng35/wedding-rsvp/internal/monitoring"
	"github.com/charlesng35/wedding-rsvp/internal/services"
)

const defaultMetricsPath = "/metrics"

// Options configures the HTTP surface.
type Options struct {
	Service *services.RSVPService
	Admin   *auth.Admin
	Health  *monitoring.HealthManager

	CORSOrigins    []string
	HSTS           bool
	MetricsEnabled bool
	MetricsPath    string
}

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(opts Options) (*gin.Engine, error) {
	if opts.Service == nil {
		return nil, errors.New("rsvp service must be provided")
	}
	if opts.Admin == nil {
		return nil, errors.New("admin must be provided")
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoRoute(middleware.NotFoundHandler)
	r.NoMethod(middleware.MethodNotAllowedHandler)

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders(opts.HSTS))
	r.Use(middleware.CORS(opts.CORSOrigins...))

	registerHealthRoutes(r, opts.Health)

	if opts.MetricsEnabled {
		path := strings.TrimSpace(opts.MetricsPath)
		if path == "" {
			path = defaultMetricsPath
		}
		r.GET(path, gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api")
	if err := registerAuthRoutes(api, opts.Admin); err != nil {
		return nil, err
	}
	if err := registerRSVPRoutes(api, opts.Service, opts.Admin); err != nil {
		return nil, err
	}

	return r, nil
}
