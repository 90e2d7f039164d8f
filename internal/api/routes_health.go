package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/wedding-rsvp/internal/handlers"
	"github.com/charlesng35/wedding-rsvp/internal/monitoring"
)

func registerHealthRoutes(r *gin.Engine, manager *monitoring.HealthManager) {
	health := handlers.NewHealthHandler(manager)

	r.GET("/health", health.Health)
	r.GET("/health/live", health.Live)
	r.GET("/health/ready", health.Ready)
}
