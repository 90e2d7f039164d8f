package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/wedding-rsvp/internal/auth"
	"github.com/charlesng35/wedding-rsvp/internal/handlers"
	"github.com/charlesng35/wedding-rsvp/internal/middleware"
	"github.com/charlesng35/wedding-rsvp/internal/services"
)

func registerRSVPRoutes(api *gin.RouterGroup, svc *services.RSVPService, admin *auth.Admin) error {
	rsvpHandler, err := handlers.NewRSVPHandler(svc)
	if err != nil {
		return err
	}
	requireAdmin := middleware.AdminAuth(admin)

	api.POST("/rsvp", rsvpHandler.Create)
	api.DELETE("/rsvp", requireAdmin, rsvpHandler.Delete)

	api.GET("/rsvps", requireAdmin, rsvpHandler.List)
	api.GET("/rsvps/export", requireAdmin, rsvpHandler.Export)
	return nil
}
