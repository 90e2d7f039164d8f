package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/wedding-rsvp/internal/auth"
	"github.com/charlesng35/wedding-rsvp/internal/handlers"
)

func registerAuthRoutes(api *gin.RouterGroup, admin *auth.Admin) error {
	loginHandler, err := handlers.NewLoginHandler(admin)
	if err != nil {
		return err
	}

	api.POST("/login", loginHandler.Login)
	return nil
}
