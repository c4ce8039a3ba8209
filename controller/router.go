package controller

import (
	"time"

	"github.com/FlorianRuen/repo-dashboard/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter define all routes of the dashboard API
func NewRouter(cfg config.Config, apiController APIController) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	allowOrigins := cfg.API.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"*"}
	}

	router.Use(
		cors.New(cors.Config{
			AllowOrigins: allowOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE"},
			AllowHeaders: []string{"Content-Type, Content-Length, Accept-Encoding, Host, accept, Origin, Cache-Control, X-Requested-With"},
			MaxAge:       12 * time.Hour,
		}),
	)

	api := router.Group("")
	{
		api.GET("/session", apiController.GetSession)
		api.POST("/session", apiController.Login)
		api.DELETE("/session", apiController.Logout)
		api.PUT("/username", apiController.SetUsername)

		api.POST("/repos/refresh", apiController.RefreshRepositories)
		api.GET("/repos", apiController.GetRepositories)
		api.GET("/repos/stats", apiController.GetStats)

		api.GET("/filters", apiController.GetFilters)
		api.PUT("/filters", apiController.UpdateFilters)
		api.DELETE("/filters", apiController.ResetFilters)

		api.POST("/repos/:owner/:repo/select", apiController.SelectRepository)
		api.GET("/repos/:owner/:repo/contents/*path", apiController.GetContents)
		api.GET("/selected", apiController.GetSelected)

		api.GET("/events", apiController.Events)
	}

	return router
}
