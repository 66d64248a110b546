package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Kariqs/magnets-api/controllers"
)

func DefaultRoutes(server *gin.Engine) {
	server.GET("/", controllers.GetHome)
	server.GET("/catalog", controllers.GetCatalog)
}
