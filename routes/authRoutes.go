package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Kariqs/magnets-api/controllers"
)

func AuthRoutes(server *gin.Engine, auth *controllers.AuthController) {
	server.POST("/admin/auth", auth.Login)
}
