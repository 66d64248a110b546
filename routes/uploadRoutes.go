package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Kariqs/magnets-api/controllers"
)

func UploadRoutes(server *gin.Engine, upload *controllers.UploadController) {
	server.POST("/upload", upload.UploadImage)
}
