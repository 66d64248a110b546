package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Kariqs/magnets-api/controllers"
	"github.com/Kariqs/magnets-api/utils"
)

type Controllers struct {
	Auth    *controllers.AuthController
	Orders  *controllers.OrderController
	Payment *controllers.PaymentController
	Upload  *controllers.UploadController
}

// Register mounts every route on server.
func Register(server *gin.Engine, c Controllers, tokens *utils.TokenIssuer) {
	DefaultRoutes(server)
	UploadRoutes(server, c.Upload)
	OrderRoutes(server, c.Orders, tokens)
	PaymentRoutes(server, c.Payment)
	AuthRoutes(server, c.Auth)
}
