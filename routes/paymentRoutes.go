package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Kariqs/magnets-api/controllers"
)

func PaymentRoutes(server *gin.Engine, controller *controllers.PaymentController) {
	payment := server.Group("/payment")
	{
		payment.POST("/create", controller.CreatePayment)
		payment.POST("/webhook", controller.HandleWebhook)
	}
}
