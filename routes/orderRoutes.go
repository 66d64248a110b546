package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Kariqs/magnets-api/controllers"
	"github.com/Kariqs/magnets-api/middlewares"
	"github.com/Kariqs/magnets-api/utils"
)

func OrderRoutes(server *gin.Engine, orders *controllers.OrderController, tokens *utils.TokenIssuer) {
	server.POST("/orders", orders.CreateOrder)
	server.GET("/orders/:orderId", orders.GetOrderByID)

	admin := server.Group("/admin", middlewares.RequireAuth(tokens), middlewares.RequireAdmin())
	{
		admin.GET("/orders", orders.GetOrders)
		admin.PATCH("/orders", orders.UpdateOrderStatus)
	}
}
