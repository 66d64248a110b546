package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kariqs/magnets-api/catalog"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to the Magnets & Prints API. Enjoy seamless interaction with this API.

The following are the endpoints for this API:

CATALOG
- GET "/catalog" - Magnet sizes, borders and finishes
- POST "/upload" - Upload a photo

ORDER
- POST "/orders" - Create a new order
- GET "/orders/:orderId" - Get order by ID

PAYMENT
- POST "/payment/create" - Start a payment for an order
- POST "/payment/webhook" - Payment provider events

ADMIN
- POST "/admin/auth" - Admin login
- GET "/admin/orders" - Retrieve all orders
- PATCH "/admin/orders" - Update order status`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}

func GetCatalog(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"sizes":    catalog.Sizes(),
		"borders":  catalog.Borders(),
		"finishes": catalog.Finishes(),
		"defaults": gin.H{
			"size":        catalog.DefaultSize,
			"borderStyle": catalog.DefaultBorder,
			"finish":      catalog.DefaultFinish,
		},
	})
}
