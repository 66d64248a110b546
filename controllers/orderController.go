package controllers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Kariqs/magnets-api/services"
)

type OrderController struct {
	orders *services.OrderService
	admin  *services.AdminService
	logger *zap.Logger
}

func NewOrderController(orders *services.OrderService, admin *services.AdminService, logger *zap.Logger) *OrderController {
	return &OrderController{orders: orders, admin: admin, logger: logger}
}

func (c *OrderController) CreateOrder(ctx *gin.Context) {
	var orderInfo services.CreateOrderInput
	if err := ctx.ShouldBindJSON(&orderInfo); err != nil {
		c.logger.Debug("order binding failed", zap.Error(err))
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	order, err := c.orders.CreateOrder(ctx.Request.Context(), orderInfo)
	if err != nil {
		respondWithServiceError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusCreated, order)
}

func (c *OrderController) GetOrderByID(ctx *gin.Context) {
	order, err := c.orders.GetOrder(ctx.Request.Context(), ctx.Param("orderId"))
	if err != nil {
		respondWithServiceError(ctx, c.logger, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order})
}

// GetOrders lists orders for the admin dashboard.
func (c *OrderController) GetOrders(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "15"))

	result, err := c.admin.ListOrders(ctx.Request.Context(), services.ListOrdersInput{
		Status:        ctx.Query("status"),
		PaymentStatus: ctx.Query("paymentStatus"),
		Page:          page,
		Limit:         limit,
	})
	if err != nil {
		respondWithServiceError(ctx, c.logger, err)
		return
	}

	previousPage := result.Page - 1
	nextPage := result.Page + 1
	totalPages := math.Ceil(float64(result.Total) / float64(result.Limit))

	ctx.JSON(http.StatusOK, gin.H{
		"orders": result.Orders,
		"metadata": gin.H{
			"total":        result.Total,
			"currentPage":  result.Page,
			"limit":        result.Limit,
			"hasPrevPage":  previousPage > 0,
			"hasNextPage":  int(totalPages) > result.Page,
			"previousPage": previousPage,
			"nextPage":     nextPage,
		},
	})
}

func (c *OrderController) UpdateOrderStatus(ctx *gin.Context) {
	var orderStatusData services.UpdateOrderStatusInput
	if err := ctx.ShouldBindJSON(&orderStatusData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	order, err := c.admin.UpdateOrderStatus(ctx.Request.Context(), orderStatusData)
	if err != nil {
		respondWithServiceError(ctx, c.logger, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order})
}
