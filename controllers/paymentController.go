package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Kariqs/magnets-api/payments"
	"github.com/Kariqs/magnets-api/services"
)

const maxWebhookBody = 1 << 20

type PaymentController struct {
	payments *services.PaymentService
	webhooks *services.WebhookService
	logger   *zap.Logger
}

func NewPaymentController(payments *services.PaymentService, webhooks *services.WebhookService, logger *zap.Logger) *PaymentController {
	return &PaymentController{payments: payments, webhooks: webhooks, logger: logger}
}

func (c *PaymentController) CreatePayment(ctx *gin.Context) {
	var paymentInfo services.CreatePaymentInput
	if err := ctx.ShouldBindJSON(&paymentInfo); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	result, err := c.payments.CreatePayment(ctx.Request.Context(), paymentInfo)
	if err != nil {
		respondWithServiceError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleWebhook receives Ziina payment events. The raw body is passed
// through untouched because the signature covers its exact bytes.
func (c *PaymentController) HandleWebhook(ctx *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendErrorResponse(ctx, http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	if _, err := c.webhooks.Reconcile(ctx.Request.Context(), payload, ctx.GetHeader(payments.SignatureHeader)); err != nil {
		respondWithServiceError(ctx, c.logger, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"received": true})
}
