package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Kariqs/magnets-api/services"
)

const msgInternalServerError = "Internal server error"

var statusByKind = map[services.Kind]int{
	services.KindValidation:      http.StatusBadRequest,
	services.KindAuth:            http.StatusUnauthorized,
	services.KindNotFound:        http.StatusNotFound,
	services.KindConflict:        http.StatusConflict,
	services.KindPaymentProvider: http.StatusInternalServerError,
	services.KindPersistence:     http.StatusInternalServerError,
	services.KindSignature:       http.StatusUnauthorized,
	services.KindConfiguration:   http.StatusInternalServerError,
}

// respondWithServiceError maps a service error to its HTTP status. Storage
// failures and unknown errors get a generic message; the cause is only logged.
func respondWithServiceError(ctx *gin.Context, logger *zap.Logger, err error) {
	var serr *services.Error
	if !errors.As(err, &serr) {
		logger.Error("unexpected error", zap.String("path", ctx.FullPath()), zap.Error(err))
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	status, ok := statusByKind[serr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	message := serr.Message
	if serr.Kind == services.KindPersistence {
		message = msgInternalServerError
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", ctx.FullPath()), zap.Error(err))
	}
	ctx.Error(err)
	sendErrorResponse(ctx, status, message)
}
