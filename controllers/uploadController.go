package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Kariqs/magnets-api/storage"
)

const maxUploadSize = 10 << 20

type ImageUploader interface {
	UploadImage(ctx context.Context, body io.Reader) (storage.Image, error)
}

// Common error response helper
func respondWithError(ctx *gin.Context, statusCode int, message string, err error) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	ctx.JSON(statusCode, gin.H{
		"message": message,
		"error":   errMsg,
	})
}

type UploadController struct {
	uploader ImageUploader
	logger   *zap.Logger
}

func NewUploadController(uploader ImageUploader, logger *zap.Logger) *UploadController {
	return &UploadController{uploader: uploader, logger: logger}
}

func (c *UploadController) UploadImage(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxUploadSize+(1<<20))

	file, err := ctx.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(ctx, http.StatusRequestEntityTooLarge, "File too large", nil)
			return
		}
		respondWithError(ctx, http.StatusBadRequest, "No file provided", nil)
		return
	}
	if file.Size > maxUploadSize {
		respondWithError(ctx, http.StatusRequestEntityTooLarge, "File too large", nil)
		return
	}

	f, err := file.Open()
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid form data", err)
		return
	}
	defer f.Close()

	image, err := c.uploader.UploadImage(ctx.Request.Context(), f)
	switch {
	case errors.Is(err, storage.ErrNotImage):
		respondWithError(ctx, http.StatusBadRequest, "File must be an image", nil)
		return
	case err != nil:
		c.logger.Error("image upload failed", zap.String("filename", file.Filename), zap.Error(err))
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	c.logger.Info("image uploaded", zap.String("public_id", image.PublicID), zap.Int64("size", file.Size))
	ctx.JSON(http.StatusOK, image)
}
