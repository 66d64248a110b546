package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Kariqs/magnets-api/models"
	"github.com/Kariqs/magnets-api/services"
)

const msgInvalidInput = "invalid input"

func sendJSONResponse(ctx *gin.Context, status int, data gin.H) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"message": message})
}

type AuthController struct {
	admin  *services.AdminService
	logger *zap.Logger
}

func NewAuthController(admin *services.AdminService, logger *zap.Logger) *AuthController {
	return &AuthController{admin: admin, logger: logger}
}

// Login handles admin authentication
func (c *AuthController) Login(ctx *gin.Context) {
	var loginData models.LoginData
	if err := ctx.ShouldBindJSON(&loginData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := c.admin.Login(ctx.Request.Context(), loginData.Email, loginData.Password)
	if err != nil {
		respondWithServiceError(ctx, c.logger, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"success": true,
		"token":   result.Token,
		"admin": gin.H{
			"id":    result.Admin.ID,
			"email": result.Admin.Email,
		},
	})
}
