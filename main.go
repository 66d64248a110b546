package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Kariqs/magnets-api/controllers"
	"github.com/Kariqs/magnets-api/initializers"
	"github.com/Kariqs/magnets-api/middlewares"
	"github.com/Kariqs/magnets-api/notifications"
	"github.com/Kariqs/magnets-api/payments"
	"github.com/Kariqs/magnets-api/routes"
	"github.com/Kariqs/magnets-api/services"
	"github.com/Kariqs/magnets-api/storage"
	"github.com/Kariqs/magnets-api/utils"
)

func main() {
	initializers.LoadEnv()
	cfg := initializers.LoadConfig()

	logger, err := initializers.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := initializers.ConnectToDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := initializers.SyncDatabase(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	if cfg.Payment.WebhookSecret == "" {
		logger.Warn("ZIINA_WEBHOOK_SECRET is not set, webhooks will be rejected")
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set, admin login is disabled")
	}

	dispatcher := notifications.NewDispatcher(newMailer(cfg.Mail), notifications.DispatcherConfig{
		Recipient: cfg.Mail.NotificationEmail,
		Currency:  cfg.Payment.Currency,
		AppURL:    cfg.AppURL,
	}, logger)

	uploader, err := storage.NewS3Uploader(context.Background(), storage.Config{
		Bucket: cfg.Storage.Bucket,
		Prefix: cfg.Storage.Prefix,
	})
	if err != nil {
		logger.Fatal("Failed to configure image storage", zap.Error(err))
	}

	ziina := payments.NewZiinaClient(payments.Config{
		APIKey:   cfg.Payment.APIKey,
		BaseURL:  cfg.Payment.BaseURL,
		AppURL:   cfg.AppURL,
		TestMode: cfg.Payment.TestMode,
	})
	tokens := utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	orderService := services.NewOrderService(db, dispatcher, logger)
	paymentService := services.NewPaymentService(db, ziina, cfg.Payment.Currency, logger)
	webhookService := services.NewWebhookService(db, cfg.Payment.WebhookSecret, logger)
	adminService := services.NewAdminService(db, tokens, services.AdminCredentials{
		Email:    cfg.Auth.AdminEmail,
		Password: cfg.Auth.AdminPassword,
	}, logger)

	gin.SetMode(cfg.Server.Mode)
	server := gin.New()
	server.Use(gin.Recovery(), middlewares.RequestLogger(logger))
	server.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	routes.Register(server, routes.Controllers{
		Auth:    controllers.NewAuthController(adminService, logger),
		Orders:  controllers.NewOrderController(orderService, adminService, logger),
		Payment: controllers.NewPaymentController(paymentService, webhookService, logger),
		Upload:  controllers.NewUploadController(uploader, logger),
	}, tokens)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Error("Notification queue not drained", zap.Error(err))
	}
}

func newMailer(cfg initializers.MailConfig) notifications.Mailer {
	if strings.EqualFold(cfg.Provider, "resend") {
		return notifications.NewResendMailer(notifications.ResendConfig{
			APIKey:  cfg.ResendAPIKey,
			BaseURL: cfg.ResendBaseURL,
			From:    cfg.FromEmail,
		})
	}
	return notifications.NewSMTPMailer(utils.SMTPConfig{
		Address:  cfg.SMTPAddress,
		Host:     cfg.FromEmailSMTP,
		From:     cfg.FromEmail,
		Password: cfg.FromEmailPassword,
	})
}
