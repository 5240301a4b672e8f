package router

import (
	"net/http"
	"time"

	"payflow/config"
	"payflow/internal/dedup"
	"payflow/internal/handler"
	"payflow/internal/middleware"
	"payflow/internal/reconcile"
	"payflow/internal/repository"
	"payflow/internal/service"
	"payflow/internal/webhook"
	"payflow/internal/ws"
	"payflow/pkg/processor"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, provider processor.Provider, deduper dedup.Deduper) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Repositories
	paymentRepo := repository.NewPaymentRepository(db)
	anomalyRepo := repository.NewAnomalyRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	hub := ws.NewHub()

	// Services
	notifSvc := service.NewNotificationService(notificationRepo, hub)
	intentSvc := service.NewIntentService(provider, paymentRepo, anomalyRepo, cfg.Processor.Currency)
	engine := reconcile.NewEngine(paymentRepo, anomalyRepo, notifSvc)
	verifier := webhook.NewVerifier(cfg.Webhook.Secret, cfg.Webhook.Tolerance)

	// Handlers
	paymentHandler := handler.NewPaymentHandler(intentSvc, paymentRepo)
	webhookHandler := handler.NewWebhookHandler(verifier, engine, deduper)

	authMw := middleware.AuthRequired(&cfg.JWT)
	limiter := middleware.NewFixedWindowLimiter(100, time.Minute)

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		payments := api.Group("/payments")
		payments.Use(middleware.RateLimit(limiter))
		{
			payments.POST("", paymentHandler.Create)
			payments.GET("", authMw, paymentHandler.List)
			payments.GET("/:reference", authMw, paymentHandler.Get)
		}
		// Webhook route stays outside the rate limiter and outside any body
		// binding: verification needs the raw bytes as transmitted.
		api.POST("/webhooks/processor", webhookHandler.Handle)
	}

	r.GET("/ws/payments", ws.UpgradePaymentsWS(&cfg.JWT, hub))

	return r
}
