package router

import (
	"time"

	"staynest/config"
	"staynest/internal/database"
	"staynest/internal/domain"
	"staynest/internal/handler"
	"staynest/internal/middleware"
	"staynest/internal/repository"
	"staynest/internal/service"
	"staynest/pkg/gateway"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewClientLimiter(cfg.Server.RateLimitPerMin, time.Minute)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	listingRepo := repository.NewListingRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	tx := database.NewTransactor(db)

	// External providers
	paymob := gateway.NewPaymobProvider(cfg.Gateway.BaseURL, cfg.Gateway.SecretKey, cfg.Gateway.PublicKey)
	payoutsAPI := gateway.NewPayoutsProvider(cfg.Disbursement.BaseURL, cfg.Disbursement.APIKey)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	notifSvc := service.NewNotificationService(notificationRepo)
	availabilitySvc := service.NewAvailabilityService(bookingRepo, listingRepo)
	refundSvc := service.NewRefundCoordinator(paymentRepo, bookingRepo, paymob)
	bookingSvc := service.NewBookingService(bookingRepo, listingRepo, walletRepo, availabilitySvc, refundSvc, notifSvc)
	paymentSvc := service.NewPaymentService(paymentRepo, bookingRepo, listingRepo, userRepo, availabilitySvc, paymob)
	payoutSvc := service.NewPayoutService(payoutRepo, walletRepo, payoutsAPI, tx, notifSvc)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	listingHandler := handler.NewListingHandler(listingRepo)
	bookingHandler := handler.NewBookingHandler(bookingSvc, bookingRepo, availabilitySvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	paymentWebhookHandler := handler.NewPaymentWebhookHandler(paymentSvc, bookingSvc, cfg)
	walletHandler := handler.NewWalletHandler(walletRepo)
	payoutHandler := handler.NewPayoutHandler(payoutSvc, payoutRepo)
	payoutWebhookHandler := handler.NewPayoutWebhookHandler(payoutSvc, cfg)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)
	hostMw := middleware.RequireRole(domain.RoleHost)
	adminMw := middleware.RequireRole(domain.RoleAdmin)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		api.GET("/listings/:id", listingHandler.Get)
		api.GET("/listings/:id/availability", bookingHandler.CheckAvailability)

		listings := api.Group("/listings")
		listings.Use(authMw, hostMw)
		{
			listings.POST("", listingHandler.Create)
			listings.PATCH("/:id/accepting", listingHandler.SetAccepting)
			listings.POST("/:id/blocked-dates", listingHandler.BlockDates)
			listings.GET("/:id/blocked-dates", listingHandler.ListBlockedDates)
			listings.DELETE("/:id/blocked-dates/:block_id", listingHandler.UnblockDates)
		}

		bookings := api.Group("/bookings")
		bookings.Use(authMw)
		{
			bookings.POST("", bookingHandler.Create)
			bookings.POST("/:id/cancel", bookingHandler.Cancel)
			bookings.POST("/:id/payment", paymentHandler.Initiate)
			bookings.POST("/:id/recognize", adminMw, bookingHandler.Recognize)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/listings", hostMw, listingHandler.ListMine)
			me.GET("/bookings", bookingHandler.ListMine)
			me.GET("/wallet", hostMw, walletHandler.GetBalance)
			me.GET("/wallet/transactions", hostMw, walletHandler.GetTransactions)
			me.POST("/payouts", hostMw, payoutHandler.Create)
			me.GET("/payouts", hostMw, payoutHandler.ListMine)
			me.GET("/payouts/:id/events", hostMw, payoutHandler.ListEvents)
			me.GET("/notifications", notificationHandler.List)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		}

		api.POST("/webhooks/payment", paymentWebhookHandler.Handle)
		api.POST("/webhooks/disbursement", payoutWebhookHandler.Handle)
	}

	return r
}
