package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"tajapart/internal/config"
	"tajapart/internal/handler"
	"tajapart/internal/logging"
	"tajapart/internal/middleware"
	"tajapart/internal/repository"
	"tajapart/internal/service"
	"tajapart/internal/store"
)

const (
	mongoConnectTimeout    = 10 * time.Second
	mongoIndexTimeout      = 5 * time.Second
	mongoDisconnectTimeout = 5 * time.Second
	serverShutdownTimeout  = 5 * time.Second
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.Setup(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	// --- Database Connection ---
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), mongoConnectTimeout)
	mongoManager, err := store.NewManager(connectCtx, cfg)
	cancelConnect()
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to mongo")
	}
	logger.WithField("db", cfg.MongoDB).Info("connected to mongo")

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), mongoIndexTimeout)
	err = mongoManager.EnsureIndexes(indexCtx)
	cancelIndexes()
	if err != nil {
		logger.WithError(err).Fatal("failed to ensure mongo indexes")
	}

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(mongoManager.Users())
	agreementRepo := repository.NewAgreementRepository(mongoManager.Agreements())
	apartmentRepo := repository.NewApartmentRepository(mongoManager.Apartments())
	announcementRepo := repository.NewAnnouncementRepository(mongoManager.Announcements())
	couponRepo := repository.NewCouponRepository(mongoManager.Coupons())
	paymentRepo := repository.NewPaymentRepository(mongoManager.Payments())

	// --- Initialize Services ---
	membershipService := service.NewMembershipService(userRepo, agreementRepo, logger)
	catalogService := service.NewCatalogService(apartmentRepo, announcementRepo)
	billingService := service.NewBillingService(paymentRepo, couponRepo, logger)
	intentService := service.NewStripeIntentService(cfg.StripeSecretKey)

	// --- Initialize Handlers ---
	userHandler := handler.NewUserHandler(membershipService, logger)
	apartmentHandler := handler.NewApartmentHandler(catalogService, logger)
	announcementHandler := handler.NewAnnouncementHandler(catalogService, logger)
	billingHandler := handler.NewBillingHandler(billingService, intentService, logger)

	// --- Setup Gin Router ---
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	// --- Register Routes ---
	rootGroup := router.Group("/")
	userHandler.RegisterUserRoutes(rootGroup)
	apartmentHandler.RegisterApartmentRoutes(rootGroup)
	announcementHandler.RegisterAnnouncementRoutes(rootGroup)
	billingHandler.RegisterBillingRoutes(rootGroup)

	router.GET("/health", func(c *gin.Context) {
		if err := mongoManager.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.ServerPort).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("listen failed")
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), serverShutdownTimeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	cancelShutdown()

	disconnectCtx, cancelDisconnect := context.WithTimeout(context.Background(), mongoDisconnectTimeout)
	if err := mongoManager.Close(disconnectCtx); err != nil {
		logger.WithError(err).Error("mongo disconnect failed")
	}
	cancelDisconnect()

	logger.Info("server exiting")
}
