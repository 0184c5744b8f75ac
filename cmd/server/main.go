package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yafafa-lodge/service-booking/internal/adapter"
	"github.com/yafafa-lodge/service-booking/internal/application"
	"github.com/yafafa-lodge/service-booking/internal/config"
	bookingEvents "github.com/yafafa-lodge/service-booking/internal/events"
	"github.com/yafafa-lodge/service-booking/internal/handler"
	"github.com/yafafa-lodge/service-booking/internal/repository"
	"github.com/yafafa-lodge/service-booking/pkg/auth"
	"github.com/yafafa-lodge/service-booking/pkg/database"
	"github.com/yafafa-lodge/service-booking/pkg/health"
	"github.com/yafafa-lodge/service-booking/pkg/kafka"
	"github.com/yafafa-lodge/service-booking/pkg/logger"
	"github.com/yafafa-lodge/service-booking/pkg/middleware"
	"github.com/yafafa-lodge/service-booking/pkg/obs"
	"github.com/yafafa-lodge/service-booking/pkg/response"
)

const serviceName = "service-booking"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)

	// Initialize tracing
	shutdownTracer, err := obs.InitTracer(context.Background(), serviceName, cfg.AppEnv, cfg.OTelEndpoint)
	if err != nil {
		zapLogger.Fatal("failed to initialize tracer", zap.Error(err))
	}

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.BookingModel{}); err != nil {
			zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		zapLogger.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", zapLogger); err != nil {
			zapLogger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT verification and the admin allow-list
	jwtManager, err := auth.NewJWTManager(cfg.JWTConfig.Secret, 15*time.Minute)
	if err != nil {
		zapLogger.Fatal("failed to initialize JWT manager", zap.Error(err))
	}
	admins := auth.NewAdminSet(cfg.AdminEmails)
	if admins.Len() == 0 {
		zapLogger.Warn("ADMIN_EMAILS is empty; admin routes will reject everyone")
	}

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, zapLogger)
	defer kafkaProducer.Close()

	// Initialize Paystack client
	paystack := adapter.NewPaystackClient(adapter.PaystackConfig{
		BaseURL:   cfg.PaystackConfig.BaseURL,
		SecretKey: cfg.PaystackConfig.SecretKey,
		Currency:  cfg.PaystackConfig.Currency,
		Timeout:   cfg.PaystackConfig.Timeout,
	}, zapLogger)

	// Initialize repositories and application services
	bookingRepo := repository.NewBookingRepository(db)
	reconciler := application.NewReconciler(bookingRepo, kafkaProducer, zapLogger)
	paymentService := application.NewPaymentService(paystack, reconciler, kafkaProducer, zapLogger)
	bookingService := application.NewBookingService(bookingRepo, zapLogger)

	// Initialize Kafka consumer for payment commands
	consumerGroupID := cfg.KafkaConfig.GroupPrefix + serviceName
	commandConsumer := bookingEvents.NewPaymentCommandConsumer(
		cfg.KafkaConfig.Brokers,
		consumerGroupID,
		paymentService,
		kafkaProducer,
		zapLogger,
	)
	defer commandConsumer.Close()

	// Start Kafka consumer in a goroutine
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	go func() {
		zapLogger.Info("starting payment command consumer")
		if err := commandConsumer.Start(consumerCtx); err != nil {
			if consumerCtx.Err() == nil {
				zapLogger.Error("payment command consumer failed", zap.Error(err))
			}
		}
	}()

	// Initialize HTTP handlers
	paymentHandler := handler.NewPaymentHandler(paymentService)
	bookingHandler := handler.NewBookingHandler(bookingService, admins)
	adminHandler := handler.NewAdminHandler(bookingService, admins)
	webhookHandler := handler.NewWebhookHandler(
		reconciler,
		cfg.PaystackConfig.WebhookSecret,
		cfg.WebhookMaxBodyBytes,
		zapLogger,
	)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	response.UseJSONFieldNames()
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, serviceName)
	healthHandler.RegisterRoutes(router)

	// Register routes
	webhookHandler.RegisterRoutes(router)
	api := router.Group("/api")
	paymentHandler.RegisterRoutes(api)
	bookingHandler.RegisterRoutes(api, jwtManager)
	adminHandler.RegisterRoutes(api, jwtManager)

	// Create HTTP server. The write timeout leaves room for a gateway call.
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.PaystackConfig.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down " + serviceName + "...")

	// Cancel Kafka consumer
	consumerCancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		zapLogger.Error("failed to flush traces", zap.Error(err))
	}

	zapLogger.Info(serviceName + " stopped")
}
