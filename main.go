package main

import (
	"context"
	"log"
	"strings"
	"time"

	"mobile-money-service/cache"
	"mobile-money-service/config"
	"mobile-money-service/controllers"
	"mobile-money-service/database"
	"mobile-money-service/kafka"
	"mobile-money-service/logger"
	"mobile-money-service/models"
	"mobile-money-service/providers"
	"mobile-money-service/repository"
	"mobile-money-service/routes"
	"mobile-money-service/services"
	"mobile-money-service/validation"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[MobileMoneyService] ❌ Failed to load config:", err)
	}

	zlog, err := logger.Initialize(cfg.Env)
	if err != nil {
		log.Fatal("[MobileMoneyService] ❌ Failed to initialize logger:", err)
	}
	defer zlog.Sync()

	db, err := database.ConnectPostgres(cfg, zlog, &models.Payment{})
	if err != nil {
		log.Fatal("[MobileMoneyService] ❌ Failed to connect to DB:", err)
	}

	redisClient, err := database.NewRedisClient(cfg.RedisURL, zlog)
	if err != nil {
		log.Fatal("[MobileMoneyService] ❌ Failed to connect to Redis:", err)
	}

	paymentRepo := repository.NewGormPaymentRepo(db)
	operatorCache := cache.NewOperatorCache(redisClient, cfg.OperatorCacheTTL)

	provider := providers.NewYellowCardProvider(cfg.ProviderBaseURL, cfg.ProviderAPIKey)
	verifier := providers.NewSignatureVerifier(cfg.WebhookSecret, 5*time.Minute)
	requestValidator := validation.New()
	feeCalc := services.NewFeeCalculator(cfg.FixedFee, cfg.PercentageFee)

	producer := kafka.NewPaymentEventProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.PaymentEventTopic, zlog)
	defer producer.Close()

	paymentSvc := services.NewPaymentService(
		paymentRepo,
		provider,
		requestValidator,
		feeCalc,
		producer,
		cfg.CallbackURL,
		cfg.FrontendURL+"/checkout/complete",
		cfg.PaymentExpiryWindow,
		zlog,
	)
	webhookSvc := services.NewWebhookService(paymentRepo, verifier, producer, zlog)
	operatorSvc := services.NewOperatorService(operatorCache, zlog)

	// Sweep stale pending payments in the background.
	go func() {
		ticker := time.NewTicker(cfg.ExpirySweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := paymentSvc.ExpirePending(context.Background()); err != nil {
				zlog.Error("Expiry sweep error", zap.Error(err))
			}
		}
	}()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(zlog))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	pc := controllers.NewPaymentController(paymentSvc, webhookSvc, operatorSvc, zlog)
	routes.RegisterPaymentRoutes(r, pc, cfg.JWTSecret)

	log.Println("[MobileMoneyService] ✅ Running on port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("[MobileMoneyService] ❌ Server failed:", err)
	}
}
