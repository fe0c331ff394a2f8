package routes

import (
	"mobile-money-service/controllers"
	"mobile-money-service/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func RegisterPaymentRoutes(r *gin.Engine, pc *controllers.PaymentController, jwtSecret string) {
	api := r.Group("/api/mobile-money")

	// Public routes. The webhook endpoint is signature-verified and
	// rate-limited rather than authenticated.
	api.GET("/operators/:country", pc.GetOperators)
	api.POST("/webhook", middleware.RateLimitMiddleware(rate.Limit(10), 30), pc.ProviderWebhook)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(jwtSecret))
	authed.POST("/initiate", pc.InitiatePayment)
	authed.GET("/status/:paymentId", pc.GetPaymentStatus)

	r.GET("/health", pc.HealthCheck)
}
