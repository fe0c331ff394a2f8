package controllers

import (
	"net/http"

	"mobile-money-service/middleware"
	"mobile-money-service/models"
	"mobile-money-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentController struct {
	Payments  services.PaymentService
	Webhooks  services.WebhookService
	Operators services.OperatorService
	Logger    *zap.Logger
}

func NewPaymentController(
	payments services.PaymentService,
	webhooks services.WebhookService,
	operators services.OperatorService,
	logger *zap.Logger,
) *PaymentController {
	return &PaymentController{
		Payments:  payments,
		Webhooks:  webhooks,
		Operators: operators,
		Logger:    logger,
	}
}

// InitiatePayment starts a payment through the gateway and returns the hosted
// payment URL.
func (pc *PaymentController) InitiatePayment(c *gin.Context) {
	var req models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}

	userID := middleware.GetUserID(c)

	result, serr := pc.Payments.Initiate(c.Request.Context(), userID, &req)
	if serr != nil {
		resp := gin.H{"success": false, "message": serr.Message}
		if serr.Fields != nil {
			resp["errors"] = serr.Fields
		}
		c.JSON(serr.StatusCode, resp)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// GetPaymentStatus returns the payment projection, or 404 when unknown.
func (pc *PaymentController) GetPaymentStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid payment id"})
		return
	}

	payment, serr := pc.Payments.GetPayment(c.Request.Context(), id)
	if serr != nil {
		c.JSON(serr.StatusCode, gin.H{"success": false, "message": serr.Message})
		return
	}
	if payment == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "payment not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": payment})
}

// GetOperators lists the mobile-money operators available in a country.
func (pc *PaymentController) GetOperators(c *gin.Context) {
	country := c.Param("country")

	operators, err := pc.Operators.GetOperators(c.Request.Context(), country)
	if err != nil {
		pc.Logger.Error("Failed to fetch operators", zap.String("country", country), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to fetch operators"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    operators,
		"country": country,
		"count":   len(operators),
	})
}

func (pc *PaymentController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
