package controllers

import (
	"errors"
	"io"
	"net/http"

	"mobile-money-service/providers"
	"mobile-money-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Signature headers providers are required to send with every callback.
const (
	SignatureHeader = "X-Webhook-Signature"
	TimestampHeader = "X-Webhook-Timestamp"
)

// ProviderWebhook receives and dispatches asynchronous provider callbacks.
// Unknown references and unknown event types are still answered with 200 so
// providers do not retry payloads this system will never recognize.
func (pc *PaymentController) ProviderWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "unreadable body"})
		return
	}

	signature := c.GetHeader(SignatureHeader)
	timestamp := c.GetHeader(TimestampHeader)

	err = pc.Webhooks.Handle(c.Request.Context(), signature, timestamp, body)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(err, providers.ErrInvalidSignature), errors.Is(err, providers.ErrStaleTimestamp):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid signature"})
	case errors.Is(err, services.ErrMalformedPayload):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "malformed payload"})
	default:
		pc.Logger.Error("Webhook processing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
	}
}
