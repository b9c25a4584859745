package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grocery-backend/internal/payment"
	"grocery-backend/internal/service"
)

/*
POST /payment/webhook
- form-encoded gateway callback, signature checked by middleware
- unknown carts are acknowledged so the gateway stops retrying
*/
func PaymentWebhook(orders *service.OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payment/webhook"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		if err := c.Request.ParseForm(); err != nil {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid form")
			return
		}
		result, err := payment.ParseWebhook(c.Request.PostForm)
		if err != nil {
			respondWithError(c, log, http.StatusBadRequest, route, err.Error())
			return
		}

		outcome, err := orders.HandlePaymentWebhook(ctx, result)
		if errors.Is(err, service.ErrNotFound) {
			log.Warn("payment callback for unknown order",
				zap.String("cartId", result.CartID),
				zap.String("tranRef", result.TransactionRef),
			)
			c.JSON(http.StatusOK, gin.H{"received": true, "applied": false})
			return
		}
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"received":       true,
			"applied":        outcome.Applied,
			"orderId":        outcome.Order.ID.Hex(),
			"paymentStatus":  outcome.Order.PaymentStatus,
			"refundRequired": outcome.RefundRequired,
		})
	}
}
