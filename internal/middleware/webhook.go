package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grocery-backend/internal/payment"
)

// PaymentSignature rejects gateway callbacks whose signature does not match
// secret. In sandbox mode unsigned callbacks are let through with a warning.
func PaymentSignature(secret string, sandbox bool, log *zap.Logger) gin.HandlerFunc {
	log = log.Named("payment")
	return func(c *gin.Context) {
		if err := c.Request.ParseForm(); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
			return
		}

		if secret == "" || c.Request.PostForm.Get("tran_check") == "" {
			if sandbox {
				log.Warn("unsigned payment callback accepted in sandbox mode")
				c.Next()
				return
			}
			log.Error("payment callback without signature or secret")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}

		if !payment.VerifySignature(secret, c.Request.PostForm) {
			log.Warn("payment callback signature mismatch", zap.String("cartId", c.Request.PostForm.Get("tran_cartid")))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
		c.Next()
	}
}
