package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserAuth admits any authenticated account; handlers scope data by the
// userId it injects.
func UserAuth(secret string, log *zap.Logger) gin.HandlerFunc {
	return AuthGuard(secret, log)
}
