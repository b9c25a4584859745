package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grocery-backend/internal/models"
	"grocery-backend/internal/service"
)

const (
	PrincipalKey = "principal"
	UserIDKey    = "userId"
)

// bearerToken reads "Authorization: Bearer <token>". Browsers cannot set
// headers on a websocket handshake, so a token query parameter is accepted
// on upgrade requests only.
func bearerToken(c *gin.Context) (string, bool) {
	raw := strings.TrimSpace(c.GetHeader("Authorization"))
	if raw == "" {
		if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			if token := strings.TrimSpace(c.Query("token")); token != "" {
				return token, true
			}
		}
		return "", false
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// AuthGuard validates the access token and stores the caller's principal
// and userId in the context. With allowedRoles, other roles get 403.
func AuthGuard(secret string, log *zap.Logger, allowedRoles ...string) gin.HandlerFunc {
	log = log.Named("auth")
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader("Authorization")) == "" && c.Query("token") == "" {
			log.Debug("missing token", zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		raw, ok := bearerToken(c)
		if !ok {
			log.Debug("invalid token format", zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		principal, err := service.ParseAccessToken(secret, raw)
		if err != nil {
			log.Debug("token validation failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if len(allowedRoles) > 0 {
			match := false
			for _, r := range allowedRoles {
				if principal.Role == r {
					match = true
					break
				}
			}
			if !match {
				log.Warn("role not allowed", zap.String("userId", principal.UserID.Hex()), zap.String("role", principal.Role))
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
		}

		c.Set(PrincipalKey, principal)
		c.Set(UserIDKey, principal.UserID)
		c.Next()
	}
}

// AdminAuth admits the seller dashboard roles.
func AdminAuth(secret string, log *zap.Logger) gin.HandlerFunc {
	return AuthGuard(secret, log, models.RoleAdmin, models.RoleSeller)
}

// CurrentPrincipal returns the principal stored by AuthGuard.
func CurrentPrincipal(c *gin.Context) (service.Principal, bool) {
	value, ok := c.Get(PrincipalKey)
	if !ok {
		return service.Principal{}, false
	}
	principal, ok := value.(service.Principal)
	return principal, ok
}
