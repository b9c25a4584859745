package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grocery-backend/internal/service"
)

/*
POST /admin/login
- only seller and admin accounts get a session
*/
func AdminLogin(auth *service.AuthService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/login"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, log, http.StatusBadRequest, route, "email and password are required")
			return
		}

		session, err := auth.AdminLogin(ctx, req.Email, req.Password)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":        session.AccessToken,
			"refreshToken": session.RefreshToken,
			"expiresIn":    session.ExpiresIn,
			"user":         session.User,
		})
	}
}
