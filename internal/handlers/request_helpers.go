package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"grocery-backend/internal/middleware"
	"grocery-backend/internal/service"
)

var requestTimeout = 5 * time.Second

// requestContext bounds the store and lock work of one request.
func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func handlePanic(c *gin.Context, log *zap.Logger, route string) {
	if r := recover(); r != nil {
		log.Error("panic recovered", zap.String("route", route), zap.Any("panic", r))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondWithError(c *gin.Context, log *zap.Logger, status int, route string, message string) {
	if status >= http.StatusInternalServerError {
		log.Error("returning error", zap.String("route", route), zap.Int("status", status), zap.String("error", message))
	} else {
		log.Debug("returning error", zap.String("route", route), zap.Int("status", status), zap.String("error", message))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Unknown errors are logged and hidden behind a generic message.
func respondServiceError(c *gin.Context, log *zap.Logger, route string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		body := gin.H{"error": verr.Message}
		if len(verr.Fields) > 0 {
			body["details"] = verr.Fields
		}
		log.Debug("validation failed", zap.String("route", route), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, body)
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(c, log, http.StatusUnauthorized, route, errorMessage(err))
	case errors.Is(err, service.ErrForbidden):
		respondWithError(c, log, http.StatusForbidden, route, errorMessage(err))
	case errors.Is(err, service.ErrNotFound):
		respondWithError(c, log, http.StatusNotFound, route, err.Error())
	case errors.Is(err, service.ErrConflict):
		respondWithError(c, log, http.StatusConflict, route, errorMessage(err))
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("request timed out", zap.String("route", route), zap.Error(err))
		respondWithError(c, log, http.StatusServiceUnavailable, route, "request timed out")
	case errors.Is(err, service.ErrUpstream):
		log.Error("upstream failure", zap.String("route", route), zap.Error(err))
		respondWithError(c, log, http.StatusBadGateway, route, "payment provider unavailable")
	default:
		log.Error("unexpected error", zap.String("route", route), zap.Error(err))
		respondWithError(c, log, http.StatusInternalServerError, route, "internal server error")
	}
}

// errorMessage strips the "<sentinel>: " prefix the services wrap with.
func errorMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param(name)))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// currentUser returns the principal set by the auth middleware; a missing
// principal means the route was mounted without it.
func currentUser(c *gin.Context, log *zap.Logger, route string) (service.Principal, bool) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		log.Error("principal missing in context", zap.String("route", route))
		respondWithError(c, log, http.StatusUnauthorized, route, "unauthorized")
		return service.Principal{}, false
	}
	return principal, true
}

func optionalBool(raw string) *bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}
