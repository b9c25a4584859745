package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grocery-backend/internal/service"
)

func GetCategories(catalog *service.CatalogService, ping Pinger, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /categories"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		if err := ensureStoreAvailable(c, ping); err != nil {
			respondWithError(c, log, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		active := true
		categories, err := catalog.ListCategories(ctx, &active)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}
