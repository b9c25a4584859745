package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grocery-backend/internal/models"
	"grocery-backend/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger func(ctx context.Context) error

func ensureStoreAvailable(c *gin.Context, ping Pinger) error {
	if ping == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	return ping(ctx)
}

/*
GET /products
- pagination is optional: without page and limit every product is returned
*/
func GetProducts(catalog *service.CatalogService, ping Pinger, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		log.Debug("hit",
			zap.String("route", route),
			zap.String("page", c.Query("page")),
			zap.String("limit", c.Query("limit")),
			zap.String("category", c.Query("category")),
			zap.String("search", c.Query("search")),
		)

		if err := ensureStoreAvailable(c, ping); err != nil {
			respondWithError(c, log, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		filter := models.ProductFilter{
			Category: strings.TrimSpace(c.Query("category")),
			Search:   strings.TrimSpace(c.Query("search")),
		}

		pageStr, limitStr := c.Query("page"), c.Query("limit")
		paged := pageStr != "" && limitStr != ""
		if paged {
			page, limit, err := parsePaginationParams(pageStr, limitStr)
			if err != nil {
				respondWithError(c, log, http.StatusBadRequest, route, "invalid pagination params")
				return
			}
			filter.Page, filter.Limit = page, limit
		}

		products, total, err := catalog.ListPublic(ctx, filter)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}

		if paged {
			c.JSON(http.StatusOK, paginated(products, filter.Page, filter.Limit, total))
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

/*
GET /products/campaign
- pagination required; response carries data and pagination
*/
func GetCampaignProducts(catalog *service.CatalogService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/campaign"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, log, http.StatusBadRequest, route, err.Error())
			return
		}

		products, total, err := catalog.ListCampaign(ctx, page, limit)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, paginated(products, page, limit, total))
	}
}
