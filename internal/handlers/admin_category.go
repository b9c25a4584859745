package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grocery-backend/internal/service"
)

type CategoryCreateRequest struct {
	Name     string `json:"name" binding:"required"`
	IsActive *bool  `json:"isActive"`
}

type CategoryUpdateRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"isActive"`
}

/*
GET /admin/api/categories
- active and inactive, ?isActive=true|false narrows
*/
func GetAllCategories(catalog *service.CatalogService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/categories"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		categories, err := catalog.ListCategories(ctx, optionalBool(c.Query("isActive")))
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": categories})
	}
}

/*
POST /admin/api/categories
- names are unique
*/
func CreateCategory(catalog *service.CatalogService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/categories"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		var req CategoryCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		category, err := catalog.CreateCategory(ctx, req.Name, req.IsActive)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

func UpdateCategory(catalog *service.CatalogService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/categories/:id"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		id, ok := pathObjectID(c, "id")
		if !ok {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req CategoryUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid body")
			return
		}
		if req.Name == nil && req.IsActive == nil {
			respondWithError(c, log, http.StatusBadRequest, route, "no fields to update")
			return
		}

		category, err := catalog.UpdateCategory(ctx, id, req.Name, req.IsActive)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

/*
DELETE /admin/api/categories/:id
- soft delete: the category is deactivated
*/
func DeleteCategory(catalog *service.CatalogService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/categories/:id"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		id, ok := pathObjectID(c, "id")
		if !ok {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid id")
			return
		}

		if err := catalog.DeactivateCategory(ctx, id); err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
