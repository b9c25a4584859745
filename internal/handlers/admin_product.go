package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grocery-backend/internal/models"
	"grocery-backend/internal/service"
)

/* =======================
   REQUEST MODELS
======================= */

// ProductUpdateRequest is the JSON form of a partial product update.
type ProductUpdateRequest struct {
	Name        *string   `json:"name"`
	Price       *float64  `json:"price"`
	SaleEnabled *bool     `json:"saleEnabled"`
	SalePrice   *float64  `json:"salePrice"`
	CategoryIDs *[]string `json:"category_id"`
	Description *string   `json:"description"`
	Barcode     *string   `json:"barcode"`
	Brand       *string   `json:"brand"`
	Stock       *int      `json:"stock"`
	IsActive    *bool     `json:"isActive"`
	IsCampaign  *bool     `json:"isCampaign"`
}

func (r ProductUpdateRequest) input() service.ProductInput {
	in := service.ProductInput{
		Name:        r.Name,
		Price:       r.Price,
		SaleEnabled: r.SaleEnabled,
		SalePrice:   r.SalePrice,
		Description: r.Description,
		Barcode:     r.Barcode,
		Brand:       r.Brand,
		Stock:       r.Stock,
		IsActive:    r.IsActive,
		IsCampaign:  r.IsCampaign,
	}
	if r.CategoryIDs != nil {
		in.CategoryIDs = *r.CategoryIDs
		if in.CategoryIDs == nil {
			in.CategoryIDs = []string{}
		}
	}
	return in
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data")
}

/* =======================
   GET (ADMIN) – LIST
======================= */

func GetAllProducts(catalog *service.CatalogService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/products"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, log, http.StatusBadRequest, route, err.Error())
			return
		}

		products, total, err := catalog.ListAdmin(ctx, models.ProductFilter{
			Category: strings.TrimSpace(c.Query("category")),
			Search:   strings.TrimSpace(c.Query("search")),
			IsActive: optionalBool(c.Query("isActive")),
			Page:     page,
			Limit:    limit,
		})
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, paginated(products, page, limit, total))
	}
}

/* =======================
   CREATE
======================= */

func CreateProduct(catalog *service.CatalogService, images *ImageStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		if !isMultipart(c) {
			respondWithError(c, log, http.StatusUnsupportedMediaType, route, "multipart/form-data required")
			return
		}

		input, err := parseMultipartProductRequest(c, images)
		if err != nil {
			respondWithError(c, log, http.StatusBadRequest, route, err.Error())
			return
		}
		if input.ImagePath == nil {
			respondWithError(c, log, http.StatusBadRequest, route, "image required")
			return
		}

		product, err := catalog.CreateProduct(ctx, input)
		if err != nil {
			images.discard(*input.ImagePath)
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

/* =======================
   UPDATE
======================= */

// UpdateProduct accepts the multipart form or a JSON body. ?removeImage=true
// drops the current image when no new one is uploaded.
func UpdateProduct(catalog *service.CatalogService, images *ImageStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		id, ok := pathObjectID(c, "id")
		if !ok {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid id")
			return
		}

		removeImage := false
		if removeRaw := strings.TrimSpace(c.Query("removeImage")); removeRaw != "" {
			parsed, err := strconv.ParseBool(removeRaw)
			if err != nil {
				respondWithError(c, log, http.StatusBadRequest, route, "removeImage must be boolean")
				return
			}
			removeImage = parsed
		}

		var input service.ProductInput
		if isMultipart(c) {
			parsed, err := parseMultipartProductRequest(c, images)
			if err != nil {
				respondWithError(c, log, http.StatusBadRequest, route, err.Error())
				return
			}
			input = parsed
		} else {
			var req ProductUpdateRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				respondValidationError(c, err)
				return
			}
			input = req.input()
		}

		uploaded := input.ImagePath != nil
		if !uploaded && removeImage {
			empty := ""
			input.ImagePath = &empty
		}

		product, previousImage, err := catalog.UpdateProduct(ctx, id, input)
		if err != nil {
			if uploaded {
				images.discard(*input.ImagePath)
			}
			respondServiceError(c, log, route, err)
			return
		}
		if previousImage != "" {
			images.discard(previousImage)
		}
		c.JSON(http.StatusOK, product)
	}
}

/* =======================
   DELETE (SOFT)
======================= */

func DeleteProduct(catalog *service.CatalogService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/products/:id"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		id, ok := pathObjectID(c, "id")
		if !ok {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid id")
			return
		}

		if err := catalog.DeleteProduct(ctx, id); err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}
