package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"grocery-backend/internal/service"
)

type cartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"quantity"`
}

func (r cartItemRequest) productID() (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(r.ProductID)
	return id, err == nil
}

/*
GET /cart
- priced with live product prices on every read
*/
func GetCart(carts *service.CartService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		principal, ok := currentUser(c, log, route)
		if !ok {
			return
		}

		view, err := carts.Get(ctx, principal.UserID)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

/*
POST /cart/add
- quantity defaults to 1 and is added to an existing line
*/
func AddToCart(carts *service.CartService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/add"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		principal, ok := currentUser(c, log, route)
		if !ok {
			return
		}

		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		productID, ok := req.productID()
		if !ok {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid productId")
			return
		}
		quantity := 1
		if req.Quantity != nil {
			quantity = *req.Quantity
		}

		view, err := carts.Add(ctx, principal.UserID, productID, quantity)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

/*
PUT /cart/setQuantity
- quantity 0 removes the line
*/
func SetCartQuantity(carts *service.CartService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/setQuantity"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		principal, ok := currentUser(c, log, route)
		if !ok {
			return
		}

		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		productID, ok := req.productID()
		if !ok {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid productId")
			return
		}
		if req.Quantity == nil {
			respondWithError(c, log, http.StatusBadRequest, route, "quantity is required")
			return
		}

		view, err := carts.SetQuantity(ctx, principal.UserID, productID, *req.Quantity)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func RemoveFromCart(carts *service.CartService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/remove/:productId"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		principal, ok := currentUser(c, log, route)
		if !ok {
			return
		}
		productID, ok := pathObjectID(c, "productId")
		if !ok {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid productId")
			return
		}

		view, err := carts.Remove(ctx, principal.UserID, productID)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func ClearCart(carts *service.CartService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/clear"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		principal, ok := currentUser(c, log, route)
		if !ok {
			return
		}

		if err := carts.Clear(ctx, principal.UserID); err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
	}
}
