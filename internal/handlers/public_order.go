package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"grocery-backend/internal/models"
	"grocery-backend/internal/service"
)

// checkoutTimeout leaves room for the payment gateway call.
const checkoutTimeout = 20 * time.Second

type placeOrderRequest struct {
	AddressID   string `json:"addressId" binding:"required"`
	PaymentType string `json:"paymentType" binding:"required,oneof=cash online"`
	Note        string `json:"note"`
}

/*
POST /order/placeOrder
- the cart is priced, stock is reserved and the cart is emptied
- online orders answer with the hosted payment page URL
*/
func PlaceOrder(orders *service.OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /order/placeOrder"
		defer handlePanic(c, log, route)
		ctx, cancel := context.WithTimeout(c.Request.Context(), checkoutTimeout)
		defer cancel()

		principal, ok := currentUser(c, log, route)
		if !ok {
			return
		}

		var req placeOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		addressID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.AddressID))
		if err != nil {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid addressId")
			return
		}

		placed, err := orders.PlaceOrder(ctx, principal.UserID, service.PlaceOrderInput{
			AddressID:   addressID,
			PaymentType: models.PaymentType(req.PaymentType),
			Note:        req.Note,
		})
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}

		body := gin.H{"order": placed.Order}
		if placed.PaymentURL != "" {
			body["paymentUrl"] = placed.PaymentURL
		}
		c.JSON(http.StatusCreated, body)
	}
}

func GetOrderDetails(orders *service.OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /order/getOrderDetails/:id"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		principal, ok := currentUser(c, log, route)
		if !ok {
			return
		}
		orderID, ok := pathObjectID(c, "id")
		if !ok {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid id")
			return
		}

		order, err := orders.GetOrder(ctx, principal, orderID)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// orderFilter reads status, paymentStatus, page and limit from the query.
func orderFilter(c *gin.Context) (models.OrderFilter, error) {
	page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
	if err != nil {
		return models.OrderFilter{}, err
	}
	return models.OrderFilter{
		Status:        models.OrderStatus(strings.TrimSpace(c.Query("status"))),
		PaymentStatus: models.PaymentStatus(strings.TrimSpace(c.Query("paymentStatus"))),
		Page:          page,
		Limit:         limit,
	}, nil
}

/*
GET /order/getMyOrders
- newest first, paginated
*/
func GetMyOrders(orders *service.OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /order/getMyOrders"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		principal, ok := currentUser(c, log, route)
		if !ok {
			return
		}
		filter, err := orderFilter(c)
		if err != nil {
			respondWithError(c, log, http.StatusBadRequest, route, err.Error())
			return
		}

		// Staff tokens still only see their own orders here.
		principal.Role = models.RoleCustomer
		list, total, err := orders.ListOrders(ctx, principal, filter)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, paginated(list, filter.Page, filter.Limit, total))
	}
}

/*
PUT /order/cancelOrder/:id
- allowed while the order is pending or processing
*/
func CancelOrder(orders *service.OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /order/cancelOrder/:id"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		principal, ok := currentUser(c, log, route)
		if !ok {
			return
		}
		orderID, ok := pathObjectID(c, "id")
		if !ok {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid id")
			return
		}

		order, err := orders.CancelOrder(ctx, principal.UserID, orderID)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}
