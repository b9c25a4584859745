package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grocery-backend/internal/export"
	"grocery-backend/internal/models"
	"grocery-backend/internal/service"
)

const (
	// exportPageSize bounds each store read while collecting orders for export.
	exportPageSize = 200
	exportTimeout  = 30 * time.Second
)

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

/*
GET /admin/api/orders
- every customer's orders, filterable by status and paymentStatus
*/
func ListOrders(orders *service.OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
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

		list, total, err := orders.ListOrders(ctx, principal, filter)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, paginated(list, filter.Page, filter.Limit, total))
	}
}

func GetOrderStatistics(orders *service.OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /order/getOrderStatistics"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		stats, err := orders.Statistics(ctx)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

/*
PUT /admin/api/order/updateOrderStatus/:id
- the transition table applies unless ORDER_STATUS_POLICY=permissive
*/
func UpdateOrderStatus(orders *service.OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /order/updateOrderStatus/:id"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		orderID, ok := pathObjectID(c, "id")
		if !ok {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid id")
			return
		}
		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		order, err := orders.UpdateStatus(ctx, orderID, models.OrderStatus(req.Status))
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

func ConfirmCashPayment(orders *service.OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /order/confirmCashPayment/:id"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		orderID, ok := pathObjectID(c, "id")
		if !ok {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid id")
			return
		}

		order, err := orders.ConfirmCashPayment(ctx, orderID)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

func DeleteOrder(orders *service.OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/orders/:id"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		orderID, ok := pathObjectID(c, "id")
		if !ok {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid id")
			return
		}

		if err := orders.Delete(ctx, orderID); err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}

/*
GET /admin/api/orders/export
- same filters as the list, without pagination, as an .xlsx download
*/
func ExportOrders(orders *service.OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders/export"
		defer handlePanic(c, log, route)
		ctx, cancel := context.WithTimeout(c.Request.Context(), exportTimeout)
		defer cancel()

		principal, ok := currentUser(c, log, route)
		if !ok {
			return
		}
		filter := models.OrderFilter{
			Status:        models.OrderStatus(c.Query("status")),
			PaymentStatus: models.PaymentStatus(c.Query("paymentStatus")),
			Limit:         exportPageSize,
		}

		all := make([]models.Order, 0)
		for page := int64(1); ; page++ {
			filter.Page = page
			batch, total, err := orders.ListOrders(ctx, principal, filter)
			if err != nil {
				respondServiceError(c, log, route, err)
				return
			}
			all = append(all, batch...)
			if len(batch) == 0 || int64(len(all)) >= total {
				break
			}
		}

		filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102-150405"))
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Header("Content-Type", export.ContentType)
		c.Status(http.StatusOK)
		if err := export.WriteOrders(c.Writer, all); err != nil {
			log.Error("write export failed", zap.String("route", route), zap.Error(err))
			return
		}
		log.Info("orders exported", zap.Int("count", len(all)), zap.String("userId", principal.UserID.Hex()))
	}
}
