package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grocery-backend/internal/notify"
	"grocery-backend/internal/service"
)

// Notification routes serve both inboxes: staff principals read the shared
// admin inbox, customers their own.

/*
GET /notification, GET /admin/api/notifications
- ?unread=true lists unread only
*/
func ListNotifications(notifications *service.NotificationService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET notifications"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		principal, ok := currentUser(c, log, route)
		if !ok {
			return
		}
		recipient := principal.Recipient()
		unreadOnly := false
		if v := optionalBool(c.Query("unread")); v != nil {
			unreadOnly = *v
		}

		list, err := notifications.ListFor(ctx, recipient, unreadOnly)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		unread, err := notifications.UnreadCount(ctx, recipient)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": list, "unreadCount": unread})
	}
}

func MarkNotificationRead(notifications *service.NotificationService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT notifications/:id/read"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		principal, ok := currentUser(c, log, route)
		if !ok {
			return
		}
		id, ok := pathObjectID(c, "id")
		if !ok {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid id")
			return
		}

		if err := notifications.MarkRead(ctx, principal.Recipient(), id); err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
	}
}

func ClearReadNotifications(notifications *service.NotificationService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE notifications/read"
		defer handlePanic(c, log, route)
		ctx, cancel := requestContext(c)
		defer cancel()

		principal, ok := currentUser(c, log, route)
		if !ok {
			return
		}

		deleted, err := notifications.ClearRead(ctx, principal.Recipient())
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": deleted})
	}
}

/*
GET notifications/ws
- websocket; every stored notification for the caller's inbox is pushed
*/
func NotificationSocket(hub *notify.Hub, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET notifications/ws"

		principal, ok := currentUser(c, log, route)
		if !ok {
			return
		}
		if err := hub.Serve(c.Writer, c.Request, principal.Recipient()); err != nil {
			// The upgrader has already written the HTTP error.
			log.Warn("websocket upgrade failed", zap.String("route", route), zap.Error(err))
		}
	}
}
