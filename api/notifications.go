package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"swaphub/models"
)

type NotificationView struct {
	ID        uuid.UUID               `json:"id"`
	UserID    uuid.UUID               `json:"userId"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Type      models.NotificationType `json:"type"`
	Link      string                  `json:"link"`
	IsRead    bool                    `json:"isRead"`
	CreatedAt time.Time               `json:"createdAt"`
}

// List notifications of a user
// (GET /api/notifications/:userID)
func (impl *ServerImpl) GetNotifications(c *gin.Context) {
	const op = "GetNotifications"
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid user id"})
		return
	}
	notifications, err := impl.queries.ListNotificationsByUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(notifications, func(n models.Notification, _ int) NotificationView {
		return NotificationView{
			ID:        n.ID,
			UserID:    n.UserID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      n.Type,
			Link:      n.Link,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		}
	}))
}

// Mark a notification as read
// (PUT /api/notifications/:notificationID/read)
func (impl *ServerImpl) PutNotificationRead(c *gin.Context) {
	const op = "PutNotificationRead"
	notificationID, err := uuid.Parse(c.Param("notificationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid notification id"})
		return
	}
	if err := impl.queries.MarkNotificationRead(c.Request.Context(), notificationID); err != nil {
		writeError(c, op, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stream notifications of a user over SSE
// (GET /api/notifications/stream)
func (impl *ServerImpl) GetNotificationStream(c *gin.Context) {
	const op = "GetNotificationStream"
	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid user id"})
		return
	}

	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Transfer-Encoding", "chunked")
	ch, err := impl.sseManager.Subscribe(userID.String())
	if err != nil {
		writeError(c, op, err)
		return
	}
	defer impl.sseManager.Unsubscribe(userID.String(), ch)
	for {
		select {
		case <-w.CloseNotify():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent("notification", event)
			w.Flush()
		// 30秒沒有事件就發送一個空行，確保瀏覽器和反向代理不會斷開連線
		case <-time.After(30 * time.Second):
			w.WriteString("\n\n")
			w.Flush()
		}
	}
}
