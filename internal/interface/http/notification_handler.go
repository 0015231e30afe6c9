package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/edugrant/internal/application"
	"github.com/oksasatya/edugrant/pkg/response"
)

type NotificationHandler struct {
	Svc *application.NotificationService
}

func NewNotificationHandler(svc *application.NotificationService) *NotificationHandler {
	return &NotificationHandler{Svc: svc}
}

// List GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	list, err := h.Svc.ListMine(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	unread := 0
	for _, n := range list {
		if !n.IsRead {
			unread++
		}
	}
	response.Success(c, http.StatusOK, toNotifications(list), "notifications", gin.H{"unread": unread})
}

// ReadAll PUT /api/notifications/read-all
func (h *NotificationHandler) ReadAll(c *gin.Context) {
	n, err := h.Svc.MarkAllRead(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"updated": n}, "notifications marked as read", nil)
}

// Delete DELETE /api/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.Svc.DeleteOne(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "notification deleted", nil)
}

// Clear DELETE /api/notifications
func (h *NotificationHandler) Clear(c *gin.Context) {
	n, err := h.Svc.ClearAll(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"count": n}, "all notifications cleared", nil)
}
