package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/loadlane/loadlane/pkg/response"
)

func (h *handlers) listNotifications(c *gin.Context) {
	userID := currentUserID(c)

	unreadOnly := c.Query("unread") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	records, total, err := h.deps.InApp.List(c.Request.Context(), userID, unreadOnly, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, records, &response.Meta{
		Total: int(total),
	})
}

func (h *handlers) unreadCount(c *gin.Context) {
	count, err := h.deps.InApp.UnreadCount(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"count": count})
}

func (h *handlers) markRead(c *gin.Context) {
	err := h.deps.InApp.MarkRead(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"read": true})
}

func (h *handlers) markUnread(c *gin.Context) {
	err := h.deps.InApp.MarkUnread(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"read": false})
}

func (h *handlers) markAllRead(c *gin.Context) {
	updated, err := h.deps.InApp.MarkAllRead(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": updated})
}

func (h *handlers) deleteNotification(c *gin.Context) {
	err := h.deps.InApp.Delete(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *handlers) stream(c *gin.Context) {
	if h.deps.Hub == nil {
		response.Error(c, nil)
		return
	}
	h.deps.Hub.Serve(currentUserID(c), c.Writer, c.Request)
}
