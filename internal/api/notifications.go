package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/store"
)

// NotificationHandler serves the caller's notification inbox.
type NotificationHandler struct {
	store *store.Store
}

func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.store.ListNotifications(c.Request.Context(), identityFrom(c).ID)
	if err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to list notifications")
		return
	}
	standardResponse(c, http.StatusOK, "ok", notifications, "")
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	err := h.store.MarkNotificationRead(c.Request.Context(), c.Param("id"), identityFrom(c).ID)
	if errors.Is(err, store.ErrNotFound) {
		standardResponse(c, http.StatusNotFound, "error", nil, "notification not found")
		return
	}
	if err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to mark notification read")
		return
	}
	standardResponse(c, http.StatusOK, "ok", nil, "")
}
