package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskcompass/internal/notify"
	"taskcompass/internal/refresh"
	"taskcompass/internal/users"
)

type NotificationHandler struct {
	users      *users.Service
	dispatcher *notify.Dispatcher
	refresher  *refresh.Refresher
}

func NewNotificationHandler(userSvc *users.Service, dispatcher *notify.Dispatcher, refresher *refresh.Refresher) *NotificationHandler {
	return &NotificationHandler{users: userSvc, dispatcher: dispatcher, refresher: refresher}
}

// List godoc
// @Summary Fetch and clear the caller's pending notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Notification
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.dispatcher.Drain(user.UID))
}

// Refresh godoc
// @Summary Trigger a refresh cycle now
// @Description Any trigger source runs the same idempotent routine; when one
// @Description is already in flight the request reports refreshed=false.
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]bool
// @Router /refresh [post]
func (h *NotificationHandler) Refresh(c *gin.Context) {
	if _, ok := currentUser(c, h.users); !ok {
		return
	}
	ran := h.refresher.Trigger(context.Background())
	c.JSON(http.StatusOK, gin.H{"refreshed": ran})
}
