package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
	appErrors "github.com/dbtc-edu/enrollment-portal/pkg/errors"
	"github.com/dbtc-edu/enrollment-portal/pkg/render"
)

type notifier interface {
	UnreadCount(sessionID string) int
	List(ctx context.Context, sess *models.Session) (*models.NotificationList, error)
	MarkRead(ctx context.Context, sess *models.Session, id int)
	MarkAllRead(ctx context.Context, sess *models.Session)
}

// NotificationHandler backs the in-page notification dropdown. These are the
// only JSON endpoints the portal serves itself; the dropdown fetches them
// without a full page render.
type NotificationHandler struct {
	svc    notifier
	logger *zap.Logger
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(svc notifier, logger *zap.Logger) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{svc: svc, logger: logger}
}

// List returns the notification feed with its unread count.
func (h *NotificationHandler) List(c *gin.Context) {
	sess := currentSession(c)

	list, err := h.svc.List(c.Request.Context(), sess)
	if err != nil {
		render.JSONError(c, err)
		return
	}
	render.JSON(c, http.StatusOK, list)
}

// UnreadCount returns the badge value from the poller's cache. It never hits
// the upstream, so the badge stays cheap to refresh.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	sess := currentSession(c)
	render.JSON(c, http.StatusOK, gin.H{"unread_count": h.svc.UnreadCount(sess.ID)})
}

// MarkRead marks one notification read. The badge updates immediately; a
// failed upstream write is reconciled by the next poll.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	sess := currentSession(c)

	id, err := pathID(c, "id")
	if err != nil {
		render.JSONError(c, appErrors.Clone(appErrors.ErrValidation, "invalid notification id"))
		return
	}

	h.svc.MarkRead(c.Request.Context(), sess, id)
	render.JSON(c, http.StatusOK, gin.H{"unread_count": h.svc.UnreadCount(sess.ID)})
}

// MarkAllRead zeroes the badge and marks everything read upstream.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	sess := currentSession(c)
	h.svc.MarkAllRead(c.Request.Context(), sess)
	render.JSON(c, http.StatusOK, gin.H{"unread_count": 0})
}
