package upstream

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
)

// Notifications fetches the recent list plus the authoritative unread count.
func (c *Client) Notifications(ctx context.Context, token string) (*models.NotificationList, error) {
	var out models.NotificationList
	if err := c.getJSON(ctx, token, "notifications", "/notifications", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NotificationUnreadCount fetches only the unread counter; the poller calls
// this on its interval.
func (c *Client) NotificationUnreadCount(ctx context.Context, token string) (int, error) {
	var out models.UnreadCount
	if err := c.getJSON(ctx, token, "notifications", "/notifications/unread-count", nil, &out); err != nil {
		return 0, err
	}
	return out.UnreadCount, nil
}

// MarkNotificationRead flags a single notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, token string, id int) error {
	return c.sendJSON(ctx, http.MethodPut, token, "notifications", "/notifications/"+strconv.Itoa(id)+"/read", nil, nil)
}

// MarkAllNotificationsRead flags every notification as read. Idempotent on
// the upstream side.
func (c *Client) MarkAllNotificationsRead(ctx context.Context, token string) error {
	return c.sendJSON(ctx, http.MethodPut, token, "notifications", "/notifications/read-all", nil, nil)
}
