package models

import "time"

// Notification is one entry of the current user's notification feed.
type Notification struct {
	ID        int       `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationList is the payload of GET /notifications.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}

// UnreadCount is the payload of GET /notifications/unread-count.
type UnreadCount struct {
	UnreadCount int `json:"unread_count"`
}
