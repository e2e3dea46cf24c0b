package models

import "time"

// Identity is the authenticated user as reported by GET /auth/me.
type Identity struct {
	ID          int    `json:"id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	IsActive    bool   `json:"is_active"`
	DisplayName string `json:"display_name"`
}

// Session is the portal's durable record of a logged-in browser. The bearer
// token belongs to the upstream API; the portal only carries it.
type Session struct {
	ID          string    `json:"id"`
	UserID      int       `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	Token       string    `json:"token"`
	CreatedAt   time.Time `json:"created_at"`
}

// TokenResponse is the payload of POST /auth/login and /auth/register.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
}
