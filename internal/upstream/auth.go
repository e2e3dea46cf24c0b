package upstream

import (
	"context"
	"net/http"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
)

// Credentials is the login/registration payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token. No token is attached; a
// 401 here means bad credentials, not an expired session.
func (c *Client) Login(ctx context.Context, creds Credentials) (*models.TokenResponse, error) {
	var out models.TokenResponse
	err := c.do(ctx, request{
		method:       http.MethodPost,
		path:         "/auth/login",
		group:        "auth",
		body:         jsonBody(creds),
		cType:        "application/json",
		authEndpoint: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a student account and returns its first token.
func (c *Client) Register(ctx context.Context, creds Credentials) (*models.TokenResponse, error) {
	var out models.TokenResponse
	err := c.do(ctx, request{
		method:       http.MethodPost,
		path:         "/auth/register",
		group:        "auth",
		body:         jsonBody(creds),
		cType:        "application/json",
		authEndpoint: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me revalidates a bearer token and returns the identity behind it. Session
// restore depends on this: any error, including a network failure, is treated
// as an invalid token by the caller.
func (c *Client) Me(ctx context.Context, token string) (*models.Identity, error) {
	var out models.Identity
	if err := c.getJSON(ctx, token, "auth", "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
