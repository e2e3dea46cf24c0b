package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
	"github.com/dbtc-edu/enrollment-portal/internal/upstream"
	"github.com/dbtc-edu/enrollment-portal/pkg/render"
)

type fakeAuthAPI struct {
	token    *models.TokenResponse
	loginErr error
	creds    upstream.Credentials
}

func (f *fakeAuthAPI) Login(ctx context.Context, creds upstream.Credentials) (*models.TokenResponse, error) {
	f.creds = creds
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.token, nil
}

func (f *fakeAuthAPI) Register(ctx context.Context, creds upstream.Credentials) (*models.TokenResponse, error) {
	return f.Login(ctx, creds)
}

func (f *fakeAuthAPI) EnrollmentWindow(ctx context.Context) (*models.EnrollmentWindow, error) {
	return &models.EnrollmentWindow{IsOpen: true}, nil
}

type fakeSessionManager struct {
	sess      *models.Session
	cookie    string
	loginErr  error
	loggedOut []*models.Session
}

func (f *fakeSessionManager) Login(ctx context.Context, token string) (*models.Session, string, error) {
	if f.loginErr != nil {
		return nil, "", f.loginErr
	}
	return f.sess, f.cookie, nil
}

func (f *fakeSessionManager) Logout(ctx context.Context, sess *models.Session) error {
	f.loggedOut = append(f.loggedOut, sess)
	return nil
}

func loginRequest(t *testing.T, email, password string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)
	c.Request = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c, rec
}

func TestLoginRedirectsToRoleDashboard(t *testing.T) {
	tests := []struct {
		role models.Role
		want string
	}{
		{models.RoleStudent, "/student/dashboard"},
		{models.RoleAdmin, "/admin/dashboard"},
		{models.RoleRegistrar, "/registrar/dashboard"},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			api := &fakeAuthAPI{token: &models.TokenResponse{AccessToken: "tok", Role: string(tt.role)}}
			sessions := &fakeSessionManager{
				sess:   &models.Session{ID: "s1", Role: tt.role, Token: "tok"},
				cookie: "signed-cookie",
			}
			h := NewAuthHandler(api, sessions, "portal_session", 3600, false, nil)

			c, rec := loginRequest(t, "ana@dbtc.edu", "secret123")
			h.Login(c)
			c.Writer.WriteHeaderNow()

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Location"))
			assert.Contains(t, rec.Header().Get("Set-Cookie"), "portal_session=signed-cookie")
			assert.Equal(t, "ana@dbtc.edu", api.creds.Email)
		})
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	sessions := &fakeSessionManager{}
	h := NewAuthHandler(&fakeAuthAPI{}, sessions, "portal_session", 3600, false, nil)

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/logout", nil)
	sess := &models.Session{ID: "s1", Role: models.RoleStudent}
	c.Set(render.CtxSession, sess)

	h.Logout(c)
	c.Writer.WriteHeaderNow()

	require.Len(t, sessions.loggedOut, 1)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "portal_session=;")
}
