package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dbtc-edu/enrollment-portal/internal/forms"
	"github.com/dbtc-edu/enrollment-portal/internal/models"
	"github.com/dbtc-edu/enrollment-portal/internal/upstream"
	appErrors "github.com/dbtc-edu/enrollment-portal/pkg/errors"
	"github.com/dbtc-edu/enrollment-portal/pkg/render"
)

type authAPI interface {
	Login(ctx context.Context, creds upstream.Credentials) (*models.TokenResponse, error)
	Register(ctx context.Context, creds upstream.Credentials) (*models.TokenResponse, error)
	EnrollmentWindow(ctx context.Context) (*models.EnrollmentWindow, error)
}

type sessionManager interface {
	Login(ctx context.Context, token string) (*models.Session, string, error)
	Logout(ctx context.Context, sess *models.Session) error
}

// AuthHandler owns the login, registration, and logout screens.
type AuthHandler struct {
	api      authAPI
	sessions sessionManager
	cookie   cookieSettings
	logger   *zap.Logger
}

type cookieSettings struct {
	Name   string
	MaxAge int
	Secure bool
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(api authAPI, sessions sessionManager, cookieName string, cookieMaxAge int, cookieSecure bool, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		api:      api,
		sessions: sessions,
		cookie:   cookieSettings{Name: cookieName, MaxAge: cookieMaxAge, Secure: cookieSecure},
		logger:   logger,
	}
}

// ShowLogin renders the login screen, or bounces a live session to its
// dashboard.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	if sess := currentSession(c); sess != nil {
		render.Redirect(c, sess.Role.DashboardPath())
		return
	}
	render.HTML(c, http.StatusOK, "login.tmpl", gin.H{"Title": "Log In"})
}

// Login authenticates against the upstream and establishes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	var form forms.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.loginFailed(c, form.Email, appErrors.Clone(appErrors.ErrValidation, "please enter your email and password"))
		return
	}
	if err := forms.Check(&form); err != nil {
		h.loginFailed(c, form.Email, err)
		return
	}

	token, err := h.api.Login(c.Request.Context(), upstream.Credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		h.loginFailed(c, form.Email, err)
		return
	}

	sess, cookie, err := h.sessions.Login(c.Request.Context(), token.AccessToken)
	if err != nil {
		h.loginFailed(c, form.Email, err)
		return
	}

	h.logger.Info("login", zap.Int("user_id", sess.UserID), zap.String("role", string(sess.Role)))
	c.SetCookie(h.cookie.Name, cookie, h.cookie.MaxAge, "/", "", h.cookie.Secure, true)
	render.Redirect(c, sess.Role.DashboardPath())
}

func (h *AuthHandler) loginFailed(c *gin.Context, email string, err error) {
	appErr := appErrors.FromError(err)
	render.HTML(c, appErr.Status, "login.tmpl", gin.H{
		"Title": "Log In",
		"Error": appErr.Message,
		"Email": email,
	})
}

// ShowRegister renders the student registration screen with the public
// enrollment window so a closed period is visible before submitting.
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	if sess := currentSession(c); sess != nil {
		render.Redirect(c, sess.Role.DashboardPath())
		return
	}

	data := gin.H{"Title": "Register"}
	window, err := h.api.EnrollmentWindow(c.Request.Context())
	if err != nil {
		// The window banner is informational; registration still renders.
		h.logger.Debug("enrollment window fetch failed", zap.Error(err))
	} else {
		data["Window"] = window
	}
	render.HTML(c, http.StatusOK, "register.tmpl", data)
}

// Register creates a student account and logs it straight in.
func (h *AuthHandler) Register(c *gin.Context) {
	var form forms.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		h.registerFailed(c, form.Email, appErrors.Clone(appErrors.ErrValidation, "please fill in the registration form"))
		return
	}
	if err := forms.Check(&form); err != nil {
		h.registerFailed(c, form.Email, err)
		return
	}

	token, err := h.api.Register(c.Request.Context(), upstream.Credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		h.registerFailed(c, form.Email, err)
		return
	}

	sess, cookie, err := h.sessions.Login(c.Request.Context(), token.AccessToken)
	if err != nil {
		h.registerFailed(c, form.Email, err)
		return
	}

	h.logger.Info("student registered", zap.Int("user_id", sess.UserID))
	c.SetCookie(h.cookie.Name, cookie, h.cookie.MaxAge, "/", "", h.cookie.Secure, true)
	render.Redirect(c, sess.Role.DashboardPath())
}

func (h *AuthHandler) registerFailed(c *gin.Context, email string, err error) {
	appErr := appErrors.FromError(err)
	render.HTML(c, appErr.Status, "register.tmpl", gin.H{
		"Title": "Register",
		"Error": appErr.Message,
		"Email": email,
	})
}

// Logout tears down the session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if sess := currentSession(c); sess != nil {
		if err := h.sessions.Logout(c.Request.Context(), sess); err != nil {
			h.logger.Warn("logout failed", zap.Error(err))
		}
	}
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	render.Redirect(c, "/login")
}
