// Package render centralises HTML responses: every screen goes through HTML
// or a redirect helper, so shared page furniture (session, badge count,
// flash notices) and error translation live in one place.
package render

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
	appErrors "github.com/dbtc-edu/enrollment-portal/pkg/errors"
)

// Context keys set by router middleware and consumed here.
const (
	CtxSession     = "portal_session"
	CtxUnreadCount = "portal_unread_count"
	CtxAvatar      = "portal_avatar"
	CtxSidebar     = "portal_sidebar_collapsed"
	CtxFlash       = "portal_flash"
)

const flashCookie = "portal_flash"

// Flash is a one-shot transient notice carried across a redirect.
type Flash struct {
	Kind    string `json:"kind"` // "success" | "error"
	Message string `json:"message"`
}

// Session pulls the current session from the gin context, if any.
func Session(c *gin.Context) *models.Session {
	if v, ok := c.Get(CtxSession); ok {
		if sess, ok := v.(*models.Session); ok {
			return sess
		}
	}
	return nil
}

// HTML renders a template with the shared page furniture merged in. Screen
// data goes under its own keys; collisions with the shared keys are a bug.
func HTML(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Session"] = Session(c)
	data["UnreadCount"] = c.GetInt(CtxUnreadCount)
	data["Avatar"] = c.GetString(CtxAvatar)
	data["SidebarCollapsed"] = c.GetBool(CtxSidebar)
	if v, ok := c.Get(CtxFlash); ok {
		data["Flash"] = v
	}
	c.HTML(status, name, data)
}

// Redirect issues a plain 303 so a form POST lands on a GET.
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// RedirectWithFlash sets a one-shot notice cookie and redirects.
func RedirectWithFlash(c *gin.Context, location, kind, message string) {
	SetFlash(c, kind, message)
	Redirect(c, location)
}

// SetFlash stores a one-shot notice for the next rendered page.
func SetFlash(c *gin.Context, kind, message string) {
	raw, err := json.Marshal(Flash{Kind: kind, Message: message})
	if err != nil {
		return
	}
	encoded := base64.URLEncoding.EncodeToString(raw)
	c.SetCookie(flashCookie, encoded, 60, "/", "", false, true)
}

// PopFlash reads and clears the pending flash, if any. Called by router
// middleware before the screen renders.
func PopFlash(c *gin.Context) *Flash {
	encoded, err := c.Cookie(flashCookie)
	if err != nil || encoded == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)

	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil
	}
	flash := &Flash{}
	if err := json.Unmarshal(raw, flash); err != nil {
		return nil
	}
	return flash
}

// Error resolves an error into the portal-wide behaviour: expired sessions
// bounce to login, cross-cutting notices flash on the page the user was on,
// and anything else renders the error page with a retry affordance.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)

	switch {
	case appErrors.Is(appErr, appErrors.ErrSessionExpired):
		RedirectWithFlash(c, "/login", "error", appErr.Message)
	case appErrors.Is(appErr, appErrors.ErrAccessDenied),
		appErrors.Is(appErr, appErrors.ErrRateLimited),
		appErrors.Is(appErr, appErrors.ErrNetwork):
		back := c.Request.Referer()
		if back == "" {
			back = "/"
		}
		RedirectWithFlash(c, back, "error", appErr.Message)
	default:
		HTML(c, appErr.Status, "error.tmpl", gin.H{
			"Title":   "Something went wrong",
			"Message": appErr.Message,
			"Retry":   c.Request.URL.String(),
		})
	}
}

// JSON sends a JSON payload for the portal's own browser endpoints (badge
// polling, address selects).
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, data)
}

// JSONError sends an error in the shape the portal's front-end scripts expect.
func JSONError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.JSON(appErr.Status, gin.H{"error": gin.H{"code": appErr.Code, "message": appErr.Message}})
}
