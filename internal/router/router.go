package router

import (
	"context"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dbtc-edu/enrollment-portal/internal/handler"
	"github.com/dbtc-edu/enrollment-portal/internal/metrics"
	"github.com/dbtc-edu/enrollment-portal/internal/models"
	"github.com/dbtc-edu/enrollment-portal/internal/session"
	"github.com/dbtc-edu/enrollment-portal/pkg/config"
	"github.com/dbtc-edu/enrollment-portal/pkg/logger"
	"github.com/dbtc-edu/enrollment-portal/pkg/middleware/requestid"
	"github.com/dbtc-edu/enrollment-portal/pkg/render"
)

type unreadCounter interface {
	UnreadCount(sessionID string) int
}

// Deps collects everything the route table wires together.
type Deps struct {
	Config   *config.Config
	Logger   *zap.Logger
	Sessions *session.Manager
	Metrics  *metrics.Service

	Auth          *handler.AuthHandler
	Student       *handler.StudentHandler
	Admin         *handler.AdminHandler
	Registrar     *handler.RegistrarHandler
	Notifications *handler.NotificationHandler
	Address       *handler.AddressHandler

	Unread unreadCounter
}

// New builds the gin engine with the full route table. Every authenticated
// route revalidates the session against the upstream before the handler runs.
func New(deps Deps) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(deps.Metrics.GinMiddleware())

	r.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	})
	r.LoadHTMLGlob(deps.Config.Templates.Glob)
	r.Static("/static", "./web/static")

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	restore := restoreSession(deps)

	r.GET("/login", restore, deps.Auth.ShowLogin)
	r.POST("/login", deps.Auth.Login)
	r.GET("/register", restore, deps.Auth.ShowRegister)
	r.POST("/register", deps.Auth.Register)
	r.POST("/logout", restore, deps.Auth.Logout)

	student := r.Group("/student", restore, requireRoles(models.RoleStudent))
	{
		student.GET("/dashboard", deps.Student.Dashboard)
		student.GET("/dashboard/enrollment-form.pdf", deps.Student.EnrollmentFormPDF)
		student.GET("/profile", deps.Student.Profile)
		student.POST("/profile", deps.Student.SubmitProfile)
		student.POST("/documents/:kind", deps.Student.UploadDocument)
		student.GET("/settings", deps.Student.Settings)
		student.POST("/settings/avatar", deps.Student.UpdateAvatar)
		student.POST("/settings/avatar/remove", deps.Student.RemoveAvatar)
		student.POST("/settings/sidebar", deps.Student.UpdateSidebar)
	}

	admin := r.Group("/admin", restore, requireRoles(models.RoleAdmin))
	{
		admin.GET("/dashboard", deps.Admin.Dashboard)
		admin.GET("/students", deps.Admin.Students)
		admin.GET("/students/pending", deps.Admin.PendingStudents)
		admin.GET("/students/:id", deps.Admin.StudentDetail)
		admin.POST("/students/:id/approve", deps.Admin.ApproveStudent)
		admin.POST("/students/:id/deny", deps.Admin.DenyStudent)
		admin.POST("/students/:id/delete", deps.Admin.DeleteStudent)
		admin.GET("/accounts", deps.Admin.Accounts)
		admin.POST("/accounts", deps.Admin.CreateAccount)
		admin.POST("/accounts/:id/delete", deps.Admin.DeleteAccount)
		admin.POST("/accounts/:id/reset-password", deps.Admin.ResetPassword)
		admin.GET("/calendar", deps.Admin.Calendar)
		admin.POST("/calendar", deps.Admin.UpdateCalendar)
		admin.GET("/audit-logs", deps.Admin.AuditLogs)
	}

	registrar := r.Group("/registrar", restore, requireRoles(models.RoleRegistrar))
	{
		registrar.GET("/dashboard", deps.Registrar.Dashboard)
		registrar.GET("/students", deps.Registrar.Students)
		registrar.GET("/students/:id", deps.Registrar.StudentDetail)
		registrar.GET("/students/:id/files", deps.Registrar.DownloadFiles)
		registrar.GET("/students/:id/subjects", deps.Registrar.AssignScreen)
		registrar.POST("/students/:id/subjects/assign", deps.Registrar.AssignSubject)
		registrar.POST("/students/:id/subjects/unassign", deps.Registrar.UnassignSubject)
		registrar.POST("/students/:id/subjects/bulk-assign", deps.Registrar.BulkAssign)
		registrar.GET("/students/:id/credits", deps.Registrar.TransfereeCredits)
		registrar.POST("/students/:id/credits", deps.Registrar.UpdateTransfereeCredits)
		registrar.GET("/subjects", deps.Registrar.Subjects)
		registrar.POST("/subjects", deps.Registrar.CreateSubject)
		registrar.POST("/subjects/:id/update", deps.Registrar.UpdateSubject)
		registrar.POST("/subjects/:id/delete", deps.Registrar.DeleteSubject)
		registrar.GET("/payments", deps.Registrar.Payments)
		registrar.POST("/payments/:id/verify", deps.Registrar.VerifyPayment)
		registrar.POST("/payments/:id/reject", deps.Registrar.RejectPayment)
		registrar.GET("/class-list", deps.Registrar.ClassList)
		registrar.GET("/class-list.pdf", deps.Registrar.ClassListPDF)
	}

	api := r.Group("/api", restore, requireRoles(models.RoleStudent, models.RoleAdmin, models.RoleRegistrar))
	{
		api.GET("/notifications", deps.Notifications.List)
		api.GET("/notifications/unread-count", deps.Notifications.UnreadCount)
		api.POST("/notifications/:id/read", deps.Notifications.MarkRead)
		api.POST("/notifications/read-all", deps.Notifications.MarkAllRead)
		api.GET("/strands", deps.Address.Strands)
		api.GET("/address/provinces", deps.Address.Provinces)
		api.GET("/address/provinces/:province/cities", deps.Address.Cities)
		api.GET("/address/cities/:city/barangays", deps.Address.Barangays)
		api.GET("/students/lookup/:studentNumber", deps.Student.Lookup)
	}

	r.GET("/", restore, func(c *gin.Context) {
		if sess := render.Session(c); sess != nil {
			render.Redirect(c, sess.Role.DashboardPath())
			return
		}
		render.Redirect(c, "/login")
	})

	// Any unknown path falls back to the viewer's own dashboard, or to the
	// login screen for anonymous visitors.
	r.NoRoute(restore, func(c *gin.Context) {
		if sess := render.Session(c); sess != nil {
			render.Redirect(c, sess.Role.DashboardPath())
			return
		}
		render.Redirect(c, "/login")
	})

	return r
}

// restoreSession resolves the session cookie into a validated session and
// loads the shared page furniture (flash, unread badge, avatar, sidebar
// preference) into the request context. It never aborts; role gates decide
// what an anonymous request may see.
func restoreSession(deps Deps) gin.HandlerFunc {
	store := deps.Sessions.Store()
	return func(c *gin.Context) {
		if flash := render.PopFlash(c); flash != nil {
			c.Set(render.CtxFlash, flash)
		}

		cookie, err := c.Cookie(deps.Config.Session.CookieName)
		if err != nil || cookie == "" {
			c.Next()
			return
		}

		sess, err := deps.Sessions.Restore(c.Request.Context(), cookie)
		if err != nil {
			// Stale or revoked cookie; clear it so the browser stops
			// sending it.
			c.SetCookie(deps.Config.Session.CookieName, "", -1, "/", "", deps.Config.Session.Secure, true)
			c.Next()
			return
		}

		c.Set(render.CtxSession, sess)
		if deps.Unread != nil {
			c.Set(render.CtxUnreadCount, deps.Unread.UnreadCount(sess.ID))
		}
		loadPreferences(c.Request.Context(), c, store, sess.UserID)
		c.Next()
	}
}

func loadPreferences(ctx context.Context, c *gin.Context, store session.Store, userID int) {
	if avatar, err := store.GetAvatar(ctx, userID); err == nil && avatar != "" {
		c.Set(render.CtxAvatar, avatar)
	}
	if collapsed, err := store.SidebarCollapsed(ctx, userID); err == nil {
		c.Set(render.CtxSidebar, collapsed)
	}
}

// requireRoles redirects to the login screen unless the restored session's
// role is one of the allowed roles.
func requireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		sess := render.Session(c)
		if sess == nil {
			render.SetFlash(c, "error", "Please sign in to continue")
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		if _, ok := allowed[sess.Role]; !ok {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
