package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dbtc-edu/enrollment-portal/internal/forms"
	"github.com/dbtc-edu/enrollment-portal/internal/models"
	"github.com/dbtc-edu/enrollment-portal/internal/upstream"
	appErrors "github.com/dbtc-edu/enrollment-portal/pkg/errors"
	"github.com/dbtc-edu/enrollment-portal/pkg/render"
)

type adminAPI interface {
	DashboardStats(ctx context.Context, token string) (*models.DashboardStats, error)
	AdminStudents(ctx context.Context, token string, filter upstream.StudentListFilter) (*models.StudentList, error)
	PendingStudents(ctx context.Context, token string, page, perPage int) (*models.StudentList, error)
	StudentByID(ctx context.Context, token string, id int) (*models.Student, error)
	ApproveStudent(ctx context.Context, token string, id int, supplement models.ApprovalSupplement) error
	DenyStudent(ctx context.Context, token string, id int, reason string) error
	DeleteStudent(ctx context.Context, token string, id int) error
	Accounts(ctx context.Context, token string, filter upstream.AccountFilter) (*models.AccountList, error)
	CreateAccount(ctx context.Context, token string, req upstream.CreateAccountRequest) error
	DeleteAccount(ctx context.Context, token string, id int) error
	ResetAccountPassword(ctx context.Context, token string, id int, newPassword string) error
	AcademicCalendar(ctx context.Context, token string) (*models.AcademicCalendar, error)
	UpdateAcademicCalendar(ctx context.Context, token string, req upstream.UpdateCalendarRequest) (*models.AcademicCalendar, error)
	AuditLogs(ctx context.Context, token string, filter upstream.AuditLogFilter) (*models.AuditLogList, error)
}

// AdminHandler owns the application-review and account-administration screens.
type AdminHandler struct {
	api    adminAPI
	logger *zap.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(api adminAPI, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{api: api, logger: logger}
}

// Dashboard shows the applicant pipeline counters alongside the most recent
// pending applications.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	sess := currentSession(c)

	var (
		stats   *models.DashboardStats
		pending *models.StudentList
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		stats, err = h.api.DashboardStats(ctx, sess.Token)
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = h.api.PendingStudents(ctx, sess.Token, 1, 5)
		return err
	})
	if err := g.Wait(); err != nil {
		render.Error(c, err)
		return
	}

	render.HTML(c, http.StatusOK, "admin_dashboard.tmpl", gin.H{
		"Title":   "Admin Dashboard",
		"Stats":   stats,
		"Pending": pending,
	})
}

// PendingStudents lists applications awaiting review.
func (h *AdminHandler) PendingStudents(c *gin.Context) {
	sess := currentSession(c)

	page := queryInt(c, "page", 1)
	list, err := h.api.PendingStudents(c.Request.Context(), sess.Token, page, 20)
	if err != nil {
		render.Error(c, err)
		return
	}

	render.HTML(c, http.StatusOK, "admin_pending.tmpl", gin.H{
		"Title": "Pending Applications",
		"List":  list,
		"Page":  page,
	})
}

// Students lists all student records with an optional status filter.
func (h *AdminHandler) Students(c *gin.Context) {
	sess := currentSession(c)

	filter := upstream.StudentListFilter{
		Status:  c.Query("status"),
		Page:    queryInt(c, "page", 1),
		PerPage: 20,
	}
	list, err := h.api.AdminStudents(c.Request.Context(), sess.Token, filter)
	if err != nil {
		render.Error(c, err)
		return
	}

	render.HTML(c, http.StatusOK, "admin_students.tmpl", gin.H{
		"Title":  "Students",
		"List":   list,
		"Status": filter.Status,
		"Page":   filter.Page,
	})
}

// StudentDetail renders one application in full for review.
func (h *AdminHandler) StudentDetail(c *gin.Context) {
	sess := currentSession(c)

	id, err := pathID(c, "id")
	if err != nil {
		render.Error(c, err)
		return
	}

	student, err := h.api.StudentByID(c.Request.Context(), sess.Token, id)
	if err != nil {
		render.Error(c, err)
		return
	}

	render.HTML(c, http.StatusOK, "admin_student_detail.tmpl", gin.H{
		"Title":   student.FullName(),
		"Student": student,
	})
}

// ApproveStudent approves an application, optionally recording the official
// enrollment supplement (enrollment date, place of birth, nationality, civil
// status) captured at approval time.
func (h *AdminHandler) ApproveStudent(c *gin.Context) {
	sess := currentSession(c)

	id, err := pathID(c, "id")
	if err != nil {
		render.Error(c, err)
		return
	}

	supplement := models.ApprovalSupplement{
		EnrollmentDate: c.PostForm("enrollment_date"),
		PlaceOfBirth:   c.PostForm("place_of_birth"),
		Nationality:    c.PostForm("nationality"),
		CivilStatus:    c.PostForm("civil_status"),
	}
	if err := h.api.ApproveStudent(c.Request.Context(), sess.Token, id, supplement); err != nil {
		render.Error(c, err)
		return
	}

	render.RedirectWithFlash(c, "/admin/students/pending", "success", "Application approved")
}

// DenyStudent denies an application with the reviewer's reason.
func (h *AdminHandler) DenyStudent(c *gin.Context) {
	sess := currentSession(c)

	id, err := pathID(c, "id")
	if err != nil {
		render.Error(c, err)
		return
	}

	if err := h.api.DenyStudent(c.Request.Context(), sess.Token, id, c.PostForm("reason")); err != nil {
		render.Error(c, err)
		return
	}

	render.RedirectWithFlash(c, "/admin/students/pending", "success", "Application denied")
}

// DeleteStudent removes a student record.
func (h *AdminHandler) DeleteStudent(c *gin.Context) {
	sess := currentSession(c)

	id, err := pathID(c, "id")
	if err != nil {
		render.Error(c, err)
		return
	}

	if err := h.api.DeleteStudent(c.Request.Context(), sess.Token, id); err != nil {
		render.Error(c, err)
		return
	}

	render.RedirectWithFlash(c, "/admin/students", "success", "Student record deleted")
}

// Accounts lists user accounts with role and search filters.
func (h *AdminHandler) Accounts(c *gin.Context) {
	sess := currentSession(c)

	filter := upstream.AccountFilter{
		Role:    c.Query("role"),
		Search:  c.Query("search"),
		Page:    queryInt(c, "page", 1),
		PerPage: 20,
	}
	list, err := h.api.Accounts(c.Request.Context(), sess.Token, filter)
	if err != nil {
		render.Error(c, err)
		return
	}

	render.HTML(c, http.StatusOK, "admin_accounts.tmpl", gin.H{
		"Title":  "Accounts",
		"List":   list,
		"Role":   filter.Role,
		"Search": filter.Search,
		"Page":   filter.Page,
	})
}

// CreateAccount provisions a staff or student account.
func (h *AdminHandler) CreateAccount(c *gin.Context) {
	sess := currentSession(c)

	var form forms.AccountForm
	if err := c.ShouldBind(&form); err != nil {
		render.RedirectWithFlash(c, "/admin/accounts", "error", "invalid form submission")
		return
	}
	if err := forms.Check(form); err != nil {
		render.RedirectWithFlash(c, "/admin/accounts", "error", appErrors.FromError(err).Message)
		return
	}

	req := upstream.CreateAccountRequest{Email: form.Email, Password: form.Password, Role: form.Role}
	if err := h.api.CreateAccount(c.Request.Context(), sess.Token, req); err != nil {
		render.RedirectWithFlash(c, "/admin/accounts", "error", appErrors.FromError(err).Message)
		return
	}

	render.RedirectWithFlash(c, "/admin/accounts", "success", "Account created")
}

// DeleteAccount removes a user account.
func (h *AdminHandler) DeleteAccount(c *gin.Context) {
	sess := currentSession(c)

	id, err := pathID(c, "id")
	if err != nil {
		render.Error(c, err)
		return
	}

	if err := h.api.DeleteAccount(c.Request.Context(), sess.Token, id); err != nil {
		render.Error(c, err)
		return
	}

	render.RedirectWithFlash(c, "/admin/accounts", "success", "Account deleted")
}

// ResetPassword sets a new password on an account.
func (h *AdminHandler) ResetPassword(c *gin.Context) {
	sess := currentSession(c)

	id, err := pathID(c, "id")
	if err != nil {
		render.Error(c, err)
		return
	}

	var form forms.ResetPasswordForm
	if err := c.ShouldBind(&form); err != nil {
		render.RedirectWithFlash(c, "/admin/accounts", "error", "invalid form submission")
		return
	}
	if err := forms.Check(form); err != nil {
		render.RedirectWithFlash(c, "/admin/accounts", "error", appErrors.FromError(err).Message)
		return
	}

	if err := h.api.ResetAccountPassword(c.Request.Context(), sess.Token, id, form.NewPassword); err != nil {
		render.RedirectWithFlash(c, "/admin/accounts", "error", appErrors.FromError(err).Message)
		return
	}

	render.RedirectWithFlash(c, "/admin/accounts", "success", "Password reset")
}

// Calendar renders the academic calendar editor.
func (h *AdminHandler) Calendar(c *gin.Context) {
	sess := currentSession(c)

	calendar, err := h.api.AcademicCalendar(c.Request.Context(), sess.Token)
	if err != nil {
		render.Error(c, err)
		return
	}

	render.HTML(c, http.StatusOK, "admin_calendar.tmpl", gin.H{
		"Title":    "Academic Calendar",
		"Calendar": calendar,
	})
}

// UpdateCalendar saves the enrollment window.
func (h *AdminHandler) UpdateCalendar(c *gin.Context) {
	sess := currentSession(c)

	var form forms.CalendarForm
	if err := c.ShouldBind(&form); err != nil {
		render.RedirectWithFlash(c, "/admin/calendar", "error", "invalid form submission")
		return
	}
	if err := forms.Check(form); err != nil {
		render.RedirectWithFlash(c, "/admin/calendar", "error", appErrors.FromError(err).Message)
		return
	}

	req := upstream.UpdateCalendarRequest{
		SchoolYear:      form.SchoolYear,
		Semester:        form.Semester,
		EnrollmentStart: form.EnrollmentStart,
		EnrollmentEnd:   form.EnrollmentEnd,
		IsOpen:          form.IsOpen,
	}
	if _, err := h.api.UpdateAcademicCalendar(c.Request.Context(), sess.Token, req); err != nil {
		render.RedirectWithFlash(c, "/admin/calendar", "error", appErrors.FromError(err).Message)
		return
	}

	render.RedirectWithFlash(c, "/admin/calendar", "success", "Calendar updated")
}

// AuditLogs lists state-changing actions with filters.
func (h *AdminHandler) AuditLogs(c *gin.Context) {
	sess := currentSession(c)

	filter := upstream.AuditLogFilter{
		Action:   c.Query("action"),
		Role:     c.Query("role"),
		Search:   c.Query("search"),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
		Page:     queryInt(c, "page", 1),
		PerPage:  25,
	}
	list, err := h.api.AuditLogs(c.Request.Context(), sess.Token, filter)
	if err != nil {
		render.Error(c, err)
		return
	}

	render.HTML(c, http.StatusOK, "admin_audit.tmpl", gin.H{
		"Title":  "Audit Logs",
		"List":   list,
		"Filter": filter,
	})
}
