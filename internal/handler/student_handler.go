package handler

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dbtc-edu/enrollment-portal/internal/enrollment"
	"github.com/dbtc-edu/enrollment-portal/internal/forms"
	"github.com/dbtc-edu/enrollment-portal/internal/models"
	"github.com/dbtc-edu/enrollment-portal/internal/upstream"
	appErrors "github.com/dbtc-edu/enrollment-portal/pkg/errors"
	"github.com/dbtc-edu/enrollment-portal/pkg/printable"
	"github.com/dbtc-edu/enrollment-portal/pkg/render"
)

type studentAPI interface {
	MyProfile(ctx context.Context, token string) (*models.Student, error)
	UpdateMyProfile(ctx context.Context, token string, fields map[string]interface{}) (*models.Student, error)
	MySubjects(ctx context.Context, token string) ([]models.EnrolledSubject, error)
	MyEnrollmentHistory(ctx context.Context, token string) ([]models.EnrollmentRecord, error)
	LookupStudent(ctx context.Context, token, studentNumber string) (*models.Student, error)
	UploadDocument(ctx context.Context, token string, kind upstream.DocumentKind, filename string, file io.Reader) (*models.Student, error)
	Strands(ctx context.Context, token string) ([]models.Strand, error)
	Provinces(ctx context.Context, token string) ([]string, error)
	FileURL(path string) string
}

type avatarStore interface {
	SetAvatar(ctx context.Context, userID int, dataURL string) error
	ClearAvatar(ctx context.Context, userID int) error
	SetSidebarCollapsed(ctx context.Context, userID int, collapsed bool) error
}

// StudentHandler owns every student-facing screen.
type StudentHandler struct {
	api    studentAPI
	store  avatarStore
	logger *zap.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(api studentAPI, store avatarStore, logger *zap.Logger) *StudentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentHandler{api: api, store: store, logger: logger}
}

// Dashboard renders the registration overview: stepper, status banner, and,
// once enrolled, the subjects table. Profile, subjects, and history are
// independent, so they are fetched concurrently.
func (h *StudentHandler) Dashboard(c *gin.Context) {
	sess := currentSession(c)

	var (
		profile  *models.Student
		subjects []models.EnrolledSubject
		history  []models.EnrollmentRecord
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		profile, err = h.api.MyProfile(ctx, sess.Token)
		return err
	})
	g.Go(func() error {
		var err error
		subjects, err = h.api.MySubjects(ctx, sess.Token)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = h.api.MyEnrollmentHistory(ctx, sess.Token)
		return err
	})
	if err := g.Wait(); err != nil {
		render.Error(c, err)
		return
	}

	view := enrollment.DeriveFor(profile, subjects)
	progress := enrollment.Steps(enrollment.InputFor(profile, subjects))

	totalUnits := 0
	for _, s := range subjects {
		totalUnits += s.Units
	}

	receiptURL := ""
	if profile != nil {
		receiptURL = h.api.FileURL(profile.PaymentReceiptPath)
	}

	render.HTML(c, http.StatusOK, "student_dashboard.tmpl", gin.H{
		"Title":      "Dashboard",
		"Profile":    profile,
		"Subjects":   subjects,
		"History":    history,
		"View":       view,
		"ViewKind":   int(view.Kind),
		"Progress":   progress,
		"TotalUnits": totalUnits,
		"ReceiptURL": receiptURL,
	})
}

// Profile renders the application form. The form is locked once the
// application is pending or approved and has been submitted before; a denial
// unlocks it for a full re-edit.
func (h *StudentHandler) Profile(c *gin.Context) {
	sess := currentSession(c)

	var (
		profile   *models.Student
		strands   []models.Strand
		provinces []string
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		profile, err = h.api.MyProfile(ctx, sess.Token)
		return err
	})
	g.Go(func() error {
		var err error
		strands, err = h.api.Strands(ctx, sess.Token)
		return err
	})
	g.Go(func() error {
		var err error
		provinces, err = h.api.Provinces(ctx, sess.Token)
		return err
	})
	if err := g.Wait(); err != nil {
		render.Error(c, err)
		return
	}

	view := enrollment.DeriveFor(profile, nil)

	render.HTML(c, http.StatusOK, "student_profile.tmpl", gin.H{
		"Title":     "My Application",
		"Profile":   profile,
		"Strands":   strands,
		"Provinces": provinces,
		"Locked":    !view.Editable,
		"Denied":    view.Kind == enrollment.ViewDenied,
		"View":      view,
	})
}

// SubmitProfile validates and submits the application. A locked form never
// reaches the upstream; neither does a transferee without named subjects.
func (h *StudentHandler) SubmitProfile(c *gin.Context) {
	sess := currentSession(c)

	profile, err := h.api.MyProfile(c.Request.Context(), sess.Token)
	if err != nil {
		render.Error(c, err)
		return
	}
	if view := enrollment.DeriveFor(profile, nil); !view.Editable {
		render.RedirectWithFlash(c, "/student/profile", "error", "Your application is locked while under review")
		return
	}

	var form forms.ApplicationForm
	if err := c.ShouldBind(&form); err != nil {
		render.RedirectWithFlash(c, "/student/profile", "error", "invalid form submission")
		return
	}
	if err := form.Validate(); err != nil {
		render.RedirectWithFlash(c, "/student/profile", "error", appErrors.FromError(err).Message)
		return
	}

	if _, err := h.api.UpdateMyProfile(c.Request.Context(), sess.Token, form.Payload()); err != nil {
		render.RedirectWithFlash(c, "/student/profile", "error", appErrors.FromError(err).Message)
		return
	}

	render.RedirectWithFlash(c, "/student/profile", "success", "Application submitted successfully")
}

// UploadDocument accepts one of the document slots (photo, grades, voucher,
// psa-birth-cert, transfer-credential, good-moral, payment-receipt) and
// forwards it upstream after the client-side file checks.
func (h *StudentHandler) UploadDocument(c *gin.Context) {
	sess := currentSession(c)

	kind := upstream.DocumentKind(c.Param("kind"))
	if !upstream.ValidDocumentKind(kind) {
		render.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown document type"))
		return
	}

	returnTo := "/student/profile"
	if kind == upstream.DocPaymentReceipt {
		returnTo = "/student/dashboard"
	}

	header, err := c.FormFile("file")
	if err != nil {
		render.RedirectWithFlash(c, returnTo, "error", "please choose a file to upload")
		return
	}
	// Photo and receipt stay image-only; the scanned documents also come
	// in as PDFs.
	check := forms.CheckDocumentUpload
	if kind == upstream.DocPhoto || kind == upstream.DocPaymentReceipt {
		check = forms.CheckImageUpload
	}
	if err := check(header); err != nil {
		render.RedirectWithFlash(c, returnTo, "error", appErrors.FromError(err).Message)
		return
	}

	file, err := header.Open()
	if err != nil {
		render.RedirectWithFlash(c, returnTo, "error", "failed to read the uploaded file")
		return
	}
	defer file.Close()

	// The refreshed profile comes back with the new payment_status; the
	// redirect target re-renders from it without any extra reload.
	if _, err := h.api.UploadDocument(c.Request.Context(), sess.Token, kind, header.Filename, file); err != nil {
		render.RedirectWithFlash(c, returnTo, "error", appErrors.FromError(err).Message)
		return
	}

	render.RedirectWithFlash(c, returnTo, "success", "File uploaded successfully")
}

// EnrollmentFormPDF serves the printable enrollment form for a fully
// enrolled student.
func (h *StudentHandler) EnrollmentFormPDF(c *gin.Context) {
	sess := currentSession(c)

	var (
		profile  *models.Student
		subjects []models.EnrolledSubject
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		profile, err = h.api.MyProfile(ctx, sess.Token)
		return err
	})
	g.Go(func() error {
		var err error
		subjects, err = h.api.MySubjects(ctx, sess.Token)
		return err
	})
	if err := g.Wait(); err != nil {
		render.Error(c, err)
		return
	}

	doc, err := printable.EnrollmentForm(profile, subjects)
	if err != nil {
		render.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render enrollment form"))
		return
	}

	filename := "Enrollment-DBTC.pdf"
	if profile.StudentNumber != "" {
		filename = fmt.Sprintf("Enrollment-%s.pdf", profile.StudentNumber)
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

// Lookup resolves a prior student number for re-enrollees filling the form.
func (h *StudentHandler) Lookup(c *gin.Context) {
	sess := currentSession(c)

	number := c.Param("studentNumber")
	if number == "" {
		render.JSONError(c, appErrors.Clone(appErrors.ErrValidation, "student number is required"))
		return
	}

	student, err := h.api.LookupStudent(c.Request.Context(), sess.Token, number)
	if err != nil {
		render.JSONError(c, err)
		return
	}
	render.JSON(c, http.StatusOK, student)
}

// Settings renders the account settings screen.
func (h *StudentHandler) Settings(c *gin.Context) {
	render.HTML(c, http.StatusOK, "student_settings.tmpl", gin.H{"Title": "Settings"})
}

// UpdateAvatar stores a new avatar in the portal's own cache. Purely
// cosmetic: it is keyed by user id, never validated or stored upstream.
func (h *StudentHandler) UpdateAvatar(c *gin.Context) {
	sess := currentSession(c)

	header, err := c.FormFile("file")
	if err != nil {
		render.RedirectWithFlash(c, "/student/settings", "error", "please choose an image")
		return
	}
	if err := forms.CheckImageUpload(header); err != nil {
		render.RedirectWithFlash(c, "/student/settings", "error", appErrors.FromError(err).Message)
		return
	}

	file, err := header.Open()
	if err != nil {
		render.RedirectWithFlash(c, "/student/settings", "error", "failed to read the image")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		render.RedirectWithFlash(c, "/student/settings", "error", "failed to read the image")
		return
	}

	dataURL := "data:" + header.Header.Get("Content-Type") + ";base64," + base64.StdEncoding.EncodeToString(raw)
	if err := h.store.SetAvatar(c.Request.Context(), sess.UserID, dataURL); err != nil {
		h.logger.Warn("failed to cache avatar", zap.Error(err))
		render.RedirectWithFlash(c, "/student/settings", "error", "failed to save avatar")
		return
	}

	render.RedirectWithFlash(c, "/student/settings", "success", "Avatar updated")
}

// RemoveAvatar clears the cached avatar.
func (h *StudentHandler) RemoveAvatar(c *gin.Context) {
	sess := currentSession(c)
	if err := h.store.ClearAvatar(c.Request.Context(), sess.UserID); err != nil {
		h.logger.Warn("failed to clear avatar", zap.Error(err))
	}
	render.RedirectWithFlash(c, "/student/settings", "success", "Avatar removed")
}

// UpdateSidebar persists the sidebar-collapse preference.
func (h *StudentHandler) UpdateSidebar(c *gin.Context) {
	sess := currentSession(c)
	collapsed := c.PostForm("collapsed") == "true"
	if err := h.store.SetSidebarCollapsed(c.Request.Context(), sess.UserID, collapsed); err != nil {
		h.logger.Debug("failed to save sidebar preference", zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}
