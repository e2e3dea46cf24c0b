package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dbtc-edu/enrollment-portal/internal/forms"
	"github.com/dbtc-edu/enrollment-portal/internal/models"
	"github.com/dbtc-edu/enrollment-portal/internal/upstream"
	appErrors "github.com/dbtc-edu/enrollment-portal/pkg/errors"
	"github.com/dbtc-edu/enrollment-portal/pkg/printable"
	"github.com/dbtc-edu/enrollment-portal/pkg/render"
)

type registrarAPI interface {
	ApprovedStudents(ctx context.Context, token string, filter upstream.ApprovedStudentFilter) (*models.StudentList, error)
	ClassList(ctx context.Context, token, strand, gradeLevel, semester string) (*models.StudentList, error)
	CompleteInfo(ctx context.Context, token string, studentID int) (*models.Student, error)
	DownloadStudentFiles(ctx context.Context, token string, studentID int) ([]byte, string, error)
	Subjects(ctx context.Context, token string, query url.Values) ([]models.Subject, error)
	CreateSubject(ctx context.Context, token string, req upstream.SubjectRequest) (*models.Subject, error)
	UpdateSubject(ctx context.Context, token string, id int, req upstream.SubjectRequest) (*models.Subject, error)
	DeleteSubject(ctx context.Context, token string, id int) error
	AssignSubject(ctx context.Context, token string, req models.AssignSubjectRequest) error
	UnassignSubject(ctx context.Context, token string, req models.AssignSubjectRequest) error
	BulkAssignSubjects(ctx context.Context, token string, req models.BulkAssignRequest) error
	EnrolledSubjects(ctx context.Context, token string, studentID int) ([]models.EnrolledSubject, error)
	PendingPayments(ctx context.Context, token string) (*models.StudentList, error)
	VerifyPayment(ctx context.Context, token string, studentID int) error
	RejectPayment(ctx context.Context, token string, studentID int, reason string) error
	UpdateTransfereeCredits(ctx context.Context, token string, studentID int, subjects []models.TransfereeSubject) error
	FileURL(path string) string
}

// RegistrarHandler owns subject management, payment review, and class lists.
type RegistrarHandler struct {
	api    registrarAPI
	logger *zap.Logger
}

// NewRegistrarHandler constructs the handler.
func NewRegistrarHandler(api registrarAPI, logger *zap.Logger) *RegistrarHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrarHandler{api: api, logger: logger}
}

// Dashboard shows payment-review and assignment workload at a glance.
func (h *RegistrarHandler) Dashboard(c *gin.Context) {
	sess := currentSession(c)

	var (
		payments *models.StudentList
		approved *models.StudentList
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		payments, err = h.api.PendingPayments(ctx, sess.Token)
		return err
	})
	g.Go(func() error {
		var err error
		approved, err = h.api.ApprovedStudents(ctx, sess.Token, upstream.ApprovedStudentFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		render.Error(c, err)
		return
	}

	render.HTML(c, http.StatusOK, "registrar_dashboard.tmpl", gin.H{
		"Title":    "Registrar Dashboard",
		"Payments": payments,
		"Approved": approved,
	})
}

// Students lists approved students for the registrar's working queue.
func (h *RegistrarHandler) Students(c *gin.Context) {
	sess := currentSession(c)

	filter := upstream.ApprovedStudentFilter{
		Strand:         c.Query("strand"),
		GradeLevel:     c.Query("grade_level"),
		EnrollmentType: c.Query("enrollment_type"),
		Search:         c.Query("search"),
		PaymentStatus:  c.Query("payment_status"),
	}
	list, err := h.api.ApprovedStudents(c.Request.Context(), sess.Token, filter)
	if err != nil {
		render.Error(c, err)
		return
	}

	render.HTML(c, http.StatusOK, "registrar_students.tmpl", gin.H{
		"Title":  "Approved Students",
		"List":   list,
		"Filter": filter,
	})
}

// StudentDetail renders the complete record for one approved student.
func (h *RegistrarHandler) StudentDetail(c *gin.Context) {
	sess := currentSession(c)

	id, err := pathID(c, "id")
	if err != nil {
		render.Error(c, err)
		return
	}

	var (
		student  *models.Student
		enrolled []models.EnrolledSubject
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		student, err = h.api.CompleteInfo(ctx, sess.Token, id)
		return err
	})
	g.Go(func() error {
		var err error
		enrolled, err = h.api.EnrolledSubjects(ctx, sess.Token, id)
		return err
	})
	if err := g.Wait(); err != nil {
		render.Error(c, err)
		return
	}

	render.HTML(c, http.StatusOK, "registrar_student_detail.tmpl", gin.H{
		"Title":    student.FullName(),
		"Student":  student,
		"Enrolled": enrolled,
	})
}

// DownloadFiles streams the zip of a student's uploaded documents.
func (h *RegistrarHandler) DownloadFiles(c *gin.Context) {
	sess := currentSession(c)

	id, err := pathID(c, "id")
	if err != nil {
		render.Error(c, err)
		return
	}

	data, contentType, err := h.api.DownloadStudentFiles(c.Request.Context(), sess.Token, id)
	if err != nil {
		render.Error(c, err)
		return
	}
	if contentType == "" {
		contentType = "application/zip"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="student-%d-files.zip"`, id))
	c.Data(http.StatusOK, contentType, data)
}

// Subjects lists subject offerings with strand/grade/semester filters.
func (h *RegistrarHandler) Subjects(c *gin.Context) {
	sess := currentSession(c)

	query := url.Values{}
	for _, key := range []string{"strand", "grade_level", "semester"} {
		if v := c.Query(key); v != "" {
			query.Set(key, v)
		}
	}
	subjects, err := h.api.Subjects(c.Request.Context(), sess.Token, query)
	if err != nil {
		render.Error(c, err)
		return
	}

	render.HTML(c, http.StatusOK, "registrar_subjects.tmpl", gin.H{
		"Title":    "Subjects",
		"Subjects": subjects,
		"Strand":   query.Get("strand"),
		"Grade":    query.Get("grade_level"),
		"Semester": query.Get("semester"),
	})
}

// CreateSubject adds a subject offering.
func (h *RegistrarHandler) CreateSubject(c *gin.Context) {
	sess := currentSession(c)

	req, err := bindSubjectForm(c)
	if err != nil {
		render.RedirectWithFlash(c, "/registrar/subjects", "error", appErrors.FromError(err).Message)
		return
	}

	if _, err := h.api.CreateSubject(c.Request.Context(), sess.Token, req); err != nil {
		render.RedirectWithFlash(c, "/registrar/subjects", "error", appErrors.FromError(err).Message)
		return
	}
	render.RedirectWithFlash(c, "/registrar/subjects", "success", "Subject created")
}

// UpdateSubject edits a subject offering.
func (h *RegistrarHandler) UpdateSubject(c *gin.Context) {
	sess := currentSession(c)

	id, err := pathID(c, "id")
	if err != nil {
		render.Error(c, err)
		return
	}

	req, err := bindSubjectForm(c)
	if err != nil {
		render.RedirectWithFlash(c, "/registrar/subjects", "error", appErrors.FromError(err).Message)
		return
	}

	if _, err := h.api.UpdateSubject(c.Request.Context(), sess.Token, id, req); err != nil {
		render.RedirectWithFlash(c, "/registrar/subjects", "error", appErrors.FromError(err).Message)
		return
	}
	render.RedirectWithFlash(c, "/registrar/subjects", "success", "Subject updated")
}

// DeleteSubject removes a subject offering.
func (h *RegistrarHandler) DeleteSubject(c *gin.Context) {
	sess := currentSession(c)

	id, err := pathID(c, "id")
	if err != nil {
		render.Error(c, err)
		return
	}

	if err := h.api.DeleteSubject(c.Request.Context(), sess.Token, id); err != nil {
		render.Error(c, err)
		return
	}
	render.RedirectWithFlash(c, "/registrar/subjects", "success", "Subject deleted")
}

func bindSubjectForm(c *gin.Context) (upstream.SubjectRequest, error) {
	var form forms.SubjectForm
	if err := c.ShouldBind(&form); err != nil {
		return upstream.SubjectRequest{}, appErrors.Clone(appErrors.ErrValidation, "invalid form submission")
	}
	if err := forms.Check(form); err != nil {
		return upstream.SubjectRequest{}, err
	}
	return upstream.SubjectRequest{
		SubjectCode: form.SubjectCode,
		SubjectName: form.SubjectName,
		Units:       form.Units,
		Schedule:    form.Schedule,
		Strand:      form.Strand,
		GradeLevel:  form.GradeLevel,
		Semester:    form.Semester,
		MaxStudents: form.MaxStudents,
	}, nil
}

// AssignScreen renders the per-student subject assignment view. Eligible
// subjects are the offerings matching the student's strand, grade level, and
// semester, minus anything already assigned and anything at capacity.
func (h *RegistrarHandler) AssignScreen(c *gin.Context) {
	sess := currentSession(c)

	id, err := pathID(c, "id")
	if err != nil {
		render.Error(c, err)
		return
	}

	student, offered, enrolled, err := h.assignState(c.Request.Context(), sess.Token, id)
	if err != nil {
		render.Error(c, err)
		return
	}

	eligible, full := splitEligible(offered, enrolled)

	render.HTML(c, http.StatusOK, "registrar_assign.tmpl", gin.H{
		"Title":    "Assign Subjects",
		"Student":  student,
		"Enrolled": enrolled,
		"Eligible": eligible,
		"Full":     full,
	})
}

// AssignSubject assigns a single subject to a student.
func (h *RegistrarHandler) AssignSubject(c *gin.Context) {
	sess := currentSession(c)

	studentID, err := pathID(c, "id")
	if err != nil {
		render.Error(c, err)
		return
	}
	subjectID, err := strconv.Atoi(c.PostForm("subject_id"))
	if err != nil {
		render.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid subject id"))
		return
	}

	req := models.AssignSubjectRequest{StudentID: studentID, SubjectID: subjectID}
	if err := h.api.AssignSubject(c.Request.Context(), sess.Token, req); err != nil {
		render.Error(c, err)
		return
	}
	render.RedirectWithFlash(c, assignPath(studentID), "success", "Subject assigned")
}

// UnassignSubject removes a single assignment.
func (h *RegistrarHandler) UnassignSubject(c *gin.Context) {
	sess := currentSession(c)

	studentID, err := pathID(c, "id")
	if err != nil {
		render.Error(c, err)
		return
	}
	subjectID, err := strconv.Atoi(c.PostForm("subject_id"))
	if err != nil {
		render.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid subject id"))
		return
	}

	req := models.AssignSubjectRequest{StudentID: studentID, SubjectID: subjectID}
	if err := h.api.UnassignSubject(c.Request.Context(), sess.Token, req); err != nil {
		render.Error(c, err)
		return
	}
	render.RedirectWithFlash(c, assignPath(studentID), "success", "Subject removed")
}

// BulkAssign assigns every remaining eligible subject in one request. The
// eligible set is recomputed server-side at submit time, so a subject that
// filled up or got assigned since the screen rendered is simply skipped.
func (h *RegistrarHandler) BulkAssign(c *gin.Context) {
	sess := currentSession(c)

	studentID, err := pathID(c, "id")
	if err != nil {
		render.Error(c, err)
		return
	}

	_, offered, enrolled, err := h.assignState(c.Request.Context(), sess.Token, studentID)
	if err != nil {
		render.Error(c, err)
		return
	}

	eligible, _ := splitEligible(offered, enrolled)
	if len(eligible) == 0 {
		render.RedirectWithFlash(c, assignPath(studentID), "info", "No remaining subjects to assign")
		return
	}

	ids := make([]int, 0, len(eligible))
	for _, s := range eligible {
		ids = append(ids, s.ID)
	}
	req := models.BulkAssignRequest{StudentID: studentID, SubjectIDs: ids}
	if err := h.api.BulkAssignSubjects(c.Request.Context(), sess.Token, req); err != nil {
		render.Error(c, err)
		return
	}
	render.RedirectWithFlash(c, assignPath(studentID), "success", fmt.Sprintf("Assigned %d subjects", len(ids)))
}

func (h *RegistrarHandler) assignState(ctx context.Context, token string, studentID int) (*models.Student, []models.Subject, []models.EnrolledSubject, error) {
	student, err := h.api.CompleteInfo(ctx, token, studentID)
	if err != nil {
		return nil, nil, nil, err
	}

	query := url.Values{}
	if student.Strand != "" {
		query.Set("strand", student.Strand)
	}
	if student.GradeLevelToEnroll != "" {
		query.Set("grade_level", student.GradeLevelToEnroll)
	}
	if student.Semester != "" {
		query.Set("semester", student.Semester)
	}

	var (
		offered  []models.Subject
		enrolled []models.EnrolledSubject
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		offered, err = h.api.Subjects(gctx, token, query)
		return err
	})
	g.Go(func() error {
		var err error
		enrolled, err = h.api.EnrolledSubjects(gctx, token, studentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return student, offered, enrolled, nil
}

// splitEligible partitions offerings into assignable subjects and subjects
// shown greyed-out because they are at capacity. Already-assigned subjects
// appear in neither slice.
func splitEligible(offered []models.Subject, enrolled []models.EnrolledSubject) (eligible, full []models.Subject) {
	assigned := make(map[int]struct{}, len(enrolled))
	for _, e := range enrolled {
		assigned[e.ID] = struct{}{}
	}
	for _, s := range offered {
		if _, ok := assigned[s.ID]; ok {
			continue
		}
		if s.Full() {
			full = append(full, s)
			continue
		}
		eligible = append(eligible, s)
	}
	return eligible, full
}

func assignPath(studentID int) string {
	return "/registrar/students/" + strconv.Itoa(studentID) + "/subjects"
}

// TransfereeCredits renders the credited-subjects editor for a transferee.
func (h *RegistrarHandler) TransfereeCredits(c *gin.Context) {
	sess := currentSession(c)

	id, err := pathID(c, "id")
	if err != nil {
		render.Error(c, err)
		return
	}

	student, err := h.api.CompleteInfo(c.Request.Context(), sess.Token, id)
	if err != nil {
		render.Error(c, err)
		return
	}

	render.HTML(c, http.StatusOK, "registrar_credits.tmpl", gin.H{
		"Title":   "Transferee Credits",
		"Student": student,
	})
}

// UpdateTransfereeCredits saves per-subject credit decisions.
func (h *RegistrarHandler) UpdateTransfereeCredits(c *gin.Context) {
	sess := currentSession(c)

	id, err := pathID(c, "id")
	if err != nil {
		render.Error(c, err)
		return
	}

	names := c.PostFormArray("subject_name")
	codes := c.PostFormArray("subject_code")
	grades := c.PostFormArray("grade")
	statuses := c.PostFormArray("credit_status")

	subjects := make([]models.TransfereeSubject, 0, len(names))
	for i, name := range names {
		if name == "" {
			continue
		}
		sub := models.TransfereeSubject{SubjectName: name}
		if i < len(codes) {
			sub.SubjectCode = codes[i]
		}
		if i < len(grades) {
			sub.Grade = grades[i]
		}
		if i < len(statuses) {
			sub.CreditStatus = statuses[i]
		}
		subjects = append(subjects, sub)
	}

	if err := h.api.UpdateTransfereeCredits(c.Request.Context(), sess.Token, id, subjects); err != nil {
		render.Error(c, err)
		return
	}
	render.RedirectWithFlash(c, "/registrar/students/"+strconv.Itoa(id), "success", "Credits updated")
}

// paymentRow pairs a pending student with the resolvable URL of their
// uploaded receipt.
type paymentRow struct {
	models.Student
	ReceiptURL string
}

// Payments lists receipts awaiting verification, each with an inline preview.
func (h *RegistrarHandler) Payments(c *gin.Context) {
	sess := currentSession(c)

	list, err := h.api.PendingPayments(c.Request.Context(), sess.Token)
	if err != nil {
		render.Error(c, err)
		return
	}

	rows := make([]paymentRow, 0, len(list.Students))
	for _, s := range list.Students {
		rows = append(rows, paymentRow{Student: s, ReceiptURL: h.api.FileURL(s.PaymentReceiptPath)})
	}

	render.HTML(c, http.StatusOK, "registrar_payments.tmpl", gin.H{
		"Title": "Payment Review",
		"Rows":  rows,
	})
}

// VerifyPayment marks a receipt as verified.
func (h *RegistrarHandler) VerifyPayment(c *gin.Context) {
	sess := currentSession(c)

	id, err := pathID(c, "id")
	if err != nil {
		render.Error(c, err)
		return
	}

	if err := h.api.VerifyPayment(c.Request.Context(), sess.Token, id); err != nil {
		render.Error(c, err)
		return
	}
	render.RedirectWithFlash(c, "/registrar/payments", "success", "Payment verified")
}

// RejectPayment sends a receipt back to the student with a reason.
func (h *RegistrarHandler) RejectPayment(c *gin.Context) {
	sess := currentSession(c)

	id, err := pathID(c, "id")
	if err != nil {
		render.Error(c, err)
		return
	}

	if err := h.api.RejectPayment(c.Request.Context(), sess.Token, id, c.PostForm("reason")); err != nil {
		render.Error(c, err)
		return
	}
	render.RedirectWithFlash(c, "/registrar/payments", "success", "Payment rejected")
}

// ClassList renders the roster for one strand/grade/semester.
func (h *RegistrarHandler) ClassList(c *gin.Context) {
	sess := currentSession(c)

	strand := c.Query("strand")
	grade := c.Query("grade_level")
	semester := c.Query("semester")

	var list *models.StudentList
	if strand != "" && grade != "" {
		var err error
		list, err = h.api.ClassList(c.Request.Context(), sess.Token, strand, grade, semester)
		if err != nil {
			render.Error(c, err)
			return
		}
	}

	render.HTML(c, http.StatusOK, "registrar_class_list.tmpl", gin.H{
		"Title":    "Class List",
		"List":     list,
		"Strand":   strand,
		"Grade":    grade,
		"Semester": semester,
	})
}

// ClassListPDF serves the printable roster.
func (h *RegistrarHandler) ClassListPDF(c *gin.Context) {
	sess := currentSession(c)

	strand := c.Query("strand")
	grade := c.Query("grade_level")
	semester := c.Query("semester")
	if strand == "" || grade == "" {
		render.Error(c, appErrors.Clone(appErrors.ErrValidation, "strand and grade level are required"))
		return
	}

	list, err := h.api.ClassList(c.Request.Context(), sess.Token, strand, grade, semester)
	if err != nil {
		render.Error(c, err)
		return
	}

	doc, err := printable.ClassList(strand, grade, semester, list.Students)
	if err != nil {
		render.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render class list"))
		return
	}

	filename := fmt.Sprintf("ClassList-%s-%s.pdf", strand, grade)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}
