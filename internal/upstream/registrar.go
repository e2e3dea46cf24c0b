package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
)

// ApprovedStudentFilter narrows the registrar's approved-students listing.
type ApprovedStudentFilter struct {
	Strand         string
	GradeLevel     string
	EnrollmentType string
	Search         string
	PaymentStatus  string
}

func (f ApprovedStudentFilter) query() url.Values {
	q := url.Values{}
	if f.Strand != "" {
		q.Set("strand", f.Strand)
	}
	if f.GradeLevel != "" {
		q.Set("grade_level", f.GradeLevel)
	}
	if f.EnrollmentType != "" {
		q.Set("enrollment_type", f.EnrollmentType)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.PaymentStatus != "" {
		q.Set("payment_status", f.PaymentStatus)
	}
	return q
}

// ApprovedStudents lists approved students for subject assignment.
func (c *Client) ApprovedStudents(ctx context.Context, token string, filter ApprovedStudentFilter) (*models.StudentList, error) {
	var out models.StudentList
	if err := c.getJSON(ctx, token, "registrar", "/registrar/students/approved", filter.query(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClassList lists fully enrolled students by strand/grade/semester.
func (c *Client) ClassList(ctx context.Context, token, strand, gradeLevel, semester string) (*models.StudentList, error) {
	q := url.Values{}
	if strand != "" {
		q.Set("strand", strand)
	}
	if gradeLevel != "" {
		q.Set("grade_level", gradeLevel)
	}
	if semester != "" {
		q.Set("semester", semester)
	}
	var out models.StudentList
	if err := c.getJSON(ctx, token, "registrar", "/registrar/class-list", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteInfo fetches a student's full record for the registrar detail pane.
func (c *Client) CompleteInfo(ctx context.Context, token string, studentID int) (*models.Student, error) {
	var out models.Student
	if err := c.getJSON(ctx, token, "registrar", "/registrar/students/"+strconv.Itoa(studentID)+"/complete-info", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadStudentFiles streams the zip archive of a student's documents.
// The caller owns the returned bytes; content type is application/zip.
func (c *Client) DownloadStudentFiles(ctx context.Context, token string, studentID int) ([]byte, string, error) {
	return c.doRaw(ctx, request{
		method: http.MethodGet,
		path:   "/registrar/students/" + strconv.Itoa(studentID) + "/download-files",
		group:  "registrar",
		token:  token,
	})
}

// Subjects lists subject offerings.
func (c *Client) Subjects(ctx context.Context, token string, query url.Values) ([]models.Subject, error) {
	var out []models.Subject
	if err := c.getJSON(ctx, token, "registrar", "/registrar/subjects", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubjectRequest creates or updates a subject offering.
type SubjectRequest struct {
	SubjectCode string `json:"subject_code"`
	SubjectName string `json:"subject_name"`
	Units       int    `json:"units"`
	Schedule    string `json:"schedule"`
	Strand      string `json:"strand"`
	GradeLevel  string `json:"grade_level"`
	Semester    string `json:"semester"`
	MaxStudents int    `json:"max_students"`
}

// CreateSubject adds a subject offering.
func (c *Client) CreateSubject(ctx context.Context, token string, req SubjectRequest) (*models.Subject, error) {
	var out models.Subject
	if err := c.sendJSON(ctx, http.MethodPost, token, "registrar", "/registrar/subjects", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSubject edits a subject offering.
func (c *Client) UpdateSubject(ctx context.Context, token string, id int, req SubjectRequest) (*models.Subject, error) {
	var out models.Subject
	if err := c.sendJSON(ctx, http.MethodPut, token, "registrar", "/registrar/subjects/"+strconv.Itoa(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSubject removes a subject offering.
func (c *Client) DeleteSubject(ctx context.Context, token string, id int) error {
	return c.sendJSON(ctx, http.MethodDelete, token, "registrar", "/registrar/subjects/"+strconv.Itoa(id), nil, nil)
}

// AssignSubject enrols one student into one subject.
func (c *Client) AssignSubject(ctx context.Context, token string, req models.AssignSubjectRequest) error {
	return c.sendJSON(ctx, http.MethodPost, token, "registrar", "/registrar/assign-subject", req, nil)
}

// UnassignSubject removes one student/subject assignment.
func (c *Client) UnassignSubject(ctx context.Context, token string, req models.AssignSubjectRequest) error {
	return c.sendJSON(ctx, http.MethodDelete, token, "registrar", "/registrar/unassign-subject", req, nil)
}

// BulkAssignSubjects assigns several subjects in one call. Already assigned
// subjects will be skipped by the upstream, as will any that filled up
// between fetch and submission.
func (c *Client) BulkAssignSubjects(ctx context.Context, token string, req models.BulkAssignRequest) error {
	return c.sendJSON(ctx, http.MethodPost, token, "registrar", "/registrar/bulk-assign-subjects", req, nil)
}

// EnrolledSubjects lists the subjects a student is currently assigned to.
func (c *Client) EnrolledSubjects(ctx context.Context, token string, studentID int) ([]models.EnrolledSubject, error) {
	var out []models.EnrolledSubject
	if err := c.getJSON(ctx, token, "registrar", "/registrar/students/"+strconv.Itoa(studentID)+"/enrolled-subjects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PendingPayments lists students whose receipts await verification.
func (c *Client) PendingPayments(ctx context.Context, token string) (*models.StudentList, error) {
	var out models.StudentList
	if err := c.getJSON(ctx, token, "registrar", "/registrar/students/pending-payments", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyPayment marks a student's receipt as verified.
func (c *Client) VerifyPayment(ctx context.Context, token string, studentID int) error {
	return c.sendJSON(ctx, http.MethodPut, token, "registrar", "/registrar/students/"+strconv.Itoa(studentID)+"/verify-payment", nil, nil)
}

// RejectPayment rejects a student's receipt with an optional reason; the
// student drops back to unpaid and sees the reason on their dashboard.
func (c *Client) RejectPayment(ctx context.Context, token string, studentID int, reason string) error {
	payload := map[string]string{}
	if reason != "" {
		payload["reason"] = reason
	}
	return c.sendJSON(ctx, http.MethodPut, token, "registrar", "/registrar/students/"+strconv.Itoa(studentID)+"/reject-payment", payload, nil)
}

// UpdateTransfereeCredits saves the registrar's credit determinations for a
// transferee's prior subjects.
func (c *Client) UpdateTransfereeCredits(ctx context.Context, token string, studentID int, subjects []models.TransfereeSubject) error {
	payload := map[string]interface{}{"transferee_subjects": subjects}
	return c.sendJSON(ctx, http.MethodPut, token, "registrar", "/registrar/students/"+strconv.Itoa(studentID)+"/transferee-credits", payload, nil)
}
