package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
)

// StudentListFilter narrows admin student listings.
type StudentListFilter struct {
	Status  string
	Page    int
	PerPage int
}

func (f StudentListFilter) query() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(f.PerPage))
	}
	return q
}

// AdminStudents lists students with an optional status filter.
func (c *Client) AdminStudents(ctx context.Context, token string, filter StudentListFilter) (*models.StudentList, error) {
	var out models.StudentList
	if err := c.getJSON(ctx, token, "admin", "/admin/students", filter.query(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PendingStudents lists applications awaiting review.
func (c *Client) PendingStudents(ctx context.Context, token string, page, perPage int) (*models.StudentList, error) {
	var out models.StudentList
	q := StudentListFilter{Page: page, PerPage: perPage}.query()
	if err := c.getJSON(ctx, token, "admin", "/admin/students/pending", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StudentByID fetches one application for the admin detail screen.
func (c *Client) StudentByID(ctx context.Context, token string, id int) (*models.Student, error) {
	var out models.Student
	if err := c.getJSON(ctx, token, "admin", "/admin/students/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApproveStudent approves an application. The supplement only applies to
// students approved for the first time; the upstream ignores it otherwise.
func (c *Client) ApproveStudent(ctx context.Context, token string, id int, supplement models.ApprovalSupplement) error {
	return c.sendJSON(ctx, http.MethodPut, token, "admin", "/admin/students/"+strconv.Itoa(id)+"/approve", supplement, nil)
}

// DenyStudent denies an application with an optional free-text reason.
func (c *Client) DenyStudent(ctx context.Context, token string, id int, reason string) error {
	payload := map[string]string{}
	if reason != "" {
		payload["reason"] = reason
	}
	return c.sendJSON(ctx, http.MethodPut, token, "admin", "/admin/students/"+strconv.Itoa(id)+"/deny", payload, nil)
}

// DeleteStudent removes a student record entirely.
func (c *Client) DeleteStudent(ctx context.Context, token string, id int) error {
	return c.sendJSON(ctx, http.MethodDelete, token, "admin", "/admin/students/"+strconv.Itoa(id), nil, nil)
}

// DashboardStats fetches applicant pipeline counters.
func (c *Client) DashboardStats(ctx context.Context, token string) (*models.DashboardStats, error) {
	var out models.DashboardStats
	if err := c.getJSON(ctx, token, "admin", "/admin/dashboard/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AccountFilter narrows the accounts listing.
type AccountFilter struct {
	Role    string
	Search  string
	Page    int
	PerPage int
}

// Accounts lists user accounts.
func (c *Client) Accounts(ctx context.Context, token string, filter AccountFilter) (*models.AccountList, error) {
	q := url.Values{}
	if filter.Role != "" {
		q.Set("role", filter.Role)
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(filter.PerPage))
	}
	var out models.AccountList
	if err := c.getJSON(ctx, token, "admin", "/admin/accounts", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAccountRequest creates a staff or student account.
type CreateAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateAccount registers a new account with an explicit role.
func (c *Client) CreateAccount(ctx context.Context, token string, req CreateAccountRequest) error {
	return c.sendJSON(ctx, http.MethodPost, token, "admin", "/admin/accounts", req, nil)
}

// DeleteAccount removes a user account.
func (c *Client) DeleteAccount(ctx context.Context, token string, id int) error {
	return c.sendJSON(ctx, http.MethodDelete, token, "admin", "/admin/accounts/"+strconv.Itoa(id), nil, nil)
}

// ResetAccountPassword sets a new password on an account.
func (c *Client) ResetAccountPassword(ctx context.Context, token string, id int, newPassword string) error {
	payload := map[string]string{"new_password": newPassword}
	return c.sendJSON(ctx, http.MethodPut, token, "admin", "/admin/accounts/"+strconv.Itoa(id)+"/reset-password", payload, nil)
}

// AcademicCalendar fetches the enrollment window singleton.
func (c *Client) AcademicCalendar(ctx context.Context, token string) (*models.AcademicCalendar, error) {
	var out models.AcademicCalendar
	if err := c.getJSON(ctx, token, "admin", "/admin/academic-calendar", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCalendarRequest mutates the enrollment window.
type UpdateCalendarRequest struct {
	SchoolYear      string `json:"school_year"`
	Semester        string `json:"semester"`
	EnrollmentStart string `json:"enrollment_start,omitempty"`
	EnrollmentEnd   string `json:"enrollment_end,omitempty"`
	IsOpen          bool   `json:"is_open"`
}

// UpdateAcademicCalendar saves the enrollment window.
func (c *Client) UpdateAcademicCalendar(ctx context.Context, token string, req UpdateCalendarRequest) (*models.AcademicCalendar, error) {
	var out models.AcademicCalendar
	if err := c.sendJSON(ctx, http.MethodPut, token, "admin", "/admin/academic-calendar", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuditLogFilter narrows the audit log listing.
type AuditLogFilter struct {
	Action   string
	Role     string
	Search   string
	DateFrom string
	DateTo   string
	Page     int
	PerPage  int
}

// AuditLogs lists state-changing actions recorded by the upstream.
func (c *Client) AuditLogs(ctx context.Context, token string, filter AuditLogFilter) (*models.AuditLogList, error) {
	q := url.Values{}
	if filter.Action != "" {
		q.Set("action", filter.Action)
	}
	if filter.Role != "" {
		q.Set("role", filter.Role)
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.DateFrom != "" {
		q.Set("date_from", filter.DateFrom)
	}
	if filter.DateTo != "" {
		q.Set("date_to", filter.DateTo)
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(filter.PerPage))
	}
	var out models.AuditLogList
	if err := c.getJSON(ctx, token, "admin", "/admin/audit-logs", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
