package models

import "time"

// DashboardStats summarises the applicant pipeline for the admin landing page.
type DashboardStats struct {
	TotalStudents    int `json:"total_students"`
	PendingStudents  int `json:"pending_students"`
	ApprovedStudents int `json:"approved_students"`
	DeniedStudents   int `json:"denied_students"`
}

// Account is a user account row on the admin accounts screen.
type Account struct {
	ID          int       `json:"id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// AccountList is the paginated accounts payload.
type AccountList struct {
	Accounts []Account `json:"accounts"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PerPage  int       `json:"per_page"`
}

// AuditLogEntry records a state-changing action by any role. Append-only and
// admin-visible.
type AuditLogEntry struct {
	ID         int       `json:"id"`
	UserID     *int      `json:"user_id,omitempty"`
	UserEmail  string    `json:"user_email"`
	UserRole   string    `json:"user_role"`
	Action     string    `json:"action"`
	TargetName string    `json:"target_name,omitempty"`
	Details    string    `json:"details,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuditLogList is the paginated audit-log payload.
type AuditLogList struct {
	Logs    []AuditLogEntry `json:"logs"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
}

// ApprovalSupplement is the optional demographic data an admin attaches when
// approving a student for the first time.
type ApprovalSupplement struct {
	EnrollmentDate string `json:"enrollment_date,omitempty"`
	PlaceOfBirth   string `json:"place_of_birth,omitempty"`
	Nationality    string `json:"nationality,omitempty"`
	CivilStatus    string `json:"civil_status,omitempty"`
}

// Strand is one Senior High School strand option.
type Strand struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
