package models

import "time"

// AcademicCalendar is the admin-editable singleton gating registration.
type AcademicCalendar struct {
	ID              int       `json:"id"`
	SchoolYear      string    `json:"school_year"`
	Semester        string    `json:"semester"`
	EnrollmentStart string    `json:"enrollment_start,omitempty"`
	EnrollmentEnd   string    `json:"enrollment_end,omitempty"`
	IsOpen          bool      `json:"is_open"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EnrollmentWindow is the public enrollment-status payload shown on the
// registration screen before any session exists.
type EnrollmentWindow struct {
	IsOpen          bool   `json:"is_open"`
	SchoolYear      string `json:"school_year,omitempty"`
	Semester        string `json:"semester,omitempty"`
	EnrollmentStart string `json:"enrollment_start,omitempty"`
	EnrollmentEnd   string `json:"enrollment_end,omitempty"`
}
