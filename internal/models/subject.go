package models

import "time"

// Subject is a class offering managed by the registrar.
type Subject struct {
	ID            int       `json:"id"`
	SubjectCode   string    `json:"subject_code"`
	SubjectName   string    `json:"subject_name"`
	Units         int       `json:"units"`
	Schedule      string    `json:"schedule"`
	Strand        string    `json:"strand"`
	GradeLevel    string    `json:"grade_level"`
	Semester      string    `json:"semester"`
	MaxStudents   int       `json:"max_students"`
	EnrolledCount int       `json:"enrolled_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Full reports whether the subject has no remaining capacity.
func (s *Subject) Full() bool {
	return s.EnrolledCount >= s.MaxStudents
}

// EnrolledSubject is a subject as seen from a student's assignment list.
type EnrolledSubject struct {
	ID          int       `json:"id"`
	SubjectCode string    `json:"subject_code"`
	SubjectName string    `json:"subject_name"`
	Units       int       `json:"units"`
	Schedule    string    `json:"schedule"`
	Strand      string    `json:"strand"`
	GradeLevel  string    `json:"grade_level"`
	Semester    string    `json:"semester"`
	EnrolledAt  time.Time `json:"enrolled_at"`
}

// AssignSubjectRequest mutates a single student/subject assignment.
type AssignSubjectRequest struct {
	StudentID int `json:"student_id"`
	SubjectID int `json:"subject_id"`
}

// BulkAssignRequest assigns several subjects in one call. The upstream skips
// any subject that became full or already-assigned between fetch and submit.
type BulkAssignRequest struct {
	StudentID  int   `json:"student_id"`
	SubjectIDs []int `json:"subject_ids"`
}
