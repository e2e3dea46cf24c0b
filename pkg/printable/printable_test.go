package printable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
)

func TestEnrollmentForm(t *testing.T) {
	student := &models.Student{
		StudentNumber:      "2026-0042",
		FirstName:          "Ana",
		LastName:           "Reyes",
		GradeLevelToEnroll: "Grade 11",
		Strand:             "STEM",
		SchoolYear:         "2026-2027",
		Semester:           "1st Semester",
	}
	subjects := []models.EnrolledSubject{
		{SubjectCode: "GM-101", SubjectName: "General Mathematics", Units: 3, Schedule: "MWF 8:00-9:00"},
		{SubjectCode: "OC-101", SubjectName: "Oral Communication", Units: 3, Schedule: "TTh 10:00-11:30"},
	}

	doc, err := EnrollmentForm(student, subjects)
	require.NoError(t, err)
	assert.Greater(t, len(doc), 1000)
	assert.Equal(t, "%PDF", string(doc[:4]))
}

func TestEnrollmentFormRequiresStudent(t *testing.T) {
	_, err := EnrollmentForm(nil, nil)
	assert.Error(t, err)
}

func TestEnrollmentFormNoSubjects(t *testing.T) {
	doc, err := EnrollmentForm(&models.Student{FirstName: "Ana", LastName: "Reyes"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(doc[:4]))
}

func TestClassList(t *testing.T) {
	students := []models.Student{
		{StudentNumber: "2026-0001", FirstName: "Ana", LastName: "Reyes"},
		{StudentNumber: "2026-0002", FirstName: "Ben", LastName: "Cruz"},
	}

	doc, err := ClassList("STEM", "Grade 11", "1st Semester", students)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(doc[:4]))
}

func TestClassListEmptyRoster(t *testing.T) {
	doc, err := ClassList("HUMSS", "Grade 12", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(doc[:4]))
}
