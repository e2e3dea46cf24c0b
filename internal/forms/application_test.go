package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
	appErrors "github.com/dbtc-edu/enrollment-portal/pkg/errors"
)

func completeForm() ApplicationForm {
	return ApplicationForm{
		EnrollmentType:     models.EnrollNew,
		GradeLevelToEnroll: "Grade 11",
		Semester:           "1st Semester",
		Strand:             "STEM",
		FirstName:          "Ana",
		LastName:           "Reyes",
		Birthday:           "2009-03-14",
		Sex:                "Female",
	}
}

func TestApplicationValidateComplete(t *testing.T) {
	form := completeForm()
	assert.NoError(t, form.Validate())
}

func TestApplicationValidateListsMissingFields(t *testing.T) {
	form := completeForm()
	form.FirstName = ""
	form.Birthday = ""

	err := form.Validate()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.True(t, appErrors.Is(appErr, appErrors.ErrValidation))
	assert.Equal(t, "Please fill in: First Name, Birthday", appErr.Message)
}

func TestApplicationValidateTransfereeNeedsSchool(t *testing.T) {
	form := completeForm()
	form.EnrollmentType = models.EnrollTransferee
	form.TransfereeSubjectNames = []string{"General Mathematics"}

	err := form.Validate()
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Message, "Last School Attended")
}

func TestApplicationValidateTransfereeNeedsSubjects(t *testing.T) {
	form := completeForm()
	form.EnrollmentType = models.EnrollTransferee
	form.LastSchoolAttended = "Holy Cross Academy"

	err := form.Validate()
	require.Error(t, err)
	assert.Equal(t, "Please add at least one subject from your previous school", appErrors.FromError(err).Message)

	// Rows with only a code but no name do not count.
	form.TransfereeSubjectNames = []string{"", "  "}
	form.TransfereeSubjectCodes = []string{"GM-101", "GM-102"}
	err = form.Validate()
	require.Error(t, err)

	form.TransfereeSubjectNames = []string{"General Mathematics"}
	assert.NoError(t, form.Validate())
}

func TestTransfereeSubjectsDropsBlankRows(t *testing.T) {
	form := ApplicationForm{
		TransfereeSubjectNames:  []string{"General Mathematics", "", "Oral Communication"},
		TransfereeSubjectCodes:  []string{"GM-101", "X", "OC-101"},
		TransfereeSubjectUnits:  []string{"3", "3", "3"},
		TransfereeSubjectGrades: []string{"88", "", "91"},
	}

	subjects := form.TransfereeSubjects()
	require.Len(t, subjects, 2)
	assert.Equal(t, "General Mathematics", subjects[0].SubjectName)
	assert.Equal(t, "GM-101", subjects[0].SubjectCode)
	assert.Equal(t, models.CreditPending, subjects[0].CreditStatus)
	assert.Equal(t, "Oral Communication", subjects[1].SubjectName)
	assert.Equal(t, "91", subjects[1].Grade)
}

func TestApplicationPayloadIsSparse(t *testing.T) {
	form := completeForm()
	payload := form.Payload()

	assert.Equal(t, "Ana", payload["first_name"])
	assert.NotContains(t, payload, "middle_name")
	assert.NotContains(t, payload, "transferee_subjects")
	assert.NotContains(t, payload, "is_returning_student")
}

func TestApplicationPayloadReturningStudentFlag(t *testing.T) {
	form := completeForm()
	form.IsReturningStudent = "on"
	assert.Equal(t, true, form.Payload()["is_returning_student"])

	form.IsReturningStudent = "false"
	assert.Equal(t, false, form.Payload()["is_returning_student"])
}
