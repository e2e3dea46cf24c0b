package forms

import (
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/dbtc-edu/enrollment-portal/pkg/errors"
)

func TestCheckLoginForm(t *testing.T) {
	assert.NoError(t, Check(LoginForm{Email: "ana@dbtc.edu", Password: "secret123"}))

	err := Check(LoginForm{Email: "not-an-email", Password: ""})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.True(t, appErrors.Is(appErr, appErrors.ErrValidation))
	assert.Contains(t, appErr.Message, "Email")
	assert.Contains(t, appErr.Message, "Password")
}

func TestCheckRegisterFormPasswordRules(t *testing.T) {
	err := Check(RegisterForm{Email: "ana@dbtc.edu", Password: "short", ConfirmPassword: "short"})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Message, "at least 8")

	err = Check(RegisterForm{Email: "ana@dbtc.edu", Password: "secret123", ConfirmPassword: "different"})
	require.Error(t, err)

	assert.NoError(t, Check(RegisterForm{Email: "ana@dbtc.edu", Password: "secret123", ConfirmPassword: "secret123"}))
}

func TestCheckAccountFormRole(t *testing.T) {
	form := AccountForm{Email: "staff@dbtc.edu", Password: "secret123", Role: "registrar"}
	assert.NoError(t, Check(form))

	form.Role = "principal"
	assert.Error(t, Check(form))
}

func TestCheckSubjectFormCapacity(t *testing.T) {
	form := SubjectForm{
		SubjectCode: "GM-101",
		SubjectName: "General Mathematics",
		Units:       3,
		Schedule:    "MWF 8:00-9:00",
		Strand:      "STEM",
		GradeLevel:  "Grade 11",
		Semester:    "1st Semester",
		MaxStudents: 40,
	}
	assert.NoError(t, Check(form))

	form.MaxStudents = 0
	assert.Error(t, Check(form))
}

func fileHeader(size int64, contentType string) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: "receipt.jpg",
		Size:     size,
		Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
	}
}

func TestCheckImageUpload(t *testing.T) {
	assert.Error(t, CheckImageUpload(nil))
	assert.Error(t, CheckImageUpload(fileHeader(6*1024*1024, "image/jpeg")))
	assert.Error(t, CheckImageUpload(fileHeader(1024, "application/pdf")))
	assert.NoError(t, CheckImageUpload(fileHeader(1024, "image/jpeg")))
	assert.NoError(t, CheckImageUpload(fileHeader(1024, "image/png")))
}

func TestCheckDocumentUploadAcceptsPDF(t *testing.T) {
	assert.Error(t, CheckDocumentUpload(nil))
	assert.Error(t, CheckDocumentUpload(fileHeader(6*1024*1024, "application/pdf")))
	assert.Error(t, CheckDocumentUpload(fileHeader(1024, "text/plain")))
	assert.NoError(t, CheckDocumentUpload(fileHeader(1024, "application/pdf")))
	assert.NoError(t, CheckDocumentUpload(fileHeader(1024, "image/jpeg")))
	assert.NoError(t, CheckDocumentUpload(fileHeader(1024, "image/png")))
}
