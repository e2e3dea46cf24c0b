// Package forms validates user input before it leaves the portal. Anything
// caught here never becomes a network call; what passes is submitted as-is
// and the upstream has the final say.
package forms

import (
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/dbtc-edu/enrollment-portal/pkg/errors"
)

var validate = validator.New()

// LoginForm is the credentials form.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// RegisterForm is the student self-registration form.
type RegisterForm struct {
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

// AccountForm creates a staff or student account from the admin screen.
type AccountForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8"`
	Role     string `form:"role" validate:"required,oneof=student admin registrar"`
}

// ResetPasswordForm sets a new password on an account.
type ResetPasswordForm struct {
	NewPassword string `form:"new_password" validate:"required,min=8"`
}

// SubjectForm creates or edits a subject offering.
type SubjectForm struct {
	SubjectCode string `form:"subject_code" validate:"required"`
	SubjectName string `form:"subject_name" validate:"required"`
	Units       int    `form:"units" validate:"gte=0"`
	Schedule    string `form:"schedule" validate:"required"`
	Strand      string `form:"strand" validate:"required"`
	GradeLevel  string `form:"grade_level" validate:"required"`
	Semester    string `form:"semester" validate:"required"`
	MaxStudents int    `form:"max_students" validate:"gte=1"`
}

// CalendarForm edits the enrollment window.
type CalendarForm struct {
	SchoolYear      string `form:"school_year" validate:"required"`
	Semester        string `form:"semester" validate:"required"`
	EnrollmentStart string `form:"enrollment_start" validate:"omitempty,datetime=2006-01-02"`
	EnrollmentEnd   string `form:"enrollment_end" validate:"omitempty,datetime=2006-01-02"`
	IsOpen          bool   `form:"is_open"`
}

// Check runs struct validation and normalises failures into the portal's
// validation error with per-field messages joined.
func Check(form interface{}) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if ok := asValidationErrors(err, &verrs); !ok {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return appErrors.Clone(appErrors.ErrValidation, strings.Join(msgs, ", "))
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = verrs
	return true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "eqfield":
		return "passwords do not match"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// Upload limits shared by every document slot.
const maxUploadBytes = 5 * 1024 * 1024

var imageUploadTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
}

var documentUploadTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"application/pdf": {},
}

// CheckImageUpload enforces the receipt/photo upload rules before any bytes
// travel upstream: JPG or PNG, at most 5MB.
func CheckImageUpload(header *multipart.FileHeader) error {
	return checkUpload(header, imageUploadTypes, "only JPG and PNG files are allowed")
}

// CheckDocumentUpload covers the scanned-document slots (grades, voucher,
// PSA birth certificate, transfer credential, good moral), which also come
// in as PDFs.
func CheckDocumentUpload(header *multipart.FileHeader) error {
	return checkUpload(header, documentUploadTypes, "only JPG, PNG, and PDF files are allowed")
}

func checkUpload(header *multipart.FileHeader, allowed map[string]struct{}, typeMsg string) error {
	if header == nil {
		return appErrors.Clone(appErrors.ErrValidation, "please choose a file to upload")
	}
	if header.Size > maxUploadBytes {
		return appErrors.Clone(appErrors.ErrValidation, "file must be less than 5MB")
	}
	cType := header.Header.Get("Content-Type")
	if _, ok := allowed[cType]; !ok {
		return appErrors.Clone(appErrors.ErrValidation, typeMsg)
	}
	return nil
}
