package upstream

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
)

// MyProfile fetches the current student's application record.
func (c *Client) MyProfile(ctx context.Context, token string) (*models.Student, error) {
	var out models.Student
	if err := c.getJSON(ctx, token, "student", "/students/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMyProfile submits (or resubmits) the application form. The payload is
// a sparse map: only fields the student actually filled in are sent, matching
// the upstream's partial-update contract.
func (c *Client) UpdateMyProfile(ctx context.Context, token string, fields map[string]interface{}) (*models.Student, error) {
	var out models.Student
	if err := c.sendJSON(ctx, http.MethodPut, token, "student", "/students/me", fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MySubjects lists the subjects assigned to the current student.
func (c *Client) MySubjects(ctx context.Context, token string) ([]models.EnrolledSubject, error) {
	var out []models.EnrolledSubject
	if err := c.getJSON(ctx, token, "student", "/students/me/subjects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MyStatus fetches the lightweight status record.
func (c *Client) MyStatus(ctx context.Context, token string) (*models.StudentStatus, error) {
	var out models.StudentStatus
	if err := c.getJSON(ctx, token, "student", "/students/me/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyEnrollmentHistory lists the student's past enrollment records.
func (c *Client) MyEnrollmentHistory(ctx context.Context, token string) ([]models.EnrollmentRecord, error) {
	var out []models.EnrollmentRecord
	if err := c.getJSON(ctx, token, "student", "/students/me/enrollment-history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LookupStudent resolves a prior student number for re-enrollees.
func (c *Client) LookupStudent(ctx context.Context, token, studentNumber string) (*models.Student, error) {
	var out models.Student
	if err := c.getJSON(ctx, token, "student", "/students/lookup/"+url.PathEscape(studentNumber), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DocumentKind names one of the student upload slots.
type DocumentKind string

const (
	DocPhoto              DocumentKind = "photo"
	DocGrades             DocumentKind = "grades"
	DocVoucher            DocumentKind = "voucher"
	DocPSABirthCert       DocumentKind = "psa-birth-cert"
	DocTransferCredential DocumentKind = "transfer-credential"
	DocGoodMoral          DocumentKind = "good-moral"
	DocPaymentReceipt     DocumentKind = "payment-receipt"
)

// ValidDocumentKind reports whether kind is one of the upload slots.
func ValidDocumentKind(kind DocumentKind) bool {
	switch kind {
	case DocPhoto, DocGrades, DocVoucher, DocPSABirthCert, DocTransferCredential, DocGoodMoral, DocPaymentReceipt:
		return true
	}
	return false
}

// UploadDocument uploads a file into one of the student's document slots and
// returns the refreshed profile, payment_status included, so screens can
// update without a full reload.
func (c *Client) UploadDocument(ctx context.Context, token string, kind DocumentKind, filename string, file io.Reader) (*models.Student, error) {
	var out models.Student
	if err := c.uploadFile(ctx, token, "student", "/students/me/"+string(kind), filename, file, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
