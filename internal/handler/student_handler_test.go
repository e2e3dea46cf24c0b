package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
	"github.com/dbtc-edu/enrollment-portal/internal/upstream"
	"github.com/dbtc-edu/enrollment-portal/pkg/render"
)

type fakeStudentAPI struct {
	profile     *models.Student
	uploadKinds []upstream.DocumentKind
}

func (f *fakeStudentAPI) MyProfile(ctx context.Context, token string) (*models.Student, error) {
	return f.profile, nil
}

func (f *fakeStudentAPI) UpdateMyProfile(ctx context.Context, token string, fields map[string]interface{}) (*models.Student, error) {
	return f.profile, nil
}

func (f *fakeStudentAPI) MySubjects(ctx context.Context, token string) ([]models.EnrolledSubject, error) {
	return nil, nil
}

func (f *fakeStudentAPI) MyEnrollmentHistory(ctx context.Context, token string) ([]models.EnrollmentRecord, error) {
	return nil, nil
}

func (f *fakeStudentAPI) LookupStudent(ctx context.Context, token, studentNumber string) (*models.Student, error) {
	return f.profile, nil
}

func (f *fakeStudentAPI) UploadDocument(ctx context.Context, token string, kind upstream.DocumentKind, filename string, file io.Reader) (*models.Student, error) {
	f.uploadKinds = append(f.uploadKinds, kind)
	return f.profile, nil
}

func (f *fakeStudentAPI) Strands(ctx context.Context, token string) ([]models.Strand, error) {
	return nil, nil
}

func (f *fakeStudentAPI) Provinces(ctx context.Context, token string) ([]string, error) {
	return nil, nil
}

func (f *fakeStudentAPI) FileURL(path string) string {
	if path == "" {
		return ""
	}
	return "http://api.test/" + path
}

type noopAvatarStore struct{}

func (noopAvatarStore) SetAvatar(ctx context.Context, userID int, dataURL string) error { return nil }
func (noopAvatarStore) ClearAvatar(ctx context.Context, userID int) error               { return nil }
func (noopAvatarStore) SetSidebarCollapsed(ctx context.Context, userID int, collapsed bool) error {
	return nil
}

func uploadContext(t *testing.T, kind, contentType string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="document.pdf"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/student/documents/"+kind, body)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	c.Params = gin.Params{{Key: "kind", Value: kind}}
	c.Set(render.CtxSession, &models.Session{ID: "s1", UserID: 7, Token: "tok", Role: models.RoleStudent})
	return c, rec
}

func TestUploadDocumentAcceptsPDFForScannedSlots(t *testing.T) {
	api := &fakeStudentAPI{profile: &models.Student{ID: 7}}
	h := NewStudentHandler(api, noopAvatarStore{}, nil)

	c, rec := uploadContext(t, "transfer-credential", "application/pdf")
	h.UploadDocument(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, []upstream.DocumentKind{upstream.DocTransferCredential}, api.uploadKinds)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/student/profile", rec.Header().Get("Location"))
}

func TestUploadDocumentRejectsPDFReceipt(t *testing.T) {
	api := &fakeStudentAPI{profile: &models.Student{ID: 7}}
	h := NewStudentHandler(api, noopAvatarStore{}, nil)

	c, rec := uploadContext(t, "payment-receipt", "application/pdf")
	h.UploadDocument(c)
	c.Writer.WriteHeaderNow()

	assert.Empty(t, api.uploadKinds, "a rejected file must not reach the upstream")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/student/dashboard", rec.Header().Get("Location"))
}
