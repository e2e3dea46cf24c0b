package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
	"github.com/dbtc-edu/enrollment-portal/internal/upstream"
	"github.com/dbtc-edu/enrollment-portal/pkg/render"
)

type fakeRegistrarAPI struct {
	student    *models.Student
	offered    []models.Subject
	enrolled   []models.EnrolledSubject
	bulkReq    *models.BulkAssignRequest
	assignReqs []models.AssignSubjectRequest
}

func (f *fakeRegistrarAPI) ApprovedStudents(ctx context.Context, token string, filter upstream.ApprovedStudentFilter) (*models.StudentList, error) {
	return &models.StudentList{}, nil
}

func (f *fakeRegistrarAPI) ClassList(ctx context.Context, token, strand, gradeLevel, semester string) (*models.StudentList, error) {
	return &models.StudentList{}, nil
}

func (f *fakeRegistrarAPI) CompleteInfo(ctx context.Context, token string, studentID int) (*models.Student, error) {
	return f.student, nil
}

func (f *fakeRegistrarAPI) DownloadStudentFiles(ctx context.Context, token string, studentID int) ([]byte, string, error) {
	return nil, "", nil
}

func (f *fakeRegistrarAPI) Subjects(ctx context.Context, token string, query url.Values) ([]models.Subject, error) {
	return f.offered, nil
}

func (f *fakeRegistrarAPI) CreateSubject(ctx context.Context, token string, req upstream.SubjectRequest) (*models.Subject, error) {
	return &models.Subject{}, nil
}

func (f *fakeRegistrarAPI) UpdateSubject(ctx context.Context, token string, id int, req upstream.SubjectRequest) (*models.Subject, error) {
	return &models.Subject{}, nil
}

func (f *fakeRegistrarAPI) DeleteSubject(ctx context.Context, token string, id int) error {
	return nil
}

func (f *fakeRegistrarAPI) AssignSubject(ctx context.Context, token string, req models.AssignSubjectRequest) error {
	f.assignReqs = append(f.assignReqs, req)
	return nil
}

func (f *fakeRegistrarAPI) UnassignSubject(ctx context.Context, token string, req models.AssignSubjectRequest) error {
	return nil
}

func (f *fakeRegistrarAPI) BulkAssignSubjects(ctx context.Context, token string, req models.BulkAssignRequest) error {
	f.bulkReq = &req
	return nil
}

func (f *fakeRegistrarAPI) EnrolledSubjects(ctx context.Context, token string, studentID int) ([]models.EnrolledSubject, error) {
	return f.enrolled, nil
}

func (f *fakeRegistrarAPI) PendingPayments(ctx context.Context, token string) (*models.StudentList, error) {
	return &models.StudentList{}, nil
}

func (f *fakeRegistrarAPI) VerifyPayment(ctx context.Context, token string, studentID int) error {
	return nil
}

func (f *fakeRegistrarAPI) RejectPayment(ctx context.Context, token string, studentID int, reason string) error {
	return nil
}

func (f *fakeRegistrarAPI) UpdateTransfereeCredits(ctx context.Context, token string, studentID int, subjects []models.TransfereeSubject) error {
	return nil
}

func (f *fakeRegistrarAPI) FileURL(path string) string {
	if path == "" {
		return ""
	}
	return "http://api.test/" + path
}

func subjectFixture(id int, code string, enrolled, capacity int) models.Subject {
	return models.Subject{
		ID:            id,
		SubjectCode:   code,
		SubjectName:   code,
		MaxStudents:   capacity,
		EnrolledCount: enrolled,
	}
}

func TestSplitEligible(t *testing.T) {
	offered := []models.Subject{
		subjectFixture(1, "GM-101", 10, 40),
		subjectFixture(2, "OC-101", 40, 40),
		subjectFixture(3, "PE-101", 5, 40),
		subjectFixture(4, "EN-101", 0, 40),
	}
	enrolled := []models.EnrolledSubject{{ID: 3, SubjectCode: "PE-101"}}

	eligible, full := splitEligible(offered, enrolled)

	require.Len(t, eligible, 2)
	assert.Equal(t, 1, eligible[0].ID)
	assert.Equal(t, 4, eligible[1].ID)
	require.Len(t, full, 1)
	assert.Equal(t, 2, full[0].ID)
}

func registrarTestContext(t *testing.T, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, target, nil)
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	c.Set(render.CtxSession, &models.Session{ID: "s1", UserID: 9, Token: "tok", Role: models.RoleRegistrar})
	return c, rec
}

func TestBulkAssignSubmitsOnlyRemainingEligible(t *testing.T) {
	api := &fakeRegistrarAPI{
		student: &models.Student{ID: 42, Strand: "STEM", GradeLevelToEnroll: "Grade 11", Semester: "1st Semester"},
		offered: []models.Subject{
			subjectFixture(1, "GM-101", 0, 40),
			subjectFixture(2, "OC-101", 0, 40),
			subjectFixture(3, "PE-101", 0, 40),
			subjectFixture(4, "EN-101", 40, 40),
			subjectFixture(5, "FI-101", 0, 40),
		},
		enrolled: []models.EnrolledSubject{{ID: 1}, {ID: 5}},
	}
	h := NewRegistrarHandler(api, nil)

	c, rec := registrarTestContext(t, "/registrar/students/42/subjects/bulk-assign")
	h.BulkAssign(c)
	c.Writer.WriteHeaderNow()

	require.NotNil(t, api.bulkReq)
	assert.Equal(t, 42, api.bulkReq.StudentID)
	assert.Equal(t, []int{2, 3}, api.bulkReq.SubjectIDs)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestBulkAssignNothingLeft(t *testing.T) {
	api := &fakeRegistrarAPI{
		student:  &models.Student{ID: 42},
		offered:  []models.Subject{subjectFixture(1, "GM-101", 0, 40)},
		enrolled: []models.EnrolledSubject{{ID: 1}},
	}
	h := NewRegistrarHandler(api, nil)

	c, rec := registrarTestContext(t, "/registrar/students/42/subjects/bulk-assign")
	h.BulkAssign(c)
	c.Writer.WriteHeaderNow()

	assert.Nil(t, api.bulkReq, "no request should reach the upstream")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}
