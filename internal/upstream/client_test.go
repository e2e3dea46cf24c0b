package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/dbtc-edu/enrollment-portal/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, zap.NewNop(), nil), srv
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"pending","payment_status":"unpaid"}`))
	})

	_, err := client.MyStatus(context.Background(), "tok-123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestClientLoginSendsNoBearer(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"abc","role":"student"}`))
	})

	tok, err := client.Login(context.Background(), Credentials{Email: "a@b.c", Password: "secret123"})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "abc", tok.AccessToken)
}

func TestFileURL(t *testing.T) {
	client := New("http://api.test", time.Second, nil, nil)
	assert.Empty(t, client.FileURL(""))
	assert.Equal(t, "http://api.test/uploads/receipt.jpg", client.FileURL("uploads/receipt.jpg"))
	assert.Equal(t, "http://api.test/uploads/receipt.jpg", client.FileURL("/uploads/receipt.jpg"))
}

func TestLookupStudentEscapesNumber(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1}`))
	})

	_, err := client.LookupStudent(context.Background(), "tok", "2023/001")
	require.NoError(t, err)
	assert.Equal(t, "/students/lookup/2023%2F001", gotPath)
}

func TestClientTranslatesAuthFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Incorrect email or password"}`))
	})

	_, err := client.Login(context.Background(), Credentials{Email: "a@b.c", Password: "wrong"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.True(t, appErrors.Is(appErr, appErrors.ErrUnauthorized))
	assert.Equal(t, "Incorrect email or password", appErr.Message)
}

func TestClientTranslatesExpiredSession(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.MyProfile(context.Background(), "stale")
	require.Error(t, err)
	assert.True(t, appErrors.Is(appErrors.FromError(err), appErrors.ErrSessionExpired))
}

func TestClientTranslatesForbiddenAndRateLimit(t *testing.T) {
	status := http.StatusForbidden
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})

	_, err := client.MyProfile(context.Background(), "tok")
	assert.True(t, appErrors.Is(appErrors.FromError(err), appErrors.ErrAccessDenied))

	status = http.StatusTooManyRequests
	_, err = client.MyProfile(context.Background(), "tok")
	assert.True(t, appErrors.Is(appErrors.FromError(err), appErrors.ErrRateLimited))
}

func TestClientTranslatesNetworkFailure(t *testing.T) {
	client := New("http://127.0.0.1:1", 500*time.Millisecond, zap.NewNop(), nil)

	_, err := client.MyProfile(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, appErrors.Is(appErrors.FromError(err), appErrors.ErrNetwork))
}

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "string detail",
			body: `{"detail":"Student not found"}`,
			want: "Student not found",
		},
		{
			name: "field error list joined",
			body: `{"detail":[{"msg":"field required"},{"msg":"value is not a valid date"}]}`,
			want: "field required, value is not a valid date",
		},
		{
			name: "empty body falls back",
			body: ``,
			want: "fallback",
		},
		{
			name: "plain text falls back",
			body: `Internal Server Error`,
			want: "fallback",
		},
		{
			name: "empty detail list falls back",
			body: `{"detail":[]}`,
			want: "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractMessage([]byte(tt.body), "fallback"))
		})
	}
}

func TestClientValidationMessageSurfaces(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":[{"msg":"birthday is required"}]}`))
	})

	_, err := client.MyProfile(context.Background(), "tok")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.True(t, appErrors.Is(appErr, appErrors.ErrValidation))
	assert.Equal(t, "birthday is required", appErr.Message)
}
