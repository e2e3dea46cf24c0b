package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
	appErrors "github.com/dbtc-edu/enrollment-portal/pkg/errors"
)

type memoryStore struct {
	sessions map[string]*models.Session
	avatars  map[int]string
	sidebar  map[int]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		sessions: make(map[string]*models.Session),
		avatars:  make(map[int]string),
		sidebar:  make(map[int]bool),
	}
}

func (m *memoryStore) Save(ctx context.Context, sess *models.Session) error {
	copied := *sess
	m.sessions[sess.ID] = &copied
	return nil
}

func (m *memoryStore) Get(ctx context.Context, id string) (*models.Session, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *sess
	return &copied, nil
}

func (m *memoryStore) Delete(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *memoryStore) SetAvatar(ctx context.Context, userID int, dataURL string) error {
	m.avatars[userID] = dataURL
	return nil
}

func (m *memoryStore) GetAvatar(ctx context.Context, userID int) (string, error) {
	return m.avatars[userID], nil
}

func (m *memoryStore) ClearAvatar(ctx context.Context, userID int) error {
	delete(m.avatars, userID)
	return nil
}

func (m *memoryStore) SetSidebarCollapsed(ctx context.Context, userID int, collapsed bool) error {
	m.sidebar[userID] = collapsed
	return nil
}

func (m *memoryStore) SidebarCollapsed(ctx context.Context, userID int) (bool, error) {
	return m.sidebar[userID], nil
}

type mockIdentityAPI struct {
	identity *models.Identity
	err      error
	calls    int
}

func (m *mockIdentityAPI) Me(ctx context.Context, token string) (*models.Identity, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.identity, nil
}

type recordingListener struct {
	started []string
	ended   []string
}

func (l *recordingListener) SessionStarted(sess *models.Session) {
	l.started = append(l.started, sess.ID)
}

func (l *recordingListener) SessionEnded(sess *models.Session) {
	l.ended = append(l.ended, sess.ID)
}

func newTestManager(api identityAPI) (*Manager, *memoryStore) {
	store := newMemoryStore()
	codec := NewCookieCodec("test-secret", time.Hour)
	return NewManager(store, api, codec, nil), store
}

func TestManagerLoginCreatesSession(t *testing.T) {
	api := &mockIdentityAPI{identity: &models.Identity{ID: 7, Email: "ana@dbtc.edu", Role: "student", DisplayName: "Ana Reyes"}}
	mgr, store := newTestManager(api)

	listener := &recordingListener{}
	mgr.Subscribe(listener)

	sess, cookie, err := mgr.Login(context.Background(), "tok-7")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, models.RoleStudent, sess.Role)
	assert.Equal(t, "tok-7", sess.Token)
	assert.NotEmpty(t, cookie)
	assert.Len(t, store.sessions, 1)
	assert.Equal(t, []string{sess.ID}, listener.started)
}

func TestManagerLoginRejectsUnknownRole(t *testing.T) {
	api := &mockIdentityAPI{identity: &models.Identity{ID: 1, Email: "x@dbtc.edu", Role: "superuser"}}
	mgr, store := newTestManager(api)

	_, _, err := mgr.Login(context.Background(), "tok")
	require.Error(t, err)
	assert.Empty(t, store.sessions)
}

func TestManagerRestoreRoundTrip(t *testing.T) {
	api := &mockIdentityAPI{identity: &models.Identity{ID: 7, Email: "ana@dbtc.edu", Role: "student"}}
	mgr, _ := newTestManager(api)

	sess, cookie, err := mgr.Login(context.Background(), "tok-7")
	require.NoError(t, err)

	restored, err := mgr.Restore(context.Background(), cookie)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, restored.ID)
	assert.Equal(t, "tok-7", restored.Token)
}

func TestManagerRestoreRefreshesIdentity(t *testing.T) {
	api := &mockIdentityAPI{identity: &models.Identity{ID: 7, Email: "ana@dbtc.edu", Role: "student"}}
	mgr, store := newTestManager(api)

	_, cookie, err := mgr.Login(context.Background(), "tok-7")
	require.NoError(t, err)

	// The display name appears upstream once the application form is saved.
	api.identity = &models.Identity{ID: 7, Email: "ana@dbtc.edu", Role: "student", DisplayName: "Ana Reyes"}

	restored, err := mgr.Restore(context.Background(), cookie)
	require.NoError(t, err)
	assert.Equal(t, "Ana Reyes", restored.DisplayName)

	persisted, err := store.Get(context.Background(), restored.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Reyes", persisted.DisplayName)
}

func TestManagerRestoreStartsPoller(t *testing.T) {
	api := &mockIdentityAPI{identity: &models.Identity{ID: 7, Email: "ana@dbtc.edu", Role: "student"}}
	store := newMemoryStore()
	codec := NewCookieCodec("test-secret", time.Hour)
	mgr := NewManager(store, api, codec, nil)

	listener := &recordingListener{}
	mgr.Subscribe(listener)

	// Seed the store directly: a session written before a process restart.
	sess := &models.Session{ID: "restart-1", UserID: 7, Email: "ana@dbtc.edu", Role: models.RoleStudent, Token: "tok-7"}
	require.NoError(t, store.Save(context.Background(), sess))
	cookie, err := codec.Encode(sess.ID)
	require.NoError(t, err)

	restored, err := mgr.Restore(context.Background(), cookie)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, restored.ID)
	assert.Equal(t, []string{sess.ID}, listener.started)
}

func TestManagerRestoreClearsOnRevalidationFailure(t *testing.T) {
	api := &mockIdentityAPI{identity: &models.Identity{ID: 7, Email: "ana@dbtc.edu", Role: "student"}}
	mgr, store := newTestManager(api)

	listener := &recordingListener{}
	mgr.Subscribe(listener)

	sess, cookie, err := mgr.Login(context.Background(), "tok-7")
	require.NoError(t, err)

	api.err = appErrors.Clone(appErrors.ErrSessionExpired, "")

	_, err = mgr.Restore(context.Background(), cookie)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.sessions)
	assert.Equal(t, []string{sess.ID}, listener.ended)

	// The cleared record stays gone even if the upstream recovers.
	api.err = nil
	_, err = mgr.Restore(context.Background(), cookie)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagerRestoreRejectsTamperedCookie(t *testing.T) {
	api := &mockIdentityAPI{identity: &models.Identity{ID: 7, Email: "ana@dbtc.edu", Role: "student"}}
	mgr, _ := newTestManager(api)

	_, cookie, err := mgr.Login(context.Background(), "tok-7")
	require.NoError(t, err)

	_, err = mgr.Restore(context.Background(), cookie+"tampered")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, api.calls, "a bad signature must not reach the upstream")
}

func TestManagerLogoutKeepsAvatar(t *testing.T) {
	api := &mockIdentityAPI{identity: &models.Identity{ID: 7, Email: "ana@dbtc.edu", Role: "student"}}
	mgr, store := newTestManager(api)

	sess, _, err := mgr.Login(context.Background(), "tok-7")
	require.NoError(t, err)
	require.NoError(t, store.SetAvatar(context.Background(), sess.UserID, "data:image/png;base64,xx"))

	require.NoError(t, mgr.Logout(context.Background(), sess))
	assert.Empty(t, store.sessions)

	avatar, err := store.GetAvatar(context.Background(), sess.UserID)
	require.NoError(t, err)
	assert.NotEmpty(t, avatar)
}
