package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
)

// identityAPI is the slice of the upstream client the manager needs.
type identityAPI interface {
	Me(ctx context.Context, token string) (*models.Identity, error)
}

// Listener is notified synchronously on session lifecycle changes. The
// notification poller hangs off these hooks so its goroutine starts and stops
// exactly with the session.
type Listener interface {
	SessionStarted(sess *models.Session)
	SessionEnded(sess *models.Session)
}

// Manager creates, restores, and destroys sessions.
type Manager struct {
	store  Store
	api    identityAPI
	codec  *CookieCodec
	logger *zap.Logger

	mu        sync.Mutex
	listeners []Listener
}

// NewManager wires the session manager.
func NewManager(store Store, api identityAPI, codec *CookieCodec, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, api: api, codec: codec, logger: logger}
}

// Subscribe registers a lifecycle listener.
func (m *Manager) Subscribe(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

func (m *Manager) notifyStarted(sess *models.Session) {
	m.mu.Lock()
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()
	for _, l := range listeners {
		l.SessionStarted(sess)
	}
}

func (m *Manager) notifyEnded(sess *models.Session) {
	m.mu.Lock()
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()
	for _, l := range listeners {
		l.SessionEnded(sess)
	}
}

// Login validates a freshly issued token against the identity endpoint,
// persists the session, and returns it with its signed cookie value.
func (m *Manager) Login(ctx context.Context, token string) (*models.Session, string, error) {
	identity, err := m.api.Me(ctx, token)
	if err != nil {
		return nil, "", err
	}

	role, err := models.ParseRole(identity.Role)
	if err != nil {
		return nil, "", err
	}

	sess := &models.Session{
		ID:          uuid.NewString(),
		UserID:      identity.ID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		Role:        role,
		Token:       token,
		CreatedAt:   time.Now().UTC(),
	}

	if err := m.store.Save(ctx, sess); err != nil {
		return nil, "", err
	}

	cookie, err := m.codec.Encode(sess.ID)
	if err != nil {
		// Keep the store clean if the cookie cannot be issued.
		_ = m.store.Delete(ctx, sess.ID)
		return nil, "", err
	}

	m.notifyStarted(sess)
	return sess, cookie, nil
}

// Restore resolves a browser cookie to a live session, revalidating the
// bearer token upstream. Any failure, an invalid token or an unreachable
// upstream alike, clears the persisted record: the user re-authenticates.
func (m *Manager) Restore(ctx context.Context, cookieValue string) (*models.Session, error) {
	if cookieValue == "" {
		return nil, ErrNotFound
	}

	id, err := m.codec.Decode(cookieValue)
	if err != nil {
		return nil, ErrNotFound
	}

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	identity, err := m.api.Me(ctx, sess.Token)
	if err != nil {
		m.logger.Info("session revalidation failed, clearing session",
			zap.String("session_id", sess.ID), zap.Error(err))
		_ = m.store.Delete(ctx, sess.ID)
		m.notifyEnded(sess)
		return nil, ErrNotFound
	}

	// Identity fields can drift (display name appears once the application
	// form is first saved); refresh them on every restore.
	changed := sess.Email != identity.Email || sess.DisplayName != identity.DisplayName
	sess.Email = identity.Email
	sess.DisplayName = identity.DisplayName
	if changed {
		if err := m.store.Save(ctx, sess); err != nil {
			m.logger.Warn("failed to refresh session record", zap.Error(err))
		}
	}

	// A session surviving a process restart needs its poller back.
	// SessionStarted is idempotent, so steady-state restores are cheap.
	m.notifyStarted(sess)
	return sess, nil
}

// Logout deletes the session record. The per-user avatar survives on purpose;
// it is a cosmetic cache keyed by user id.
func (m *Manager) Logout(ctx context.Context, sess *models.Session) error {
	if sess == nil {
		return nil
	}
	if err := m.store.Delete(ctx, sess.ID); err != nil {
		return err
	}
	m.notifyEnded(sess)
	return nil
}

// Store exposes the underlying store for avatar and preference access.
func (m *Manager) Store() Store {
	return m.store
}
