// Package notify keeps the unread-notification badge fresh. Each live
// session owns one polling goroutine, started when the session appears and
// stopped the moment it is cleared, so no timers leak across logout/login
// cycles.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
)

type notificationAPI interface {
	NotificationUnreadCount(ctx context.Context, token string) (int, error)
	Notifications(ctx context.Context, token string) (*models.NotificationList, error)
	MarkNotificationRead(ctx context.Context, token string, id int) error
	MarkAllNotificationsRead(ctx context.Context, token string) error
}

type pollState struct {
	token  string
	cancel context.CancelFunc

	mu    sync.Mutex
	count int
}

func (p *pollState) setCount(n int) {
	p.mu.Lock()
	if n < 0 {
		n = 0
	}
	p.count = n
	p.mu.Unlock()
}

func (p *pollState) addCount(delta int) {
	p.mu.Lock()
	p.count += delta
	if p.count < 0 {
		p.count = 0
	}
	p.mu.Unlock()
}

func (p *pollState) getCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// Service polls unread counts per session and mediates read-state mutations.
type Service struct {
	api      notificationAPI
	interval time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*pollState
	wg       sync.WaitGroup
}

// NewService builds the poller service.
func NewService(api notificationAPI, interval time.Duration, logger *zap.Logger) *Service {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		api:      api,
		interval: interval,
		logger:   logger,
		sessions: make(map[string]*pollState),
	}
}

// SessionStarted implements session.Listener: begin polling for a session.
func (s *Service) SessionStarted(sess *models.Session) {
	s.mu.Lock()
	if _, exists := s.sessions[sess.ID]; exists {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	state := &pollState{token: sess.Token, cancel: cancel}
	s.sessions[sess.ID] = state
	s.wg.Add(1)
	s.mu.Unlock()

	go s.poll(ctx, sess.ID, state)
}

// SessionEnded implements session.Listener: stop polling and forget state.
func (s *Service) SessionEnded(sess *models.Session) {
	s.mu.Lock()
	state, exists := s.sessions[sess.ID]
	if exists {
		delete(s.sessions, sess.ID)
	}
	s.mu.Unlock()
	if exists {
		state.cancel()
	}
}

// Shutdown stops every poller and waits for them to exit.
func (s *Service) Shutdown() {
	s.mu.Lock()
	for id, state := range s.sessions {
		state.cancel()
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Service) poll(ctx context.Context, sessionID string, state *pollState) {
	defer s.wg.Done()

	s.refresh(ctx, state)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx, state)
		}
	}
}

// refresh pulls the authoritative count. Failures are logged and swallowed;
// the next tick retries, which also reconciles any optimistic drift left by
// a failed mark-read call.
func (s *Service) refresh(ctx context.Context, state *pollState) {
	count, err := s.api.NotificationUnreadCount(ctx, state.token)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Debug("unread count poll failed", zap.Error(err))
		}
		return
	}
	state.setCount(count)
}

// UnreadCount returns the latest known count for a session's badge.
func (s *Service) UnreadCount(sessionID string) int {
	s.mu.Lock()
	state, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return 0
	}
	return state.getCount()
}

// List fetches the full recent list on demand, refreshing the badge count
// with the authoritative value that rides along.
func (s *Service) List(ctx context.Context, sess *models.Session) (*models.NotificationList, error) {
	list, err := s.api.Notifications(ctx, sess.Token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	state, ok := s.sessions[sess.ID]
	s.mu.Unlock()
	if ok {
		state.setCount(list.UnreadCount)
	}
	return list, nil
}

// MarkRead optimistically decrements the badge and tells the upstream. A
// failed call is not rolled back; the next poll reconciles the count.
func (s *Service) MarkRead(ctx context.Context, sess *models.Session, id int) {
	s.mu.Lock()
	state, ok := s.sessions[sess.ID]
	s.mu.Unlock()
	if ok {
		state.addCount(-1)
	}

	if err := s.api.MarkNotificationRead(ctx, sess.Token, id); err != nil {
		s.logger.Warn("mark notification read failed", zap.Int("id", id), zap.Error(err))
	}
}

// MarkAllRead zeroes the badge and tells the upstream. Safe to call twice.
func (s *Service) MarkAllRead(ctx context.Context, sess *models.Session) {
	s.mu.Lock()
	state, ok := s.sessions[sess.ID]
	s.mu.Unlock()
	if ok {
		state.setCount(0)
	}

	if err := s.api.MarkAllNotificationsRead(ctx, sess.Token); err != nil {
		s.logger.Warn("mark all notifications read failed", zap.Error(err))
	}
}
