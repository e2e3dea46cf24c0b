// Package session owns the portal's durable browser state: the session
// record carrying the upstream bearer token, the per-user avatar cache, and
// small UI preferences. Everything lives in Redis; the browser only holds a
// signed cookie naming its session.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
	"github.com/dbtc-edu/enrollment-portal/pkg/config"
)

// ErrNotFound is returned when a session id has no record behind it.
var ErrNotFound = errors.New("session not found")

// Store persists sessions and the cosmetic per-user extras.
type Store interface {
	Save(ctx context.Context, sess *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error

	SetAvatar(ctx context.Context, userID int, dataURL string) error
	GetAvatar(ctx context.Context, userID int) (string, error)
	ClearAvatar(ctx context.Context, userID int) error

	SetSidebarCollapsed(ctx context.Context, userID int, collapsed bool) error
	SidebarCollapsed(ctx context.Context, userID int) (bool, error)
}

// RedisStore is the production Store.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis returns a connected RedisStore.
func NewRedis(cfg config.RedisConfig, ttl time.Duration) (*RedisStore, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// NewRedisWithClient wraps an existing client; used by tests.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string { return "session:" + id }

// Avatar and preference keys are per user, not per session, so they survive
// logout/login cycles the way the original browser storage did.
func avatarKey(userID int) string  { return "avatar:" + strconv.Itoa(userID) }
func sidebarKey(userID int) string { return "pref:sidebar:" + strconv.Itoa(userID) }

func (s *RedisStore) Save(ctx context.Context, sess *models.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(sess.ID), raw, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	sess := &models.Session{}
	if err := json.Unmarshal(raw, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}

func (s *RedisStore) SetAvatar(ctx context.Context, userID int, dataURL string) error {
	return s.client.Set(ctx, avatarKey(userID), dataURL, 0).Err()
}

func (s *RedisStore) GetAvatar(ctx context.Context, userID int) (string, error) {
	raw, err := s.client.Get(ctx, avatarKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return raw, err
}

func (s *RedisStore) ClearAvatar(ctx context.Context, userID int) error {
	return s.client.Del(ctx, avatarKey(userID)).Err()
}

func (s *RedisStore) SetSidebarCollapsed(ctx context.Context, userID int, collapsed bool) error {
	return s.client.Set(ctx, sidebarKey(userID), strconv.FormatBool(collapsed), 0).Err()
}

func (s *RedisStore) SidebarCollapsed(ctx context.Context, userID int) (bool, error) {
	raw, err := s.client.Get(ctx, sidebarKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	collapsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, nil
	}
	return collapsed, nil
}
