// internal/pkg/session/manager.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ustaad-service/internal/domain/auth"
	xerrors "ustaad-service/internal/pkg/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store is the durable session record behind the Redis cache.
type Store interface {
	FindSessionByToken(ctx context.Context, token string) (*auth.Session, error)
	InvalidateSession(ctx context.Context, id int64) error
	InvalidateAllUserSessions(ctx context.Context, identityID int64) error
}

type Manager struct {
	client *redis.Client
	store  Store
	logger *zap.Logger
}

// NewManager builds a Manager. store may be nil, in which case Redis is the
// only source of sessions.
func NewManager(client *redis.Client, store Store, logger *zap.Logger) *Manager {
	return &Manager{
		client: client,
		store:  store,
		logger: logger,
	}
}

// CreateSession stores a session in Redis until it expires.
func (m *Manager) CreateSession(ctx context.Context, s *SessionData) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := m.client.Set(ctx, sessionKey(s.IdentityID, s.JTI), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in redis: %w", err)
	}
	return nil
}

// GetSession reads the session from Redis, falling back to the store and
// re-caching on a miss.
func (m *Manager) GetSession(ctx context.Context, identityID int64, jti string) (*SessionData, error) {
	data, err := m.client.Get(ctx, sessionKey(identityID, jti)).Bytes()
	if err == nil {
		var s SessionData
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session: %w", err)
		}
		return &s, nil
	}
	if !errors.Is(err, redis.Nil) {
		m.logger.Warn("redis session lookup failed, falling back to store", zap.Error(err))
	}

	if m.store == nil {
		return nil, xerrors.ErrSessionExpired
	}

	dbSession, err := m.store.FindSessionByToken(ctx, jti)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	if dbSession.IdentityID != identityID {
		return nil, fmt.Errorf("session identity mismatch")
	}

	s := &SessionData{
		JTI:            jti,
		IdentityID:     dbSession.IdentityID,
		SessionID:      dbSession.ID,
		Device:         dbSession.DeviceID.String,
		IPAddress:      dbSession.IPAddress.String,
		UserAgent:      dbSession.UserAgent.String,
		LoginAt:        dbSession.LoginAt,
		LastActivityAt: dbSession.LastActivityAt,
		ExpiresAt:      dbSession.ExpiresAt,
	}
	if err := m.CreateSession(ctx, s); err != nil {
		m.logger.Warn("failed to restore session to redis", zap.Error(err))
	}
	return s, nil
}

// InvalidateSession removes a session from Redis and revokes it in the store.
func (m *Manager) InvalidateSession(ctx context.Context, identityID int64, jti string) error {
	if err := m.client.Del(ctx, sessionKey(identityID, jti)).Err(); err != nil {
		m.logger.Warn("failed to delete session from redis", zap.Error(err))
	}

	if m.store == nil {
		return nil
	}
	dbSession, err := m.store.FindSessionByToken(ctx, jti)
	if err != nil {
		return nil
	}
	if err := m.store.InvalidateSession(ctx, dbSession.ID); err != nil {
		return fmt.Errorf("failed to invalidate DB session: %w", err)
	}
	return nil
}

// InvalidateAllUserSessions removes every session of identityID.
func (m *Manager) InvalidateAllUserSessions(ctx context.Context, identityID int64) error {
	iter := m.client.Scan(ctx, 0, fmt.Sprintf("session:%d:*", identityID), 0).Iterator()
	for iter.Next(ctx) {
		if err := m.client.Del(ctx, iter.Val()).Err(); err != nil {
			m.logger.Warn("failed to delete session", zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan sessions: %w", err)
	}

	if m.store != nil {
		if err := m.store.InvalidateAllUserSessions(ctx, identityID); err != nil {
			return fmt.Errorf("failed to invalidate DB sessions: %w", err)
		}
	}
	return nil
}

// IsTokenBlacklisted checks if a token is blacklisted
func (m *Manager) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := m.client.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return n > 0, nil
}

// BlacklistToken adds a token to the blacklist
func (m *Manager) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	return m.client.Set(ctx, blacklistKey(jti), "1", ttl).Err()
}

func sessionKey(identityID int64, jti string) string {
	return fmt.Sprintf("session:%d:%s", identityID, jti)
}

func blacklistKey(jti string) string {
	return "blacklist:" + jti
}
