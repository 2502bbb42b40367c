package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/BenNguyen1412/Do-An-Tot-Nghiep/internal/domain"
	"github.com/BenNguyen1412/Do-An-Tot-Nghiep/pkg/redis"
)

// Key layout:
//
//	session:{id}            -> JSON session, TTL = ExpiresAt
//	session:token:{token}   -> session id, TTL = ExpiresAt
//	session:user:{userID}   -> set of session ids
type RedisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository creates a new RedisSessionRepository
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func sessionKey(id string) string         { return "session:" + id }
func sessionTokenKey(token string) string { return "session:token:" + token }
func sessionUserKey(userID int64) string  { return fmt.Sprintf("session:user:%d", userID) }

// Create stores a session with TTL derived from its expiry
func (r *RedisSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(session.ID), data, ttl).Err(); err != nil {
		return err
	}
	if err := r.client.Set(ctx, sessionTokenKey(session.RefreshToken), session.ID, ttl).Err(); err != nil {
		return err
	}
	return r.client.SAdd(ctx, sessionUserKey(session.UserID), session.ID).Err()
}

// GetByRefreshToken retrieves a session by refresh token
func (r *RedisSessionRepository) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	id, err := r.client.Get(ctx, sessionTokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return r.getByID(ctx, id)
}

func (r *RedisSessionRepository) getByID(ctx context.Context, id string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	session := &domain.Session{}
	if err := json.Unmarshal([]byte(data), session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return session, nil
}

// Delete removes a session by ID
func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	session, err := r.getByID(ctx, id)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	if err := r.client.Del(ctx, sessionKey(id), sessionTokenKey(session.RefreshToken)).Err(); err != nil {
		return err
	}
	return r.client.SRem(ctx, sessionUserKey(session.UserID), id).Err()
}

// DeleteByUserID removes every session belonging to the user
func (r *RedisSessionRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	ids, err := r.client.SMembers(ctx, sessionUserKey(userID)).Result()
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := r.Delete(ctx, id); err != nil {
			return err
		}
	}
	return r.client.Del(ctx, sessionUserKey(userID)).Err()
}
