// Package drafts keeps session-scoped resume drafts and drives the
// upload, chat-edit, preview and convert workflow over them.
package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jonathan/resuai/internal/config"
	"github.com/jonathan/resuai/internal/portfolio"
	"github.com/jonathan/resuai/internal/types"
)

const keyPrefix = "resuai:"

// Store keeps one draft per user.
type Store interface {
	// GetDraft returns nil, nil when the user has no draft.
	GetDraft(ctx context.Context, userID uuid.UUID) (*types.ResumeDraft, error)
	PutDraft(ctx context.Context, userID uuid.UUID, draft *types.ResumeDraft) error
	DeleteDraft(ctx context.Context, userID uuid.UUID) error
}

// redisKV is the subset of the Redis client the store uses.
type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisStore keeps drafts and portfolio editors in Redis with a sliding TTL.
// It implements both Store and portfolio.EditorStore.
type RedisStore struct {
	kv     redisKV
	closer func() error
	ttl    time.Duration
}

var _ portfolio.EditorStore = (*RedisStore)(nil)

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	store := &RedisStore{kv: client, closer: client.Close, ttl: ttl}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return store, nil
}

// Ping checks that Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.kv.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer()
}

func draftKey(userID uuid.UUID) string {
	return keyPrefix + "draft:" + userID.String()
}

func editorKey(userID uuid.UUID) string {
	return keyPrefix + "editor:" + userID.String()
}

func (s *RedisStore) GetDraft(ctx context.Context, userID uuid.UUID) (*types.ResumeDraft, error) {
	var draft types.ResumeDraft
	found, err := s.get(ctx, draftKey(userID), &draft)
	if err != nil || !found {
		return nil, err
	}
	return &draft, nil
}

func (s *RedisStore) PutDraft(ctx context.Context, userID uuid.UUID, draft *types.ResumeDraft) error {
	return s.put(ctx, draftKey(userID), draft)
}

func (s *RedisStore) DeleteDraft(ctx context.Context, userID uuid.UUID) error {
	return s.del(ctx, draftKey(userID))
}

func (s *RedisStore) GetEditor(ctx context.Context, userID uuid.UUID) (*portfolio.Editor, error) {
	var e portfolio.Editor
	found, err := s.get(ctx, editorKey(userID), &e)
	if err != nil || !found {
		return nil, err
	}
	return &e, nil
}

func (s *RedisStore) PutEditor(ctx context.Context, e *portfolio.Editor) error {
	return s.put(ctx, editorKey(e.UserID), e)
}

func (s *RedisStore) DeleteEditor(ctx context.Context, userID uuid.UUID) error {
	return s.del(ctx, editorKey(userID))
}

func (s *RedisStore) get(ctx context.Context, key string, target any) (bool, error) {
	raw, err := s.kv.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *RedisStore) put(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) del(ctx context.Context, key string) error {
	if err := s.kv.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
