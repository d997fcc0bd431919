package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"recipe-matcher/internal/core/chat"
	"recipe-matcher/internal/infrastructure/config"
	"recipe-matcher/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	storeRedis = "redis"

	defaultKeyPrefix = "chat:session:"
	pingTimeout      = 5 * time.Second
)

// RedisStore 以 Redis 保存 session，值為 JSON，存活時間交給 Redis 過期
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore 連線 Redis 並建立 session 儲存
func NewRedisStore(ctx context.Context, cfg config.RedisConfig, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 測試連接
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Session 儲存已初始化",
		zap.String("類型", storeRedis),
		zap.String("addr", cfg.Addr),
		zap.Duration("存活時間", ttl),
	)

	return newRedisStore(client, cfg.KeyPrefix, ttl), nil
}

func newRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Get 取得 session 並延長存活時間
func (s *RedisStore) Get(ctx context.Context, id string) (chat.Conversation, error) {
	key := s.key(id)

	var get *redis.StringCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.Get(ctx, key)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return chat.Conversation{}, common.ErrSessionStoreError.Wrap(fmt.Errorf("failed to get session: %w", err))
	}

	data, err := get.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			common.LogSessionMiss(storeRedis, id)
			return chat.Conversation{}, common.ErrSessionNotFound
		}
		return chat.Conversation{}, common.ErrSessionStoreError.Wrap(fmt.Errorf("failed to get session: %w", err))
	}

	var conv chat.Conversation
	if err := common.ParseJSONBytes(data, &conv); err != nil {
		return chat.Conversation{}, common.ErrSessionStoreError.Wrap(fmt.Errorf("failed to unmarshal session: %w", err))
	}

	common.LogSessionHit(storeRedis, id)
	return conv, nil
}

// Save 序列化並寫入 session
func (s *RedisStore) Save(ctx context.Context, id string, conv chat.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return common.ErrSessionStoreError.Wrap(fmt.Errorf("failed to marshal session: %w", err))
	}

	if err := s.client.Set(ctx, s.key(id), data, s.ttl).Err(); err != nil {
		return common.ErrSessionStoreError.Wrap(fmt.Errorf("failed to set session: %w", err))
	}
	return nil
}

// Delete 刪除 session
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return common.ErrSessionStoreError.Wrap(fmt.Errorf("failed to delete session: %w", err))
	}
	return nil
}

// Ping 檢查 Redis 連線
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// key 生成 Redis 鍵
func (s *RedisStore) key(id string) string {
	return s.prefix + id
}
