package session

import (
	"context"
	"fmt"

	"recipe-matcher/internal/core/chat"
	"recipe-matcher/internal/infrastructure/config"
)

// Store 對話 session 儲存
// Get 找不到或已過期時回傳 common.ErrSessionNotFound
type Store interface {
	Get(ctx context.Context, id string) (chat.Conversation, error)
	Save(ctx context.Context, id string, conv chat.Conversation) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// NewStore 依設定建立 session 儲存
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Session.Store {
	case config.SessionStoreMemory, "":
		return NewMemoryStore(cfg.Session), nil
	case config.SessionStoreRedis:
		return NewRedisStore(ctx, cfg.Redis, cfg.Session.TTL)
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}
