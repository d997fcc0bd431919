package session

import (
	"context"
	"sync"
	"time"

	"recipe-matcher/internal/core/chat"
	"recipe-matcher/internal/infrastructure/config"
	"recipe-matcher/internal/pkg/common"

	"go.uber.org/zap"
)

const storeMemory = "memory"

// MemoryStore 行程內的 session 儲存，過期項目由背景協程定期清理
type MemoryStore struct {
	config config.SessionConfig
	mu     sync.RWMutex
	store  map[string]entry
	stats  storeStats
	now    func() time.Time
	done   chan struct{}
	once   sync.Once
}

// entry session 條目
type entry struct {
	conv        chat.Conversation
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// storeStats 統計
type storeStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// Stats 儲存狀態快照
type Stats struct {
	Size      int   `json:"size"`
	MaxSize   int   `json:"max_size"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// NewMemoryStore 創建記憶體 session 儲存
func NewMemoryStore(cfg config.SessionConfig) *MemoryStore {
	m := &MemoryStore{
		config: cfg,
		store:  make(map[string]entry),
		now:    time.Now,
		done:   make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go m.startCleanup()
	}

	common.LogInfo("Session 儲存已初始化",
		zap.String("類型", storeMemory),
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
		zap.Duration("清理間隔", cfg.CleanupInterval),
	)

	return m
}

// Get 取得 session，讀取會延長存活時間
func (m *MemoryStore) Get(ctx context.Context, id string) (chat.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.store[id]
	if !ok {
		m.stats.misses++
		common.LogSessionMiss(storeMemory, id)
		return chat.Conversation{}, common.ErrSessionNotFound
	}

	now := m.now()
	if now.After(e.expiresAt) {
		delete(m.store, id)
		m.stats.evictions++
		m.stats.misses++
		common.LogSessionMiss(storeMemory, id)
		return chat.Conversation{}, common.ErrSessionNotFound
	}

	e.lastAccess = now
	e.accessCount++
	e.expiresAt = now.Add(m.config.TTL)
	m.store[id] = e
	m.stats.hits++

	common.LogSessionHit(storeMemory, id)
	return e.conv, nil
}

// Save 儲存 session，容量已滿時先清理過期項目再淘汰最少使用者
func (m *MemoryStore) Save(ctx context.Context, id string, conv chat.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.store[id]
	if !exists && m.config.MaxSize > 0 && len(m.store) >= m.config.MaxSize {
		evicted := m.cleanup()
		common.LogDebug("Session 清理執行",
			zap.Int("清理數量", evicted),
		)

		// MaxSize > 0 時淘汰一筆即騰出空間
		if len(m.store) >= m.config.MaxSize {
			m.evictLRU()
		}
	}

	now := m.now()
	e.conv = conv
	e.expiresAt = now.Add(m.config.TTL)
	e.lastAccess = now
	m.store[id] = e

	return nil
}

// Delete 刪除 session，不存在時不視為錯誤
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.store, id)
	return nil
}

// Ping 記憶體儲存永遠可用
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// startCleanup 定期清理過期 session
func (m *MemoryStore) startCleanup() {
	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

// cleanup 清理過期的 session，呼叫者需持有寫鎖
func (m *MemoryStore) cleanup() int {
	now := m.now()
	count := 0

	for id, e := range m.store {
		if now.After(e.expiresAt) {
			delete(m.store, id)
			count++
			m.stats.evictions++
		}
	}

	if count > 0 {
		common.LogInfo("Cleaned up expired sessions",
			zap.Int("count", count),
			zap.Int64("total_evictions", m.stats.evictions),
			zap.Int("remaining_size", len(m.store)),
		)
	}

	return count
}

// evictLRU 淘汰存取次數最少、最久未使用的 session
func (m *MemoryStore) evictLRU() {
	var oldestID string
	var oldestAccess time.Time
	var lowestAccessCount int

	for id, e := range m.store {
		if oldestID == "" ||
			e.accessCount < lowestAccessCount ||
			(e.accessCount == lowestAccessCount && e.lastAccess.Before(oldestAccess)) {
			oldestID = id
			oldestAccess = e.lastAccess
			lowestAccessCount = e.accessCount
		}
	}

	if oldestID != "" {
		delete(m.store, oldestID)
		m.stats.evictions++
		common.LogInfo("Session 已淘汰(LRU)",
			zap.String("session_id", oldestID),
		)
	}
}

// GetStats 取得統計資訊
func (m *MemoryStore) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Stats{
		Size:      len(m.store),
		MaxSize:   m.config.MaxSize,
		Hits:      m.stats.hits,
		Misses:    m.stats.misses,
		Evictions: m.stats.evictions,
	}
}

// Close 停止清理協程並清空所有 session
func (m *MemoryStore) Close() error {
	m.once.Do(func() { close(m.done) })

	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = make(map[string]entry)
	common.LogInfo("Session 儲存已關閉",
		zap.Int64("命中次數", m.stats.hits),
		zap.Int64("未命中次數", m.stats.misses),
		zap.Int64("淘汰次數", m.stats.evictions),
	)
	return nil
}
