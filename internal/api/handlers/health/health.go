package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	recipeService "recipe-matcher/internal/core/recipe"
	"recipe-matcher/internal/infrastructure/config"
	"recipe-matcher/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const pingTimeout = 2 * time.Second

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Dataset   recipeService.Stats    `json:"dataset"`
	Session   string                 `json:"session_store"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// StatsProvider 提供資料集統計
type StatsProvider interface {
	Stats() recipeService.Stats
}

// Pinger 可檢查連線的依賴
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler 健康檢查處理程序
type Handler struct {
	config *config.Config
	stats  StatsProvider
	store  Pinger
}

// NewHandler 創建健康檢查處理程序
func NewHandler(cfg *config.Config, stats StatsProvider, store Pinger) *Handler {
	return &Handler{
		config: cfg,
		stats:  stats,
		store:  store,
	}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.config.App.Version,
		Dataset:   h.stats.Stats(),
		Session:   h.config.Session.Store,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 資料集已載入且 session 儲存可用才算就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.stats.Stats().Recipes == 0 {
		common.WriteError(c, common.ErrServiceUnavailable.Wrap(errors.New("dataset is empty")))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		common.LogWarn("Session store not ready", zap.Error(err))
		common.WriteError(c, common.ErrServiceUnavailable.Wrap(fmt.Errorf("session store unavailable: %w", err)))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
