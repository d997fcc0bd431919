package api

import (
	"context"
	"errors"
	"time"

	chatHandler "recipe-matcher/internal/api/handlers/chat"
	"recipe-matcher/internal/api/handlers/health"
	recipeHandler "recipe-matcher/internal/api/handlers/recipe"
	"recipe-matcher/internal/api/middleware"
	"recipe-matcher/internal/core/chat"
	recipeService "recipe-matcher/internal/core/recipe"
	"recipe-matcher/internal/core/session"
	"recipe-matcher/internal/infrastructure/config"
	"recipe-matcher/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, recipeSvc *recipeService.Service, store session.Store) (*gin.Engine, error) {
	if cfg == nil || recipeSvc == nil || store == nil {
		return nil, errors.New("router requires config, recipe service and session store")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Logger())

	// CORS 設置，session cookie 需要 AllowCredentials，因此不能用萬用來源
	router.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID", chatHandler.SessionHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 設置請求超時
	router.Use(requestTimeout(cfg.Server.RequestTimeout))

	healthHandler := health.NewHandler(cfg, recipeSvc, store)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	recipes := recipeHandler.NewHandler(recipeSvc)
	chats := chatHandler.NewHandler(chat.NewBot(recipeSvc), store, cfg.Session)

	// API 路由組
	api := router.Group("/api/v1")
	{
		// 聊天訊息如 "next" 本來就會重複送出，只對搜尋去重
		search := api.Group("/recipes", middleware.Deduplication(cfg.DedupWindow))
		search.GET("/search", recipes.HandleSearch)
		search.POST("/search", recipes.HandleSearch)

		api.GET("/vocabulary", recipes.HandleVocabulary)

		api.POST("/chat", chats.HandleMessage)
		api.DELETE("/chat", chats.HandleReset)
	}

	router.NoRoute(func(c *gin.Context) {
		common.WriteError(c, common.ErrNotFound)
	})
	router.NoMethod(func(c *gin.Context) {
		common.WriteError(c, common.ErrMethodNotAllowed)
	})

	stats := recipeSvc.Stats()
	common.LogInfo("Router setup completed successfully",
		zap.Int("recipes", stats.Recipes),
		zap.Int("vocabulary_size", stats.VocabularySize),
		zap.String("session_store", cfg.Session.Store),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}

// requestTimeout 為每個請求設定截止時間，handler 仍未回應時回傳 504
func requestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			common.WriteError(c, common.ErrGatewayTimeout)
		}
	}
}
