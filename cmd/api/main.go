package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-matcher/internal/api"
	"recipe-matcher/internal/core/recipe"
	"recipe-matcher/internal/core/session"
	"recipe-matcher/internal/infrastructure/config"
	"recipe-matcher/internal/infrastructure/dataset"
	"recipe-matcher/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（包含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("dataset_url", cfg.Dataset.URL),
		zap.String("dataset_path", cfg.Dataset.Path),
		zap.String("match_policy", cfg.Matcher.Policy),
		zap.String("match_containment", cfg.Matcher.Containment),
		zap.Int("top_n", cfg.Matcher.TopN),
		zap.String("session_store", cfg.Session.Store),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 載入資料集，失敗時無法提供任何服務
	recipes, err := dataset.NewLoader(cfg.Dataset).Load(ctx)
	if err != nil {
		common.LogFatal("Failed to load dataset", zap.Error(err))
	}

	recipeSvc, err := recipe.NewService(recipes, recipe.Options{
		Policy:              cfg.Matcher.Policy,
		Containment:         cfg.Matcher.Containment,
		TopN:                cfg.Matcher.TopN,
		MaxTopN:             cfg.Matcher.MaxTopN,
		Stem:                cfg.Matcher.Stem,
		CleanEncoding:       cfg.Matcher.CleanEncoding,
		IncludeTitle:        cfg.Matcher.IncludeTitle,
		IncludeInstructions: cfg.Matcher.IncludeInstructions,
	})
	if err != nil {
		common.LogFatal("Failed to build recipe index", zap.Error(err))
	}
	stats := recipeSvc.Stats()
	common.LogInfo("詞彙表已建立",
		zap.Int("recipes", stats.Recipes),
		zap.Int("vocabulary_size", stats.VocabularySize),
	)

	store, err := session.NewStore(ctx, cfg)
	if err != nil {
		common.LogFatal("Failed to initialize session store", zap.Error(err))
	}
	defer store.Close()

	// 設置路由
	router, err := api.SetupRouter(cfg, recipeSvc, store)
	if err != nil {
		common.LogFatal("Failed to setup router", zap.Error(err))
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// 等待中斷信號或啟動失敗
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		common.LogError("Failed to start server", zap.Error(err))
	}

	common.LogInfo("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
	}

	common.LogInfo("Server exited")
}
