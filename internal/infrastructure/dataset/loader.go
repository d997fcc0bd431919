package dataset

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"recipe-matcher/internal/core/recipe"
	"recipe-matcher/internal/infrastructure/config"
	"recipe-matcher/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Loader 下載並解析食譜資料集
type Loader struct {
	config config.DatasetConfig
	client *resty.Client
}

// NewLoader 創建資料集載入器
func NewLoader(cfg config.DatasetConfig) *Loader {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Accept", "text/csv, text/plain, */*").
		SetHeader("User-Agent", "recipe-matcher")

	return &Loader{
		config: cfg,
		client: client,
	}
}

// Load 載入資料集；設定了本地路徑時優先讀檔，否則從 URL 下載
func (l *Loader) Load(ctx context.Context) ([]recipe.Recipe, error) {
	start := time.Now()

	var (
		data   []byte
		source string
		err    error
	)
	if l.config.Path != "" {
		source = l.config.Path
		data, err = os.ReadFile(l.config.Path)
		if err != nil {
			return nil, common.ErrDatasetFetch.Wrap(fmt.Errorf("read %s: %w", l.config.Path, err))
		}
	} else {
		source = l.config.URL
		data, err = l.fetch(ctx)
		if err != nil {
			return nil, common.ErrDatasetFetch.Wrap(err)
		}
	}

	recipes, err := ParseCSV(bytes.NewReader(data))
	if err != nil {
		return nil, common.ErrDatasetParse.Wrap(err)
	}

	common.LogInfo("資料集已載入",
		zap.String("source", source),
		zap.Int("bytes", len(data)),
		zap.Int("recipes", len(recipes)),
		zap.Duration("耗時", time.Since(start)),
	)

	return recipes, nil
}

// fetch 下載資料集內容
func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	common.LogDebug("Downloading dataset", zap.String("url", l.config.URL))

	resp, err := l.client.R().
		SetContext(ctx).
		Get(l.config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download dataset: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("dataset source returned status %d", resp.StatusCode())
	}

	return resp.Body(), nil
}
