package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-matcher/internal/pkg/common"
)

// ErrDuplicateRequest 視窗內重複送出的相同請求
var ErrDuplicateRequest = common.NewError("DUPLICATE_REQUEST", "request too frequent", http.StatusTooManyRequests, nil)

const defaultDedupWindow = time.Second

// requestCache 請求指紋與最後一次出現時間
type requestCache struct {
	mu        sync.Mutex
	requests  map[string]time.Time
	window    time.Duration
	lastPurge time.Time
}

// seen 記錄指紋，視窗內已出現過時回傳 true
func (rc *requestCache) seen(fingerprint string, now time.Time) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	// 過期指紋順便清掉
	if now.Sub(rc.lastPurge) > 10*rc.window {
		for k, t := range rc.requests {
			if now.Sub(t) > rc.window {
				delete(rc.requests, k)
			}
		}
		rc.lastPurge = now
	}

	if last, ok := rc.requests[fingerprint]; ok && now.Sub(last) <= rc.window {
		return true
	}
	rc.requests[fingerprint] = now
	return false
}

// Deduplication 拒絕同一來源在視窗內重複送出的相同 POST 請求
func Deduplication(window time.Duration) gin.HandlerFunc {
	return deduplication(window, time.Now)
}

func deduplication(window time.Duration, now func() time.Time) gin.HandlerFunc {
	if window <= 0 {
		window = defaultDedupWindow
	}
	cache := &requestCache{
		requests:  make(map[string]time.Time),
		window:    window,
		lastPurge: now(),
	}

	return func(c *gin.Context) {
		// 只處理 POST 請求
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		hash := sha256.New()
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogWarn("Failed to read request body", zap.Error(err))
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					common.WriteError(c, ErrRequestTooLarge.Wrap(err))
				} else {
					common.WriteError(c, common.ErrInvalidRequest.Wrap(err))
				}
				return
			}
			hash.Write(body)

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		// 生成請求指紋
		fingerprint := c.ClientIP() + ":" + c.Request.URL.Path + ":" + hex.EncodeToString(hash.Sum(nil))

		if cache.seen(fingerprint, now()) {
			common.LogInfo("Duplicate request rejected",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			common.WriteError(c, ErrDuplicateRequest)
			return
		}

		c.Next()
	}
}
