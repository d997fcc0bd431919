package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recipe-matcher/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/", ok)
	r.POST("/", ok)
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecovery(t *testing.T) {
	r := newEngine(Recovery(), requestid.New(), Logger())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeInternalError)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestBodySizeLimit(t *testing.T) {
	r := newEngine(BodySizeLimit(8))

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")

	w = serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)

	unlimited := newEngine(BodySizeLimit(0))
	w = serve(unlimited, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_Refill(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Second, start)

	assert.True(t, rl.Allow(start))
	assert.True(t, rl.Allow(start))
	assert.False(t, rl.Allow(start))

	assert.True(t, rl.Allow(start.Add(500*time.Millisecond)))
	assert.False(t, rl.Allow(start.Add(500*time.Millisecond)))

	// 補充不超過容量
	later := start.Add(time.Hour)
	assert.True(t, rl.Allow(later))
	assert.True(t, rl.Allow(later))
	assert.False(t, rl.Allow(later))
}

func TestRateLimit_PerClientIP(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := newEngine(rateLimit(1, time.Minute, func() time.Time { return now }))

	req := func(ip string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return req
	}

	assert.Equal(t, http.StatusOK, serve(r, req("10.0.0.1")).Code)
	w := serve(r, req("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, serve(r, req("10.0.0.2")).Code)
}

func TestDeduplication(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := newEngine(deduplication(time.Second, func() time.Time { return now }))

	post := func(body, ip string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.RemoteAddr = ip + ":1234"
		return req
	}

	require.Equal(t, http.StatusOK, serve(r, post(`{"ingredients":"rice"}`, "10.0.0.1")).Code)

	w := serve(r, post(`{"ingredients":"rice"}`, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "DUPLICATE_REQUEST")

	// 不同來源或不同內容不受影響
	assert.Equal(t, http.StatusOK, serve(r, post(`{"ingredients":"rice"}`, "10.0.0.2")).Code)
	assert.Equal(t, http.StatusOK, serve(r, post(`{"ingredients":"salt"}`, "10.0.0.1")).Code)

	// GET 不去重
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)

	now = now.Add(2 * time.Second)
	assert.Equal(t, http.StatusOK, serve(r, post(`{"ingredients":"rice"}`, "10.0.0.1")).Code)
}
