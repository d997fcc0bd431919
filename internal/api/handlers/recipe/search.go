package recipe

import (
	"net/http"
	"strings"

	recipeService "recipe-matcher/internal/core/recipe"
	"recipe-matcher/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultTermLimit = 50
	maxTermLimit     = 500
)

// SearchRequest 食材搜尋請求，可用 JSON、表單或查詢參數送出
type SearchRequest struct {
	Ingredients string `json:"ingredients" form:"ingredients"` // 逗號分隔的食材
	TopN        int    `json:"top_n" form:"top_n"`             // 回傳筆數，0 表示預設
	Policy      string `json:"policy" form:"policy"`           // full_first 或 partial
}

// VocabularyQuery 詞彙表查詢參數
type VocabularyQuery struct {
	Prefix string `form:"prefix"`
	Limit  int    `form:"limit"`
}

// VocabularyResponse 詞彙表查詢結果
type VocabularyResponse struct {
	Size  int      `json:"size"`
	Terms []string `json:"terms"`
}

// Searcher 搜尋 handler 需要的服務
type Searcher interface {
	Search(req recipeService.SearchRequest) (*recipeService.SearchResult, error)
	Vocabulary() *recipeService.Vocabulary
}

// Handler 食譜搜尋處理程序
type Handler struct {
	service Searcher
}

// NewHandler 創建新的食譜處理程序
func NewHandler(service Searcher) *Handler {
	return &Handler{service: service}
}

// HandleSearch 依食材搜尋食譜，三種結果都回傳 200
func (h *Handler) HandleSearch(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBind(&req); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		common.WriteError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	result, err := h.service.Search(recipeService.SearchRequest{
		Ingredients: req.Ingredients,
		TopN:        req.TopN,
		Policy:      req.Policy,
	})
	if err != nil {
		common.WriteError(c, err)
		return
	}

	common.LogDebug("搜尋結果",
		zap.String("request_id", requestid.Get(c)),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("recipes", len(result.Recipes)),
	)
	c.JSON(http.StatusOK, result)
}

// HandleVocabulary 列出詞彙表中的字詞，可依前綴過濾
func (h *Handler) HandleVocabulary(c *gin.Context) {
	var q VocabularyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.WriteError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}
	if q.Limit <= 0 {
		q.Limit = defaultTermLimit
	}
	if q.Limit > maxTermLimit {
		q.Limit = maxTermLimit
	}

	vocab := h.service.Vocabulary()
	terms := vocab.Terms(strings.ToLower(strings.TrimSpace(q.Prefix)), q.Limit)
	if terms == nil {
		terms = []string{}
	}
	c.JSON(http.StatusOK, VocabularyResponse{
		Size:  vocab.Size(),
		Terms: terms,
	})
}
