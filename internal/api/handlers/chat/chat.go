package chat

import (
	"errors"
	"fmt"
	"net/http"

	chatService "recipe-matcher/internal/core/chat"
	"recipe-matcher/internal/core/session"
	"recipe-matcher/internal/infrastructure/config"
	"recipe-matcher/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHeader 非瀏覽器客戶端可改用標頭帶 session id
const SessionHeader = "X-Session-ID"

// MessageRequest 聊天訊息
type MessageRequest struct {
	Message string `json:"message"`
}

// MessageResponse 聊天回覆
type MessageResponse struct {
	chatService.Reply
	SessionID string `json:"session_id"`
}

// Handler 聊天處理程序，對話狀態存放在 session 儲存
type Handler struct {
	bot    *chatService.Bot
	store  session.Store
	config config.SessionConfig
}

// NewHandler 創建聊天處理程序
func NewHandler(bot *chatService.Bot, store session.Store, cfg config.SessionConfig) *Handler {
	return &Handler{
		bot:    bot,
		store:  store,
		config: cfg,
	}
}

// HandleMessage 處理一則聊天訊息並推進對話
func (h *Handler) HandleMessage(c *gin.Context) {
	var req MessageRequest
	if err := common.DecodeJSONStrict(c.Request.Body, &req); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		common.WriteError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	ctx := c.Request.Context()
	sessionID, isNew := h.sessionID(c)

	conv := chatService.NewConversation()
	if !isNew {
		stored, err := h.store.Get(ctx, sessionID)
		switch {
		case err == nil:
			conv = stored
		case errors.Is(err, common.ErrSessionNotFound):
			// 過期的 session 從頭開始
		default:
			common.WriteError(c, err)
			return
		}
	}

	next, reply, err := h.bot.Step(conv, req.Message)
	if err != nil {
		common.WriteError(c, err)
		return
	}

	if err := h.store.Save(ctx, sessionID, next); err != nil {
		common.WriteError(c, fmt.Errorf("save session: %w", err))
		return
	}

	common.LogInfo("對話已更新",
		zap.String("request_id", requestid.Get(c)),
		zap.String("session_id", sessionID),
		zap.String("from", string(conv.State)),
		zap.String("to", string(next.State)),
	)

	h.setCookie(c, sessionID, int(h.config.TTL.Seconds()))
	c.JSON(http.StatusOK, MessageResponse{
		Reply:     reply,
		SessionID: sessionID,
	})
}

// HandleReset 刪除目前的 session
func (h *Handler) HandleReset(c *gin.Context) {
	sessionID, isNew := h.sessionID(c)
	if !isNew {
		if err := h.store.Delete(c.Request.Context(), sessionID); err != nil {
			common.WriteError(c, err)
			return
		}
	}

	h.setCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{
		"state":  chatService.StateAwaitingIngredients,
		"status": "reset",
	})
}

// sessionID 依序從 cookie、標頭取得 session id，都沒有或格式不對時產生新的
func (h *Handler) sessionID(c *gin.Context) (string, bool) {
	if id, err := c.Cookie(h.config.CookieName); err == nil && common.IsUUID(id) {
		return id, false
	}
	if id := c.GetHeader(SessionHeader); common.IsUUID(id) {
		return id, false
	}
	return common.GenerateUUID(), true
}

func (h *Handler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.config.CookieName, value, maxAge, "/", "", h.config.Secure, true)
}
