package common

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// IsUUID 檢查字串是否為合法 UUID
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// WriteError 將錯誤轉為統一的 JSON 錯誤響應並中止請求
// Details 只在 debug 模式輸出
func WriteError(c *gin.Context, err error) {
	ce := AsCustomError(err)

	resp := ErrorResponse{
		Code:    ce.Code,
		Message: ce.Message,
	}
	if ce.Err != nil && gin.IsDebugging() {
		resp.Details = ce.Err.Error()
	}

	if ce.Status >= 500 {
		LogError("請求處理失敗",
			zap.String("code", ce.Code),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(ce.Status, resp)
}
