package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"stockrank/query"
)

// KlineQuerier 报价与日K查询
type KlineQuerier interface {
	Kline(ctx context.Context, code string) (*query.KlineResult, error)
}

// Handler API处理器
type Handler struct {
	query KlineQuerier
	log   zerolog.Logger
}

// NewHandler 创建处理器
func NewHandler(q KlineQuerier, log zerolog.Logger) *Handler {
	return &Handler{query: q, log: log}
}

// GetKline 查询单只股票的报价与日K
// GET /api/kline?code=600519
func (h *Handler) GetKline(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "请提供股票代码",
		})
		return
	}

	result, err := h.query.Kline(c.Request.Context(), code)
	if err != nil {
		h.log.Warn().Err(err).Str("code", code).Msg("查询失败")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "获取数据失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
