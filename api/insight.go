package api

import (
	"moneybook/config"
	"moneybook/database"
	"moneybook/middleware"
	"moneybook/service"

	"github.com/gin-gonic/gin"
)

// InsightHandler 消费洞察处理器
type InsightHandler struct {
	client service.TextClient
}

// NewInsightHandler 创建消费洞察处理器
// 未配置 AI 密钥时 client 为 nil，洞察服务会走内置规则回退
func NewInsightHandler(cfg *config.Config) *InsightHandler {
	h := &InsightHandler{}
	if client := service.NewOpenAIClient(&cfg.AI); client != nil {
		h.client = client
	}
	return h
}

// Get 获取消费洞察
// @Summary 获取消费洞察
// @Description 返回当前用户的消费总结文本。同一月份 24 小时内直接返回缓存结果；
// @Description refresh=true 时跳过缓存强制重新生成。AI 服务不可用或配额耗尽时
// @Description 返回系统自动总结，并在 notice 字段说明原因。
// @Tags 洞察
// @Produce json
// @Security BearerAuth
// @Param refresh query bool false "强制重新生成" default(false)
// @Success 200 {object} Response{data=service.InsightResult} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/insights [get]
func (h *InsightHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	txs, err := loadUserTransactions(userID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询消费流水失败"))
		return
	}

	refresh := c.Query("refresh") == "true"

	svc := service.NewInsightService(service.NewGormInsightCache(database.DB), h.client)
	result, err := svc.Get(c.Request.Context(), userID, txs, refresh)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "生成消费洞察失败"))
		return
	}

	Success(c, result)
}
