package api

import (
	"sort"

	"moneybook/database"
	"moneybook/middleware"
	"moneybook/models"
	"moneybook/service"

	"github.com/gin-gonic/gin"
)

// BudgetHandler 预算对比与统计处理器
type BudgetHandler struct{}

// NewBudgetHandler 创建预算对比与统计处理器
func NewBudgetHandler() *BudgetHandler {
	return &BudgetHandler{}
}

// loadUserTransactions 取用户全部流水，月度汇总在内存中完成
func loadUserTransactions(userID uint) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := database.DB.Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Find(&txs).Error
	return txs, err
}

// GetComparison 获取预算对比表
// @Summary 获取预算对比表
// @Description 以预算目标为准逐条对比当月实际支出，计算剩余额度与超支状态。
// @Description 没有流水的目标按实际支出 0 处理；有流水但没有目标的类别不会出现在表中。
// @Tags 预算目标
// @Produce json
// @Security BearerAuth
// @Param month query string false "月份筛选 (2024-03)"
// @Success 200 {object} Response{data=[]service.ComparisonRow} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budget/comparison [get]
func (h *BudgetHandler) GetComparison(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	query := database.DB.Where("user_id = ?", userID)
	if month := c.Query("month"); month != "" {
		query = query.Where("month = ?", month)
	}

	// 按创建先后排列，保证对比表顺序稳定
	var goals []models.Goal
	if err := query.Order("id ASC").Find(&goals).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询预算目标失败"))
		return
	}

	txs, err := loadUserTransactions(userID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询消费流水失败"))
		return
	}

	rows := service.BuildComparison(goals, service.MonthlyActuals(txs))
	Success(c, rows)
}

// CategoryStatResponse 类别统计响应行
type CategoryStatResponse struct {
	Category   string  `json:"category"`
	Total      float64 `json:"total"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// GetStatistics 获取类别统计（图表数据源）
// @Summary 获取类别统计
// @Description 按类别汇总消费金额并计算占比，金额降序，供饼图/柱状图使用。
// @Description 传 month 时只统计该月份的流水。
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param month query string false "月份筛选 (2024-03)"
// @Success 200 {object} Response "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/statistics [get]
func (h *BudgetHandler) GetStatistics(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	txs, err := loadUserTransactions(userID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	if month := c.Query("month"); month != "" {
		filtered := txs[:0]
		for _, tx := range txs {
			if len(tx.Date) >= 7 && tx.Date[:7] == month {
				filtered = append(filtered, tx)
			}
		}
		txs = filtered
	}

	totals := service.CategoryTotals(txs)
	grandTotal := service.GrandTotal(txs)

	stats := make([]CategoryStatResponse, 0, len(totals))
	for _, ct := range totals {
		percentage := 0.0
		if grandTotal > 0 {
			percentage = ct.Total / grandTotal * 100
		}
		stats = append(stats, CategoryStatResponse{
			Category:   ct.Category,
			Total:      ct.Total,
			Count:      ct.Count,
			Percentage: percentage,
		})
	}

	Success(c, gin.H{
		"total_amount":   grandTotal,
		"total_count":    len(txs),
		"category_stats": stats,
	})
}

// MonthlyStatResponse 月度统计响应行
type MonthlyStatResponse struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// GetMonthlyStatistics 获取月度统计
// @Summary 获取月度统计
// @Description 按月份汇总消费金额，月份升序，供趋势图使用；日期无法解析的流水不计入
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]MonthlyStatResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/statistics/monthly [get]
func (h *BudgetHandler) GetMonthlyStatistics(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	txs, err := loadUserTransactions(userID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	totals := service.MonthlyTotals(txs)
	stats := make([]MonthlyStatResponse, 0, len(totals))
	for month, total := range totals {
		stats = append(stats, MonthlyStatResponse{Month: month, Total: total})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Month < stats[j].Month })

	Success(c, stats)
}
