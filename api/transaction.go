package api

import (
	"strconv"
	"strings"
	"time"

	"moneybook/database"
	"moneybook/middleware"
	"moneybook/models"
	"moneybook/service"

	"github.com/gin-gonic/gin"
)

// TransactionHandler 消费流水处理器
type TransactionHandler struct{}

// NewTransactionHandler 创建消费流水处理器
func NewTransactionHandler() *TransactionHandler {
	return &TransactionHandler{}
}

// TransactionRequest 创建/更新消费流水请求
// Amount 以字符串提交，服务端统一做金额校验
type TransactionRequest struct {
	Date        string `json:"date" binding:"required" example:"2024-03-15"`
	Description string `json:"description" example:"午餐"`
	Category    string `json:"category" binding:"required" example:"餐饮"`
	Amount      string `json:"amount" binding:"required" example:"42.50"`
}

// TransactionListRequest 消费流水列表请求
type TransactionListRequest struct {
	Page     int    `form:"page" example:"1"`
	PageSize int    `form:"page_size" example:"10"`
	Category string `form:"category" example:"餐饮"`
	Month    string `form:"month" example:"2024-03"`
}

// validate 校验请求字段并返回解析后的金额
func (r *TransactionRequest) validate() (float64, string) {
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return 0, "日期格式错误，应为: 2024-03-15"
	}
	r.Category = strings.TrimSpace(r.Category)
	if r.Category == "" {
		return 0, "类别不能为空"
	}
	r.Description = strings.TrimSpace(r.Description)

	amount, err := service.ParseMoney(r.Amount, "金额")
	if err != nil {
		return 0, err.Error()
	}
	return amount, ""
}

// Create 创建消费流水
// @Summary 创建消费流水
// @Description 创建一条新的消费流水，金额以字符串提交并做非负/上限校验
// @Tags 消费流水
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransactionRequest true "消费流水信息"
// @Success 200 {object} Response{data=models.Transaction} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	amount, msg := req.validate()
	if msg != "" {
		BadRequest(c, msg)
		return
	}

	tx := models.Transaction{
		UserID:      userID,
		Date:        req.Date,
		Description: req.Description,
		Category:    req.Category,
		Amount:      amount,
	}

	if err := database.DB.Create(&tx).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建消费流水失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", tx)
}

// List 获取消费流水列表
// @Summary 获取消费流水列表
// @Description 获取当前用户的消费流水列表，支持分页、类别和月份筛选
// @Tags 消费流水
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param category query string false "类别筛选"
// @Param month query string false "月份筛选 (2024-03)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Transaction}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	query := database.DB.Model(&models.Transaction{}).Where("user_id = ?", userID)

	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	if req.Month != "" {
		// 日期按 YYYY-MM-DD 字符串存储，月份筛选用前缀匹配
		query = query.Where("date LIKE ?", req.Month+"-%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var txs []models.Transaction
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("date DESC, id DESC").Offset(offset).Limit(req.PageSize).Find(&txs).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     txs,
	})
}

// Get 获取单条消费流水
// @Summary 获取单条消费流水
// @Tags 消费流水
// @Produce json
// @Security BearerAuth
// @Param id path int true "流水ID"
// @Success 200 {object} Response{data=models.Transaction} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var tx models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&tx).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	Success(c, tx)
}

// Update 更新消费流水
// @Summary 更新消费流水
// @Description 整条更新指定的消费流水，只能操作自己的记录
// @Tags 消费流水
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "流水ID"
// @Param request body TransactionRequest true "消费流水信息"
// @Success 200 {object} Response{data=models.Transaction} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var tx models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&tx).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	amount, msg := req.validate()
	if msg != "" {
		BadRequest(c, msg)
		return
	}

	updates := map[string]interface{}{
		"date":        req.Date,
		"description": req.Description,
		"category":    req.Category,
		"amount":      amount,
	}
	if err := database.DB.Model(&tx).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&tx, tx.ID)
	SuccessWithMessage(c, "更新成功", tx)
}

// Delete 删除消费流水
// @Summary 删除消费流水
// @Tags 消费流水
// @Produce json
// @Security BearerAuth
// @Param id path int true "流水ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var tx models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&tx).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&tx).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
