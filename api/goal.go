package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"moneybook/database"
	"moneybook/middleware"
	"moneybook/models"
	"moneybook/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GoalHandler 预算目标处理器
type GoalHandler struct{}

// NewGoalHandler 创建预算目标处理器
func NewGoalHandler() *GoalHandler {
	return &GoalHandler{}
}

// GoalRequest 保存预算目标请求
// 不带 id 时按（月份, 类别）插入或覆盖金额；带 id 时按 id 编辑
type GoalRequest struct {
	ID       uint   `json:"id" example:"0"`
	Month    string `json:"month" binding:"required" example:"2024-03"`
	Category string `json:"category" binding:"required" example:"餐饮"`
	Amount   string `json:"amount" binding:"required" example:"100"`
}

// Save 保存预算目标
// @Summary 保存预算目标
// @Description 不带 id 时按（月份, 类别）插入或覆盖已有目标的金额；带 id 时编辑指定目标，
// @Description 若编辑后与另一条目标的（月份, 类别）冲突则拒绝
// @Tags 预算目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GoalRequest true "预算目标信息"
// @Success 200 {object} Response{data=models.Goal} "保存成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "目标不存在"
// @Failure 409 {object} Response "与已有目标冲突"
// @Router /api/v1/goals [put]
func (h *GoalHandler) Save(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if _, err := time.Parse("2006-01", req.Month); err != nil {
		BadRequest(c, "月份格式错误，应为: 2024-03")
		return
	}
	req.Category = strings.TrimSpace(req.Category)
	if req.Category == "" {
		BadRequest(c, "类别不能为空")
		return
	}

	amount, err := service.ParseMoney(req.Amount, "目标金额")
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	if req.ID > 0 {
		h.updateByID(c, userID, &req, amount)
		return
	}

	// 按（月份, 类别）插入或覆盖，保存动作作为一个事务提交
	var goal models.Goal
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND month = ? AND category = ?",
			userID, req.Month, req.Category).First(&goal).Error
		switch {
		case err == nil:
			goal.Amount = amount
			return tx.Model(&goal).Update("amount", amount).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			goal = models.Goal{
				UserID:   userID,
				Month:    req.Month,
				Category: req.Category,
				Amount:   amount,
			}
			return tx.Create(&goal).Error
		default:
			return err
		}
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "保存预算目标失败"))
		return
	}

	SuccessWithMessage(c, "保存成功", goal)
}

// updateByID 按 id 编辑目标；编辑目标撞上另一条目标的（月份, 类别）时拒绝
func (h *GoalHandler) updateByID(c *gin.Context, userID uint, req *GoalRequest, amount float64) {
	var goal models.Goal
	if err := database.DB.Where("id = ? AND user_id = ?", req.ID, userID).First(&goal).Error; err != nil {
		NotFound(c, "目标不存在")
		return
	}

	var other models.Goal
	err := database.DB.Where("user_id = ? AND month = ? AND category = ? AND id <> ?",
		userID, req.Month, req.Category, goal.ID).First(&other).Error
	if err == nil {
		Conflict(c, "该月份下此类别已有预算目标，请直接编辑那条目标")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	updates := map[string]interface{}{
		"month":    req.Month,
		"category": req.Category,
		"amount":   amount,
	}
	if err := database.DB.Model(&goal).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新预算目标失败"))
		return
	}

	database.DB.First(&goal, goal.ID)
	SuccessWithMessage(c, "更新成功", goal)
}

// List 获取预算目标列表
// @Summary 获取预算目标列表
// @Description 获取当前用户的全部预算目标，可按月份筛选，按创建先后排列
// @Tags 预算目标
// @Produce json
// @Security BearerAuth
// @Param month query string false "月份筛选 (2024-03)"
// @Success 200 {object} Response{data=[]models.Goal} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/goals [get]
func (h *GoalHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	query := database.DB.Where("user_id = ?", userID)
	if month := c.Query("month"); month != "" {
		query = query.Where("month = ?", month)
	}

	var goals []models.Goal
	if err := query.Order("id ASC").Find(&goals).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, goals)
}

// Delete 删除预算目标
// @Summary 删除预算目标
// @Tags 预算目标
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "目标不存在"
// @Router /api/v1/goals/{id} [delete]
func (h *GoalHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var goal models.Goal
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&goal).Error; err != nil {
		NotFound(c, "目标不存在")
		return
	}

	if err := database.DB.Delete(&goal).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
