package api

import (
	"fmt"
	"log"
	"time"

	"moneybook/config"
	"moneybook/database"
	"moneybook/models"
	"moneybook/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 重置令牌有效期
const resetTokenTTL = 30 * time.Minute

// PasswordResetHandler 密码重置处理器
type PasswordResetHandler struct {
	cfg          *config.Config
	emailService *service.EmailService
}

// NewPasswordResetHandler 创建密码重置处理器
func NewPasswordResetHandler(cfg *config.Config) *PasswordResetHandler {
	return &PasswordResetHandler{
		cfg:          cfg,
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// RequestResetRequest 申请密码重置请求
type RequestResetRequest struct {
	Email string `json:"email" binding:"required,email" example:"test@example.com"`
}

// RequestReset 申请密码重置
// @Summary 申请密码重置
// @Description 按邮箱申请密码重置，邮箱存在时发送带令牌的重置链接。
// @Description 无论邮箱是否存在都返回相同提示，避免暴露注册信息。
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RequestResetRequest true "邮箱"
// @Success 200 {object} Response "已受理"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/auth/password/request-reset [post]
func (h *PasswordResetHandler) RequestReset(c *gin.Context) {
	var req RequestResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	// 固定应答，不区分邮箱是否存在
	respond := func() {
		SuccessWithMessage(c, "如果该邮箱已注册，重置邮件将在几分钟内送达", nil)
	}

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		respond()
		return
	}

	token, err := models.NewResetToken()
	if err != nil {
		InternalError(c, "生成重置令牌失败")
		return
	}

	reset := models.PasswordReset{
		UserID:    user.ID,
		Token:     token,
		Email:     user.Email,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := database.DB.Create(&reset).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "保存重置令牌失败"))
		return
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", h.cfg.Server.BaseURL, token)
	if err := h.emailService.SendPasswordResetEmail(user.Email, user.Username, resetLink); err != nil {
		// 邮件发送失败不向客户端暴露细节
		log.Printf("发送重置邮件失败: user=%d err=%v", user.ID, err)
	}

	respond()
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=50"`
}

// ResetPassword 使用令牌重置密码
// @Summary 重置密码
// @Description 校验重置令牌并设置新密码，令牌一次性使用
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "令牌与新密码"
// @Success 200 {object} Response "重置成功"
// @Failure 400 {object} Response "令牌无效或已过期"
// @Router /api/v1/auth/password/reset [post]
func (h *PasswordResetHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	var reset models.PasswordReset
	if err := database.DB.Where("token = ?", req.Token).First(&reset).Error; err != nil {
		BadRequest(c, "令牌无效或已过期")
		return
	}
	if !reset.Usable() {
		BadRequest(c, "令牌无效或已过期")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "密码加密失败")
		return
	}

	// 改密码和标记令牌为一个事务
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).
			Update("password", string(hashedPassword)).Error; err != nil {
			return err
		}
		return tx.Model(&reset).Update("used", true).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "重置密码失败"))
		return
	}

	SuccessWithMessage(c, "密码重置成功，请使用新密码登录", nil)
}
