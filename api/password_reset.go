package api

import (
	"fmt"
	"log"
	"time"

	"homefinance/config"
	"homefinance/database"
	"homefinance/models"
	"homefinance/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

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

// RequestResetRequest 请求重置密码
type RequestResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// RequestPasswordReset 请求密码重置（发送邮件）
// @Summary 请求密码重置
// @Description 通过邮箱请求密码重置，系统会发送包含重置链接的邮件。为了安全，即使用户不存在也返回成功。
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RequestResetRequest true "邮箱地址"
// @Success 200 {object} Response "请求成功（无论用户是否存在）"
// @Failure 400 {object} Response "参数错误"
// @Router /api/v1/auth/password/request-reset [post]
func (h *PasswordResetHandler) RequestPasswordReset(c *gin.Context) {
	var req RequestResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请输入有效的邮箱地址")
		return
	}

	// 查找用户
	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		// 为了安全，即使用户不存在也返回成功
		SuccessWithMessage(c, "如果该邮箱已注册，您将收到密码重置邮件", nil)
		return
	}

	// 检查是否有未使用的有效令牌
	var existingToken models.PasswordReset
	if err := database.DB.Where("user_id = ? AND used = ? AND expires_at > ?", user.ID, false, time.Now()).First(&existingToken).Error; err == nil {
		SuccessWithMessage(c, "已发送过重置邮件，请检查您的邮箱（包括垃圾邮件）", nil)
		return
	}

	// 生成新令牌
	token, err := models.GenerateToken()
	if err != nil {
		InternalError(c, "生成令牌失败")
		return
	}

	// 保存令牌（30分钟有效期）
	passwordReset := models.PasswordReset{
		UserID:    user.ID,
		Token:     token,
		Email:     req.Email,
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
	if err := database.DB.Create(&passwordReset).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "保存令牌失败"))
		return
	}

	// 发送邮件（尽力而为，失败仅记录日志）
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", h.cfg.Server.BaseURL, token)
	go func() {
		if err := h.emailService.SendPasswordResetEmail(user.Email, user.Username, resetLink); err != nil {
			log.Printf("发送密码重置邮件失败 (user_id=%d): %v", user.ID, err)
		}
	}()

	SuccessWithMessage(c, "如果该邮箱已注册，您将收到密码重置邮件", nil)
}

// VerifyResetToken 校验重置令牌
// @Summary 校验重置令牌
// @Description 校验密码重置令牌是否有效（未使用且未过期）
// @Tags 认证
// @Produce json
// @Param token query string true "重置令牌"
// @Success 200 {object} Response "令牌有效"
// @Failure 400 {object} Response "令牌无效或已过期"
// @Router /api/v1/auth/password/verify-token [get]
func (h *PasswordResetHandler) VerifyResetToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		BadRequest(c, "缺少令牌参数")
		return
	}

	var reset models.PasswordReset
	if err := database.DB.Where("token = ?", token).First(&reset).Error; err != nil {
		BadRequest(c, "令牌无效")
		return
	}
	if !reset.IsValid() {
		BadRequest(c, "令牌已使用或已过期")
		return
	}

	Success(c, gin.H{"email": reset.Email})
}

// ResetPassword 使用令牌重置密码
// @Summary 重置密码
// @Description 使用重置令牌设置新密码，令牌一次性使用
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
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var reset models.PasswordReset
	if err := database.DB.Where("token = ?", req.Token).First(&reset).Error; err != nil {
		BadRequest(c, "令牌无效")
		return
	}
	if !reset.IsValid() {
		BadRequest(c, "令牌已使用或已过期")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "密码加密失败")
		return
	}

	// 更新密码并作废令牌
	if err := database.DB.Model(&models.User{}).Where("id = ?", reset.UserID).
		Update("password", string(hashedPassword)).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "重置密码失败"))
		return
	}
	if err := database.DB.Model(&reset).Update("used", true).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "作废令牌失败"))
		return
	}

	SuccessWithMessage(c, "密码重置成功，请使用新密码登录", nil)
}
