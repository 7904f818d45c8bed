package api

import (
	"fmt"
	"log"
	"time"

	"homefinance/config"
	"homefinance/database"
	"homefinance/middleware"
	"homefinance/models"
	"homefinance/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HouseholdHandler 家庭处理器
type HouseholdHandler struct {
	cfg          *config.Config
	emailService *service.EmailService
}

// NewHouseholdHandler 创建家庭处理器
func NewHouseholdHandler(cfg *config.Config) *HouseholdHandler {
	return &HouseholdHandler{
		cfg:          cfg,
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// CreateHouseholdRequest 创建家庭请求
type CreateHouseholdRequest struct {
	Name string `json:"name" binding:"required,min=1,max=50"`
}

// CreateInvitationRequest 创建邀请请求
type CreateInvitationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// AcceptInvitationRequest 接受邀请请求
type AcceptInvitationRequest struct {
	Token string `json:"token" binding:"required"`
}

// MemberInfo 成员信息
type MemberInfo struct {
	MemberID uint      `json:"member_id"`
	UserID   uint      `json:"user_id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// CreateHousehold 创建家庭
// @Summary 创建家庭
// @Description 创建一个新家庭，创建者自动成为拥有者。每个用户只能属于一个家庭。
// @Tags 家庭
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateHouseholdRequest true "家庭信息"
// @Success 200 {object} Response "创建成功"
// @Failure 400 {object} Response "已在家庭中或参数错误"
// @Router /api/v1/households [post]
func (h *HouseholdHandler) CreateHousehold(c *gin.Context) {
	var req CreateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	userID := middleware.GetCurrentUserID(c)

	// 每个用户只能属于一个家庭
	var existing models.HouseholdMember
	if err := database.DB.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		BadRequest(c, "您已在一个家庭中，请先退出当前家庭")
		return
	}

	household := models.Household{
		Name:    req.Name,
		OwnerID: userID,
	}

	// 家庭与创建者成员记录在同一事务中写入
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&household).Error; err != nil {
			return err
		}
		member := models.HouseholdMember{
			HouseholdID: household.ID,
			UserID:      userID,
			Role:        models.MemberRoleOwner,
			JoinedAt:    time.Now(),
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "创建家庭失败"))
		return
	}

	SuccessWithMessage(c, "家庭创建成功", household)
}

// GetMyHousehold 查询当前家庭
// @Summary 查询当前家庭
// @Description 查询当前用户所在家庭的基本信息与成员列表
// @Tags 家庭
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "家庭信息"
// @Failure 403 {object} Response "未加入家庭"
// @Router /api/v1/households/mine [get]
func (h *HouseholdHandler) GetMyHousehold(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var household models.Household
	if err := database.DB.First(&household, householdID).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	members, err := h.listMembers(householdID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询成员失败"))
		return
	}

	Success(c, gin.H{
		"household": household,
		"members":   members,
	})
}

// ListMembers 查询家庭成员
// @Summary 查询家庭成员
// @Description 查询当前家庭的所有成员
// @Tags 家庭
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "成员列表"
// @Router /api/v1/households/members [get]
func (h *HouseholdHandler) ListMembers(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	members, err := h.listMembers(householdID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询成员失败"))
		return
	}

	Success(c, members)
}

func (h *HouseholdHandler) listMembers(householdID uint) ([]MemberInfo, error) {
	var members []models.HouseholdMember
	if err := database.DB.Preload("User").
		Where("household_id = ?", householdID).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}

	infos := make([]MemberInfo, 0, len(members))
	for _, m := range members {
		infos = append(infos, MemberInfo{
			MemberID: m.ID,
			UserID:   m.UserID,
			Username: m.User.Username,
			Email:    m.User.Email,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	return infos, nil
}

// RemoveMember 移除家庭成员
// @Summary 移除家庭成员
// @Description 拥有者移除家庭成员。成员存在未结清分摊时禁止移除，需先完成结算。
// @Tags 家庭
// @Produce json
// @Security BearerAuth
// @Param id path int true "成员ID"
// @Success 200 {object} Response "移除成功"
// @Failure 400 {object} Response "存在未结清分摊或移除对象非法"
// @Failure 403 {object} Response "权限不足"
// @Failure 404 {object} Response "成员不存在"
// @Router /api/v1/households/members/{id} [delete]
func (h *HouseholdHandler) RemoveMember(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)
	memberID := c.Param("id")

	var member models.HouseholdMember
	if err := database.DB.Where("id = ? AND household_id = ?", memberID, householdID).
		First(&member).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if member.Role == models.MemberRoleOwner {
		BadRequest(c, "不能移除家庭拥有者")
		return
	}

	// 存在未结清分摊时禁止移除
	var unpaidCount int64
	if err := database.DB.Model(&models.ExpenseSplit{}).
		Joins("JOIN expenses ON expenses.id = expense_splits.expense_id").
		Where("expenses.household_id = ? AND expense_splits.member_id = ? AND expense_splits.paid = ?",
			householdID, member.ID, false).
		Count(&unpaidCount).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询分摊失败"))
		return
	}
	if unpaidCount > 0 {
		BadRequest(c, fmt.Sprintf("该成员还有 %d 笔未结清分摊，请先完成结算", unpaidCount))
		return
	}

	// 物理删除：软删除行会继续占用 user_id 唯一索引，导致该用户无法再加入家庭
	if err := database.DB.Unscoped().Delete(&member).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "移除成员失败"))
		return
	}

	SuccessWithMessage(c, "成员已移除", nil)
}

// LeaveHousehold 退出家庭
// @Summary 退出家庭
// @Description 成员主动退出家庭。拥有者不能退出，存在未结清分摊时禁止退出。
// @Tags 家庭
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "退出成功"
// @Failure 400 {object} Response "拥有者不能退出或存在未结清分摊"
// @Router /api/v1/households/leave [post]
func (h *HouseholdHandler) LeaveHousehold(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)
	memberID := middleware.GetCurrentMemberID(c)
	role := middleware.GetCurrentMemberRole(c)

	if role == models.MemberRoleOwner {
		BadRequest(c, "家庭拥有者不能退出家庭")
		return
	}

	var unpaidCount int64
	if err := database.DB.Model(&models.ExpenseSplit{}).
		Joins("JOIN expenses ON expenses.id = expense_splits.expense_id").
		Where("expenses.household_id = ? AND expense_splits.member_id = ? AND expense_splits.paid = ?",
			householdID, memberID, false).
		Count(&unpaidCount).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询分摊失败"))
		return
	}
	if unpaidCount > 0 {
		BadRequest(c, fmt.Sprintf("您还有 %d 笔未结清分摊，请先完成结算", unpaidCount))
		return
	}

	// 物理删除，否则 user_id 唯一索引阻止退出后再创建或加入家庭
	if err := database.DB.Unscoped().Where("id = ?", memberID).Delete(&models.HouseholdMember{}).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "退出家庭失败"))
		return
	}

	SuccessWithMessage(c, "已退出家庭", nil)
}

// CreateInvitation 创建邀请
// @Summary 邀请成员
// @Description 拥有者通过邮箱邀请新成员加入家庭，邀请7天内有效
// @Tags 家庭
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateInvitationRequest true "被邀请人邮箱"
// @Success 200 {object} Response "邀请已发送"
// @Failure 400 {object} Response "参数错误或重复邀请"
// @Failure 403 {object} Response "权限不足"
// @Router /api/v1/households/invitations [post]
func (h *HouseholdHandler) CreateInvitation(c *gin.Context) {
	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请输入有效的邮箱地址")
		return
	}

	householdID := middleware.GetCurrentHouseholdID(c)
	userID := middleware.GetCurrentUserID(c)

	// 被邀请人已是本家庭成员则拒绝
	var existingMember int64
	database.DB.Model(&models.HouseholdMember{}).
		Joins("JOIN users ON users.id = household_members.user_id").
		Where("household_members.household_id = ? AND users.email = ?", householdID, req.Email).
		Count(&existingMember)
	if existingMember > 0 {
		BadRequest(c, "该用户已是家庭成员")
		return
	}

	// 同一邮箱存在待处理邀请则拒绝
	var pending models.Invitation
	if err := database.DB.Where("household_id = ? AND email = ? AND status = ? AND expires_at > ?",
		householdID, req.Email, models.InvitationStatusPending, time.Now()).First(&pending).Error; err == nil {
		BadRequest(c, "已向该邮箱发送过邀请，请勿重复邀请")
		return
	}

	token, err := models.GenerateToken()
	if err != nil {
		InternalError(c, "生成令牌失败")
		return
	}

	invitation := models.Invitation{
		HouseholdID: householdID,
		InviterID:   userID,
		Email:       req.Email,
		Token:       token,
		Status:      models.InvitationStatusPending,
		ExpiresAt:   time.Now().AddDate(0, 0, models.InvitationExpireDays),
	}
	if err := database.DB.Create(&invitation).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建邀请失败"))
		return
	}

	var household models.Household
	database.DB.First(&household, householdID)

	acceptLink := fmt.Sprintf("%s/accept-invitation?token=%s", h.cfg.Server.BaseURL, token)
	inviterName := middleware.GetCurrentUsername(c)
	go func() {
		if err := h.emailService.SendInvitationEmail(req.Email, inviterName, household.Name, acceptLink); err != nil {
			log.Printf("发送邀请邮件失败 (invitation_id=%d): %v", invitation.ID, err)
		}
	}()

	SuccessWithMessage(c, "邀请已发送", gin.H{"invitation_id": invitation.ID})
}

// ListInvitations 查询邀请列表
// @Summary 查询邀请列表
// @Description 查询当前家庭的所有邀请记录
// @Tags 家庭
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "邀请列表"
// @Router /api/v1/households/invitations [get]
func (h *HouseholdHandler) ListInvitations(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var invitations []models.Invitation
	if err := database.DB.Where("household_id = ?", householdID).
		Order("created_at DESC").Find(&invitations).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询邀请失败"))
		return
	}

	Success(c, invitations)
}

// RevokeInvitation 撤销邀请
// @Summary 撤销邀请
// @Description 拥有者撤销一条待处理的邀请
// @Tags 家庭
// @Produce json
// @Security BearerAuth
// @Param id path int true "邀请ID"
// @Success 200 {object} Response "撤销成功"
// @Failure 400 {object} Response "邀请已处理"
// @Failure 404 {object} Response "邀请不存在"
// @Router /api/v1/households/invitations/{id} [delete]
func (h *HouseholdHandler) RevokeInvitation(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var invitation models.Invitation
	if err := database.DB.Where("id = ? AND household_id = ?", c.Param("id"), householdID).
		First(&invitation).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	if invitation.Status != models.InvitationStatusPending {
		BadRequest(c, "该邀请已处理，无法撤销")
		return
	}

	if err := database.DB.Model(&invitation).Update("status", models.InvitationStatusRevoked).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "撤销邀请失败"))
		return
	}

	SuccessWithMessage(c, "邀请已撤销", nil)
}

// AcceptInvitation 接受邀请
// @Summary 接受邀请
// @Description 当前登录用户凭令牌接受邀请并加入家庭。已在家庭中的用户不能接受邀请。
// @Tags 家庭
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AcceptInvitationRequest true "邀请令牌"
// @Success 200 {object} Response "加入成功"
// @Failure 400 {object} Response "令牌无效、已过期或用户已在家庭中"
// @Router /api/v1/households/invitations/accept [post]
func (h *HouseholdHandler) AcceptInvitation(c *gin.Context) {
	var req AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "缺少令牌参数")
		return
	}

	userID := middleware.GetCurrentUserID(c)

	var invitation models.Invitation
	if err := database.DB.Where("token = ?", req.Token).First(&invitation).Error; err != nil {
		BadRequest(c, "邀请令牌无效")
		return
	}
	if !invitation.IsValid() {
		BadRequest(c, "邀请已过期或已处理")
		return
	}

	var existing models.HouseholdMember
	if err := database.DB.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		BadRequest(c, "您已在一个家庭中，请先退出当前家庭")
		return
	}

	// 加入成员与更新邀请状态在同一事务中完成
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		member := models.HouseholdMember{
			HouseholdID: invitation.HouseholdID,
			UserID:      userID,
			Role:        models.MemberRoleMember,
			JoinedAt:    time.Now(),
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		return tx.Model(&invitation).Update("status", models.InvitationStatusAccepted).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "加入家庭失败"))
		return
	}

	SuccessWithMessage(c, "已加入家庭", gin.H{"household_id": invitation.HouseholdID})
}
