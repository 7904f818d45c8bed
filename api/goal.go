package api

import (
	"errors"
	"time"

	"homefinance/database"
	"homefinance/middleware"
	"homefinance/models"
	"homefinance/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// errGoalCompleted 事务内部哨兵错误，用于区分业务拒绝与数据库错误
var errGoalCompleted = errors.New("目标已完成")

// GoalHandler 储蓄目标处理器
type GoalHandler struct{}

// NewGoalHandler 创建储蓄目标处理器
func NewGoalHandler() *GoalHandler {
	return &GoalHandler{}
}

// CreateGoalRequest 创建储蓄目标请求
type CreateGoalRequest struct {
	Name         string  `json:"name" binding:"required,min=1,max=100" example:"家庭旅行基金"`
	TargetAmount float64 `json:"target_amount" binding:"required,gt=0" example:"20000"`
	TargetDate   string  `json:"target_date" example:"2024-12-31"`
}

// UpdateGoalRequest 更新储蓄目标请求
type UpdateGoalRequest struct {
	Name         string  `json:"name" example:"家庭旅行基金"`
	TargetAmount float64 `json:"target_amount" binding:"omitempty,gt=0" example:"20000"`
	TargetDate   string  `json:"target_date" example:"2024-12-31"`
}

// ContributeRequest 存入金额请求
type ContributeRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0" example:"500"`
}

// Create 创建储蓄目标
// @Summary 创建储蓄目标
// @Tags 储蓄目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateGoalRequest true "目标信息"
// @Success 200 {object} Response{data=models.SavingsGoal} "创建成功"
// @Failure 400 {object} Response "参数错误"
// @Router /api/v1/goals [post]
func (h *GoalHandler) Create(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	goal := models.SavingsGoal{
		HouseholdID:  householdID,
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		Status:       models.GoalStatusActive,
	}
	if req.TargetDate != "" {
		targetDate, err := time.ParseInLocation("2006-01-02", req.TargetDate, time.Local)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2024-12-31")
			return
		}
		goal.TargetDate = &targetDate
	}

	if err := database.DB.Create(&goal).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", goal)
}

// List 查询储蓄目标列表
// @Summary 查询储蓄目标列表
// @Tags 储蓄目标
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.SavingsGoal} "获取成功"
// @Router /api/v1/goals [get]
func (h *GoalHandler) List(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var goals []models.SavingsGoal
	if err := database.DB.Where("household_id = ?", householdID).
		Order("created_at DESC").Find(&goals).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, goals)
}

// Update 更新储蓄目标
// @Summary 更新储蓄目标
// @Tags 储蓄目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标ID"
// @Param request body UpdateGoalRequest true "目标信息"
// @Success 200 {object} Response{data=models.SavingsGoal} "更新成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/goals/{id} [put]
func (h *GoalHandler) Update(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var goal models.SavingsGoal
	if err := database.DB.Where("id = ? AND household_id = ?", c.Param("id"), householdID).
		First(&goal).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.TargetAmount > 0 {
		updates["target_amount"] = req.TargetAmount
		// 提高目标金额可能使已完成的目标回到进行中
		if goal.Status == models.GoalStatusCompleted && goal.CurrentAmount < req.TargetAmount {
			updates["status"] = models.GoalStatusActive
		}
	}
	if req.TargetDate != "" {
		targetDate, err := time.ParseInLocation("2006-01-02", req.TargetDate, time.Local)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2024-12-31")
			return
		}
		updates["target_date"] = targetDate
	}

	if err := database.DB.Model(&goal).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&goal, goal.ID)
	SuccessWithMessage(c, "更新成功", goal)
}

// Delete 删除储蓄目标
// @Summary 删除储蓄目标
// @Tags 储蓄目标
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/goals/{id} [delete]
func (h *GoalHandler) Delete(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var goal models.SavingsGoal
	if err := database.DB.Where("id = ? AND household_id = ?", c.Param("id"), householdID).
		First(&goal).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&goal).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// Contribute 向目标存入金额
// @Summary 向目标存入金额
// @Description 累加当前金额，达到目标金额时状态转换为已完成。已完成的目标不能继续存入。
// @Tags 储蓄目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标ID"
// @Param request body ContributeRequest true "存入金额"
// @Success 200 {object} Response{data=models.SavingsGoal} "存入成功"
// @Failure 400 {object} Response "目标已完成或参数错误"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/goals/{id}/contribute [post]
func (h *GoalHandler) Contribute(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var goal models.SavingsGoal
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND household_id = ?", c.Param("id"), householdID).
			First(&goal).Error; err != nil {
			return err
		}
		if goal.Status == models.GoalStatusCompleted {
			return errGoalCompleted
		}

		newAmount := service.Round2(goal.CurrentAmount + req.Amount)
		updates := map[string]interface{}{"current_amount": newAmount}
		if newAmount >= goal.TargetAmount {
			updates["status"] = models.GoalStatusCompleted
		}
		if err := tx.Model(&goal).Updates(updates).Error; err != nil {
			return err
		}
		goal.CurrentAmount = newAmount
		if newAmount >= goal.TargetAmount {
			goal.Status = models.GoalStatusCompleted
		}
		return nil
	})
	if errors.Is(err, errGoalCompleted) {
		BadRequest(c, "目标已完成，不能继续存入")
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, "记录不存在")
		return
	}
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "存入失败"))
		return
	}

	if goal.Status == models.GoalStatusCompleted {
		SuccessWithMessage(c, "存入成功，目标已达成 🎉", goal)
	} else {
		SuccessWithMessage(c, "存入成功", goal)
	}
}

