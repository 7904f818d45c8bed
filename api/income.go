package api

import (
	"time"

	"homefinance/database"
	"homefinance/middleware"
	"homefinance/models"

	"github.com/gin-gonic/gin"
)

// IncomeHandler 收入处理器
type IncomeHandler struct{}

func NewIncomeHandler() *IncomeHandler {
	return &IncomeHandler{}
}

type CreateIncomeRequest struct {
	Amount     float64 `json:"amount" binding:"required,gt=0" example:"5000.00"`
	Source     string  `json:"source" binding:"required" example:"工资"`
	IncomeTime string  `json:"income_time" binding:"required" example:"2024-01-15 09:00:00"`
	MemberID   uint    `json:"member_id" example:"1"` // 不传时默认为当前成员
}

type UpdateIncomeRequest struct {
	Amount     float64 `json:"amount" binding:"omitempty,gt=0"`
	Source     string  `json:"source"`
	IncomeTime string  `json:"income_time"`
}

type IncomeListRequest struct {
	Page      int    `form:"page" example:"1"`
	PageSize  int    `form:"page_size" example:"10"`
	Source    string `form:"source" example:"工资"`
	MemberID  uint   `form:"member_id" example:"2"`
	StartTime string `form:"start_time" example:"2024-01-01"`
	EndTime   string `form:"end_time" example:"2024-12-31"`
}

// Create 创建收入
// @Summary 创建收入
// @Description 创建一条新的家庭收入记录
// @Tags 收入
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateIncomeRequest true "收入信息"
// @Success 200 {object} Response{data=models.Income} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/incomes [post]
func (h *IncomeHandler) Create(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)
	memberID := middleware.GetCurrentMemberID(c)

	var req CreateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", req.IncomeTime, time.Local)
	if err != nil {
		BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
		return
	}

	incomeMemberID := req.MemberID
	if incomeMemberID == 0 {
		incomeMemberID = memberID
	} else {
		var member models.HouseholdMember
		if err := database.DB.Where("id = ? AND household_id = ?", incomeMemberID, householdID).
			First(&member).Error; err != nil {
			BadRequest(c, "收入成员不属于本家庭")
			return
		}
	}

	in := models.Income{
		HouseholdID: householdID,
		MemberID:    incomeMemberID,
		Amount:      req.Amount,
		Source:      req.Source,
		IncomeTime:  t,
	}
	if err := database.DB.Create(&in).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建收入失败"))
		return
	}
	SuccessWithMessage(c, "创建成功", in)
}

// List 获取收入列表
// @Summary 获取收入列表
// @Description 获取当前家庭的收入列表，支持分页与筛选
// @Tags 收入
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param source query string false "收入来源筛选"
// @Param member_id query int false "成员筛选"
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Income}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/incomes [get]
func (h *IncomeHandler) List(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var req IncomeListRequest
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

	query := database.DB.Model(&models.Income{}).Where("household_id = ?", householdID)
	if req.Source != "" {
		query = query.Where("source = ?", req.Source)
	}
	if req.MemberID > 0 {
		query = query.Where("member_id = ?", req.MemberID)
	}
	if req.StartTime != "" {
		if t, err := time.ParseInLocation("2006-01-02", req.StartTime, time.Local); err == nil {
			query = query.Where("income_time >= ?", t)
		}
	}
	if req.EndTime != "" {
		if t, err := time.ParseInLocation("2006-01-02", req.EndTime, time.Local); err == nil {
			t = t.Add(24*time.Hour - time.Second)
			query = query.Where("income_time <= ?", t)
		}
	}

	var total int64
	query.Count(&total)

	var incomes []models.Income
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("income_time DESC").Offset(offset).Limit(req.PageSize).
		Find(&incomes).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     incomes,
	})
}

// Update 更新收入
// @Summary 更新收入
// @Tags 收入
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "收入ID"
// @Param request body UpdateIncomeRequest true "收入信息"
// @Success 200 {object} Response{data=models.Income} "更新成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/incomes/{id} [put]
func (h *IncomeHandler) Update(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var income models.Income
	if err := database.DB.Where("id = ? AND household_id = ?", c.Param("id"), householdID).
		First(&income).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Amount > 0 {
		updates["amount"] = req.Amount
	}
	if req.Source != "" {
		updates["source"] = req.Source
	}
	if req.IncomeTime != "" {
		t, err := time.ParseInLocation("2006-01-02 15:04:05", req.IncomeTime, time.Local)
		if err != nil {
			BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
			return
		}
		updates["income_time"] = t
	}

	if err := database.DB.Model(&income).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&income, income.ID)
	SuccessWithMessage(c, "更新成功", income)
}

// Delete 删除收入
// @Summary 删除收入
// @Tags 收入
// @Produce json
// @Security BearerAuth
// @Param id path int true "收入ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/incomes/{id} [delete]
func (h *IncomeHandler) Delete(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var income models.Income
	if err := database.DB.Where("id = ? AND household_id = ?", c.Param("id"), householdID).
		First(&income).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&income).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
