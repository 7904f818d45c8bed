package api

import (
	"strconv"
	"strings"
	"time"

	"homefinance/database"
	"homefinance/middleware"
	"homefinance/models"
	"homefinance/service"

	"github.com/gin-gonic/gin"
)

// BudgetHandler 预算处理器
type BudgetHandler struct{}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler() *BudgetHandler {
	return &BudgetHandler{}
}

// SetMonthlyBudgetRequest 设置月度总预算请求
type SetMonthlyBudgetRequest struct {
	Year   int     `json:"year" binding:"required,min=2000,max=2100" example:"2024"`
	Month  int     `json:"month" binding:"required,min=1,max=12" example:"1"`
	Amount float64 `json:"amount" binding:"required,gt=0" example:"5000"`
}

// SetCategoryBudgetRequest 设置类别预算请求
type SetCategoryBudgetRequest struct {
	Category string  `json:"category" binding:"required" example:"餐饮"`
	Year     int     `json:"year" binding:"required,min=2000,max=2100" example:"2024"`
	Month    int     `json:"month" binding:"required,min=1,max=12" example:"1"`
	Amount   float64 `json:"amount" binding:"required,gt=0" example:"1500"`
}

// parsePeriod 解析 year/month 查询参数，缺省时取当前年月
func parsePeriod(c *gin.Context) (int, int, bool) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	if s := c.Query("year"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 2000 || v > 2100 {
			return 0, 0, false
		}
		year = v
	}
	if s := c.Query("month"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > 12 {
			return 0, 0, false
		}
		month = v
	}
	return year, month, true
}

// monthRange 某年月的起止时间
func monthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end
}

// SetMonthlyBudget 设置月度总预算
// @Summary 设置月度总预算
// @Description 设置某年月的家庭总预算，已存在时覆盖金额（幂等）
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SetMonthlyBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.MonthlyBudget} "设置成功"
// @Failure 400 {object} Response "参数错误"
// @Router /api/v1/budgets/monthly [put]
func (h *BudgetHandler) SetMonthlyBudget(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var req SetMonthlyBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var budget models.MonthlyBudget
	err := database.DB.Where("household_id = ? AND year = ? AND month = ?",
		householdID, req.Year, req.Month).First(&budget).Error
	if err == nil {
		if err := database.DB.Model(&budget).Update("amount", req.Amount).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新预算失败"))
			return
		}
		budget.Amount = req.Amount
		SuccessWithMessage(c, "预算已更新", budget)
		return
	}

	budget = models.MonthlyBudget{
		HouseholdID: householdID,
		Year:        req.Year,
		Month:       req.Month,
		Amount:      req.Amount,
	}
	if err := database.DB.Create(&budget).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建预算失败"))
		return
	}
	SuccessWithMessage(c, "预算已设置", budget)
}

// SetCategoryBudget 设置类别预算
// @Summary 设置类别预算
// @Description 设置某年月某类别的预算，已存在时覆盖金额（幂等）
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SetCategoryBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.CategoryBudget} "设置成功"
// @Failure 400 {object} Response "参数错误"
// @Router /api/v1/budgets/category [put]
func (h *BudgetHandler) SetCategoryBudget(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var req SetCategoryBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	req.Category = strings.TrimSpace(req.Category)
	if !models.IsValidCategory(req.Category) {
		BadRequest(c, "无效的消费类别")
		return
	}

	var budget models.CategoryBudget
	err := database.DB.Where("household_id = ? AND category = ? AND year = ? AND month = ?",
		householdID, req.Category, req.Year, req.Month).First(&budget).Error
	if err == nil {
		if err := database.DB.Model(&budget).Update("amount", req.Amount).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新预算失败"))
			return
		}
		budget.Amount = req.Amount
		SuccessWithMessage(c, "预算已更新", budget)
		return
	}

	budget = models.CategoryBudget{
		HouseholdID: householdID,
		Category:    req.Category,
		Year:        req.Year,
		Month:       req.Month,
		Amount:      req.Amount,
	}
	if err := database.DB.Create(&budget).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建预算失败"))
		return
	}
	SuccessWithMessage(c, "预算已设置", budget)
}

// List 查询预算列表
// @Summary 查询预算列表
// @Description 查询某年月的月度总预算和所有类别预算，默认当前年月
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param year query int false "年份"
// @Param month query int false "月份"
// @Success 200 {object} Response "预算列表"
// @Failure 400 {object} Response "参数错误"
// @Router /api/v1/budgets [get]
func (h *BudgetHandler) List(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	year, month, ok := parsePeriod(c)
	if !ok {
		BadRequest(c, "year/month参数错误")
		return
	}

	var monthly *models.MonthlyBudget
	var mb models.MonthlyBudget
	if err := database.DB.Where("household_id = ? AND year = ? AND month = ?",
		householdID, year, month).First(&mb).Error; err == nil {
		monthly = &mb
	}

	var categoryBudgets []models.CategoryBudget
	if err := database.DB.Where("household_id = ? AND year = ? AND month = ?",
		householdID, year, month).Order("category ASC").Find(&categoryBudgets).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询预算失败"))
		return
	}

	Success(c, gin.H{
		"year":             year,
		"month":            month,
		"monthly_budget":   monthly,
		"category_budgets": categoryBudgets,
	})
}

// DeleteMonthlyBudget 删除月度总预算
// @Summary 删除月度总预算
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/budgets/monthly/{id} [delete]
func (h *BudgetHandler) DeleteMonthlyBudget(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var budget models.MonthlyBudget
	if err := database.DB.Where("id = ? AND household_id = ?", c.Param("id"), householdID).
		First(&budget).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	// 物理删除，软删除行会占用 uk_household_period 阻止同周期重新设置
	if err := database.DB.Unscoped().Delete(&budget).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// DeleteCategoryBudget 删除类别预算
// @Summary 删除类别预算
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/budgets/category/{id} [delete]
func (h *BudgetHandler) DeleteCategoryBudget(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var budget models.CategoryBudget
	if err := database.DB.Where("id = ? AND household_id = ?", c.Param("id"), householdID).
		First(&budget).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	// 同月度预算，物理删除释放 uk_household_cat_period
	if err := database.DB.Unscoped().Delete(&budget).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// GetStatus 查询预算执行状态
// @Summary 查询预算执行状态
// @Description 对比某年月的预算与实际消费，返回每项预算的告警级别（ok/warning/danger）。默认当前年月。
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param year query int false "年份"
// @Param month query int false "月份"
// @Success 200 {object} Response "预算执行状态"
// @Failure 400 {object} Response "参数错误"
// @Router /api/v1/budgets/status [get]
func (h *BudgetHandler) GetStatus(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	year, month, ok := parsePeriod(c)
	if !ok {
		BadRequest(c, "year/month参数错误")
		return
	}
	start, end := monthRange(year, month)

	// 当月总消费
	var totalSpent float64
	database.DB.Model(&models.Expense{}).
		Where("household_id = ? AND expense_time >= ? AND expense_time <= ?", householdID, start, end).
		Select("COALESCE(SUM(amount), 0)").Scan(&totalSpent)

	// 当月各类别消费
	type categorySpent struct {
		Category string
		Total    float64
	}
	var spentRows []categorySpent
	database.DB.Model(&models.Expense{}).
		Select("category, SUM(amount) as total").
		Where("household_id = ? AND expense_time >= ? AND expense_time <= ?", householdID, start, end).
		Group("category").Scan(&spentRows)
	spentByCategory := make(map[string]float64, len(spentRows))
	for _, r := range spentRows {
		spentByCategory[r.Category] = r.Total
	}

	// 月度总预算状态
	var monthlyStatus *service.BudgetStatus
	var mb models.MonthlyBudget
	if err := database.DB.Where("household_id = ? AND year = ? AND month = ?",
		householdID, year, month).First(&mb).Error; err == nil {
		s := service.EvaluateBudget(totalSpent, mb.Amount)
		monthlyStatus = &s
	}

	// 类别预算状态
	var categoryBudgets []models.CategoryBudget
	if err := database.DB.Where("household_id = ? AND year = ? AND month = ?",
		householdID, year, month).Order("category ASC").Find(&categoryBudgets).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询预算失败"))
		return
	}

	type categoryStatus struct {
		Category string `json:"category"`
		service.BudgetStatus
	}
	categoryStatuses := make([]categoryStatus, 0, len(categoryBudgets))
	for _, cb := range categoryBudgets {
		categoryStatuses = append(categoryStatuses, categoryStatus{
			Category:     cb.Category,
			BudgetStatus: service.EvaluateBudget(spentByCategory[cb.Category], cb.Amount),
		})
	}

	Success(c, gin.H{
		"year":            year,
		"month":           month,
		"monthly_status":  monthlyStatus,
		"category_status": categoryStatuses,
	})
}
