package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"homefinance/database"
	"homefinance/middleware"
	"homefinance/models"
	"homefinance/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ExpenseHandler 消费记录处理器
type ExpenseHandler struct{}

// NewExpenseHandler 创建消费记录处理器
func NewExpenseHandler() *ExpenseHandler {
	return &ExpenseHandler{}
}

// SplitRequest 分摊项
type SplitRequest struct {
	MemberID uint    `json:"member_id" binding:"required" example:"2"`
	Amount   float64 `json:"amount" binding:"required,gt=0" example:"33.33"`
}

// CreateExpenseRequest 创建消费记录请求
type CreateExpenseRequest struct {
	Amount        float64        `json:"amount" binding:"required,gt=0" example:"99.99"`
	Category      string         `json:"category" binding:"required" example:"餐饮"`
	Note          string         `json:"note" example:"周末聚餐"`
	Tags          string         `json:"tags" example:"聚餐,周末"`
	ExpenseTime   string         `json:"expense_time" binding:"required" example:"2024-01-15 12:30:00"`
	PayerMemberID uint           `json:"payer_member_id" example:"1"` // 不传时默认为当前成员
	Splits        []SplitRequest `json:"splits"`
}

// UpdateExpenseRequest 更新消费记录请求
type UpdateExpenseRequest struct {
	Amount      float64        `json:"amount" binding:"omitempty,gt=0" example:"99.99"`
	Category    string         `json:"category" example:"餐饮"`
	Note        string         `json:"note" example:"周末聚餐"`
	Tags        string         `json:"tags" example:"聚餐,周末"`
	ExpenseTime string         `json:"expense_time" example:"2024-01-15 12:30:00"`
	Splits      []SplitRequest `json:"splits"` // 传入时整体替换未结清的分摊
}

// ExpenseListRequest 消费记录列表请求
type ExpenseListRequest struct {
	Page      int    `form:"page" example:"1"`
	PageSize  int    `form:"page_size" example:"10"`
	Category  string `form:"category" example:"餐饮"`
	MemberID  uint   `form:"member_id" example:"2"`
	Tag       string `form:"tag" example:"聚餐"`
	StartTime string `form:"start_time" example:"2024-01-01"`
	EndTime   string `form:"end_time" example:"2024-12-31"`
}

// validateSplits 校验分摊项：成员必须属于本家庭，分摊总额不得超过消费金额
func validateSplits(householdID uint, amount float64, splits []SplitRequest) error {
	if len(splits) == 0 {
		return nil
	}

	seen := make(map[uint]bool)
	var sum float64
	for _, s := range splits {
		if seen[s.MemberID] {
			return fmt.Errorf("成员 %d 在分摊中出现多次", s.MemberID)
		}
		seen[s.MemberID] = true
		sum += s.Amount
	}
	if service.Round2(sum) > amount {
		return fmt.Errorf("分摊总额 %.2f 超过消费金额 %.2f", service.Round2(sum), amount)
	}

	memberIDs := make([]uint, 0, len(splits))
	for id := range seen {
		memberIDs = append(memberIDs, id)
	}
	var count int64
	if err := database.DB.Model(&models.HouseholdMember{}).
		Where("household_id = ? AND id IN ?", householdID, memberIDs).
		Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(memberIDs)) {
		return fmt.Errorf("分摊中包含非本家庭成员")
	}
	return nil
}

// Create 创建消费记录
// @Summary 创建消费记录
// @Description 创建一条新的消费记录，可选地在家庭成员间分摊。分摊总额不得超过消费金额。
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateExpenseRequest true "消费记录信息"
// @Success 200 {object} Response{data=models.Expense} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)
	memberID := middleware.GetCurrentMemberID(c)

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	req.Category = strings.TrimSpace(req.Category)
	if !models.IsValidCategory(req.Category) {
		BadRequest(c, "无效的消费类别")
		return
	}

	expenseTime, err := time.ParseInLocation("2006-01-02 15:04:05", req.ExpenseTime, time.Local)
	if err != nil {
		BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
		return
	}

	// 付款人默认为当前成员，指定时必须属于本家庭
	payerID := req.PayerMemberID
	if payerID == 0 {
		payerID = memberID
	} else {
		var payer models.HouseholdMember
		if err := database.DB.Where("id = ? AND household_id = ?", payerID, householdID).
			First(&payer).Error; err != nil {
			BadRequest(c, "付款成员不属于本家庭")
			return
		}
	}

	if err := validateSplits(householdID, req.Amount, req.Splits); err != nil {
		BadRequest(c, err.Error())
		return
	}

	expense := models.Expense{
		HouseholdID:   householdID,
		PayerMemberID: payerID,
		Amount:        req.Amount,
		Category:      req.Category,
		Note:          req.Note,
		Tags:          req.Tags,
		ExpenseTime:   expenseTime,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&expense).Error; err != nil {
			return err
		}
		for _, s := range req.Splits {
			split := models.ExpenseSplit{
				ExpenseID: expense.ID,
				MemberID:  s.MemberID,
				Amount:    service.Round2(s.Amount),
				// 付款人自己的份额视为已结清
				Paid: s.MemberID == payerID,
			}
			if split.Paid {
				now := time.Now()
				split.PaidAt = &now
			}
			if err := tx.Create(&split).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "创建消费记录失败"))
		return
	}

	database.DB.Preload("Splits").First(&expense, expense.ID)
	SuccessWithMessage(c, "创建成功", expense)
}

// List 获取消费记录列表
// @Summary 获取消费记录列表
// @Description 获取当前家庭的消费记录列表，支持分页和筛选
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param category query string false "类别筛选"
// @Param member_id query int false "付款成员筛选"
// @Param tag query string false "标签筛选"
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Expense}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var req ExpenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 默认分页参数
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	query := database.DB.Model(&models.Expense{}).Where("household_id = ?", householdID)

	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	if req.MemberID > 0 {
		query = query.Where("payer_member_id = ?", req.MemberID)
	}
	if req.Tag != "" {
		query = query.Where("FIND_IN_SET(?, tags) > 0", strings.TrimSpace(req.Tag))
	}

	// 时间范围筛选
	if req.StartTime != "" {
		startTime, err := time.ParseInLocation("2006-01-02", req.StartTime, time.Local)
		if err == nil {
			query = query.Where("expense_time >= ?", startTime)
		}
	}
	if req.EndTime != "" {
		endTime, err := time.ParseInLocation("2006-01-02", req.EndTime, time.Local)
		if err == nil {
			// 包含结束日期当天
			endTime = endTime.Add(24*time.Hour - time.Second)
			query = query.Where("expense_time <= ?", endTime)
		}
	}

	var total int64
	query.Count(&total)

	var expenses []models.Expense
	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("Splits").Order("expense_time DESC").
		Offset(offset).Limit(req.PageSize).Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     expenses,
	})
}

// Get 获取单条消费记录
// @Summary 获取单条消费记录
// @Description 根据ID获取消费记录详情，包含分摊明细
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Success 200 {object} Response{data=models.Expense} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var expense models.Expense
	if err := database.DB.Preload("Splits").
		Where("id = ? AND household_id = ?", id, householdID).First(&expense).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	Success(c, expense)
}

// Update 更新消费记录
// @Summary 更新消费记录
// @Description 更新指定的消费记录。传入 splits 时整体替换分摊，已结清的分摊不可替换。
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Param request body UpdateExpenseRequest true "消费记录信息"
// @Success 200 {object} Response{data=models.Expense} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var expense models.Expense
	if err := database.DB.Where("id = ? AND household_id = ?", id, householdID).
		First(&expense).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 更新字段
	updates := make(map[string]interface{})
	newAmount := expense.Amount
	if req.Amount > 0 {
		updates["amount"] = req.Amount
		newAmount = req.Amount
	}
	if req.Category != "" {
		req.Category = strings.TrimSpace(req.Category)
		if !models.IsValidCategory(req.Category) {
			BadRequest(c, "无效的消费类别")
			return
		}
		updates["category"] = req.Category
	}
	if req.Note != "" {
		updates["note"] = req.Note
	}
	if req.Tags != "" {
		updates["tags"] = req.Tags
	}
	if req.ExpenseTime != "" {
		expenseTime, err := time.ParseInLocation("2006-01-02 15:04:05", req.ExpenseTime, time.Local)
		if err != nil {
			BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
			return
		}
		updates["expense_time"] = expenseTime
	}

	if req.Splits != nil {
		// 已结清的分摊不允许被替换
		var paidCount int64
		database.DB.Model(&models.ExpenseSplit{}).
			Where("expense_id = ? AND paid = ?", expense.ID, true).Count(&paidCount)
		if paidCount > 0 {
			BadRequest(c, "该消费已有结清的分摊，不能修改分摊")
			return
		}
		if err := validateSplits(householdID, newAmount, req.Splits); err != nil {
			BadRequest(c, err.Error())
			return
		}
	} else if req.Amount > 0 {
		// 仅改金额时，确保现有分摊总额仍不超过新金额
		var splitSum float64
		database.DB.Model(&models.ExpenseSplit{}).
			Where("expense_id = ?", expense.ID).
			Select("COALESCE(SUM(amount), 0)").Scan(&splitSum)
		if service.Round2(splitSum) > newAmount {
			BadRequest(c, fmt.Sprintf("现有分摊总额 %.2f 超过新金额 %.2f", service.Round2(splitSum), newAmount))
			return
		}
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&expense).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.Splits != nil {
			// 整体替换需物理删除旧分摊，软删除行会占用 uk_expense_member 阻止同成员重建
			if err := tx.Unscoped().Where("expense_id = ?", expense.ID).
				Delete(&models.ExpenseSplit{}).Error; err != nil {
				return err
			}
			for _, s := range req.Splits {
				split := models.ExpenseSplit{
					ExpenseID: expense.ID,
					MemberID:  s.MemberID,
					Amount:    service.Round2(s.Amount),
					Paid:      s.MemberID == expense.PayerMemberID,
				}
				if split.Paid {
					now := time.Now()
					split.PaidAt = &now
				}
				if err := tx.Create(&split).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	// 重新获取更新后的记录
	database.DB.Preload("Splits").First(&expense, expense.ID)
	SuccessWithMessage(c, "更新成功", expense)
}

// Delete 删除消费记录
// @Summary 删除消费记录
// @Description 删除指定的消费记录及其分摊
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var expense models.Expense
	if err := database.DB.Where("id = ? AND household_id = ?", id, householdID).
		First(&expense).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("expense_id = ?", expense.ID).
			Delete(&models.ExpenseSplit{}).Error; err != nil {
			return err
		}
		return tx.Delete(&expense).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// MarkSplitPaid 标记分摊已结清
// @Summary 标记分摊已结清
// @Description 将某条分摊标记为已结清（或取消标记）
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Param split_id path int true "分摊ID"
// @Param paid query bool false "是否已结清" default(true)
// @Success 200 {object} Response "更新成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id}/splits/{split_id}/paid [put]
func (h *ExpenseHandler) MarkSplitPaid(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var expense models.Expense
	if err := database.DB.Where("id = ? AND household_id = ?", c.Param("id"), householdID).
		First(&expense).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var split models.ExpenseSplit
	if err := database.DB.Where("id = ? AND expense_id = ?", c.Param("split_id"), expense.ID).
		First(&split).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	paid := c.DefaultQuery("paid", "true") == "true"
	updates := map[string]interface{}{"paid": paid}
	if paid {
		updates["paid_at"] = time.Now()
	} else {
		updates["paid_at"] = nil
	}

	if err := database.DB.Model(&split).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", nil)
}

// GetStatistics 获取消费统计
// @Summary 获取消费统计
// @Description 获取指定时间范围内的家庭消费统计
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {object} Response "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses/statistics [get]
func (h *ExpenseHandler) GetStatistics(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	startTimeStr := c.Query("start_time")
	endTimeStr := c.Query("end_time")

	query := database.DB.Model(&models.Expense{}).Where("household_id = ?", householdID)
	memberQuery := database.DB.Model(&models.Expense{}).Where("household_id = ?", householdID)
	categoryQuery := database.DB.Model(&models.Expense{}).Where("household_id = ?", householdID)

	// 时间范围筛选
	if startTimeStr != "" {
		startTime, err := time.ParseInLocation("2006-01-02", startTimeStr, time.Local)
		if err == nil {
			query = query.Where("expense_time >= ?", startTime)
			memberQuery = memberQuery.Where("expense_time >= ?", startTime)
			categoryQuery = categoryQuery.Where("expense_time >= ?", startTime)
		}
	}
	if endTimeStr != "" {
		endTime, err := time.ParseInLocation("2006-01-02", endTimeStr, time.Local)
		if err == nil {
			endTime = endTime.Add(24*time.Hour - time.Second)
			query = query.Where("expense_time <= ?", endTime)
			memberQuery = memberQuery.Where("expense_time <= ?", endTime)
			categoryQuery = categoryQuery.Where("expense_time <= ?", endTime)
		}
	}

	// 总金额
	var totalAmount float64
	query.Select("COALESCE(SUM(amount), 0)").Scan(&totalAmount)

	// 按类别统计
	type CategoryStat struct {
		Category string  `json:"category"`
		Total    float64 `json:"total"`
		Count    int64   `json:"count"`
	}
	var categoryStats []CategoryStat
	categoryQuery.Select("category, SUM(amount) as total, COUNT(*) as count").
		Group("category").
		Order("total DESC").
		Scan(&categoryStats)

	// 按付款成员统计
	type MemberStat struct {
		MemberID uint    `json:"member_id"`
		Total    float64 `json:"total"`
		Count    int64   `json:"count"`
	}
	var memberStats []MemberStat
	memberQuery.Select("payer_member_id as member_id, SUM(amount) as total, COUNT(*) as count").
		Group("payer_member_id").
		Order("total DESC").
		Scan(&memberStats)

	Success(c, gin.H{
		"total_amount":   totalAmount,
		"category_stats": categoryStats,
		"member_stats":   memberStats,
	})
}

// GetDetailedStatistics 获取详细消费统计（支持月/年/自定义时间范围和多个类别筛选）
// @Summary 获取详细消费统计
// @Description 获取家庭消费统计信息，支持多种时间范围筛选（月、年、自定义）和多个类别筛选。返回按类别统计的数据，适合绘制饼图和柱状图。
// @Description
// @Description 时间范围类型说明：
// @Description - month: 按月统计，需要传入 year_month 参数（格式：2024-01）
// @Description - year: 按年统计，需要传入 year 参数（格式：2024）
// @Description - custom: 自定义时间范围，需要传入 start_time 和 end_time 参数（格式：2024-01-01）
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param range_type query string true "时间范围类型：month（月）/year（年）/custom（自定义）" Enums(month,year,custom)
// @Param year_month query string false "年月（当range_type=month时必填，格式：2024-01）"
// @Param year query string false "年份（当range_type=year时必填，格式：2024）"
// @Param start_time query string false "开始时间（当range_type=custom时必填，格式：2024-01-01）"
// @Param end_time query string false "结束时间（当range_type=custom时必填，格式：2024-12-31）"
// @Param categories query string false "类别筛选，多个类别用逗号分隔（如：餐饮,交通）"
// @Success 200 {object} Response "获取成功，返回统计数据和分类统计"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses/detailed-statistics [get]
func (h *ExpenseHandler) GetDetailedStatistics(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	rangeType := c.Query("range_type")
	if rangeType == "" {
		BadRequest(c, "range_type参数必填，可选值：month、year、custom")
		return
	}

	var startTime, endTime time.Time
	var err error

	// 根据时间范围类型设置时间范围
	switch rangeType {
	case "month":
		yearMonth := c.Query("year_month")
		if yearMonth == "" {
			BadRequest(c, "range_type=month时，year_month参数必填（格式：2024-01）")
			return
		}
		startTime, err = time.ParseInLocation("2006-01", yearMonth, time.Local)
		if err != nil {
			BadRequest(c, "year_month格式错误，应为：2024-01")
			return
		}
		startTime = time.Date(startTime.Year(), startTime.Month(), 1, 0, 0, 0, 0, time.Local)
		endTime = startTime.AddDate(0, 1, 0).Add(-time.Second)

	case "year":
		yearStr := c.Query("year")
		if yearStr == "" {
			BadRequest(c, "range_type=year时，year参数必填（格式：2024）")
			return
		}
		year, err := strconv.Atoi(yearStr)
		if err != nil || year < 2000 || year > 2100 {
			BadRequest(c, "year格式错误，应为4位数字（如：2024）")
			return
		}
		startTime = time.Date(year, 1, 1, 0, 0, 0, 0, time.Local)
		endTime = time.Date(year, 12, 31, 23, 59, 59, 0, time.Local)

	case "custom":
		startTimeStr := c.Query("start_time")
		endTimeStr := c.Query("end_time")
		if startTimeStr == "" || endTimeStr == "" {
			BadRequest(c, "range_type=custom时，start_time和end_time参数必填（格式：2024-01-01）")
			return
		}
		startTime, err = time.ParseInLocation("2006-01-02", startTimeStr, time.Local)
		if err != nil {
			BadRequest(c, "start_time格式错误，应为：2024-01-01")
			return
		}
		endTime, err = time.ParseInLocation("2006-01-02", endTimeStr, time.Local)
		if err != nil {
			BadRequest(c, "end_time格式错误，应为：2024-12-31")
			return
		}
		// 包含结束日期当天
		endTime = endTime.Add(24*time.Hour - time.Second)

	default:
		BadRequest(c, "range_type参数值错误，可选值：month、year、custom")
		return
	}

	query := database.DB.Model(&models.Expense{}).
		Where("household_id = ? AND expense_time >= ? AND expense_time <= ?", householdID, startTime, endTime)

	// 类别筛选（支持多个类别）
	categoriesStr := c.Query("categories")
	var categories []string
	if categoriesStr != "" {
		categories = strings.Split(categoriesStr, ",")
		for i := range categories {
			categories[i] = strings.TrimSpace(categories[i])
		}
		query = query.Where("category IN ?", categories)
	}

	// 总金额和总记录数
	var totalAmount float64
	var totalCount int64
	query.Select("COALESCE(SUM(amount), 0)").Scan(&totalAmount)
	query.Count(&totalCount)

	// 按类别统计
	type CategoryStat struct {
		Category   string  `json:"category"`
		Total      float64 `json:"total"`
		Count      int64   `json:"count"`
		Percentage float64 `json:"percentage"`
	}
	var categoryStats []CategoryStat

	categoryQuery := database.DB.Model(&models.Expense{}).
		Select("category, SUM(amount) as total, COUNT(*) as count").
		Where("household_id = ? AND expense_time >= ? AND expense_time <= ?", householdID, startTime, endTime)
	if len(categories) > 0 {
		categoryQuery = categoryQuery.Where("category IN ?", categories)
	}
	categoryQuery.Group("category").Order("total DESC").Scan(&categoryStats)

	// 计算每个类别的占比
	for i := range categoryStats {
		if totalAmount > 0 {
			categoryStats[i].Percentage = (categoryStats[i].Total / totalAmount) * 100
		}
	}

	Success(c, gin.H{
		"range_type":     rangeType,
		"start_time":     startTime.Format("2006-01-02 15:04:05"),
		"end_time":       endTime.Format("2006-01-02 15:04:05"),
		"total_amount":   totalAmount,
		"total_count":    totalCount,
		"category_stats": categoryStats,
	})
}
