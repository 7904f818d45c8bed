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
	"gorm.io/gorm"
)

// RecurringHandler 周期性消费处理器
type RecurringHandler struct{}

// NewRecurringHandler 创建周期性消费处理器
func NewRecurringHandler() *RecurringHandler {
	return &RecurringHandler{}
}

// CreateRecurringRequest 创建周期性消费请求
type CreateRecurringRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0" example:"39.9"`
	Category      string  `json:"category" binding:"required" example:"娱乐"`
	Note          string  `json:"note" example:"视频会员"`
	Frequency     string  `json:"frequency" binding:"required" example:"monthly"`
	NextDueDate   string  `json:"next_due_date" binding:"required" example:"2024-02-01"`
	PayerMemberID uint    `json:"payer_member_id" example:"1"` // 不传时默认为当前成员
}

// UpdateRecurringRequest 更新周期性消费请求
type UpdateRecurringRequest struct {
	Amount      float64 `json:"amount" binding:"omitempty,gt=0" example:"39.9"`
	Category    string  `json:"category" example:"娱乐"`
	Note        string  `json:"note" example:"视频会员"`
	Frequency   string  `json:"frequency" example:"monthly"`
	NextDueDate string  `json:"next_due_date" example:"2024-02-01"`
}

// Create 创建周期性消费
// @Summary 创建周期性消费
// @Description 创建一个周期性消费模板，到期后可生成具体消费记录
// @Tags 周期性消费
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRecurringRequest true "周期性消费信息"
// @Success 200 {object} Response{data=models.RecurringExpense} "创建成功"
// @Failure 400 {object} Response "参数错误"
// @Router /api/v1/recurring [post]
func (h *RecurringHandler) Create(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)
	memberID := middleware.GetCurrentMemberID(c)

	var req CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	req.Category = strings.TrimSpace(req.Category)
	if !models.IsValidCategory(req.Category) {
		BadRequest(c, "无效的消费类别")
		return
	}
	if !models.IsValidFrequency(req.Frequency) {
		BadRequest(c, "频率取值错误，可选值：weekly、monthly、yearly")
		return
	}

	nextDue, err := time.ParseInLocation("2006-01-02", req.NextDueDate, time.Local)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2024-02-01")
		return
	}

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

	recurring := models.RecurringExpense{
		HouseholdID:   householdID,
		PayerMemberID: payerID,
		Amount:        req.Amount,
		Category:      req.Category,
		Note:          req.Note,
		Frequency:     req.Frequency,
		NextDueDate:   nextDue,
		DueDay:        nextDue.Day(),
		Active:        true,
	}
	if err := database.DB.Create(&recurring).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", recurring)
}

// List 查询周期性消费列表
// @Summary 查询周期性消费列表
// @Tags 周期性消费
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.RecurringExpense} "获取成功"
// @Router /api/v1/recurring [get]
func (h *RecurringHandler) List(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var list []models.RecurringExpense
	if err := database.DB.Where("household_id = ?", householdID).
		Order("next_due_date ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, list)
}

// Update 更新周期性消费
// @Summary 更新周期性消费
// @Tags 周期性消费
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "周期性消费ID"
// @Param request body UpdateRecurringRequest true "周期性消费信息"
// @Success 200 {object} Response{data=models.RecurringExpense} "更新成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/recurring/{id} [put]
func (h *RecurringHandler) Update(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var recurring models.RecurringExpense
	if err := database.DB.Where("id = ? AND household_id = ?", c.Param("id"), householdID).
		First(&recurring).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Amount > 0 {
		updates["amount"] = req.Amount
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
	if req.Frequency != "" {
		if !models.IsValidFrequency(req.Frequency) {
			BadRequest(c, "频率取值错误，可选值：weekly、monthly、yearly")
			return
		}
		updates["frequency"] = req.Frequency
	}
	if req.NextDueDate != "" {
		nextDue, err := time.ParseInLocation("2006-01-02", req.NextDueDate, time.Local)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2024-02-01")
			return
		}
		updates["next_due_date"] = nextDue
		updates["due_day"] = nextDue.Day()
	}

	if err := database.DB.Model(&recurring).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&recurring, recurring.ID)
	SuccessWithMessage(c, "更新成功", recurring)
}

// Delete 删除周期性消费
// @Summary 删除周期性消费
// @Tags 周期性消费
// @Produce json
// @Security BearerAuth
// @Param id path int true "周期性消费ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/recurring/{id} [delete]
func (h *RecurringHandler) Delete(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var recurring models.RecurringExpense
	if err := database.DB.Where("id = ? AND household_id = ?", c.Param("id"), householdID).
		First(&recurring).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&recurring).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// SetActive 启用/停用周期性消费
// @Summary 启用或停用周期性消费
// @Description 停用后不再生成消费记录，到期日保持不变
// @Tags 周期性消费
// @Produce json
// @Security BearerAuth
// @Param id path int true "周期性消费ID"
// @Param active query bool true "是否启用"
// @Success 200 {object} Response "更新成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/recurring/{id}/active [put]
func (h *RecurringHandler) SetActive(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var recurring models.RecurringExpense
	if err := database.DB.Where("id = ? AND household_id = ?", c.Param("id"), householdID).
		First(&recurring).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	active, err := strconv.ParseBool(c.Query("active"))
	if err != nil {
		BadRequest(c, "active参数必填，取值 true/false")
		return
	}

	if err := database.DB.Model(&recurring).Update("active", active).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	if active {
		SuccessWithMessage(c, "已启用", nil)
	} else {
		SuccessWithMessage(c, "已停用", nil)
	}
}

// Preview 预览待生成的消费
// @Summary 预览待生成的消费
// @Description 按当前时间计算每个启用中的模板将生成哪些消费记录，不落库
// @Tags 周期性消费
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "待生成列表"
// @Router /api/v1/recurring/preview [get]
func (h *RecurringHandler) Preview(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var templates []models.RecurringExpense
	if err := database.DB.Where("household_id = ? AND active = ?", householdID, true).
		Find(&templates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	type pendingItem struct {
		RecurringID uint     `json:"recurring_id"`
		Category    string   `json:"category"`
		Amount      float64  `json:"amount"`
		Dates       []string `json:"dates"`
	}
	now := time.Now()
	items := make([]pendingItem, 0)
	for _, t := range templates {
		dates, _, err := service.DueDates(t.NextDueDate, t.DueDay, t.Frequency, now)
		if err != nil || len(dates) == 0 {
			continue
		}
		formatted := make([]string, 0, len(dates))
		for _, d := range dates {
			formatted = append(formatted, d.Format("2006-01-02"))
		}
		items = append(items, pendingItem{
			RecurringID: t.ID,
			Category:    t.Category,
			Amount:      t.Amount,
			Dates:       formatted,
		})
	}

	Success(c, items)
}

// Materialize 生成到期的消费记录
// @Summary 生成到期的消费记录
// @Description 将所有启用中且已到期的周期性消费生成为具体消费记录（补账语义：遗漏多期时逐期生成，日期取名义到期日）。每个模板的生成与到期日推进在一个事务中完成。
// @Tags 周期性消费
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "生成结果"
// @Router /api/v1/recurring/materialize [post]
func (h *RecurringHandler) Materialize(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var templates []models.RecurringExpense
	if err := database.DB.Where("household_id = ? AND active = ?", householdID, true).
		Find(&templates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	now := time.Now()
	var created int
	var failed []uint

	// 单个模板失败不影响其他模板
	for _, t := range templates {
		dates, next, err := service.DueDates(t.NextDueDate, t.DueDay, t.Frequency, now)
		if err != nil {
			failed = append(failed, t.ID)
			continue
		}
		if len(dates) == 0 {
			continue
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			for _, d := range dates {
				expense := models.Expense{
					HouseholdID:   t.HouseholdID,
					PayerMemberID: t.PayerMemberID,
					Amount:        t.Amount,
					Category:      t.Category,
					Note:          t.Note,
					ExpenseTime:   d,
				}
				if err := tx.Create(&expense).Error; err != nil {
					return err
				}
			}
			return tx.Model(&models.RecurringExpense{}).Where("id = ?", t.ID).
				Update("next_due_date", next).Error
		})
		if err != nil {
			failed = append(failed, t.ID)
			continue
		}
		created += len(dates)
	}

	SuccessWithMessage(c, "生成完成", gin.H{
		"created": created,
		"failed":  failed,
	})
}
