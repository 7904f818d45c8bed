package api

import (
	"time"

	"homefinance/database"
	"homefinance/middleware"
	"homefinance/models"
	"homefinance/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SettlementHandler 结算处理器
type SettlementHandler struct{}

// NewSettlementHandler 创建结算处理器
func NewSettlementHandler() *SettlementHandler {
	return &SettlementHandler{}
}

// SettleRequest 结算请求
type SettleRequest struct {
	FromMemberID uint `json:"from_member_id" binding:"required" example:"2"`
	ToMemberID   uint `json:"to_member_id" binding:"required" example:"1"`
}

// loadUnpaidSplits 查询家庭内所有未结清分摊（债务人→付款人）
func loadUnpaidSplits(householdID uint) ([]service.UnpaidSplit, error) {
	type row struct {
		MemberID      uint
		PayerMemberID uint
		Amount        float64
	}
	var rows []row
	err := database.DB.Model(&models.ExpenseSplit{}).
		Select("expense_splits.member_id, expenses.payer_member_id, expense_splits.amount").
		Joins("JOIN expenses ON expenses.id = expense_splits.expense_id").
		Where("expenses.household_id = ? AND expense_splits.paid = ?", householdID, false).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	splits := make([]service.UnpaidSplit, 0, len(rows))
	for _, r := range rows {
		splits = append(splits, service.UnpaidSplit{
			DebtorID:   r.MemberID,
			CreditorID: r.PayerMemberID,
			Amount:     r.Amount,
		})
	}
	return splits, nil
}

// GetBalances 查询家庭余额
// @Summary 查询家庭余额
// @Description 聚合所有未结清分摊，返回成员间的结算转账建议和每位成员的净余额。正净额表示应收，负净额表示应付。
// @Tags 结算
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "余额与转账建议"
// @Router /api/v1/settlements/balances [get]
func (h *SettlementHandler) GetBalances(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var members []models.HouseholdMember
	if err := database.DB.Where("household_id = ?", householdID).Find(&members).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询成员失败"))
		return
	}
	memberIDs := make([]uint, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.ID)
	}

	splits, err := loadUnpaidSplits(householdID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询分摊失败"))
		return
	}

	transfers, nets := service.AggregateBalances(splits, memberIDs)

	type memberBalance struct {
		MemberID uint    `json:"member_id"`
		Net      float64 `json:"net"`
	}
	balances := make([]memberBalance, 0, len(memberIDs))
	for _, id := range memberIDs {
		balances = append(balances, memberBalance{MemberID: id, Net: nets[id]})
	}

	Success(c, gin.H{
		"transfers": transfers,
		"balances":  balances,
	})
}

// Settle 结算两名成员间的欠款
// @Summary 结算欠款
// @Description 将 from_member 欠 to_member 的所有未结清分摊一次性标记为已结清。整个操作在一个事务中完成。
// @Tags 结算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SettleRequest true "结算双方"
// @Success 200 {object} Response "结算成功"
// @Failure 400 {object} Response "参数错误或无可结算分摊"
// @Router /api/v1/settlements [post]
func (h *SettlementHandler) Settle(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var req SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if req.FromMemberID == req.ToMemberID {
		BadRequest(c, "结算双方不能是同一成员")
		return
	}

	// 双方都必须属于本家庭
	var count int64
	if err := database.DB.Model(&models.HouseholdMember{}).
		Where("household_id = ? AND id IN ?", householdID, []uint{req.FromMemberID, req.ToMemberID}).
		Count(&count).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询成员失败"))
		return
	}
	if count != 2 {
		BadRequest(c, "结算双方必须是本家庭成员")
		return
	}

	now := time.Now()
	var settled int64
	var total float64

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// 结算金额：from 欠 to 的未结清分摊总额
		if err := tx.Model(&models.ExpenseSplit{}).
			Joins("JOIN expenses ON expenses.id = expense_splits.expense_id").
			Where("expenses.household_id = ? AND expenses.payer_member_id = ? AND expense_splits.member_id = ? AND expense_splits.paid = ?",
				householdID, req.ToMemberID, req.FromMemberID, false).
			Select("COALESCE(SUM(expense_splits.amount), 0)").Scan(&total).Error; err != nil {
			return err
		}

		result := tx.Model(&models.ExpenseSplit{}).
			Where("paid = ? AND member_id = ? AND expense_id IN (?)",
				false, req.FromMemberID,
				tx.Model(&models.Expense{}).Select("id").
					Where("household_id = ? AND payer_member_id = ?", householdID, req.ToMemberID)).
			Updates(map[string]interface{}{"paid": true, "paid_at": now})
		if result.Error != nil {
			return result.Error
		}
		settled = result.RowsAffected
		return nil
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "结算失败"))
		return
	}

	if settled == 0 {
		BadRequest(c, "没有可结算的分摊")
		return
	}

	SuccessWithMessage(c, "结算成功", gin.H{
		"settled_count": settled,
		"total_amount":  service.Round2(total),
	})
}
