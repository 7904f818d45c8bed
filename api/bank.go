package api

import (
	"fmt"
	"time"

	"homefinance/config"
	"homefinance/database"
	"homefinance/middleware"
	"homefinance/models"
	"homefinance/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BankHandler 银行连接与同步处理器
type BankHandler struct {
	cfg      *config.Config
	provider service.BankingProvider
}

// NewBankHandler 创建银行处理器
// provider 为 nil 时所有厂商接口返回未启用错误
func NewBankHandler(cfg *config.Config, provider service.BankingProvider) *BankHandler {
	return &BankHandler{cfg: cfg, provider: provider}
}

// CreateConnectionRequest 创建银行连接请求
type CreateConnectionRequest struct {
	InstitutionID   string `json:"institution_id" binding:"required" example:"REVOLUT_REVOGB21"`
	InstitutionName string `json:"institution_name" example:"Revolut"`
}

// requireProvider 检查银行同步是否启用
func (h *BankHandler) requireProvider(c *gin.Context) bool {
	if h.provider == nil {
		BadRequest(c, "银行同步未启用，请在配置中开启 banking.enabled")
		return false
	}
	return true
}

// ListInstitutions 获取可连接的银行机构
// @Summary 获取可连接的银行机构
// @Tags 银行
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "机构列表"
// @Failure 502 {object} Response "厂商接口错误"
// @Router /api/v1/banks/institutions [get]
func (h *BankHandler) ListInstitutions(c *gin.Context) {
	if !h.requireProvider(c) {
		return
	}

	institutions, err := h.provider.ListInstitutions(c.Request.Context())
	if err != nil {
		BadGateway(c, SafeErrorMessage(err, "获取机构列表失败"))
		return
	}

	Success(c, institutions)
}

// CreateConnection 创建银行连接
// @Summary 创建银行连接
// @Description 发起开放银行授权流程，返回用户需要访问的授权链接。用户完成授权后厂商跳转回 redirect_url。
// @Tags 银行
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateConnectionRequest true "机构信息"
// @Success 200 {object} Response "授权链接"
// @Failure 502 {object} Response "厂商接口错误"
// @Router /api/v1/banks/connections [post]
func (h *BankHandler) CreateConnection(c *gin.Context) {
	if !h.requireProvider(c) {
		return
	}

	householdID := middleware.GetCurrentHouseholdID(c)

	var req CreateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	reference := uuid.NewString()
	session, err := h.provider.StartConsent(c.Request.Context(),
		req.InstitutionID, h.cfg.Banking.RedirectURL, reference)
	if err != nil {
		BadGateway(c, SafeErrorMessage(err, "发起授权失败"))
		return
	}

	connection := models.BankConnection{
		HouseholdID:     householdID,
		InstitutionID:   req.InstitutionID,
		InstitutionName: req.InstitutionName,
		RequisitionID:   session.RequisitionID,
		Reference:       reference,
		ConsentExpires:  &session.ConsentExpires,
		Status:          models.ConnectionStatusCreated,
	}
	if err := database.DB.Create(&connection).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "保存连接失败"))
		return
	}

	SuccessWithMessage(c, "请访问授权链接完成银行授权", gin.H{
		"connection_id": connection.ID,
		"link":          session.Link,
	})
}

// CompleteConnection 完成银行连接
// @Summary 完成银行连接
// @Description 用户完成厂商侧授权后调用，拉取授权下的账户并标记连接为可同步
// @Tags 银行
// @Produce json
// @Security BearerAuth
// @Param id path int true "连接ID"
// @Success 200 {object} Response "连接已就绪"
// @Failure 404 {object} Response "连接不存在"
// @Failure 502 {object} Response "厂商接口错误"
// @Router /api/v1/banks/connections/{id}/complete [post]
func (h *BankHandler) CompleteConnection(c *gin.Context) {
	if !h.requireProvider(c) {
		return
	}

	householdID := middleware.GetCurrentHouseholdID(c)

	var connection models.BankConnection
	if err := database.DB.Where("id = ? AND household_id = ?", c.Param("id"), householdID).
		First(&connection).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	accounts, err := h.provider.FetchAccounts(c.Request.Context(), connection.RequisitionID)
	if err != nil {
		BadGateway(c, SafeErrorMessage(err, "获取账户列表失败"))
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for _, a := range accounts {
			var existing models.BankAccount
			if err := tx.Where("external_id = ?", a.ExternalID).First(&existing).Error; err == nil {
				continue
			}
			account := models.BankAccount{
				ConnectionID: connection.ID,
				ExternalID:   a.ExternalID,
				IBANMask:     a.IBANMask,
				Currency:     a.Currency,
			}
			if err := tx.Create(&account).Error; err != nil {
				return err
			}
		}
		return tx.Model(&connection).Update("status", models.ConnectionStatusLinked).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "保存账户失败"))
		return
	}

	SuccessWithMessage(c, "银行连接已就绪", gin.H{"account_count": len(accounts)})
}

// ListConnections 查询银行连接列表
// @Summary 查询银行连接列表
// @Tags 银行
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.BankConnection} "连接列表"
// @Router /api/v1/banks/connections [get]
func (h *BankHandler) ListConnections(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var connections []models.BankConnection
	if err := database.DB.Where("household_id = ?", householdID).
		Order("created_at DESC").Find(&connections).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, connections)
}

// DeleteConnection 删除银行连接
// @Summary 删除银行连接
// @Description 删除连接及其账户镜像，已导入的消费和收入记录保留
// @Tags 银行
// @Produce json
// @Security BearerAuth
// @Param id path int true "连接ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "连接不存在"
// @Router /api/v1/banks/connections/{id} [delete]
func (h *BankHandler) DeleteConnection(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var connection models.BankConnection
	if err := database.DB.Where("id = ? AND household_id = ?", c.Param("id"), householdID).
		First(&connection).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	// 物理删除：账户 external_id 和连接 requisition_id 的唯一索引
	// 不能被软删除行占用，否则同一银行无法重新授权
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("connection_id = ?", connection.ID).
			Delete(&models.BankAccount{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&connection).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// ListAccounts 查询银行账户列表
// @Summary 查询银行账户列表
// @Tags 银行
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.BankAccount} "账户列表"
// @Router /api/v1/banks/accounts [get]
func (h *BankHandler) ListAccounts(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var accounts []models.BankAccount
	if err := database.DB.
		Joins("JOIN bank_connections ON bank_connections.id = bank_accounts.connection_id").
		Where("bank_connections.household_id = ?", householdID).
		Find(&accounts).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, accounts)
}

// RefreshBalance 刷新账户余额
// @Summary 刷新账户余额
// @Tags 银行
// @Produce json
// @Security BearerAuth
// @Param id path int true "账户ID"
// @Success 200 {object} Response{data=models.BankAccount} "刷新成功"
// @Failure 404 {object} Response "账户不存在"
// @Failure 502 {object} Response "厂商接口错误"
// @Router /api/v1/banks/accounts/{id}/balance [post]
func (h *BankHandler) RefreshBalance(c *gin.Context) {
	if !h.requireProvider(c) {
		return
	}

	householdID := middleware.GetCurrentHouseholdID(c)

	var account models.BankAccount
	if err := database.DB.
		Joins("JOIN bank_connections ON bank_connections.id = bank_accounts.connection_id").
		Where("bank_accounts.id = ? AND bank_connections.household_id = ?", c.Param("id"), householdID).
		First(&account).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	balance, err := h.provider.FetchBalance(c.Request.Context(), account.ExternalID)
	if err != nil {
		BadGateway(c, SafeErrorMessage(err, "获取余额失败"))
		return
	}

	now := time.Now()
	if err := database.DB.Model(&account).Updates(map[string]interface{}{
		"balance":            balance.Amount,
		"balance_updated_at": now,
	}).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "保存余额失败"))
		return
	}

	account.Balance = balance.Amount
	account.BalanceUpdatedAt = &now
	SuccessWithMessage(c, "余额已刷新", account)
}

// Sync 同步银行交易
// @Summary 同步银行交易
// @Description 拉取连接下所有账户的新交易并映射为本地记录：借记交易生成消费记录（带类别推断），贷记交易生成收入记录。以厂商交易ID去重，重复同步不会写重。厂商接口失败时记录失败日志，不自动重试。
// @Tags 银行
// @Produce json
// @Security BearerAuth
// @Param id path int true "连接ID"
// @Success 200 {object} Response{data=models.SyncLog} "同步结果"
// @Failure 400 {object} Response "授权已过期"
// @Failure 404 {object} Response "连接不存在"
// @Router /api/v1/banks/connections/{id}/sync [post]
func (h *BankHandler) Sync(c *gin.Context) {
	if !h.requireProvider(c) {
		return
	}

	householdID := middleware.GetCurrentHouseholdID(c)
	memberID := middleware.GetCurrentMemberID(c)

	var connection models.BankConnection
	if err := database.DB.Where("id = ? AND household_id = ?", c.Param("id"), householdID).
		First(&connection).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if connection.Status != models.ConnectionStatusLinked && connection.Status != models.ConnectionStatusError {
		BadRequest(c, "连接尚未就绪，请先完成授权")
		return
	}
	if connection.IsConsentExpired() {
		database.DB.Model(&connection).Update("status", models.ConnectionStatusExpired)
		BadRequest(c, "银行授权已过期，请重新授权")
		return
	}

	var accounts []models.BankAccount
	if err := database.DB.Where("connection_id = ?", connection.ID).Find(&accounts).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询账户失败"))
		return
	}

	syncLog := models.SyncLog{
		ConnectionID: connection.ID,
		Reference:    uuid.NewString(),
		StartedAt:    time.Now(),
	}

	// 默认回看 90 天，已有同步记录时从上次成功时间回看
	from := time.Now().AddDate(0, 0, -90)
	var lastLog models.SyncLog
	if err := database.DB.Where("connection_id = ? AND status IN ?",
		connection.ID, []string{models.SyncStatusSuccess, models.SyncStatusPartial}).
		Order("started_at DESC").First(&lastLog).Error; err == nil {
		from = lastLog.StartedAt.AddDate(0, 0, -7)
	}

	for _, account := range accounts {
		page, err := h.provider.FetchTransactions(c.Request.Context(), account.ExternalID, from)
		if err != nil {
			// 厂商失败：记录失败日志并标记连接，等待人工处理
			h.finishSyncLog(&syncLog, models.SyncStatusFailed,
				fmt.Sprintf("账户 %s 拉取交易失败: %v", account.IBANMask, err))
			database.DB.Model(&connection).Update("status", models.ConnectionStatusError)
			BadGateway(c, SafeErrorMessage(err, "厂商接口错误，本次同步已中止"))
			return
		}

		// 已导入的外部交易ID集合
		var importedIDs []string
		database.DB.Model(&models.BankTransaction{}).
			Where("account_id = ?", account.ID).
			Pluck("external_id", &importedIDs)
		existing := make(map[string]bool, len(importedIDs))
		for _, id := range importedIDs {
			existing[id] = true
		}

		result := service.Reconcile(page, existing)
		syncLog.Skipped += result.Skipped
		syncLog.Failed += result.Malformed

		for _, candidate := range result.Candidates {
			if err := h.importCandidate(account.ID, householdID, memberID, candidate); err != nil {
				syncLog.Failed++
				continue
			}
			syncLog.Imported++
		}
	}

	status := models.SyncStatusSuccess
	if syncLog.Failed > 0 {
		status = models.SyncStatusPartial
	}
	h.finishSyncLog(&syncLog, status, "")
	if connection.Status == models.ConnectionStatusError {
		database.DB.Model(&connection).Update("status", models.ConnectionStatusLinked)
	}

	SuccessWithMessage(c, "同步完成", syncLog)
}

// importCandidate 将单条候选落库：银行交易与映射出的消费/收入在同一事务中写入
func (h *BankHandler) importCandidate(accountID, householdID, memberID uint, candidate service.TransactionCandidate) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		bankTx := models.BankTransaction{
			AccountID:   accountID,
			ExternalID:  candidate.ExternalID,
			Amount:      candidate.Amount,
			Currency:    candidate.Currency,
			Direction:   candidate.Direction,
			BookingDate: candidate.BookingDate,
			Merchant:    candidate.Merchant,
		}

		if candidate.Direction == models.TransactionDirectionDebit {
			expense := models.Expense{
				HouseholdID:   householdID,
				PayerMemberID: memberID,
				Amount:        candidate.Amount,
				Category:      candidate.Category,
				Note:          candidate.Merchant,
				Tags:          "银行同步",
				ExpenseTime:   candidate.BookingDate,
			}
			if err := tx.Create(&expense).Error; err != nil {
				return err
			}
			bankTx.ExpenseID = &expense.ID
		} else {
			income := models.Income{
				HouseholdID: householdID,
				MemberID:    memberID,
				Amount:      candidate.Amount,
				Source:      "银行同步",
				IncomeTime:  candidate.BookingDate,
			}
			if err := tx.Create(&income).Error; err != nil {
				return err
			}
			bankTx.IncomeID = &income.ID
		}

		// uk_account_external 唯一索引兜底：并发同步下重复写入在这里失败回滚
		return tx.Create(&bankTx).Error
	})
}

// finishSyncLog 落盘同步日志
func (h *BankHandler) finishSyncLog(syncLog *models.SyncLog, status, message string) {
	now := time.Now()
	syncLog.Status = status
	syncLog.Message = message
	syncLog.FinishedAt = &now
	database.DB.Create(syncLog)
}

// ListSyncLogs 查询同步日志
// @Summary 查询同步日志
// @Tags 银行
// @Produce json
// @Security BearerAuth
// @Param id path int true "连接ID"
// @Success 200 {object} Response{data=[]models.SyncLog} "日志列表"
// @Failure 404 {object} Response "连接不存在"
// @Router /api/v1/banks/connections/{id}/sync-logs [get]
func (h *BankHandler) ListSyncLogs(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	var connection models.BankConnection
	if err := database.DB.Where("id = ? AND household_id = ?", c.Param("id"), householdID).
		First(&connection).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var logs []models.SyncLog
	if err := database.DB.Where("connection_id = ?", connection.ID).
		Order("started_at DESC").Limit(50).Find(&logs).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, logs)
}
