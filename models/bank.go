package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	// ConnectionStatusCreated 已创建，等待用户完成授权
	ConnectionStatusCreated = "created"
	// ConnectionStatusLinked 授权完成，可同步
	ConnectionStatusLinked = "linked"
	// ConnectionStatusExpired 授权过期，需要重新授权
	ConnectionStatusExpired = "expired"
	// ConnectionStatusError 同步出错
	ConnectionStatusError = "error"
)

// BankConnection 银行连接（对应开放银行厂商侧的一次授权）
type BankConnection struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	HouseholdID     uint           `json:"household_id" gorm:"index;not null"`
	InstitutionID   string         `json:"institution_id" gorm:"size:100;not null"`
	InstitutionName string         `json:"institution_name" gorm:"size:100"`
	RequisitionID   string         `json:"requisition_id" gorm:"size:100;uniqueIndex"` // 厂商侧授权ID
	Reference       string         `json:"reference" gorm:"size:64;index"`             // 本地生成的授权引用（uuid）
	ConsentExpires  *time.Time     `json:"consent_expires,omitempty"`
	Status          string         `json:"status" gorm:"size:20;not null;default:created;index"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (BankConnection) TableName() string {
	return "bank_connections"
}

// IsConsentExpired 授权是否已过期
func (c *BankConnection) IsConsentExpired() bool {
	return c.ConsentExpires != nil && time.Now().After(*c.ConsentExpires)
}

// BankAccount 银行账户（厂商侧账户的本地镜像）
type BankAccount struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	ConnectionID     uint           `json:"connection_id" gorm:"index;not null"`
	ExternalID       string         `json:"external_id" gorm:"size:100;not null;uniqueIndex"` // 厂商账户ID
	IBANMask         string         `json:"iban_mask" gorm:"size:50"`
	Currency         string         `json:"currency" gorm:"size:10"`
	Balance          float64        `json:"balance" gorm:"type:decimal(12,2);default:0"`
	BalanceUpdatedAt *time.Time     `json:"balance_updated_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (BankAccount) TableName() string {
	return "bank_accounts"
}

const (
	// TransactionDirectionDebit 借记（支出候选）
	TransactionDirectionDebit = "debit"
	// TransactionDirectionCredit 贷记（记为收入）
	TransactionDirectionCredit = "credit"
)

// BankTransaction 已导入的银行交易
// (account_id, external_id) 唯一索引保证重复同步安全失败而不是写重
type BankTransaction struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	AccountID   uint           `json:"account_id" gorm:"not null;uniqueIndex:uk_account_external"`
	ExternalID  string         `json:"external_id" gorm:"size:100;not null;uniqueIndex:uk_account_external"`
	Amount      float64        `json:"amount" gorm:"type:decimal(12,2);not null"` // 绝对值
	Currency    string         `json:"currency" gorm:"size:10"`
	Direction   string         `json:"direction" gorm:"size:10;not null"` // debit/credit
	BookingDate time.Time      `json:"booking_date" gorm:"not null;index"`
	Merchant    string         `json:"merchant" gorm:"size:255"`
	ExpenseID   *uint          `json:"expense_id,omitempty" gorm:"index"` // 映射出的消费记录
	IncomeID    *uint          `json:"income_id,omitempty" gorm:"index"`  // 映射出的收入记录
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (BankTransaction) TableName() string {
	return "bank_transactions"
}

const (
	// SyncStatusSuccess 全部成功
	SyncStatusSuccess = "success"
	// SyncStatusPartial 部分记录被跳过
	SyncStatusPartial = "partial"
	// SyncStatusFailed 厂商接口失败，本次同步中止
	SyncStatusFailed = "failed"
)

// SyncLog 同步日志（供审计，失败不自动重试）
type SyncLog struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	ConnectionID uint       `json:"connection_id" gorm:"index;not null"`
	Reference    string     `json:"reference" gorm:"size:64;uniqueIndex"` // uuid
	Status       string     `json:"status" gorm:"size:20;not null"`
	Imported     int        `json:"imported" gorm:"default:0"`
	Skipped      int        `json:"skipped" gorm:"default:0"`
	Failed       int        `json:"failed" gorm:"default:0"`
	Message      string     `json:"message" gorm:"size:500"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TableName 设置表名
func (SyncLog) TableName() string {
	return "sync_logs"
}
