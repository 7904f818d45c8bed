package models

import (
	"time"

	"gorm.io/gorm"
)

// Income 收入记录模型
// 手工录入的家庭收入，以及银行同步中识别为贷记（credit）的交易
type Income struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	HouseholdID uint           `json:"household_id" gorm:"index;not null"`
	MemberID    uint           `json:"member_id" gorm:"index;not null"`
	Amount      float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	Source      string         `json:"source" gorm:"size:100"` // 收入来源，如 工资、银行同步
	IncomeTime  time.Time      `json:"income_time" gorm:"not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Income) TableName() string {
	return "incomes"
}
