package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	// FrequencyWeekly 每周
	FrequencyWeekly = "weekly"
	// FrequencyMonthly 每月
	FrequencyMonthly = "monthly"
	// FrequencyYearly 每年
	FrequencyYearly = "yearly"
)

// RecurringExpense 周期性消费模板
// 到期后按需生成具体消费记录，next_due_date 随生成单调前进；停用的模板不生成
type RecurringExpense struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	HouseholdID   uint           `json:"household_id" gorm:"index;not null"`
	PayerMemberID uint           `json:"payer_member_id" gorm:"index;not null"`
	Amount        float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	Category      string         `json:"category" gorm:"size:50;not null"`
	Note          string         `json:"note" gorm:"size:255"`
	Frequency     string         `json:"frequency" gorm:"size:20;not null"` // weekly/monthly/yearly
	NextDueDate   time.Time      `json:"next_due_date" gorm:"not null;index"`
	DueDay        int            `json:"due_day" gorm:"not null;default:0"` // 月付/年付锚定日号，月末截断后不丢失原始日
	Active        bool           `json:"active" gorm:"default:true;index"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (RecurringExpense) TableName() string {
	return "recurring_expenses"
}

// IsValidFrequency 判断频率取值是否合法
func IsValidFrequency(f string) bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}
