package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	// GoalStatusActive 进行中
	GoalStatusActive = "active"
	// GoalStatusCompleted 已完成（当前金额达到目标金额后一次性转换）
	GoalStatusCompleted = "completed"
)

// SavingsGoal 储蓄目标
type SavingsGoal struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	HouseholdID   uint           `json:"household_id" gorm:"index;not null"`
	Name          string         `json:"name" gorm:"size:100;not null"`
	TargetAmount  float64        `json:"target_amount" gorm:"type:decimal(10,2);not null"`
	CurrentAmount float64        `json:"current_amount" gorm:"type:decimal(10,2);default:0"`
	TargetDate    *time.Time     `json:"target_date,omitempty"`
	Status        string         `json:"status" gorm:"size:20;not null;default:active;index"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (SavingsGoal) TableName() string {
	return "savings_goals"
}
