package models

import (
	"time"

	"gorm.io/gorm"
)

// MonthlyBudget 月度总预算
// 同一家庭同一年月至多一条
type MonthlyBudget struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	HouseholdID uint           `json:"household_id" gorm:"not null;uniqueIndex:uk_household_period"`
	Year        int            `json:"year" gorm:"not null;uniqueIndex:uk_household_period"`
	Month       int            `json:"month" gorm:"not null;uniqueIndex:uk_household_period"`
	Amount      float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (MonthlyBudget) TableName() string {
	return "monthly_budgets"
}

// CategoryBudget 类别预算
// 同一家庭同一类别同一年月至多一条
type CategoryBudget struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	HouseholdID uint           `json:"household_id" gorm:"not null;uniqueIndex:uk_household_cat_period"`
	Category    string         `json:"category" gorm:"size:50;not null;uniqueIndex:uk_household_cat_period"`
	Year        int            `json:"year" gorm:"not null;uniqueIndex:uk_household_cat_period"`
	Month       int            `json:"month" gorm:"not null;uniqueIndex:uk_household_cat_period"`
	Amount      float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (CategoryBudget) TableName() string {
	return "category_budgets"
}
