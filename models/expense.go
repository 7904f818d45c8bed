package models

import (
	"time"

	"gorm.io/gorm"
)

// Expense 消费记录模型
// 挂在家庭下，payer_member_id 为付款成员；可选地在成员间分摊
type Expense struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	HouseholdID   uint           `json:"household_id" gorm:"index;not null"`
	PayerMemberID uint           `json:"payer_member_id" gorm:"index;not null"`
	Amount        float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	Category      string         `json:"category" gorm:"size:50;not null"`
	Note          string         `json:"note" gorm:"size:255"`
	Tags          string         `json:"tags" gorm:"size:255"` // 逗号分隔的标签
	ExpenseTime   time.Time      `json:"expense_time" gorm:"not null"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
	Splits        []ExpenseSplit `json:"splits,omitempty" gorm:"foreignKey:ExpenseID"`
}

// TableName 设置表名
func (Expense) TableName() string {
	return "expenses"
}

// ExpenseSplit 消费分摊
// 每条记录表示一位成员对某笔消费应承担的份额；同一 (expense, member) 至多一条
type ExpenseSplit struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ExpenseID uint           `json:"expense_id" gorm:"not null;uniqueIndex:uk_expense_member"`
	MemberID  uint           `json:"member_id" gorm:"index;not null;uniqueIndex:uk_expense_member"`
	Amount    float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	Paid      bool           `json:"paid" gorm:"default:false;index"`
	PaidAt    *time.Time     `json:"paid_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (ExpenseSplit) TableName() string {
	return "expense_splits"
}

// Category 消费类别常量（封闭集合，新增类别必须同步维护 categoryMeta）
const (
	CategoryFood          = "餐饮"
	CategoryTransport     = "交通"
	CategoryShopping      = "购物"
	CategoryEntertainment = "娱乐"
	CategoryMedical       = "医疗"
	CategoryEducation     = "教育"
	CategoryHousing       = "住房"
	CategoryUtilities     = "水电"
	CategoryChildcare     = "育儿"
	CategoryOther         = "其他"
)

// CategoryMeta 类别的展示属性
type CategoryMeta struct {
	Color string
	Icon  string
}

// categoryMeta 类别对应的颜色与图标（与前端 CSS 保持一致）
var categoryMeta = map[string]CategoryMeta{
	CategoryFood:          {Color: "#ef4444", Icon: "utensils"},
	CategoryTransport:     {Color: "#3b82f6", Icon: "bus"},
	CategoryShopping:      {Color: "#a855f7", Icon: "shopping-bag"},
	CategoryEntertainment: {Color: "#ec4899", Icon: "film"},
	CategoryMedical:       {Color: "#10b981", Icon: "heart-pulse"},
	CategoryEducation:     {Color: "#f59e0b", Icon: "graduation-cap"},
	CategoryHousing:       {Color: "#14b8a6", Icon: "home"},
	CategoryUtilities:     {Color: "#06b6d4", Icon: "bolt"},
	CategoryChildcare:     {Color: "#f97316", Icon: "baby"},
	CategoryOther:         {Color: "#64748b", Icon: "ellipsis"},
}

// GetCategories 获取所有消费类别（固定顺序）
func GetCategories() []string {
	return []string{
		CategoryFood,
		CategoryTransport,
		CategoryShopping,
		CategoryEntertainment,
		CategoryMedical,
		CategoryEducation,
		CategoryHousing,
		CategoryUtilities,
		CategoryChildcare,
		CategoryOther,
	}
}

// GetCategoryMeta 获取类别的颜色与图标，未知类别返回“其他”的属性
func GetCategoryMeta(name string) CategoryMeta {
	if meta, ok := categoryMeta[name]; ok {
		return meta
	}
	return categoryMeta[CategoryOther]
}

// IsValidCategory 判断类别是否属于封闭集合
func IsValidCategory(name string) bool {
	_, ok := categoryMeta[name]
	return ok
}
