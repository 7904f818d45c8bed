package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	// MemberRoleOwner 家庭拥有者：可管理成员、预算、银行连接
	MemberRoleOwner = "owner"
	// MemberRoleMember 普通成员
	MemberRoleMember = "member"
)

// Household 家庭（记账的租户边界，所有账本数据都挂在家庭下）
type Household struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"size:50;not null"`
	OwnerID   uint           `json:"owner_id" gorm:"index;not null"` // 创建者用户ID
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (Household) TableName() string {
	return "households"
}

// HouseholdMember 家庭成员
// 一个用户同一时间只能属于一个家庭（user_id 唯一索引）
type HouseholdMember struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	HouseholdID uint           `json:"household_id" gorm:"index;not null;uniqueIndex:uk_household_user"`
	UserID      uint           `json:"user_id" gorm:"not null;uniqueIndex;uniqueIndex:uk_household_user"`
	Role        string         `json:"role" gorm:"size:20;not null;default:member"` // owner/member
	JoinedAt    time.Time      `json:"joined_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (HouseholdMember) TableName() string {
	return "household_members"
}

// IsOwner 是否为家庭拥有者
func (m *HouseholdMember) IsOwner() bool {
	return m.Role == MemberRoleOwner
}
