package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	// InvitationStatusPending 待接受
	InvitationStatusPending = "pending"
	// InvitationStatusAccepted 已接受
	InvitationStatusAccepted = "accepted"
	// InvitationStatusRevoked 已撤销
	InvitationStatusRevoked = "revoked"

	// InvitationExpireDays 邀请有效期（天）
	InvitationExpireDays = 7
)

// Invitation 家庭成员邀请
// 令牌一次性使用，过期后失效
type Invitation struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	HouseholdID uint           `json:"household_id" gorm:"index;not null"`
	InviterID   uint           `json:"inviter_id" gorm:"not null"` // 发起邀请的用户ID
	Email       string         `json:"email" gorm:"size:100;not null"`
	Token       string         `json:"-" gorm:"uniqueIndex;size:64;not null"`
	Status      string         `json:"status" gorm:"size:20;not null;default:pending;index"`
	ExpiresAt   time.Time      `json:"expires_at" gorm:"not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	Household   Household      `json:"-" gorm:"foreignKey:HouseholdID"`
}

// TableName 设置表名
func (Invitation) TableName() string {
	return "invitations"
}

// IsExpired 检查邀请是否过期
func (i *Invitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// IsValid 检查邀请是否可被接受
func (i *Invitation) IsValid() bool {
	return i.Status == InvitationStatusPending && !i.IsExpired()
}
