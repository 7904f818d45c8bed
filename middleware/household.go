package middleware

import (
	"net/http"

	"homefinance/database"
	"homefinance/models"

	"github.com/gin-gonic/gin"
)

// HouseholdScope 家庭作用域中间件
// 需在 JWTAuth 之后使用。解析当前用户所属的家庭成员记录，注入
// householdID/memberID/memberRole，之后的处理器据此做租户隔离。
// 未加入任何家庭的用户访问家庭作用域接口返回 403。
func HouseholdScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetCurrentUserID(c)
		if userID == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "请先登录"})
			c.Abort()
			return
		}

		var member models.HouseholdMember
		if err := database.DB.Where("user_id = ?", userID).First(&member).Error; err != nil {
			c.JSON(http.StatusForbidden, gin.H{"code": 403, "message": "请先创建或加入家庭"})
			c.Abort()
			return
		}

		c.Set("householdID", member.HouseholdID)
		c.Set("memberID", member.ID)
		c.Set("memberRole", member.Role)
		c.Next()
	}
}

// RequireOwner 家庭拥有者权限校验
// 需在 HouseholdScope 之后使用；成员管理、预算、银行连接等操作仅拥有者可用
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetCurrentMemberRole(c) != models.MemberRoleOwner {
			c.JSON(http.StatusForbidden, gin.H{"code": 403, "message": "权限不足，仅家庭拥有者可操作"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetCurrentHouseholdID 从上下文获取当前家庭ID
func GetCurrentHouseholdID(c *gin.Context) uint {
	if v, exists := c.Get("householdID"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// GetCurrentMemberID 从上下文获取当前成员ID
func GetCurrentMemberID(c *gin.Context) uint {
	if v, exists := c.Get("memberID"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// GetCurrentMemberRole 从上下文获取当前成员角色
func GetCurrentMemberRole(c *gin.Context) string {
	if v, exists := c.Get("memberRole"); exists {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}
