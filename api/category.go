package api

import (
	"homefinance/database"
	"homefinance/models"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 消费类别处理器
type CategoryHandler struct{}

// NewCategoryHandler 创建消费类别处理器
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// List 获取消费类别列表
// @Summary 获取消费类别列表
// @Description 获取所有消费类别，按排序字段升序排列。每个类别带颜色与图标，供前端展示。
// @Tags 消费记录
// @Produce json
// @Success 200 {object} Response{data=[]models.ExpenseCategory} "获取成功"
// @Failure 500 {object} Response "服务器内部错误"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	var list []models.ExpenseCategory
	if err := database.DB.Order("sort ASC, id ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, list)
}
