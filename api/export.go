package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"homefinance/database"
	"homefinance/middleware"
	"homefinance/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// expenseRow 导出用的消费记录行（带付款成员用户名）
type expenseRow struct {
	models.Expense
	Username string
}

// parseExportRange 解析导出时间范围参数
func parseExportRange(c *gin.Context) (time.Time, time.Time, string, string, bool) {
	startTimeStr := c.Query("start_time")
	endTimeStr := c.Query("end_time")

	if startTimeStr == "" || endTimeStr == "" {
		BadRequest(c, "请提供开始时间和结束时间")
		return time.Time{}, time.Time{}, "", "", false
	}

	startTime, err := time.ParseInLocation("2006-01-02", startTimeStr, time.Local)
	if err != nil {
		BadRequest(c, "开始时间格式错误，应为: 2006-01-02")
		return time.Time{}, time.Time{}, "", "", false
	}

	endTime, err := time.ParseInLocation("2006-01-02", endTimeStr, time.Local)
	if err != nil {
		BadRequest(c, "结束时间格式错误，应为: 2006-01-02")
		return time.Time{}, time.Time{}, "", "", false
	}
	endTime = endTime.Add(24*time.Hour - time.Second)

	return startTime, endTime, startTimeStr, endTimeStr, true
}

// queryExpenseRows 查询时间范围内的家庭消费记录（带付款成员用户名）
func queryExpenseRows(householdID uint, startTime, endTime time.Time) ([]expenseRow, error) {
	var rows []expenseRow
	err := database.DB.Model(&models.Expense{}).
		Select("expenses.*, users.username").
		Joins("LEFT JOIN household_members ON expenses.payer_member_id = household_members.id").
		Joins("LEFT JOIN users ON household_members.user_id = users.id").
		Where("expenses.household_id = ? AND expenses.expense_time >= ? AND expenses.expense_time <= ?",
			householdID, startTime, endTime).
		Order("expenses.expense_time DESC").
		Scan(&rows).Error
	return rows, err
}

// ExportCSV 导出消费记录为 CSV
// @Summary 导出消费记录
// @Description 根据时间范围导出家庭消费记录为 CSV 文件
// @Tags 导出
// @Accept json
// @Produce text/csv
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2024-01-01)"
// @Param end_time query string true "结束时间 (2024-12-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	startTime, endTime, startTimeStr, endTimeStr, ok := parseExportRange(c)
	if !ok {
		return
	}

	rows, err := queryExpenseRows(householdID, startTime, endTime)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	// 生成 CSV
	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)

	headers := []string{"ID", "付款成员", "金额", "类别", "备注", "标签", "消费时间", "创建时间"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	for _, row := range rows {
		record := []string{
			fmt.Sprintf("%d", row.ID),
			row.Username,
			fmt.Sprintf("%.2f", row.Amount),
			row.Category,
			row.Note,
			row.Tags,
			row.ExpenseTime.Format("2006-01-02 15:04:05"),
			row.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(record); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	// 设置响应头
	filename := fmt.Sprintf("expenses_%s_%s.csv", startTimeStr, endTimeStr)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON 导出消费记录为 JSON
// @Summary 导出消费记录为 JSON
// @Description 根据时间范围导出家庭消费记录为 JSON 格式
// @Tags 导出
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2024-01-01)"
// @Param end_time query string true "结束时间 (2024-12-31)"
// @Success 200 {object} Response "导出成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	startTime, endTime, startTimeStr, endTimeStr, ok := parseExportRange(c)
	if !ok {
		return
	}

	var expenses []models.Expense
	if err := database.DB.Preload("Splits").
		Where("household_id = ? AND expense_time >= ? AND expense_time <= ?", householdID, startTime, endTime).
		Order("expense_time DESC").
		Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	// 计算汇总信息
	var totalAmount float64
	for _, expense := range expenses {
		totalAmount += expense.Amount
	}

	Success(c, gin.H{
		"start_time":   startTimeStr,
		"end_time":     endTimeStr,
		"total_count":  len(expenses),
		"total_amount": totalAmount,
		"expenses":     expenses,
	})
}

// ExportExcel 导出消费记录为 Excel
// @Summary 导出消费记录为 Excel
// @Description 根据时间范围导出家庭消费记录为带样式的 xlsx 文件，末行附合计
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2024-01-01)"
// @Param end_time query string true "结束时间 (2024-12-31)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	householdID := middleware.GetCurrentHouseholdID(c)

	startTime, endTime, startTimeStr, endTimeStr, ok := parseExportRange(c)
	if !ok {
		return
	}

	rows, err := queryExpenseRows(householdID, startTime, endTime)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	// 创建 Excel 文件
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "消费记录"
	f.SetSheetName("Sheet1", sheetName)

	// 设置表头样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	// 数据样式
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 15)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 30)
	f.SetColWidth(sheetName, "F", "F", 20)
	f.SetColWidth(sheetName, "G", "G", 20)
	f.SetColWidth(sheetName, "H", "H", 20)

	// 写入表头
	headers := []string{"ID", "付款成员", "金额", "类别", "备注", "标签", "消费时间", "创建时间"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	// 写入数据
	var totalAmount float64
	for i, row := range rows {
		r := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", r), row.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", r), row.Username)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", r), row.Amount)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", r), row.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", r), row.Note)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", r), row.Tags)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", r), row.ExpenseTime.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", r), row.CreatedAt.Format("2006-01-02 15:04:05"))

		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", r), fmt.Sprintf("H%d", r), dataStyle)
		totalAmount += row.Amount
	}

	// 添加汇总行
	summaryRow := len(rows) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), "合计")
	f.MergeCell(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("B%d", summaryRow))
	f.SetCellValue(sheetName, fmt.Sprintf("C%d", summaryRow), totalAmount)
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", summaryRow), fmt.Sprintf("共 %d 条记录", len(rows)))
	f.MergeCell(sheetName, fmt.Sprintf("D%d", summaryRow), fmt.Sprintf("H%d", summaryRow))
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("H%d", summaryRow), summaryStyle)

	// 设置响应头
	filename := fmt.Sprintf("消费记录_%s_%s.xlsx", startTimeStr, endTimeStr)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", filename))

	// 写入响应
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}
}
