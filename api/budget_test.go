package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"homefinance/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetHandler_GetStatus(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	// 当月总消费 850
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `expenses`").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(850.0))

	// 各类别消费
	mock.ExpectQuery("SELECT category, SUM\\(amount\\) as total FROM `expenses`").
		WillReturnRows(sqlmock.NewRows([]string{"category", "total"}).
			AddRow("餐饮", 600.0).
			AddRow("交通", 250.0))

	// 月度总预算 1000
	mock.ExpectQuery("SELECT .* FROM `monthly_budgets`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "household_id", "year", "month", "amount"}).
			AddRow(1, 1, 2026, 8, 1000.0))

	// 餐饮类别预算 500
	mock.ExpectQuery("SELECT .* FROM `category_budgets`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "household_id", "year", "month", "category", "amount"}).
			AddRow(1, 1, 2026, 8, "餐饮", 500.0))

	router, _ := expenseRouter()
	handler := NewBudgetHandler()
	router.GET("/budgets/status", handler.GetStatus)

	req := httptest.NewRequest("GET", "/budgets/status?year=2026&month=8", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})

	// 850/1000 = 85%，处于预警区间
	monthly := data["monthly_status"].(map[string]interface{})
	assert.Equal(t, "warning", monthly["level"])
	assert.Equal(t, 85.0, monthly["percent"])
	assert.Equal(t, 850.0, monthly["spent"])

	// 餐饮 600/500 超支
	categories := data["category_status"].([]interface{})
	require.Len(t, categories, 1)
	food := categories[0].(map[string]interface{})
	assert.Equal(t, "餐饮", food["category"])
	assert.Equal(t, "danger", food["level"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_GetStatus_NoMonthlyBudget(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `expenses`").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(120.0))
	mock.ExpectQuery("SELECT category, SUM\\(amount\\) as total FROM `expenses`").
		WillReturnRows(sqlmock.NewRows([]string{"category", "total"}))
	mock.ExpectQuery("SELECT .* FROM `monthly_budgets`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT .* FROM `category_budgets`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	router, _ := expenseRouter()
	handler := NewBudgetHandler()
	router.GET("/budgets/status", handler.GetStatus)

	req := httptest.NewRequest("GET", "/budgets/status?year=2026&month=8", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Nil(t, data["monthly_status"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_SetMonthlyBudget_CreatesWhenMissing(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	// 当前周期无预算，走新建
	mock.ExpectQuery("SELECT .* FROM `monthly_budgets`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `monthly_budgets`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router, _ := expenseRouter()
	handler := NewBudgetHandler()
	router.PUT("/budgets/monthly", handler.SetMonthlyBudget)

	body := `{"year":2026,"month":9,"amount":3000}`
	req := httptest.NewRequest("PUT", "/budgets/monthly", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "预算已设置", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_DeleteThenSetMonthlyBudget(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	// 删除：物理删除释放 uk_household_period
	mock.ExpectQuery("SELECT .* FROM `monthly_budgets`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "household_id", "year", "month", "amount"}).
			AddRow(7, 1, 2026, 9, 3000.0))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `monthly_budgets`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// 重新设置同一周期：查不到旧行，插入不再撞唯一索引
	mock.ExpectQuery("SELECT .* FROM `monthly_budgets`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `monthly_budgets`").
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectCommit()

	router, _ := expenseRouter()
	handler := NewBudgetHandler()
	router.DELETE("/budgets/monthly/:id", handler.DeleteMonthlyBudget)
	router.PUT("/budgets/monthly", handler.SetMonthlyBudget)

	req := httptest.NewRequest("DELETE", "/budgets/monthly/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)

	body := `{"year":2026,"month":9,"amount":2800}`
	req = httptest.NewRequest("PUT", "/budgets/monthly", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "预算已设置", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_SetCategoryBudget_InvalidCategory(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	router, _ := expenseRouter()
	handler := NewBudgetHandler()
	router.PUT("/budgets/category", handler.SetCategoryBudget)

	body := `{"year":2026,"month":9,"category":"彩票","amount":500}`
	req := httptest.NewRequest("PUT", "/budgets/category", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "无效的消费类别", resp["message"])
}
