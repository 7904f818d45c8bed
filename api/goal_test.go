package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"homefinance/config"
	"homefinance/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goalRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "household_id", "name", "target_amount", "current_amount", "target_date", "status", "created_at", "updated_at", "deleted_at"})
}

func TestGoalHandler_Contribute(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `savings_goals`").
		WillReturnRows(goalRows().
			AddRow(1, 1, "旅行基金", 5000.0, 1000.0, nil, models.GoalStatusActive, now, now, nil))
	mock.ExpectExec("UPDATE `savings_goals` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router, _ := expenseRouter()
	handler := NewGoalHandler()
	router.POST("/goals/:id/contribute", handler.Contribute)

	body := `{"amount":500}`
	req := httptest.NewRequest("POST", "/goals/1/contribute", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "存入成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 1500.0, data["current_amount"])
	assert.Equal(t, models.GoalStatusActive, data["status"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalHandler_Contribute_ReachesTarget(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `savings_goals`").
		WillReturnRows(goalRows().
			AddRow(1, 1, "旅行基金", 5000.0, 4800.0, nil, models.GoalStatusActive, now, now, nil))
	mock.ExpectExec("UPDATE `savings_goals` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router, _ := expenseRouter()
	handler := NewGoalHandler()
	router.POST("/goals/:id/contribute", handler.Contribute)

	body := `{"amount":300}`
	req := httptest.NewRequest("POST", "/goals/1/contribute", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "存入成功，目标已达成 🎉", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 5100.0, data["current_amount"])
	assert.Equal(t, models.GoalStatusCompleted, data["status"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalHandler_Contribute_AlreadyCompleted(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `savings_goals`").
		WillReturnRows(goalRows().
			AddRow(1, 1, "旅行基金", 5000.0, 5000.0, nil, models.GoalStatusCompleted, now, now, nil))
	mock.ExpectRollback()

	router, _ := expenseRouter()
	handler := NewGoalHandler()
	router.POST("/goals/:id/contribute", handler.Contribute)

	body := `{"amount":100}`
	req := httptest.NewRequest("POST", "/goals/1/contribute", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "目标已完成，不能继续存入", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}
