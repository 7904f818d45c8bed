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

func TestSettlementHandler_GetBalances(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `household_members`").
		WithArgs(uint(1)).
		WillReturnRows(memberRows().
			AddRow(1, 1, 1, models.MemberRoleOwner, now, now, now, nil).
			AddRow(2, 1, 2, models.MemberRoleMember, now, now, now, nil))

	// 成员 2 欠成员 1 共 70 元，成员 1 欠成员 2 共 20 元
	mock.ExpectQuery("SELECT .* FROM `expense_splits`").
		WillReturnRows(sqlmock.NewRows([]string{"member_id", "payer_member_id", "amount"}).
			AddRow(2, 1, 50.0).
			AddRow(2, 1, 20.0).
			AddRow(1, 2, 20.0))

	router, _ := expenseRouter()
	handler := NewSettlementHandler()
	router.GET("/settlements/balances", handler.GetBalances)

	req := httptest.NewRequest("GET", "/settlements/balances", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})

	// 抵消后只剩一笔转账：成员 2 → 成员 1，50 元
	transfers := data["transfers"].([]interface{})
	require.Len(t, transfers, 1)
	transfer := transfers[0].(map[string]interface{})
	assert.Equal(t, float64(2), transfer["from_member_id"])
	assert.Equal(t, float64(1), transfer["to_member_id"])
	assert.Equal(t, 50.0, transfer["amount"])

	balances := data["balances"].([]interface{})
	require.Len(t, balances, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettlementHandler_Settle(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	// 双方均为本家庭成员
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `household_members`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(expense_splits.amount\\), 0\\) FROM `expense_splits`").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(70.0))
	mock.ExpectExec("UPDATE `expense_splits` SET").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	router, _ := expenseRouter()
	handler := NewSettlementHandler()
	router.POST("/settlements", handler.Settle)

	body := `{"from_member_id":2,"to_member_id":1}`
	req := httptest.NewRequest("POST", "/settlements", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "结算成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["settled_count"])
	assert.Equal(t, 70.0, data["total_amount"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettlementHandler_Settle_SameMember(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	router, _ := expenseRouter()
	handler := NewSettlementHandler()
	router.POST("/settlements", handler.Settle)

	body := `{"from_member_id":1,"to_member_id":1}`
	req := httptest.NewRequest("POST", "/settlements", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "结算双方不能是同一成员", resp["message"])
}

func TestSettlementHandler_Settle_NothingToSettle(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `household_members`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(expense_splits.amount\\), 0\\) FROM `expense_splits`").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0.0))
	mock.ExpectExec("UPDATE `expense_splits` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	router, _ := expenseRouter()
	handler := NewSettlementHandler()
	router.POST("/settlements", handler.Settle)

	body := `{"from_member_id":2,"to_member_id":1}`
	req := httptest.NewRequest("POST", "/settlements", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "没有可结算的分摊", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}
