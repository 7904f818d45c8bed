package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"homefinance/config"
	"homefinance/models"
	"homefinance/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider 用于测试的厂商桩实现
type fakeProvider struct {
	institutions []service.Institution
	transactions []service.VendorTransaction
	err          error
}

func (f *fakeProvider) ListInstitutions(ctx context.Context) ([]service.Institution, error) {
	return f.institutions, f.err
}

func (f *fakeProvider) StartConsent(ctx context.Context, institutionID, redirectURL, reference string) (*service.ConsentSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	expires := time.Now().AddDate(0, 0, 90)
	return &service.ConsentSession{RequisitionID: "req-1", Link: "https://vendor.example/consent/req-1", ConsentExpires: expires}, nil
}

func (f *fakeProvider) FetchAccounts(ctx context.Context, requisitionID string) ([]service.AccountData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []service.AccountData{{ExternalID: "acc-1", IBANMask: "DE89****3000", Currency: "EUR"}}, nil
}

func (f *fakeProvider) FetchBalance(ctx context.Context, accountExternalID string) (*service.BalanceData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.BalanceData{Amount: 1024.50, Currency: "EUR"}, nil
}

func (f *fakeProvider) FetchTransactions(ctx context.Context, accountExternalID string, from time.Time) ([]service.VendorTransaction, error) {
	return f.transactions, f.err
}

func connectionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "household_id", "institution_id", "institution_name", "requisition_id", "reference", "consent_expires", "status", "created_at", "updated_at", "deleted_at"})
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "connection_id", "external_id", "iban_mask", "currency", "balance", "balance_updated_at", "created_at", "updated_at", "deleted_at"})
}

func TestBankHandler_Sync_DeduplicatesImportedTransactions(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	now := time.Now()
	consentExpires := now.AddDate(0, 0, 30)

	mock.ExpectQuery("SELECT .* FROM `bank_connections`").
		WithArgs("5", uint(1)).
		WillReturnRows(connectionRows().
			AddRow(5, 1, "BANK_X", "测试银行", "req-1", "ref-1", consentExpires, models.ConnectionStatusLinked, now, now, nil))

	mock.ExpectQuery("SELECT .* FROM `bank_accounts`").
		WillReturnRows(accountRows().
			AddRow(10, 5, "acc-1", "DE89****3000", "EUR", 0, nil, now, now, nil))

	// 无历史同步记录，回看 90 天
	mock.ExpectQuery("SELECT .* FROM `sync_logs`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	// tx-1 已导入过
	mock.ExpectQuery("SELECT `external_id` FROM `bank_transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"external_id"}).AddRow("tx-1"))

	// tx-2 是借记，映射为消费并与银行交易同事务写入
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `expenses`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `bank_transactions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	// 同步日志落库
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `sync_logs`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	provider := &fakeProvider{transactions: []service.VendorTransaction{
		{TransactionID: "tx-1", Amount: "-12.30", Currency: "EUR", BookingDate: "2026-08-18", Merchant: "超市"},
		{TransactionID: "tx-2", Amount: "-45.50", Currency: "EUR", BookingDate: "2026-08-20", Merchant: "加油站"},
	}}

	router, _ := expenseRouter()
	handler := NewBankHandler(config.GlobalConfig, provider)
	router.POST("/banks/connections/:id/sync", handler.Sync)

	req := httptest.NewRequest("POST", "/banks/connections/5/sync", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "同步完成", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["imported"])
	assert.Equal(t, float64(1), data["skipped"])
	assert.Equal(t, float64(0), data["failed"])
	assert.Equal(t, models.SyncStatusSuccess, data["status"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBankHandler_Sync_VendorFailure(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	now := time.Now()
	consentExpires := now.AddDate(0, 0, 30)

	mock.ExpectQuery("SELECT .* FROM `bank_connections`").
		WithArgs("5", uint(1)).
		WillReturnRows(connectionRows().
			AddRow(5, 1, "BANK_X", "测试银行", "req-1", "ref-1", consentExpires, models.ConnectionStatusLinked, now, now, nil))

	mock.ExpectQuery("SELECT .* FROM `bank_accounts`").
		WillReturnRows(accountRows().
			AddRow(10, 5, "acc-1", "DE89****3000", "EUR", 0, nil, now, now, nil))

	mock.ExpectQuery("SELECT .* FROM `sync_logs`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	// 失败日志落库，连接标记为 error
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `sync_logs`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `bank_connections` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	provider := &fakeProvider{err: errors.New("vendor unavailable")}

	router, _ := expenseRouter()
	handler := NewBankHandler(config.GlobalConfig, provider)
	router.POST("/banks/connections/:id/sync", handler.Sync)

	req := httptest.NewRequest("POST", "/banks/connections/5/sync", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 502, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBankHandler_Sync_ConsentExpired(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	now := time.Now()
	expired := now.AddDate(0, 0, -1)

	mock.ExpectQuery("SELECT .* FROM `bank_connections`").
		WithArgs("5", uint(1)).
		WillReturnRows(connectionRows().
			AddRow(5, 1, "BANK_X", "测试银行", "req-1", "ref-1", expired, models.ConnectionStatusLinked, now, now, nil))

	// 连接标记为过期
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `bank_connections` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router, _ := expenseRouter()
	handler := NewBankHandler(config.GlobalConfig, &fakeProvider{})
	router.POST("/banks/connections/:id/sync", handler.Sync)

	req := httptest.NewRequest("POST", "/banks/connections/5/sync", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "银行授权已过期，请重新授权", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBankHandler_ProviderDisabled(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	router, _ := expenseRouter()
	handler := NewBankHandler(config.GlobalConfig, nil)
	router.GET("/banks/institutions", handler.ListInstitutions)

	req := httptest.NewRequest("GET", "/banks/institutions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "银行同步未启用，请在配置中开启 banking.enabled", resp["message"])
}
