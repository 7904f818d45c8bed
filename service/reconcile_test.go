package service

import (
	"testing"

	"homefinance/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPage() []VendorTransaction {
	return []VendorTransaction{
		{TransactionID: "tx-001", Amount: "-35.50", Currency: "CNY", BookingDate: "2024-06-01", Merchant: "永辉超市"},
		{TransactionID: "tx-002", Amount: "-12.00", Currency: "CNY", BookingDate: "2024-06-02", Merchant: "STARBUCKS COFFEE"},
		{TransactionID: "tx-003", Amount: "8000.00", Currency: "CNY", BookingDate: "2024-06-05", Merchant: "工资代发"},
	}
}

func TestReconcileClassification(t *testing.T) {
	result := Reconcile(testPage(), nil)
	require.Len(t, result.Candidates, 3)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 0, result.Malformed)

	// 借记 → 支出候选，金额取绝对值，按商户推断类别
	c0 := result.Candidates[0]
	assert.Equal(t, models.TransactionDirectionDebit, c0.Direction)
	assert.Equal(t, 35.50, c0.Amount)
	assert.Equal(t, models.CategoryShopping, c0.Category)

	c1 := result.Candidates[1]
	assert.Equal(t, models.TransactionDirectionDebit, c1.Direction)
	assert.Equal(t, models.CategoryFood, c1.Category)

	// 贷记 → 收入，不推断消费类别
	c2 := result.Candidates[2]
	assert.Equal(t, models.TransactionDirectionCredit, c2.Direction)
	assert.Equal(t, 8000.00, c2.Amount)
	assert.Empty(t, c2.Category)
}

func TestReconcileIdempotent(t *testing.T) {
	page := testPage()

	first := Reconcile(page, nil)
	require.Equal(t, 3, first.Imported)

	// 第一轮导入的外部ID已存在，重放同一页不产生新候选
	existing := make(map[string]bool)
	for _, c := range first.Candidates {
		existing[c.ExternalID] = true
	}
	second := Reconcile(page, existing)
	assert.Empty(t, second.Candidates)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 3, second.Skipped)
}

func TestReconcileMalformedSkipped(t *testing.T) {
	page := []VendorTransaction{
		{TransactionID: "", Amount: "-10.00", BookingDate: "2024-06-01", Merchant: "无ID"},
		{TransactionID: "tx-bad-amount", Amount: "abc", BookingDate: "2024-06-01", Merchant: "金额坏"},
		{TransactionID: "tx-zero", Amount: "0", BookingDate: "2024-06-01", Merchant: "零金额"},
		{TransactionID: "tx-bad-date", Amount: "-10.00", BookingDate: "06/01/2024", Merchant: "日期坏"},
		{TransactionID: "tx-ok", Amount: "-10.00", BookingDate: "2024-06-01", Merchant: "好记录"},
	}

	// 单条畸形记录跳过，不中止整页
	result := Reconcile(page, nil)
	assert.Equal(t, 4, result.Malformed)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "tx-ok", result.Candidates[0].ExternalID)
}

func TestInferCategory(t *testing.T) {
	assert.Equal(t, models.CategoryFood, InferCategory("McDonald's 北京", ""))
	assert.Equal(t, models.CategoryTransport, InferCategory("滴滴出行", "didi trip"))
	assert.Equal(t, models.CategoryUtilities, InferCategory("国家电力公司", ""))
	assert.Equal(t, models.CategoryHousing, InferCategory("", "6月房租"))

	// 无规则命中归入“其他”
	assert.Equal(t, models.CategoryOther, InferCategory("UNKNOWN MERCHANT 123", ""))
}
