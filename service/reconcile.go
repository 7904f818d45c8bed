package service

import (
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"homefinance/models"
)

// TransactionCandidate 由厂商交易映射出的本地记录候选
type TransactionCandidate struct {
	ExternalID  string
	Direction   string // debit（支出候选）/credit（记为收入）
	Amount      float64
	Currency    string
	BookingDate time.Time
	Merchant    string
	Category    string // 仅借记交易填写
}

// ReconcileResult 一页交易的对账结果
type ReconcileResult struct {
	Candidates []TransactionCandidate
	Imported   int // 新映射的候选数
	Skipped    int // 外部ID已存在，幂等跳过
	Malformed  int // 字段缺失或不可解析，跳过并告警
}

// Reconcile 银行交易对账
// 以厂商分配的外部交易ID去重：已导入的直接跳过，重复同步产生相同结果。
// 金额为负（借记）的交易映射为支出候选并做类别推断；为正（贷记）的记为收入。
// 单条畸形记录跳过并记录日志，不中止整页处理。
func Reconcile(page []VendorTransaction, existing map[string]bool) ReconcileResult {
	var result ReconcileResult

	for _, tx := range page {
		if existing[tx.TransactionID] {
			result.Skipped++
			continue
		}

		candidate, ok := parseTransaction(tx)
		if !ok {
			result.Malformed++
			continue
		}

		result.Candidates = append(result.Candidates, candidate)
		result.Imported++
	}

	return result
}

// parseTransaction 校验并转换单条厂商交易，畸形记录返回 false
func parseTransaction(tx VendorTransaction) (TransactionCandidate, bool) {
	if tx.TransactionID == "" {
		log.Printf("警告: 银行交易缺少外部ID，已跳过 (merchant=%q)", tx.Merchant)
		return TransactionCandidate{}, false
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(tx.Amount), 64)
	if err != nil || amount == 0 {
		log.Printf("警告: 银行交易金额不可解析 (external_id=%s, amount=%q)，已跳过", tx.TransactionID, tx.Amount)
		return TransactionCandidate{}, false
	}

	bookingDate, err := time.ParseInLocation("2006-01-02", tx.BookingDate, time.Local)
	if err != nil {
		log.Printf("警告: 银行交易日期不可解析 (external_id=%s, date=%q)，已跳过", tx.TransactionID, tx.BookingDate)
		return TransactionCandidate{}, false
	}

	candidate := TransactionCandidate{
		ExternalID:  tx.TransactionID,
		Amount:      Round2(math.Abs(amount)),
		Currency:    tx.Currency,
		BookingDate: bookingDate,
		Merchant:    tx.Merchant,
	}
	if amount < 0 {
		candidate.Direction = models.TransactionDirectionDebit
		candidate.Category = InferCategory(tx.Merchant, tx.Description)
	} else {
		candidate.Direction = models.TransactionDirectionCredit
	}
	return candidate, true
}

// categoryKeywords 商户关键词到消费类别的映射，按顺序匹配第一条命中规则
var categoryKeywords = []struct {
	Category string
	Keywords []string
}{
	{models.CategoryFood, []string{"餐", "饭", "外卖", "restaurant", "mcdonald", "kfc", "starbucks", "cafe"}},
	{models.CategoryTransport, []string{"地铁", "公交", "出租", "加油", "taxi", "uber", "didi", "metro", "fuel"}},
	{models.CategoryShopping, []string{"超市", "商场", "市场", "淘宝", "京东", "supermarket", "walmart", "carrefour", "amazon"}},
	{models.CategoryEntertainment, []string{"电影", "影院", "游戏", "cinema", "netflix", "spotify", "steam"}},
	{models.CategoryMedical, []string{"药", "医院", "诊所", "pharmacy", "hospital", "clinic"}},
	{models.CategoryEducation, []string{"学校", "书店", "培训", "school", "bookstore", "course"}},
	{models.CategoryHousing, []string{"房租", "物业", "中介", "rent", "mortgage"}},
	{models.CategoryUtilities, []string{"电力", "水务", "燃气", "宽带", "electric", "water", "gas", "telecom"}},
	{models.CategoryChildcare, []string{"幼儿", "母婴", "玩具", "nursery", "toys"}},
}

// InferCategory 根据商户名称与摘要做尽力而为的类别推断
// 无规则命中时归入“其他”
func InferCategory(merchant, description string) string {
	haystack := strings.ToLower(merchant + " " + description)
	for _, rule := range categoryKeywords {
		for _, kw := range rule.Keywords {
			if strings.Contains(haystack, kw) {
				return rule.Category
			}
		}
	}
	return models.CategoryOther
}
