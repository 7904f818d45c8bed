package service

import (
	"log"
	"math"
	"sort"
)

// UnpaidSplit 一条未结清的分摊：debtor 欠 creditor（该笔消费的付款人）amount 元
type UnpaidSplit struct {
	DebtorID   uint
	CreditorID uint
	Amount     float64
}

// Transfer 一笔结算转账建议
type Transfer struct {
	FromMemberID uint    `json:"from_member_id"`
	ToMemberID   uint    `json:"to_member_id"`
	Amount       float64 `json:"amount"`
}

// memberPair 无序成员对的有序表示（Low < High）
type memberPair struct {
	Low  uint
	High uint
}

// epsilon 货币比较的浮点噪声阈值（半分钱）
const epsilon = 0.005

// Round2 四舍五入到货币精度（2 位小数）
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AggregateBalances 家庭余额聚合
// 对每对成员累计有符号净额：A 欠 B 的分摊对 A→B 贡献 +amount，
// 同一对成员的反向欠款相互抵消，净额为正的方向产生一笔结算转账。
// 仅做两两净额抵消，不做多方最小转账次数优化。
//
// 分摊中出现不属于家庭成员集合的成员视为数据完整性问题：
// 告警日志后剔除，绝不静默计入总额。
//
// 返回值：结算转账列表（按 from、to 升序）和每位成员的净头寸
// （正数表示应收，负数表示应付；所有转账按成员汇总后与净头寸一致）。
func AggregateBalances(splits []UnpaidSplit, memberIDs []uint) ([]Transfer, map[uint]float64) {
	members := make(map[uint]bool, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = true
	}

	// 按无序成员对累计有符号净额：正数表示 Low 欠 High
	pairNet := make(map[memberPair]float64)
	for _, s := range splits {
		if !members[s.DebtorID] || !members[s.CreditorID] {
			log.Printf("警告: 分摊涉及非家庭成员 (debtor=%d, creditor=%d, amount=%.2f)，已剔除",
				s.DebtorID, s.CreditorID, s.Amount)
			continue
		}
		// 付款人自己的份额不构成欠款
		if s.DebtorID == s.CreditorID {
			continue
		}
		if s.DebtorID < s.CreditorID {
			pairNet[memberPair{Low: s.DebtorID, High: s.CreditorID}] += s.Amount
		} else {
			pairNet[memberPair{Low: s.CreditorID, High: s.DebtorID}] -= s.Amount
		}
	}

	var transfers []Transfer
	nets := make(map[uint]float64)
	for pair, net := range pairNet {
		amount := Round2(math.Abs(net))
		if amount < epsilon {
			// 净额为零的成员对不产生转账
			continue
		}
		from, to := pair.Low, pair.High
		if net < 0 {
			from, to = pair.High, pair.Low
		}
		transfers = append(transfers, Transfer{FromMemberID: from, ToMemberID: to, Amount: amount})
		nets[from] = Round2(nets[from] - amount)
		nets[to] = Round2(nets[to] + amount)
	}

	// 稳定输出顺序
	sort.Slice(transfers, func(i, j int) bool {
		if transfers[i].FromMemberID != transfers[j].FromMemberID {
			return transfers[i].FromMemberID < transfers[j].FromMemberID
		}
		return transfers[i].ToMemberID < transfers[j].ToMemberID
	})

	return transfers, nets
}
