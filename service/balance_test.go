package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateBalancesPairwiseNetting(t *testing.T) {
	members := []uint{1, 2}

	// 成员1欠成员2共 30，成员2反向欠 10，净额 20
	splits := []UnpaidSplit{
		{DebtorID: 1, CreditorID: 2, Amount: 18.50},
		{DebtorID: 1, CreditorID: 2, Amount: 11.50},
		{DebtorID: 2, CreditorID: 1, Amount: 10.00},
	}

	transfers, nets := AggregateBalances(splits, members)
	require.Len(t, transfers, 1)
	assert.Equal(t, uint(1), transfers[0].FromMemberID)
	assert.Equal(t, uint(2), transfers[0].ToMemberID)
	assert.Equal(t, 20.00, transfers[0].Amount)

	assert.Equal(t, -20.00, nets[1])
	assert.Equal(t, 20.00, nets[2])
}

func TestAggregateBalancesZeroNetOmitted(t *testing.T) {
	members := []uint{1, 2}

	// 双向欠款完全抵消，不产生转账
	splits := []UnpaidSplit{
		{DebtorID: 1, CreditorID: 2, Amount: 25.00},
		{DebtorID: 2, CreditorID: 1, Amount: 25.00},
	}

	transfers, nets := AggregateBalances(splits, members)
	assert.Empty(t, transfers)
	assert.Empty(t, nets)
}

func TestAggregateBalancesConservation(t *testing.T) {
	members := []uint{1, 2, 3}

	splits := []UnpaidSplit{
		{DebtorID: 1, CreditorID: 2, Amount: 40.00},
		{DebtorID: 1, CreditorID: 3, Amount: 15.25},
		{DebtorID: 2, CreditorID: 3, Amount: 9.75},
		{DebtorID: 3, CreditorID: 1, Amount: 5.25},
	}

	transfers, nets := AggregateBalances(splits, members)

	// 每位成员的转账汇总恰好等于其净头寸（钱守恒）
	sums := make(map[uint]float64)
	for _, tr := range transfers {
		assert.Greater(t, tr.Amount, 0.0)
		sums[tr.FromMemberID] = Round2(sums[tr.FromMemberID] - tr.Amount)
		sums[tr.ToMemberID] = Round2(sums[tr.ToMemberID] + tr.Amount)
	}
	for id, net := range nets {
		assert.InDelta(t, net, sums[id], 0.001, "成员 %d 的净头寸不守恒", id)
	}

	// 所有净头寸之和为零
	var total float64
	for _, net := range nets {
		total += net
	}
	assert.InDelta(t, 0, total, 0.001)
}

func TestAggregateBalancesNonMemberExcluded(t *testing.T) {
	members := []uint{1, 2}

	// 成员 99 不在家庭中，其分摊被剔除而不是计入总额
	splits := []UnpaidSplit{
		{DebtorID: 1, CreditorID: 2, Amount: 10.00},
		{DebtorID: 99, CreditorID: 2, Amount: 100.00},
		{DebtorID: 1, CreditorID: 99, Amount: 100.00},
	}

	transfers, _ := AggregateBalances(splits, members)
	require.Len(t, transfers, 1)
	assert.Equal(t, 10.00, transfers[0].Amount)
}

func TestAggregateBalancesSelfSplitIgnored(t *testing.T) {
	members := []uint{1, 2}

	// 付款人自己的份额不构成欠款
	splits := []UnpaidSplit{
		{DebtorID: 2, CreditorID: 2, Amount: 50.00},
		{DebtorID: 1, CreditorID: 2, Amount: 50.00},
	}

	transfers, _ := AggregateBalances(splits, members)
	require.Len(t, transfers, 1)
	assert.Equal(t, uint(1), transfers[0].FromMemberID)
	assert.Equal(t, 50.00, transfers[0].Amount)
}

func TestAggregateBalancesDeterministicOrder(t *testing.T) {
	members := []uint{1, 2, 3, 4}

	splits := []UnpaidSplit{
		{DebtorID: 4, CreditorID: 1, Amount: 5},
		{DebtorID: 3, CreditorID: 1, Amount: 5},
		{DebtorID: 2, CreditorID: 1, Amount: 5},
	}

	transfers, _ := AggregateBalances(splits, members)
	require.Len(t, transfers, 3)
	assert.Equal(t, uint(2), transfers[0].FromMemberID)
	assert.Equal(t, uint(3), transfers[1].FromMemberID)
	assert.Equal(t, uint(4), transfers[2].FromMemberID)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 1.24, Round2(1.236))
	assert.Equal(t, 0.0, Round2(0.004))
	assert.Equal(t, 10.0, Round2(9.999))
}
