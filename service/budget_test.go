package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateBudget(t *testing.T) {
	// 低于告警阈值
	status := EvaluateBudget(500, 1000)
	assert.Equal(t, AlertLevelOK, status.Level)
	assert.Equal(t, 50.0, status.Percent)

	// 85% ≥ 80% 且 < 100% → warning
	status = EvaluateBudget(850, 1000)
	assert.Equal(t, AlertLevelWarning, status.Level)
	assert.Equal(t, 85.0, status.Percent)

	// 正好达到上限 → danger
	status = EvaluateBudget(1000, 1000)
	assert.Equal(t, AlertLevelDanger, status.Level)
	assert.Equal(t, 100.0, status.Percent)

	// 超出上限 → danger
	status = EvaluateBudget(1200, 1000)
	assert.Equal(t, AlertLevelDanger, status.Level)
	assert.Equal(t, 120.0, status.Percent)

	// 阈值边界：79.99% 仍为 ok
	status = EvaluateBudget(799.9, 1000)
	assert.Equal(t, AlertLevelOK, status.Level)

	// 80% 整进入 warning
	status = EvaluateBudget(800, 1000)
	assert.Equal(t, AlertLevelWarning, status.Level)
}

func TestEvaluateBudgetMissingCeiling(t *testing.T) {
	// 预算缺失或为零时返回 ok 且不计算百分比，绝不除零
	status := EvaluateBudget(850, 0)
	assert.Equal(t, AlertLevelOK, status.Level)
	assert.Equal(t, 0.0, status.Percent)

	status = EvaluateBudget(850, -1)
	assert.Equal(t, AlertLevelOK, status.Level)
	assert.Equal(t, 0.0, status.Percent)
}
