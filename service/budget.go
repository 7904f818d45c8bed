package service

const (
	// AlertLevelOK 正常
	AlertLevelOK = "ok"
	// AlertLevelWarning 接近预算上限
	AlertLevelWarning = "warning"
	// AlertLevelDanger 达到或超出预算上限
	AlertLevelDanger = "danger"
)

const (
	// warningRatio 告警阈值：已消费 ≥ 80% 进入 warning
	warningRatio = 0.80
	// dangerRatio 危险阈值：已消费 ≥ 100% 进入 danger
	dangerRatio = 1.00
)

// BudgetStatus 预算评估结果
type BudgetStatus struct {
	Level   string  `json:"level"`   // ok/warning/danger
	Percent float64 `json:"percent"` // 已消费百分比，预算缺失时为 0
	Spent   float64 `json:"spent"`
	Ceiling float64 `json:"ceiling"`
}

// EvaluateBudget 评估当期消费与预算上限的关系
// ceiling 为零或缺失时返回 ok 且不计算百分比，绝不产生除零
func EvaluateBudget(spent, ceiling float64) BudgetStatus {
	status := BudgetStatus{
		Level:   AlertLevelOK,
		Spent:   Round2(spent),
		Ceiling: Round2(ceiling),
	}
	if ceiling <= 0 {
		return status
	}

	ratio := spent / ceiling
	status.Percent = Round2(ratio * 100)
	switch {
	case ratio >= dangerRatio:
		status.Level = AlertLevelDanger
	case ratio >= warningRatio:
		status.Level = AlertLevelWarning
	}
	return status
}
