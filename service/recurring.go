package service

import (
	"fmt"
	"time"

	"homefinance/models"
)

// maxCatchUpPeriods 单次生成的最大补账期数，防止 next_due_date
// 被误改到远古日期后一次性生成海量记录
const maxCatchUpPeriods = 120

// monthDay 取 base 月份偏移 n 个月后的日期，日号取 anchorDay，
// 超出目标月长度时压到月末（1月31日锚定 → 2月29日 → 3月31日，不会漂移到3月2日）
func monthDay(base time.Time, n, anchorDay int) time.Time {
	first := time.Date(base.Year(), base.Month(), 1,
		base.Hour(), base.Minute(), base.Second(), base.Nanosecond(), base.Location()).
		AddDate(0, n, 0)
	d := anchorDay
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d,
		base.Hour(), base.Minute(), base.Second(), base.Nanosecond(), base.Location())
}

// advanceFrom 从 next 推进 n 个周期；月付/年付按 anchorDay 锚定日号
func advanceFrom(next time.Time, anchorDay int, frequency string, n int) (time.Time, error) {
	if anchorDay <= 0 {
		anchorDay = next.Day()
	}
	switch frequency {
	case models.FrequencyWeekly:
		return next.AddDate(0, 0, 7*n), nil
	case models.FrequencyMonthly:
		return monthDay(next, n, anchorDay), nil
	case models.FrequencyYearly:
		return monthDay(next, 12*n, anchorDay), nil
	}
	return time.Time{}, fmt.Errorf("未知的频率: %s", frequency)
}

// NextDueDate 按频率推进一个周期，月末日号压到目标月长度
func NextDueDate(due time.Time, frequency string) (time.Time, error) {
	return advanceFrom(due, due.Day(), frequency, 1)
}

// DueDates 计算应生成的消费日期（补账语义）
// 以 next 为起点，每当一个完整周期在 ref 之前走完，就生成一条记录，
// 日期取名义到期日而非调用时刻；返回生成日期列表与推进后的下次到期日。
// anchorDay 是模板创建时的日号，保证月末截断（2月29日）之后仍回到原始日。
//
// 例：next=2024-01-01、频率 monthly、ref=2024-03-15 时生成
// 2024-01-01 与 2024-02-01 两条，下次到期日推进到 2024-03-01。
func DueDates(next time.Time, anchorDay int, frequency string, ref time.Time) ([]time.Time, time.Time, error) {
	if !models.IsValidFrequency(frequency) {
		return nil, next, fmt.Errorf("未知的频率: %s", frequency)
	}

	var dates []time.Time
	cur := next
	for n := 1; ; n++ {
		advanced, err := advanceFrom(next, anchorDay, frequency, n)
		if err != nil {
			return nil, next, err
		}
		// 周期尚未走完，停止
		if advanced.After(ref) {
			break
		}
		dates = append(dates, cur)
		cur = advanced

		if len(dates) > maxCatchUpPeriods {
			return nil, cur, fmt.Errorf("待生成期数超过 %d，疑似到期日配置错误", maxCatchUpPeriods)
		}
	}
	return dates, cur, nil
}
