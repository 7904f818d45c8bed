package service

import (
	"testing"
	"time"

	"homefinance/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestDueDatesMonthlyCatchUp(t *testing.T) {
	// 到期日 2024-01-01、每月频率、参考日期 2024-03-15：
	// 生成 2024-01-01 与 2024-02-01 两条，下次到期日推进到 2024-03-01
	dates, next, err := DueDates(date(2024, 1, 1), 1, models.FrequencyMonthly, date(2024, 3, 15))
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, date(2024, 1, 1), dates[0])
	assert.Equal(t, date(2024, 2, 1), dates[1])
	assert.Equal(t, date(2024, 3, 1), next)
}

func TestDueDatesMonthEndAnchored(t *testing.T) {
	// 1月31日锚定：2月压到月末，3月回到31日，不会漂移成3月2日
	dates, next, err := DueDates(date(2024, 1, 31), 31, models.FrequencyMonthly, date(2024, 4, 10))
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, date(2024, 1, 31), dates[0])
	assert.Equal(t, date(2024, 2, 29), dates[1])
	assert.Equal(t, date(2024, 3, 31), next)

	// 从截断后的到期日继续推进，锚定日号保持 31
	dates, next, err = DueDates(date(2024, 2, 29), 31, models.FrequencyMonthly, date(2024, 4, 10))
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, date(2024, 2, 29), dates[0])
	assert.Equal(t, date(2024, 3, 31), next)
}

func TestDueDatesNoPeriodElapsed(t *testing.T) {
	// 周期尚未走完：不生成，到期日不变
	dates, next, err := DueDates(date(2024, 1, 1), 1, models.FrequencyMonthly, date(2024, 1, 20))
	require.NoError(t, err)
	assert.Empty(t, dates)
	assert.Equal(t, date(2024, 1, 1), next)
}

func TestDueDatesWeekly(t *testing.T) {
	dates, next, err := DueDates(date(2024, 1, 1), 1, models.FrequencyWeekly, date(2024, 1, 15))
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, date(2024, 1, 1), dates[0])
	assert.Equal(t, date(2024, 1, 8), dates[1])
	assert.Equal(t, date(2024, 1, 15), next)
}

func TestDueDatesYearly(t *testing.T) {
	dates, next, err := DueDates(date(2022, 6, 1), 1, models.FrequencyYearly, date(2024, 6, 1))
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, date(2022, 6, 1), dates[0])
	assert.Equal(t, date(2023, 6, 1), dates[1])
	assert.Equal(t, date(2024, 6, 1), next)
}

func TestDueDatesYearlyLeapDay(t *testing.T) {
	// 2月29日锚定的年付：平年压到2月28日
	dates, next, err := DueDates(date(2024, 2, 29), 29, models.FrequencyYearly, date(2025, 3, 1))
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, date(2024, 2, 29), dates[0])
	assert.Equal(t, date(2025, 2, 28), next)
}

func TestDueDatesInvalidFrequency(t *testing.T) {
	_, _, err := DueDates(date(2024, 1, 1), 1, "daily", date(2024, 3, 1))
	assert.Error(t, err)
}

func TestDueDatesCatchUpCap(t *testing.T) {
	// 到期日被误改到远古日期时报错，不一次性生成海量记录
	_, _, err := DueDates(date(2000, 1, 1), 1, models.FrequencyWeekly, date(2024, 1, 1))
	assert.Error(t, err)
}

func TestNextDueDate(t *testing.T) {
	next, err := NextDueDate(date(2024, 1, 31), models.FrequencyMonthly)
	require.NoError(t, err)
	// 月末压到目标月长度，而非 AddDate 的跨月归一化
	assert.Equal(t, date(2024, 2, 29), next)

	next, err = NextDueDate(date(2024, 1, 1), models.FrequencyWeekly)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 8), next)

	_, err = NextDueDate(date(2024, 1, 1), "hourly")
	assert.Error(t, err)
}
