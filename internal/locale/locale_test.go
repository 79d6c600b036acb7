package locale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withLanguage(t *testing.T, lang string) {
	t.Helper()
	prev := Language()
	SetLanguage(lang)
	t.Cleanup(func() { SetLanguage(prev) })
}

func TestT_DefaultReturnsSourceText(t *testing.T) {
	withLanguage(t, LangZhCN)

	assert.Equal(t, "追踪器创建成功", T("追踪器创建成功", nil))
	assert.Equal(t, "获得10金币", T("获得{coins}金币", map[string]interface{}{"coins": 10}))
	assert.Equal(t, "未收录", T("未收录", nil))
}

func TestT_InterpolatesEveryOccurrence(t *testing.T) {
	got := Translate(LangZhCN, "{a}-{b}-{a}", map[string]interface{}{"a": 1, "b": "x"})
	assert.Equal(t, "1-x-1", got)
}

func TestT_English(t *testing.T) {
	withLanguage(t, "en-US")

	assert.Equal(t, LangEnUS, Language())
	assert.Equal(t, "Earned 10 coins", T("获得{coins}金币", map[string]interface{}{"coins": 10}))
	assert.Equal(t, "未收录", T("未收录", nil), "missing translations fall back to the source")
}

func TestSetLanguage_Normalizes(t *testing.T) {
	withLanguage(t, "")
	assert.Equal(t, LangZhCN, Language())

	SetLanguage("zh-TW")
	assert.Equal(t, LangZhCN, Language())

	SetLanguage("en")
	assert.Equal(t, LangEnUS, Language())
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0k"},
		{1234, "1.2k"},
		{9999, "10.0k"},
		{10000, "1.0w"},
		{123456, "12.3w"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in), "%d", tt.in)
	}
}

func TestFormatTime(t *testing.T) {
	withLanguage(t, LangZhCN)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)

	assert.Equal(t, "刚刚", FormatTime(now.Add(-30*time.Second), now))
	assert.Equal(t, "5分钟前", FormatTime(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3小时前", FormatTime(now.Add(-3*time.Hour-10*time.Minute), now))
	assert.Equal(t, "2天前", FormatTime(now.Add(-50*time.Hour), now))
	assert.Equal(t, "2024/3/1", FormatTime(time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local), now))
}

func TestFrequencyOptions(t *testing.T) {
	withLanguage(t, LangZhCN)

	opts := FrequencyOptions()
	minutes := make([]int, len(opts))
	for i, o := range opts {
		minutes[i] = o.Minutes
	}
	assert.Equal(t, []int{5, 10, 15, 30, 60, 120, 360, 720, 1440}, minutes)
	assert.Equal(t, "1小时", FrequencyLabel(60))
	assert.Equal(t, "每45分钟检查", FrequencyLabel(45))

	SetLanguage(LangEnUS)
	assert.Equal(t, "2 hours", FrequencyOptions()[5].Label)
}
