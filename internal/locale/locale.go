// Package locale holds the user-facing text of the client. Messages are keyed
// by their Simplified Chinese source text; other languages are looked up in a
// catalog and fall back to the source text when a translation is missing.
package locale

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Supported languages
const (
	LangZhCN = "zh_CN"
	LangEnUS = "en_US"
)

var (
	mu      sync.RWMutex
	current = LangZhCN
)

// SetLanguage switches the language used by T. Unknown languages fall back
// to the source text.
func SetLanguage(lang string) {
	mu.Lock()
	defer mu.Unlock()
	current = normalize(lang)
}

// Language returns the active language
func Language() string {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func normalize(lang string) string {
	lang = strings.ReplaceAll(strings.TrimSpace(lang), "-", "_")
	switch {
	case lang == "":
		return LangZhCN
	case strings.HasPrefix(strings.ToLower(lang), "en"):
		return LangEnUS
	case strings.HasPrefix(strings.ToLower(lang), "zh"):
		return LangZhCN
	default:
		return lang
	}
}

// T translates text into the active language and replaces every {key}
// placeholder with the matching param.
func T(text string, params map[string]interface{}) string {
	return Translate(Language(), text, params)
}

// Translate is T for an explicit language
func Translate(lang, text string, params map[string]interface{}) string {
	if msgs, ok := catalogs[normalize(lang)]; ok {
		if tr, ok := msgs[text]; ok {
			text = tr
		}
	}
	return interpolate(text, params)
}

func interpolate(text string, params map[string]interface{}) string {
	if len(params) == 0 {
		return text
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// FormatNumber abbreviates large counts: 1.2k below ten thousand, 1.2w above
func FormatNumber(n int) string {
	switch {
	case n < 1000:
		return fmt.Sprint(n)
	case n < 10000:
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	default:
		return fmt.Sprintf("%.1fw", float64(n)/10000)
	}
}

// FormatTime renders t relative to now. Anything a week or older is shown
// as a date.
func FormatTime(t, now time.Time) string {
	diff := now.Sub(t)
	const day = 24 * time.Hour

	switch {
	case diff < time.Minute:
		return T("刚刚", nil)
	case diff < time.Hour:
		return T("{minutes}分钟前", map[string]interface{}{"minutes": int(diff / time.Minute)})
	case diff < day:
		return T("{hours}小时前", map[string]interface{}{"hours": int(diff / time.Hour)})
	case diff < 7*day:
		return T("{days}天前", map[string]interface{}{"days": int(diff / day)})
	default:
		return t.Local().Format("2006/1/2")
	}
}

// FrequencyOption is one choice of polling interval
type FrequencyOption struct {
	Minutes int
	Label   string
}

var frequencyLabels = []FrequencyOption{
	{5, "5分钟"},
	{10, "10分钟"},
	{15, "15分钟"},
	{30, "30分钟"},
	{60, "1小时"},
	{120, "2小时"},
	{360, "6小时"},
	{720, "12小时"},
	{1440, "24小时"},
}

// FrequencyOptions lists the selectable polling intervals with translated labels
func FrequencyOptions() []FrequencyOption {
	out := make([]FrequencyOption, len(frequencyLabels))
	for i, o := range frequencyLabels {
		out[i] = FrequencyOption{Minutes: o.Minutes, Label: T(o.Label, nil)}
	}
	return out
}

// FrequencyLabel returns the label for minutes, or a generic phrase for
// intervals that are not in the option list.
func FrequencyLabel(minutes int) string {
	for _, o := range frequencyLabels {
		if o.Minutes == minutes {
			return T(o.Label, nil)
		}
	}
	return T("每{frequency}分钟检查", map[string]interface{}{"frequency": minutes})
}
