package model

import "time"

// TimeLayout - ISO 8601 с микросекундами фиксированной длины
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// ClockLayout - короткое "ЧЧ:ММ" для списка чатов и сообщений
const ClockLayout = "15:04"

// FormatTime форматирует время по TimeLayout; нулевое время дает пустую строку
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}
