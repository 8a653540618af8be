// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: форматирование размеров и аптайма для сообщений бота.
package common

import (
	"fmt"
	"time"
)

// FormatMB форматирует байты в мегабайты с одним знаком после запятой.
// Пример: FormatMB(2202009) → "2.1MB"
func FormatMB(n int64) string {
	return fmt.Sprintf("%.1fMB", float64(n)/1024/1024)
}

// FormatMB2 — то же, но с двумя знаками (для подписи к файлу).
func FormatMB2(n int64) string {
	return fmt.Sprintf("%.2f MB", float64(n)/1024/1024)
}

// FormatUptime форматирует длительность в читабельную строку.
//
// Примеры:
//
//	FormatUptime(42 * time.Second)  → "42s"
//	FormatUptime(90 * time.Minute)  → "1h 30m 0s"
//	FormatUptime(49 * time.Hour)    → "2d 1h 0m 0s"
func FormatUptime(d time.Duration) string {
	total := int64(d.Seconds())
	if total < 0 {
		total = 0
	}

	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// Truncate обрезает строку до max символов (для хвоста stderr в сообщениях).
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
