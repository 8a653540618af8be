// Package journal ведёт журнал успешных доставок в PostgreSQL.
// Журнал хранит только метаданные (URL, режим, размеры) — никогда
// не сами архивы. Компонент опционален: без БД бот работает без журнала.
package journal

import "time"

// Entry — одна успешная доставка архива.
type Entry struct {
	ID         int64     `db:"id"`
	UserID     int64     `db:"user_id"`
	ChatID     int64     `db:"chat_id"`
	URL        string    `db:"url"`
	Mode       string    `db:"mode"`
	Files      int       `db:"files"`
	Bytes      int64     `db:"bytes"`
	DurationMS int64     `db:"duration_ms"`
	CreatedAt  time.Time `db:"created_at"`
}
