// Package journal — repository.go: запросы к таблице downloads.
package journal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository работает с таблицей downloads.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт репозиторий журнала.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert добавляет запись о доставке.
func (r *Repository) Insert(ctx context.Context, e *Entry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO downloads (user_id, chat_id, url, mode, files, bytes, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.UserID, e.ChatID, e.URL, e.Mode, e.Files, e.Bytes, e.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("вставка в журнал: %w", err)
	}
	return nil
}

// Recent возвращает последние limit доставок, свежие первыми.
func (r *Repository) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, chat_id, url, mode, files, bytes, duration_ms, created_at
		FROM downloads
		ORDER BY created_at DESC
		LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("чтение журнала: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.ChatID, &e.URL, &e.Mode,
			&e.Files, &e.Bytes, &e.DurationMS, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("скан строки журнала: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
