// Package journal — service.go: запись в журнал не должна ломать доставку,
// ошибки БД здесь только логируются.
package journal

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Service — тонкий слой над репозиторием журнала.
type Service struct {
	repo *Repository
}

// NewService создаёт сервис журнала.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Record пишет запись о доставке. Архив к этому моменту уже у
// пользователя, поэтому падение БД доставку не отменяет.
func (s *Service) Record(ctx context.Context, e *Entry) {
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.repo.Insert(writeCtx, e); err != nil {
		log.WithError(err).WithField("url", e.URL).Warn("Запись в журнал не удалась")
	}
}

// Recent возвращает последние limit доставок.
func (s *Service) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	return s.repo.Recent(ctx, limit)
}
