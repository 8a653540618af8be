// Package download — service.go связывает драйвер зеркала и упаковщик
// в один пайплайн: scratch-каталог → wget → zip в памяти.
// Scratch-каталог уничтожается на любом пути выхода.
package download

import (
	"context"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

// ScratchPrefix — префикс scratch-каталогов.
// По нему же ищет осиротевшие каталоги фоновый sweeper.
const ScratchPrefix = "webgrab-"

// Service выполняет пайплайн скачивания.
type Service struct {
	mirror        *Mirror
	packager      *Packager
	scratchParent string // пусто = системный tmp

	// семафор на число одновременных скачиваний процесса
	active chan struct{}
}

// NewService создаёт пайплайн. maxActive ограничивает число одновременно
// работающих скачиваний на процесс.
func NewService(mirror *Mirror, packager *Packager, scratchParent string, maxActive int) *Service {
	if maxActive <= 0 {
		maxActive = 1
	}
	return &Service{
		mirror:        mirror,
		packager:      packager,
		scratchParent: scratchParent,
		active:        make(chan struct{}, maxActive),
	}
}

// Download скачивает url в режиме mode и возвращает архив в памяти.
// Блокируется, пока не освободится слот семафора (или не отменят ctx).
func (s *Service) Download(ctx context.Context, url string, mode Mode) (*Result, error) {
	select {
	case s.active <- struct{}{}:
		defer func() { <-s.active }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	start := time.Now()

	dir, err := os.MkdirTemp(s.scratchParent, ScratchPrefix)
	if err != nil {
		return nil, fmt.Errorf("создание scratch-каталога: %w", err)
	}
	// Уничтожаем scratch безусловно: успех, ошибка, таймаут — без разницы.
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.WithError(err).WithField("dir", dir).Error("Не удалось удалить scratch-каталог")
		}
	}()

	if err := s.mirror.Run(ctx, url, mode, dir); err != nil {
		return nil, err
	}

	data, files, err := s.packager.Archive(dir)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Archive:  data,
		Files:    files,
		Size:     int64(len(data)),
		Duration: time.Since(start),
	}
	log.WithFields(log.Fields{
		"url":      url,
		"mode":     mode,
		"files":    res.Files,
		"bytes":    res.Size,
		"duration": res.Duration.Round(time.Millisecond),
	}).Info("Пайплайн скачивания завершён")
	return res, nil
}
