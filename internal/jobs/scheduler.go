// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежечасная уборка осиротевших
// scratch-каталогов и ежедневная строка статистики в лог.
package jobs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"webgrab.dev/telegram-bot/internal/features/access"
	"webgrab.dev/telegram-bot/internal/features/download"
)

// staleSessionAge — возраст, после которого брошенная клавиатура
// выбора режима считается мёртвой и сессия выметается.
const staleSessionAge = 15 * time.Minute

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron          *cron.Cron
	store         *access.Store
	sessions      *download.Sessions
	scratchParent string
	maxAge        time.Duration
}

// NewScheduler создаёт планировщик задач.
// scratchParent — каталог, где пайплайн создаёт scratch-директории
// (пусто = системный tmp); maxAge — возраст, после которого каталог
// считается осиротевшим (обычно два дедлайна скачивания).
func NewScheduler(store *access.Store, sessions *download.Sessions, scratchParent string, maxAge time.Duration) *Scheduler {
	if scratchParent == "" {
		scratchParent = os.TempDir()
	}
	return &Scheduler{
		cron:          cron.New(),
		store:         store,
		sessions:      sessions,
		scratchParent: scratchParent,
		maxAge:        maxAge,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Уборка каждый час: живой процесс убирает scratch сам,
	// здесь подметаем только то, что осталось после аварийного завершения.
	s.cron.AddFunc("0 * * * *", func() {
		removed := s.SweepScratch()
		if removed > 0 {
			log.WithField("removed", removed).Info("[CRON] Убраны осиротевшие scratch-каталоги")
		}
	})

	// Брошенные клавиатуры выбора режима: сессия в awaiting-mode
	// занимает слот лимита пользователей, вечно держать её нельзя.
	s.cron.AddFunc("*/10 * * * *", func() {
		if removed := s.sessions.SweepStale(staleSessionAge); removed > 0 {
			log.WithField("removed", removed).Info("[CRON] Убраны брошенные сессии")
		}
	})

	// Ежедневная строка статистики в 00:00
	s.cron.AddFunc("0 0 * * *", func() {
		set := s.store.Snapshot()
		log.WithFields(log.Fields{
			"downloads": set.DownloadsCount,
			"allowed":   len(set.AllowedUsers),
			"banned":    len(set.BannedUsers),
		}).Info("[CRON] Суточная статистика")
	})

	s.cron.Start()
	log.Info("Планировщик задач запущен")
}

// Stop останавливает планировщик и ждёт завершения текущих задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}

// SweepScratch удаляет scratch-каталоги старше maxAge.
// Возвращает число удалённых каталогов.
func (s *Scheduler) SweepScratch() int {
	entries, err := os.ReadDir(s.scratchParent)
	if err != nil {
		log.WithError(err).WithField("dir", s.scratchParent).Warn("Каталог scratch не читается")
		return 0
	}

	cutoff := time.Now().Add(-s.maxAge)
	removed := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), download.ScratchPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.scratchParent, e.Name())
		if err := os.RemoveAll(path); err != nil {
			log.WithError(err).WithField("dir", path).Warn("Не удалось удалить осиротевший scratch")
			continue
		}
		removed++
	}
	return removed
}
