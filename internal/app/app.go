// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: хранилище настроек, пайплайн скачивания,
// журнал (опционально), обработчики и сам Bot.
package app

import (
	"context"
	"fmt"
	"os/exec"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"webgrab.dev/telegram-bot/internal/bot"
	"webgrab.dev/telegram-bot/internal/config"
	"webgrab.dev/telegram-bot/internal/db/postgres"
	"webgrab.dev/telegram-bot/internal/features/access"
	"webgrab.dev/telegram-bot/internal/features/download"
	"webgrab.dev/telegram-bot/internal/features/journal"
	"webgrab.dev/telegram-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool // nil, если журнал выключен
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Проверка окружения: wget должен быть в PATH ===
	wget, err := exec.LookPath(cfg.WgetPath)
	if err != nil {
		return nil, fmt.Errorf("wget не найден (%q): установите wget или задайте WGET_PATH: %w", cfg.WgetPath, err)
	}
	log.WithField("wget", wget).Debug("wget найден")

	// === 2. Журнал скачиваний (опционально) ===
	var pool *pgxpool.Pool
	var journalService *journal.Service
	if cfg.JournalEnabled() {
		pool, err = postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ошибка миграций: %w", err)
		}
		journalService = journal.NewService(journal.NewRepository(pool))
	} else {
		log.Info("Журнал скачиваний выключен (DB_PASSWORD пуст)")
	}

	// === 3. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 4. Хранилище настроек доступа ===
	store, err := access.NewStore(cfg.SettingsFile, cfg.AdminID)
	if err != nil {
		return nil, fmt.Errorf("хранилище настроек: %w", err)
	}

	// === 5. Сервисы ===
	accessService := access.NewService(store, cfg.AdminID, cfg.AdminUsername, cfg.AdminPasswordHash)

	mirror := download.NewMirror(wget, cfg.DownloadTimeout)
	packager := download.NewPackager(afero.NewOsFs(), cfg.MaxArchiveBytes)
	downloadService := download.NewService(mirror, packager, cfg.ScratchDir, cfg.MaxActiveDownloads)
	sessions := download.NewSessions()

	// === 6. Обработчики ===
	accessHandler := access.NewHandler(accessService, store, botAPI, journalService,
		cfg.AdminID, cfg.AdminUsername, cfg.MaxArchiveBytes)
	downloadHandler := download.NewHandler(botAPI, downloadService, sessions,
		accessService, journalService, cfg.AdminUsername, cfg.MaxArchiveBytes, cfg.DownloadTimeout)

	// === 7. Собираем бота ===
	b := bot.New(botAPI, cfg, accessService, accessHandler, downloadHandler, sessions)

	// === 8. Планировщик задач ===
	// Каталог старше двух дедлайнов скачивания точно осиротел.
	scheduler := jobs.NewScheduler(store, sessions, cfg.ScratchDir, 2*cfg.DownloadTimeout)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		BotAPI:    botAPI,
	}, nil
}
